package dissect

import "bytes"

const (
	ssdpPort   = 1900
	natpmpPort = 5351
)

var httpPrefixes = [][]byte{
	[]byte("GET "), []byte("POST "), []byte("PUT "), []byte("DELETE "),
	[]byte("HEAD "), []byte("OPTIONS "), []byte("PATCH "), []byte("CONNECT "),
	[]byte("TRACE "), []byte("HTTP/1."),
}

var ssdpPrefixes = [][]byte{
	[]byte("M-SEARCH "), []byte("NOTIFY "), []byte("HTTP/1.1 "),
}

// sniffApplication identifies application protocols gopacket leaves as opaque
// payload. It only looks at the first bytes of the payload and the ports of
// the enclosing transport header.
func sniffApplication(tr transport, payload []byte) (Kind, bool) {
	if len(payload) == 0 {
		return KindUnrecognized, false
	}
	switch tr.kind {
	case KindTCP:
		if hasAnyPrefix(payload, httpPrefixes) {
			return KindHTTP, true
		}
		if looksLikeTLSRecord(payload) {
			return KindTLS, true
		}
	case KindUDP:
		if tr.port(ssdpPort) && hasAnyPrefix(payload, ssdpPrefixes) {
			return KindSSDP, true
		}
		// NAT-PMP packets start with version 0 followed by an opcode.
		if tr.port(natpmpPort) && len(payload) >= 2 && payload[0] == 0 {
			return KindNATPMP, true
		}
	}
	return KindUnrecognized, false
}

func hasAnyPrefix(b []byte, prefixes [][]byte) bool {
	for _, p := range prefixes {
		if bytes.HasPrefix(b, p) {
			return true
		}
	}
	return false
}

// looksLikeTLSRecord matches a TLS record header: content type 20-23, major
// version 3 and a five byte header.
func looksLikeTLSRecord(b []byte) bool {
	return len(b) >= 5 && b[0] >= 20 && b[0] <= 23 && b[1] == 3
}
