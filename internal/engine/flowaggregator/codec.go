package flowaggregator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"NetZoneFlow/internal/model"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrUnknownCodec is returned by CodecByName for unsupported names.
var ErrUnknownCodec = errors.New("unknown codec")

const (
	ContentTypeJSON     = "application/json"
	ContentTypeProtobuf = "application/x-protobuf"
)

// Codec converts flow records to and from a wire representation. Both forms
// wrap the records in a single object under the "data" key.
type Codec interface {
	Name() string
	ContentType() string
	Encode(records []model.FlowRecord) ([]byte, error)
	Decode(body []byte) ([]model.FlowRecord, error)
}

// CodecByName returns the codec registered under name. The empty name selects
// JSON.
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return JSONCodec{}, nil
	case "proto", "protobuf":
		return ProtoCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// CodecByContentType picks the codec for an incoming request body.
func CodecByContentType(contentType string) Codec {
	if strings.HasPrefix(contentType, ContentTypeProtobuf) {
		return ProtoCodec{}
	}
	return JSONCodec{}
}

type envelope struct {
	Data []model.FlowRecord `json:"data"`
}

// JSONCodec renders records as {"data":[{"src":...,"count":N},...]}.
type JSONCodec struct{}

func (JSONCodec) Name() string        { return "json" }
func (JSONCodec) ContentType() string { return ContentTypeJSON }

func (JSONCodec) Encode(records []model.FlowRecord) ([]byte, error) {
	if records == nil {
		records = []model.FlowRecord{}
	}
	return json.Marshal(envelope{Data: records})
}

func (JSONCodec) Decode(body []byte) ([]model.FlowRecord, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// ProtoCodec renders records as a google.protobuf.Struct of the same shape as
// the JSON form. Marshaling is deterministic so equal stores give equal bytes.
type ProtoCodec struct{}

func (ProtoCodec) Name() string        { return "protobuf" }
func (ProtoCodec) ContentType() string { return ContentTypeProtobuf }

func (ProtoCodec) Encode(records []model.FlowRecord) ([]byte, error) {
	items := make([]*structpb.Value, 0, len(records))
	for _, r := range records {
		labels := make([]*structpb.Value, len(r.ProtocolLabels))
		for i, l := range r.ProtocolLabels {
			labels[i] = structpb.NewStringValue(l)
		}
		items = append(items, structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				"src":             structpb.NewStringValue(r.Src),
				"src_zone":        structpb.NewStringValue(r.SrcZone.String()),
				"dst":             structpb.NewStringValue(r.Dst),
				"dst_zone":        structpb.NewStringValue(r.DstZone.String()),
				"protocol_labels": structpb.NewListValue(&structpb.ListValue{Values: labels}),
				"count":           structpb.NewNumberValue(float64(r.Count)),
			},
		}))
	}
	msg := &structpb.Struct{Fields: map[string]*structpb.Value{
		"data": structpb.NewListValue(&structpb.ListValue{Values: items}),
	}}
	return proto.MarshalOptions{Deterministic: true}.Marshal(msg)
}

func (ProtoCodec) Decode(body []byte) ([]model.FlowRecord, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(body, &msg); err != nil {
		return nil, err
	}
	data, ok := msg.GetFields()["data"]
	if !ok {
		return nil, errors.New("missing data field")
	}

	var records []model.FlowRecord
	for i, item := range data.GetListValue().GetValues() {
		f := item.GetStructValue().GetFields()
		srcZone, err := model.ParseZone(f["src_zone"].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		dstZone, err := model.ParseZone(f["dst_zone"].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		var labels []string
		for _, l := range f["protocol_labels"].GetListValue().GetValues() {
			labels = append(labels, l.GetStringValue())
		}
		records = append(records, model.FlowRecord{
			Src:            f["src"].GetStringValue(),
			SrcZone:        srcZone,
			Dst:            f["dst"].GetStringValue(),
			DstZone:        dstZone,
			ProtocolLabels: labels,
			Count:          uint64(f["count"].GetNumberValue()),
		})
	}
	return records, nil
}
