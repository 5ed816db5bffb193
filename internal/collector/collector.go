// Package collector is the receiving side of the flow batches: it merges
// every batch it is handed into one store using the same merge law as the
// client.
package collector

import (
	"fmt"
	"io"
	"net/http"

	"NetZoneFlow/internal/engine/flowaggregator"
	"NetZoneFlow/internal/log"
	"NetZoneFlow/internal/metrics"
	"NetZoneFlow/internal/model"

	"github.com/gorilla/mux"
)

// Collector is safe for concurrent use by the HTTP handlers and the NATS
// subscription.
type Collector struct {
	store *flowaggregator.SyncStore
}

func New() *Collector {
	return &Collector{store: flowaggregator.NewSyncStore()}
}

// Ingest decodes body according to contentType and merges the records.
// It returns the number of records in the batch.
func (c *Collector) Ingest(source, contentType string, body []byte) (int, error) {
	records, err := flowaggregator.CodecByContentType(contentType).Decode(body)
	if err != nil {
		return 0, fmt.Errorf("decode batch: %w", err)
	}
	c.store.Merge(records)
	metrics.CollectorRecordsTotal.WithLabelValues(source).Add(float64(len(records)))
	return len(records), nil
}

// Flows returns the merged records.
func (c *Collector) Flows() []model.FlowRecord {
	return c.store.Snapshot()
}

// Router serves POST /new for batches, GET /flows for the merged view and
// DELETE /flows to start over.
func (c *Collector) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/new", c.newBatchHandler).Methods(http.MethodPost)
	r.HandleFunc("/flows", c.flowsHandler).Methods(http.MethodGet)
	r.HandleFunc("/flows", c.resetHandler).Methods(http.MethodDelete)
	return r
}

func (c *Collector) newBatchHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read request body: %v", err), http.StatusBadRequest)
		return
	}

	n, err := c.Ingest("http", r.Header.Get("Content-Type"), body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.GetLogger().WithField("records", n).Debug("batch received over HTTP")
	w.WriteHeader(http.StatusOK)
}

func (c *Collector) flowsHandler(w http.ResponseWriter, _ *http.Request) {
	body, err := flowaggregator.JSONCodec{}.Encode(c.Flows())
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", flowaggregator.ContentTypeJSON)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (c *Collector) resetHandler(w http.ResponseWriter, _ *http.Request) {
	c.store.Reset()
	w.WriteHeader(http.StatusNoContent)
}
