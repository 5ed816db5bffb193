// Package flowaggregator merges per-frame flow records into an ordered store
// and serializes it into batches.
package flowaggregator

import (
	"fmt"

	"NetZoneFlow/internal/model"
)

// Store keeps one record per (Src, SrcZone, Dst, DstZone) in insertion order.
// It is owned by a single goroutine and does no locking; see SyncStore.
type Store struct {
	records []model.FlowRecord
	index   map[model.FlowKey]int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{index: make(map[model.FlowKey]int)}
}

// Add merges candidate into the store. A record with the same key gets the
// candidate's count added and any labels it has not seen yet appended, in
// first-seen order. Otherwise a copy of candidate is appended.
func (s *Store) Add(candidate model.FlowRecord) {
	key := candidate.Key()
	if i, ok := s.index[key]; ok {
		rec := &s.records[i]
		rec.Count += candidate.Count
		rec.ProtocolLabels = mergeLabels(rec.ProtocolLabels, candidate.ProtocolLabels)
		return
	}

	candidate.ProtocolLabels = mergeLabels(make([]string, 0, len(candidate.ProtocolLabels)), candidate.ProtocolLabels)
	s.index[key] = len(s.records)
	s.records = append(s.records, candidate)
}

func mergeLabels(dst, src []string) []string {
	for _, label := range src {
		if !containsLabel(dst, label) {
			dst = append(dst, label)
		}
	}
	return dst
}

// Label sets hold a handful of entries, a linear scan beats a map here.
func containsLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

// Clear drops every record.
func (s *Store) Clear() {
	s.records = nil
	s.index = make(map[model.FlowKey]int)
}

// Len returns the number of distinct flow keys held.
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns a deep copy of the records in insertion order.
func (s *Store) Records() []model.FlowRecord {
	out := make([]model.FlowRecord, len(s.records))
	for i, r := range s.records {
		r.ProtocolLabels = append([]string(nil), r.ProtocolLabels...)
		out[i] = r
	}
	return out
}

// Serialize encodes the current contents with codec. The store is not
// modified.
func (s *Store) Serialize(codec Codec) (*model.Batch, error) {
	records := s.Records()
	body, err := codec.Encode(records)
	if err != nil {
		return nil, fmt.Errorf("encode %d records as %s: %w", len(records), codec.Name(), err)
	}
	return &model.Batch{
		Records:     records,
		Body:        body,
		ContentType: codec.ContentType(),
	}, nil
}
