package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NetZoneFlow/internal/config"
	"NetZoneFlow/internal/factory"
	"NetZoneFlow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBatch() *model.Batch {
	return &model.Batch{
		Records: []model.FlowRecord{{
			Src: "10.0.0.1", Dst: "8.8.8.8", DstZone: model.ZoneInternet,
			ProtocolLabels: []string{"DNS"}, Count: 3,
		}},
		Body:        []byte(`{"data":[]}`),
		ContentType: "application/json",
	}
}

func TestHTTPSender_PostsBody(t *testing.T) {
	var gotBody []byte
	var gotType, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte("ignored"))
	}))
	defer srv.Close()

	s := NewHTTPSender(config.CollectorConfig{URL: srv.URL + "/new"})
	defer s.Close()

	require.NoError(t, s.Send(context.Background(), testBatch()))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, `{"data":[]}`, string(gotBody))
}

func TestHTTPSender_Non2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewHTTPSender(config.CollectorConfig{URL: srv.URL}).Send(context.Background(), testBatch())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestHTTPSender_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewHTTPSender(config.CollectorConfig{URL: url, Timeout: time.Second}).Send(context.Background(), testBatch())
	assert.Error(t, err)
}

func TestWriterSender(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSender(&buf)

	require.NoError(t, s.Send(context.Background(), testBatch()))
	require.NoError(t, s.Send(context.Background(), testBatch()))
	assert.Equal(t, "{\"data\":[]}\n{\"data\":[]}\n", buf.String())
}

func TestFlowRows(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := flowRows(append(testBatch().Records, model.FlowRecord{Src: "a", Dst: "b"}), ts)

	require.Len(t, rows, 2)
	assert.Equal(t, []any{ts, "10.0.0.1", "desktop", "8.8.8.8", "internet", []string{"DNS"}, uint64(3)}, rows[0])
	assert.Equal(t, []string{}, rows[1][5])
}

func TestSendersAreRegistered(t *testing.T) {
	assert.Subset(t, factory.Registered(), []string{"clickhouse", "http", "nats", "stdout"})

	s, err := factory.Create(config.CollectorConfig{Type: "http", URL: "http://[::]:3000/new"})
	require.NoError(t, err)
	assert.Equal(t, "http", s.Name())
}

func TestNATSSender_ConnectFailure(t *testing.T) {
	_, err := NewNATSSender(config.CollectorConfig{NATSURL: "nats://127.0.0.1:1", Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
