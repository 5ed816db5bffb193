package uploader

import (
	"context"
	"errors"
	"testing"
	"time"

	"NetZoneFlow/internal/config"
	"NetZoneFlow/internal/engine/flowaggregator"
	"NetZoneFlow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, batch *model.Batch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *mockSender) Name() string { return "mock" }
func (m *mockSender) Close() error { return nil }

type brokenCodec struct{ flowaggregator.JSONCodec }

func (brokenCodec) Encode([]model.FlowRecord) ([]byte, error) {
	return nil, errors.New("no encoder")
}

var errDown = errors.New("collector down")

func storeWith(n int) *flowaggregator.Store {
	s := flowaggregator.NewStore()
	for i := 0; i < n; i++ {
		s.Add(model.FlowRecord{
			Src:            "10.0.0.1",
			Dst:            "8.8.8.8",
			DstZone:        model.ZoneInternet,
			ProtocolLabels: []string{"DNS"},
			Count:          1,
		})
	}
	return s
}

func TestTick_LiveFlushesAfterThreshold(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.MatchedBy(func(b *model.Batch) bool {
		return b.Frames == BatchFrames+1
	})).Return(nil)

	u := New(sender, model.ModeLive)
	store := storeWith(1)
	ctx := context.Background()

	for i := 0; i < BatchFrames; i++ {
		require.NoError(t, u.Tick(ctx, store))
	}
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	assert.Equal(t, BatchFrames, u.Frames())

	require.NoError(t, u.Tick(ctx, store))
	sender.AssertNumberOfCalls(t, "Send", 1)
	assert.Equal(t, 0, u.Frames())
	assert.Equal(t, 0, store.Len())

	for i := 0; i < BatchFrames+1; i++ {
		require.NoError(t, u.Tick(ctx, store))
	}
	sender.AssertNumberOfCalls(t, "Send", 2)
}

func TestTick_ReplayFlushesEveryFrame(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(nil)

	u := New(sender, model.ModeReplay)
	store := flowaggregator.NewStore()
	for i := 0; i < 5; i++ {
		require.NoError(t, u.Tick(context.Background(), store))
	}

	sender.AssertNumberOfCalls(t, "Send", 5)
	batch := sender.Calls[0].Arguments.Get(1).(*model.Batch)
	assert.Equal(t, `{"data":[]}`, string(batch.Body))
	assert.Equal(t, 1, batch.Frames)
}

func TestTick_CustomThreshold(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(nil)

	u := New(sender, model.ModeLive, WithThreshold(2))
	store := storeWith(1)
	for i := 0; i < 3; i++ {
		require.NoError(t, u.Tick(context.Background(), store))
	}
	sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestFlush_FailureLeavesStateUntouched(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(errDown)

	u := New(sender, model.ModeLive)
	store := storeWith(3)
	ctx := context.Background()
	for i := 0; i < BatchFrames; i++ {
		require.NoError(t, u.Tick(ctx, store))
	}

	err := u.Tick(ctx, store)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransfer)
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, uint64(3), store.Records()[0].Count)
	assert.Equal(t, BatchFrames+1, u.Frames())
	sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestFlush_SerializeFailure(t *testing.T) {
	sender := &mockSender{}
	u := New(sender, model.ModeReplay, WithCodec(brokenCodec{}))
	store := storeWith(1)

	err := u.Tick(context.Background(), store)
	assert.ErrorIs(t, err, ErrSerialize)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	assert.Equal(t, 1, store.Len())
}

func TestFlush_RetryPolicy(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(errDown).Twice()
	sender.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

	u := New(sender, model.ModeReplay, WithPolicy(Policy{
		OnFailure:  config.OnFailureRetry,
		MaxRetries: 3,
		Backoff:    10 * time.Millisecond,
	}))
	var waits []time.Duration
	u.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	store := storeWith(1)
	require.NoError(t, u.Tick(context.Background(), store))

	sender.AssertNumberOfCalls(t, "Send", 3)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, waits)
	assert.Equal(t, 0, store.Len())
}

func TestFlush_RetryExhausted(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(errDown)

	u := New(sender, model.ModeReplay, WithPolicy(Policy{OnFailure: config.OnFailureRetry, MaxRetries: 2}))
	u.sleep = func(context.Context, time.Duration) error { return nil }

	err := u.Flush(context.Background(), storeWith(1))
	assert.ErrorIs(t, err, ErrTransfer)
	sender.AssertNumberOfCalls(t, "Send", 3)
}

func TestFlush_RetryStopsOnCancel(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(errDown)

	u := New(sender, model.ModeReplay, WithPolicy(Policy{OnFailure: config.OnFailureRetry, MaxRetries: 5, Backoff: time.Hour}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := u.Flush(ctx, storeWith(1))
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrTransfer)
	sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(config.Default().Flush)
	assert.Equal(t, config.OnFailureFatal, p.OnFailure)
	assert.Equal(t, 3, p.MaxRetries)
}
