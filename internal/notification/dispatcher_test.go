package notification

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChannel struct {
	name  string
	err   error
	calls int32
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Send(_ context.Context, _ Payload) error {
	atomic.AddInt32(&s.calls, 1)
	return s.err
}

func TestDispatchReachesAllChannels(t *testing.T) {
	a := &stubChannel{name: "webhook"}
	b := &stubChannel{name: "dashboard"}
	d := NewDispatcher(a, b)

	results := d.Dispatch(context.Background(), Payload{Event: EventReconciliationCompleted})

	require.Len(t, results, 2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&a.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&b.calls))
	// Results come back in registration order
	assert.Equal(t, "webhook", results[0].Channel)
	assert.Equal(t, "dashboard", results[1].Channel)
	assert.True(t, results[0].Success)
	assert.True(t, results[1].Success)
}

func TestDispatchOneFailureDoesNotStopOthers(t *testing.T) {
	failing := &stubChannel{name: "webhook", err: errors.New("connection refused")}
	healthy := &stubChannel{name: "dashboard"}
	d := NewDispatcher(failing, healthy)

	results := d.Dispatch(context.Background(), Payload{Event: EventSettlementPaid})

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Equal(t, "connection refused", results[0].Error)
	assert.True(t, results[1].Success)
	assert.Equal(t, int32(1), atomic.LoadInt32(&healthy.calls))
}

func TestDispatchNoChannels(t *testing.T) {
	d := NewDispatcher()
	results := d.Dispatch(context.Background(), Payload{Event: EventSettlementOverdue})
	assert.Empty(t, results)
}
