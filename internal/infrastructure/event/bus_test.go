package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Order", uuid.New())}
}

type recordingHandler struct {
	types []string
	err   error
	panic bool

	mu   sync.Mutex
	seen []string
}

func (h *recordingHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	h.mu.Lock()
	h.seen = append(h.seen, e.EventType())
	h.mu.Unlock()
	if h.panic {
		panic("handler exploded")
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) handled() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen...)
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	edits := &recordingHandler{types: []string{"PaymentEdited", "PaymentDeleted"}}
	all := &recordingHandler{}
	bus.Subscribe(edits)
	bus.Subscribe(all)

	err := bus.Publish(context.Background(),
		newTestEvent("PaymentRegistered"),
		newTestEvent("PaymentEdited"),
		newTestEvent("PaymentDeleted"),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"PaymentEdited", "PaymentDeleted"}, edits.handled())
	assert.Len(t, all.handled(), 3)
}

func TestInMemoryEventBus_HandlerFailuresDoNotStopDelivery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &recordingHandler{types: []string{"PaymentEdited"}, err: errors.New("replay failed")}
	panicking := &recordingHandler{types: []string{"PaymentEdited"}, panic: true}
	healthy := &recordingHandler{types: []string{"PaymentEdited"}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("PaymentEdited"))
	assert.NoError(t, err)
	assert.Len(t, healthy.handled(), 1)
	assert.Equal(t, int64(2), bus.Failures())
	assert.Equal(t, 2, logs.FilterMessage("event handler failed").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{"OrderCreated"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderCreated")))
	assert.Empty(t, h.handled())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	assert.True(t, bus.running.Load())
	require.NoError(t, bus.Stop(context.Background()))
	assert.False(t, bus.running.Load())
}
