package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	r := NewHandlerRegistry()
	typed := &recordingHandler{}
	wildcard := &recordingHandler{}

	r.Register(typed, "PaymentEdited", "PaymentDeleted")
	r.Register(wildcard)
	assert.Equal(t, 3, r.Len())

	handlers := r.Handlers("PaymentEdited")
	if assert.Len(t, handlers, 2) {
		assert.Same(t, typed, handlers[0])
		assert.Same(t, wildcard, handlers[1])
	}
	assert.Len(t, r.Handlers("OrderCreated"), 1)

	r.Unregister(typed)
	assert.Equal(t, 1, r.Len())
	assert.Len(t, r.Handlers("PaymentEdited"), 1)

	r.Unregister(wildcard)
	assert.Empty(t, r.Handlers("PaymentEdited"))
}
