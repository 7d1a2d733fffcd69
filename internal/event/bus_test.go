package event

import (
	"testing"

	"horizonx-machine/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishToSubscribers(t *testing.T) {
	bus := New(logger.NewNop())

	var got []any
	bus.Subscribe("usage_reported", func(e any) { got = append(got, e) })
	bus.Subscribe("usage_reported", func(e any) { got = append(got, e) })
	bus.Subscribe("other", func(e any) { t.Fatal("unexpected event") })

	bus.Publish("usage_reported", 42)

	assert.Equal(t, []any{42, 42}, got)
}

func TestBus_PanicDoesNotStopOthers(t *testing.T) {
	bus := New(logger.NewNop())

	called := false
	bus.Subscribe("x", func(any) { panic("boom") })
	bus.Subscribe("x", func(any) { called = true })

	assert.NotPanics(t, func() { bus.Publish("x", nil) })
	assert.True(t, called)
}

func TestBus_NoSubscribers(t *testing.T) {
	bus := New(logger.NewNop())
	assert.NotPanics(t, func() { bus.Publish("nothing", struct{}{}) })
}
