package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBus_PublishOrder(t *testing.T) {
	bus := NewEventBus()
	var got []string

	bus.Subscribe(AuthChange, func(e Event) error {
		got = append(got, "first:"+string(e.Payload))
		return nil
	})
	bus.Subscribe(AuthChange, func(e Event) error {
		got = append(got, "second:"+string(e.Payload))
		return nil
	})
	bus.Subscribe("other", func(Event) error {
		got = append(got, "other")
		return nil
	})

	err := bus.Publish(Event{Type: AuthChange, Payload: []byte("x")})
	assert.NoError(t, err)
	assert.Equal(t, []string{"first:x", "second:x"}, got)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus()
	calls := 0

	cancel := bus.Subscribe(AuthChange, func(Event) error {
		calls++
		return nil
	})
	_ = bus.Publish(Event{Type: AuthChange})
	cancel()
	cancel()
	_ = bus.Publish(Event{Type: AuthChange})

	assert.Equal(t, 1, calls)
}

func TestEventBus_HandlerError(t *testing.T) {
	bus := NewEventBus()
	boom := errors.New("boom")
	reached := false

	bus.Subscribe(AuthChange, func(Event) error { return boom })
	bus.Subscribe(AuthChange, func(Event) error {
		reached = true
		return nil
	})

	err := bus.Publish(Event{Type: AuthChange})
	assert.ErrorIs(t, err, boom)
	assert.True(t, reached)
}

func TestEventBus_StampsEvents(t *testing.T) {
	bus := NewEventBus()
	var seen []Event
	bus.Subscribe(AuthChange, func(e Event) error {
		seen = append(seen, e)
		return nil
	})

	_ = bus.Publish(Event{Type: AuthChange})
	_ = bus.Publish(Event{Type: AuthChange})

	assert.Len(t, seen, 2)
	assert.False(t, seen[0].CreatedAt.IsZero())
	assert.Less(t, seen[0].ID, seen[1].ID)
}
