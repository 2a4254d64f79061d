package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribers(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	var got []Kind
	record := func(_ context.Context, e Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.Kind)
	}

	unsubscribe := bus.Subscribe(record)
	bus.Subscribe(record)

	bus.Publish(context.Background(), Event{Kind: DefinitionSubmitted, DefinitionID: "d1"})
	assert.Equal(t, []Kind{DefinitionSubmitted, DefinitionSubmitted}, got)

	unsubscribe()
	unsubscribe()
	bus.Publish(context.Background(), Event{Kind: DefinitionApproved, DefinitionID: "d1"})
	assert.Equal(t, []Kind{DefinitionSubmitted, DefinitionSubmitted, DefinitionApproved}, got)
}

func TestPublishStampsTimeAndSurvivesPanics(t *testing.T) {
	bus := NewBus(nil)

	var delivered Event
	bus.Subscribe(func(context.Context, Event) { panic("subscriber bug") })
	bus.Subscribe(func(_ context.Context, e Event) { delivered = e })

	require.NotPanics(t, func() {
		bus.Publish(context.Background(), Event{Kind: ReactionChanged, DefinitionID: "d2"})
	})
	assert.Equal(t, "d2", delivered.DefinitionID)
	assert.False(t, delivered.At.IsZero())
}

func TestNilBusDropsEvents(t *testing.T) {
	var bus *Bus
	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), Event{Kind: ReactionChanged})
	})
}

func TestInvalidateTrigger(t *testing.T) {
	var payload map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(InvalidateTrigger("abc")), &payload))
	assert.Equal(t, "abc", payload[InvalidateEvent]["id"])
}
