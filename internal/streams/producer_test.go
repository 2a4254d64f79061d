package streams

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jimdaga/kamus/internal/events"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPublisher(t *testing.T) (*Publisher, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewPublisherWithClient(rdb, nil), rdb
}

func TestPublishAppendsEvent(t *testing.T) {
	p, rdb := newTestPublisher(t)
	ctx := context.Background()

	id, err := p.Publish(ctx, events.Event{Kind: events.DefinitionApproved, DefinitionID: "d1", UserID: "admin"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	entries, err := rdb.XRange(ctx, StreamDefinitionEvents, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	values := entries[0].Values
	assert.Equal(t, string(events.DefinitionApproved), values["kind"])
	assert.Equal(t, SchemaVersionV1, values["schema_version"])
	assert.NotEmpty(t, values["event_id"])

	var e events.Event
	require.NoError(t, json.Unmarshal([]byte(values["payload"].(string)), &e))
	assert.Equal(t, "d1", e.DefinitionID)
	assert.Equal(t, "admin", e.UserID)
}

func TestSubscribeMirrorsBus(t *testing.T) {
	p, rdb := newTestPublisher(t)
	ctx := context.Background()
	bus := events.NewBus(nil)
	unsubscribe := p.Subscribe(bus)

	bus.Publish(ctx, events.Event{Kind: events.DefinitionSubmitted, DefinitionID: "d1"})
	bus.Publish(ctx, events.Event{Kind: events.ReactionChanged, DefinitionID: "d1"})
	unsubscribe()
	bus.Publish(ctx, events.Event{Kind: events.ReactionChanged, DefinitionID: "d2"})

	n, err := rdb.XLen(ctx, StreamDefinitionEvents).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestSubscribeSurvivesRedisOutage(t *testing.T) {
	p, rdb := newTestPublisher(t)
	require.NoError(t, rdb.Close())

	bus := events.NewBus(nil)
	p.Subscribe(bus)
	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), events.Event{Kind: events.ReactionChanged, DefinitionID: "d1"})
	})
}
