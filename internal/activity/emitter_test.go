package activity

import (
	"sync"
	"testing"
	"time"

	"backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedEvent struct {
	slug    string
	action  string
	details storage.Details
}

type capture struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (c *capture) emit(slug, action string, details storage.Details) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, capturedEvent{slug, action, details})
}

func (c *capture) snapshot() []capturedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]capturedEvent(nil), c.events...)
}

func TestEmitterPassesThroughImmediately(t *testing.T) {
	var c capture
	emitter := NewEmitter(time.Hour, c.emit)

	emitter.Emit("slug-a", storage.OpenedProposalAction, storage.Details{})

	events := c.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, storage.OpenedProposalAction, events[0].action)
}

func TestEmitterDebouncesToSettledValue(t *testing.T) {
	var c capture
	emitter := NewEmitter(20*time.Millisecond, c.emit)

	for _, v := range []float64{17, 18, 19, 20, 21} {
		value := v
		emitter.Emit("slug-a", storage.ChangedEventsAction, storage.Details{Value: &value})
	}

	assert.Empty(t, c.snapshot(), "nothing should fire before the window settles")

	require.Eventually(t, func() bool { return len(c.snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	events := c.snapshot()
	require.NotNil(t, events[0].details.Value)
	assert.Equal(t, 21.0, *events[0].details.Value)
}

func TestEmitterKeysByAction(t *testing.T) {
	var c capture
	emitter := NewEmitter(20*time.Millisecond, c.emit)

	events := 21.0
	price := 300.0
	emitter.Emit("slug-a", storage.ChangedEventsAction, storage.Details{Value: &events})
	emitter.Emit("slug-a", storage.ChangedPriceAction, storage.Details{Value: &price})

	require.Eventually(t, func() bool { return len(c.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
}

func TestEmitterFlush(t *testing.T) {
	var c capture
	emitter := NewEmitter(time.Hour, c.emit)

	value := 21.0
	emitter.Emit("slug-a", storage.ChangedEventsAction, storage.Details{Value: &value})
	assert.Empty(t, c.snapshot())

	emitter.Flush()

	events := c.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, storage.ChangedEventsAction, events[0].action)

	// flush twice does not re-emit
	emitter.Flush()
	assert.Len(t, c.snapshot(), 1)
}
