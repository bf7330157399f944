package bus

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	mu        sync.Mutex
	delivered int
	lastErr   error
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ time.Duration) {
	o.mu.Lock()
	o.delivered += handlers
	o.lastErr = err
	o.mu.Unlock()
}

func TestPublishSubscribe(t *testing.T) {
	b := New()
	var got []Event
	_, err := b.Subscribe("ai.action.selected", func(e Event) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(Event{Type: "ai.action.selected", Source: "dm", Data: 7}))
	require.NoError(t, b.Publish(Event{Type: "other"}))

	require.Len(t, got, 1)
	assert.Equal(t, "dm", got[0].Source)
	assert.Equal(t, 7, got[0].Data)
	assert.False(t, got[0].Time.IsZero())
}

func TestAnyTypeReceivesEverything(t *testing.T) {
	b := New()
	var types []string
	_, err := b.Subscribe(AnyType, func(e Event) error {
		types = append(types, e.Type)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(Event{Type: "a"}))
	require.NoError(t, b.Publish(Event{Type: "b"}))
	assert.Equal(t, []string{"a", "b"}, types)
}

func TestSubscriptionCancel(t *testing.T) {
	b := New()
	calls := 0
	sub, err := b.Subscribe("x", func(Event) error { calls++; return nil })
	require.NoError(t, err)
	assert.True(t, sub.Active())

	sub.Cancel()
	sub.Cancel()
	assert.False(t, sub.Active())
	require.NoError(t, b.Publish(Event{Type: "x"}))
	assert.Zero(t, calls)
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	first, second := errors.New("first"), errors.New("second")
	_, _ = b.Subscribe("x", func(Event) error { return first })
	_, _ = b.Subscribe("x", func(Event) error { return second })

	err := b.Publish(Event{Type: "x"})
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)

	e := <-b.PublishAsync(Event{Type: "x"})
	assert.ErrorIs(t, e, first)
}

func TestHandlersMayReenterBus(t *testing.T) {
	b := New()
	var inner int
	_, _ = b.Subscribe("inner", func(Event) error { inner++; return nil })
	_, _ = b.Subscribe("outer", func(Event) error {
		sub, err := b.Subscribe("late", func(Event) error { return nil })
		if err != nil {
			return err
		}
		sub.Cancel()
		return b.Publish(Event{Type: "inner"})
	})
	require.NoError(t, b.Publish(Event{Type: "outer"}))
	assert.Equal(t, 1, inner)
}

func TestValidation(t *testing.T) {
	b := New()
	_, err := b.Subscribe("", func(Event) error { return nil })
	assert.ErrorIs(t, err, ErrEmptyType)
	_, err = b.Subscribe("x", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
	assert.ErrorIs(t, b.Publish(Event{}), ErrEmptyType)
}

func TestMetricsOnlyWithObserver(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("e", func(Event) error { return nil })
	require.NoError(t, b.Publish(Event{Type: "e"}))
	assert.Zero(t, b.Metrics().Published)

	obs := &testObserver{}
	b.AddObserver(obs)
	require.NoError(t, b.Publish(Event{Type: "e"}))
	m := b.Metrics()
	assert.Equal(t, uint64(1), m.Published)
	assert.Equal(t, uint64(1), m.Delivered)
	assert.Equal(t, uint64(1), m.ActiveSubs)
	assert.Equal(t, 1, obs.delivered)

	b.RemoveObserver(obs)
	require.NoError(t, b.Publish(Event{Type: "e"}))
	assert.Equal(t, uint64(1), b.Metrics().Published)
}
