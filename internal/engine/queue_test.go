package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andrescamacho/helmsman/internal/domain/shared"
)

func newTestQueue() (*EventQueue, *shared.MockClock) {
	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewEventQueue(clock, zap.NewNop()), clock
}

func TestPutGetFIFO(t *testing.T) {
	q, _ := newTestQueue()

	first := q.PutNew(TypeShip, "dock", nil)
	second := q.PutNew(TypeShip, "orbit", nil)
	third := q.PutNew(TypeShip, "refuel", nil)

	for i, want := range []int64{first, second, third} {
		ev, err := q.Get(time.Millisecond)
		require.NoError(t, err, "event %d", i)
		assert.Equal(t, want, ev.ID)
	}
}

func TestGetTimesOutOnEmptyQueue(t *testing.T) {
	q, _ := newTestQueue()

	ev, err := q.Get(5 * time.Millisecond)

	assert.Nil(t, ev)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestNewIDStrictlyIncreasing(t *testing.T) {
	q, _ := newTestQueue()

	previous := q.NewID()
	for i := 0; i < 100; i++ {
		next := q.NewID()
		require.Greater(t, next, previous)
		previous = next
	}
}

func TestScheduledEventNotPromotedBeforeItsTime(t *testing.T) {
	q, clock := newTestQueue()
	ev := q.NewEvent(TypeShip, "extract", nil)
	q.Schedule(clock.Now().Add(time.Minute), ev)

	q.UpdateScheduled()

	assert.Equal(t, 0, q.ReadyLen())
	assert.Equal(t, 1, q.ScheduledLen())
}

func TestScheduledEventPromotedWhenDue(t *testing.T) {
	q, clock := newTestQueue()
	ev := q.NewEvent(TypeShip, "extract", nil)
	q.Schedule(clock.Now().Add(time.Minute), ev)

	clock.Advance(time.Minute)
	q.UpdateScheduled()

	require.Equal(t, 1, q.ReadyLen())
	got, err := q.Get(time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, got.ID)
}

func TestBatchScheduledAtSameInstantKeepsCreationOrder(t *testing.T) {
	q, clock := newTestQueue()
	batch := q.NewEventsFrom(
		Spec{Type: TypeShip, Name: "dock"},
		Spec{Type: TypeShip, Name: "refuel"},
		Spec{Type: TypeShip, Name: "extract"},
	)
	when := clock.Now().Add(30 * time.Second)

	// Push in reverse to prove ordering comes from IDs, not insert order.
	q.Schedule(when, batch[2])
	q.Schedule(when, batch[0])
	q.Schedule(when, batch[1])

	clock.Advance(time.Minute)
	q.UpdateScheduled()

	var names []string
	for q.ReadyLen() > 0 {
		ev, err := q.Get(time.Millisecond)
		require.NoError(t, err)
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{"dock", "refuel", "extract"}, names)
}

func TestEarlierScheduledTimePromotedFirst(t *testing.T) {
	q, clock := newTestQueue()
	late := q.NewEvent(TypeShip, "late", nil)
	early := q.NewEvent(TypeShip, "early", nil)
	q.Schedule(clock.Now().Add(2*time.Minute), late)
	q.Schedule(clock.Now().Add(time.Minute), early)

	clock.Advance(3 * time.Minute)
	q.UpdateScheduled()

	first, err := q.Get(time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "early", first.Name)
}

func TestUpdateScheduledIdempotentWhenNothingDue(t *testing.T) {
	q, clock := newTestQueue()
	q.Schedule(clock.Now().Add(time.Hour), q.NewEvent(TypeShip, "extract", nil))

	q.UpdateScheduled()
	q.UpdateScheduled()
	q.UpdateScheduled()

	assert.Equal(t, 0, q.ReadyLen())
	assert.Equal(t, 1, q.ScheduledLen())
}

func TestEventDoneNotifiesSubscribersInRegistrationOrder(t *testing.T) {
	q, _ := newTestQueue()
	var order []string
	q.Subscribe(TypeShip, "navigate", func(ev *Event) { order = append(order, "first") })
	q.Subscribe(TypeShip, "navigate", func(ev *Event) { order = append(order, "second") })

	q.EventDone(q.NewEvent(TypeShip, "navigate", nil), ResultSuccess)

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestEventDoneDiscardsFailedEvents(t *testing.T) {
	q, _ := newTestQueue()
	notified := false
	q.Subscribe(TypeShip, "navigate", func(ev *Event) { notified = true })

	q.EventDone(q.NewEvent(TypeShip, "navigate", nil), ResultFail)

	assert.False(t, notified)
}

func TestEventDoneIgnoresUnrelatedSubscriptions(t *testing.T) {
	q, _ := newTestQueue()
	notified := false
	q.Subscribe(TypeShip, "extract", func(ev *Event) { notified = true })

	q.EventDone(q.NewEvent(TypeShip, "navigate", nil), ResultSuccess)

	assert.False(t, notified)
}

func TestPanickingSubscriberDoesNotBlockOthers(t *testing.T) {
	q, _ := newTestQueue()
	reached := false
	q.Subscribe(TypeShip, "extract", func(ev *Event) { panic("subscriber bug") })
	q.Subscribe(TypeShip, "extract", func(ev *Event) { reached = true })

	assert.NotPanics(t, func() {
		q.EventDone(q.NewEvent(TypeShip, "extract", nil), ResultSuccess)
	})
	assert.True(t, reached)
}

func TestGetWakesOnConcurrentPut(t *testing.T) {
	q, _ := newTestQueue()

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.PutNew(TypeShip, "dock", nil)
	}()

	ev, err := q.Get(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "dock", ev.Name)
}
