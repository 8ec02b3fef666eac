package helpers

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/andrescamacho/helmsman/internal/app"
	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/domain/shared"
	"github.com/andrescamacho/helmsman/internal/engine"
	"github.com/andrescamacho/helmsman/internal/infrastructure/database"
)

// Epoch is the fixed start time of every test clock so expected
// timestamps can be written as Epoch.Add(...).
var Epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// TestEnv bundles the fully-faked dependency set for handler and
// strategy tests.
type TestEnv struct {
	Params *app.Params
	API    *FakeGameAPI
	Clock  *shared.MockClock
	Queue  *engine.EventQueue
	State  *game.State
}

// NewTestEnv builds params around a fake API, a mock clock at Epoch and
// an empty state. No store is attached; tests that need one use NewTestDB.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	clock := shared.NewMockClock(Epoch)
	log := zap.NewNop()
	queue := engine.NewEventQueue(clock, log)
	state := game.NewState()
	api := NewFakeGameAPI()

	return &TestEnv{
		Params: &app.Params{
			Queue: queue,
			State: state,
			API:   api,
			Clock: clock,
			Log:   log,
		},
		API:   api,
		Clock: clock,
		Queue: queue,
		State: state,
	}
}

// AddShip installs a ship into the state and returns it.
func (e *TestEnv) AddShip(ship *game.Ship) *game.Ship {
	e.State.Lock()
	e.State.Ships[ship.Symbol] = ship
	e.State.Unlock()
	return ship
}

// DrainReady pops every ready event without blocking, in FIFO order.
func (e *TestEnv) DrainReady(t *testing.T) []*engine.Event {
	t.Helper()
	var events []*engine.Event
	for e.Queue.ReadyLen() > 0 {
		ev, err := e.Queue.Get(time.Millisecond)
		if err != nil {
			break
		}
		events = append(events, ev)
	}
	return events
}

// NewTestDB opens an in-memory SQLite database, migrated, torn down with
// the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
