package ports

import (
	"context"
	"time"

	"github.com/andrescamacho/helmsman/internal/domain/game"
)

// Snapshot kinds written by the caching handlers.
const (
	SnapshotSurvey   = "survey"
	SnapshotMarket   = "market"
	SnapshotWaypoint = "waypoint"
	SnapshotShipyard = "shipyard"
	SnapshotSystem   = "system"
	SnapshotJumpGate = "jump_gate"
)

// TradeTransaction is one executed buy or sell, recorded for bookkeeping.
type TradeTransaction struct {
	ID           string
	ShipSymbol   string
	Waypoint     string
	TradeSymbol  string
	Side         string // BUY or SELL
	Units        int
	PricePerUnit int
	TotalPrice   int
	Timestamp    time.Time
}

// Store is the optional persistence port. Handlers that cache (survey,
// fetch_market, system waypoints, shipyard, system, jump_gate) write;
// strategies read waypoints for a system.
type Store interface {
	// Blob snapshots keyed by (kind, symbol).
	SaveSnapshot(ctx context.Context, kind, key string, blob []byte) error
	LoadSnapshot(ctx context.Context, kind, key string) ([]byte, error)

	// Relational records.
	SaveWaypoints(ctx context.Context, waypoints []*game.Waypoint) error
	LoadWaypoints(ctx context.Context, systemSymbol string) ([]*game.Waypoint, error)
	SaveSurvey(ctx context.Context, survey *game.Survey) error
	LoadSurvey(ctx context.Context, signature string) (*game.Survey, error)
	RecordTradeTransaction(ctx context.Context, tx *TradeTransaction) error
}
