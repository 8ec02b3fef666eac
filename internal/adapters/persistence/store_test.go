package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrescamacho/helmsman/internal/adapters/persistence"
	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/domain/ports"
	"github.com/andrescamacho/helmsman/test/helpers"
)

func newStore(t *testing.T) *persistence.GormStore {
	t.Helper()
	return persistence.NewGormStore(helpers.NewTestDB(t))
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	err := store.SaveSnapshot(ctx, ports.SnapshotMarket, "X1-TEST-A1", []byte(`{"price":100}`))
	require.NoError(t, err)

	blob, err := store.LoadSnapshot(ctx, ports.SnapshotMarket, "X1-TEST-A1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":100}`, string(blob))
}

func TestSnapshotUpsertReplacesBlob(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSnapshot(ctx, ports.SnapshotMarket, "X1-TEST-A1", []byte(`{"price":100}`)))
	require.NoError(t, store.SaveSnapshot(ctx, ports.SnapshotMarket, "X1-TEST-A1", []byte(`{"price":140}`)))

	blob, err := store.LoadSnapshot(ctx, ports.SnapshotMarket, "X1-TEST-A1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":140}`, string(blob))
}

func TestSnapshotKindsDoNotCollide(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSnapshot(ctx, ports.SnapshotMarket, "X1-TEST-A1", []byte(`"market"`)))
	require.NoError(t, store.SaveSnapshot(ctx, ports.SnapshotWaypoint, "X1-TEST-A1", []byte(`"waypoint"`)))

	blob, err := store.LoadSnapshot(ctx, ports.SnapshotWaypoint, "X1-TEST-A1")
	require.NoError(t, err)
	assert.Equal(t, `"waypoint"`, string(blob))
}

func TestLoadSnapshotMissingKey(t *testing.T) {
	store := newStore(t)

	_, err := store.LoadSnapshot(context.Background(), ports.SnapshotMarket, "NOPE")

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestWaypointRoundTripBySystem(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	err := store.SaveWaypoints(ctx, []*game.Waypoint{
		{Symbol: "X1-TEST-A1", SystemSymbol: "X1-TEST", Type: "PLANET", X: 10, Y: -4, Traits: []string{game.TraitMarketplace}},
		{Symbol: "X1-TEST-B2", SystemSymbol: "X1-TEST", Type: "ASTEROID_FIELD", X: 30, Y: 8},
		{Symbol: "X1-OTHER-C3", SystemSymbol: "X1-OTHER", Type: "MOON"},
	})
	require.NoError(t, err)

	waypoints, err := store.LoadWaypoints(ctx, "X1-TEST")
	require.NoError(t, err)
	require.Len(t, waypoints, 2)

	bySymbol := make(map[string]*game.Waypoint)
	for _, wp := range waypoints {
		bySymbol[wp.Symbol] = wp
	}
	require.Contains(t, bySymbol, "X1-TEST-A1")
	assert.True(t, bySymbol["X1-TEST-A1"].HasTrait(game.TraitMarketplace))
	assert.Equal(t, 10.0, bySymbol["X1-TEST-A1"].X)
}

func TestWaypointUpsertUpdatesCoordinates(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveWaypoints(ctx, []*game.Waypoint{
		{Symbol: "X1-TEST-A1", SystemSymbol: "X1-TEST", X: 1, Y: 1},
	}))
	require.NoError(t, store.SaveWaypoints(ctx, []*game.Waypoint{
		{Symbol: "X1-TEST-A1", SystemSymbol: "X1-TEST", X: 5, Y: 9, Traits: []string{game.TraitShipyard}},
	}))

	waypoints, err := store.LoadWaypoints(ctx, "X1-TEST")
	require.NoError(t, err)
	require.Len(t, waypoints, 1)
	assert.Equal(t, 5.0, waypoints[0].X)
	assert.Equal(t, 9.0, waypoints[0].Y)
	assert.True(t, waypoints[0].HasTrait(game.TraitShipyard))
}

func TestSaveWaypointsEmptyBatchIsNoOp(t *testing.T) {
	store := newStore(t)

	assert.NoError(t, store.SaveWaypoints(context.Background(), nil))
}

func TestSurveyRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	expiration := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)

	err := store.SaveSurvey(ctx, &game.Survey{
		Signature:      "SIG-1",
		WaypointSymbol: "X1-TEST-AST",
		Deposits:       []string{"IRON_ORE", "ICE_WATER"},
		Size:           "LARGE",
		Expiration:     expiration,
	})
	require.NoError(t, err)

	survey, err := store.LoadSurvey(ctx, "SIG-1")
	require.NoError(t, err)
	assert.Equal(t, "X1-TEST-AST", survey.WaypointSymbol)
	assert.Equal(t, []string{"IRON_ORE", "ICE_WATER"}, survey.Deposits)
	assert.True(t, survey.Expiration.Equal(expiration))
}

func TestRecordTradeTransaction(t *testing.T) {
	store := newStore(t)

	err := store.RecordTradeTransaction(context.Background(), &ports.TradeTransaction{
		ID:           uuid.NewString(),
		ShipSymbol:   "HM-1",
		Waypoint:     "X1-TEST-A1",
		TradeSymbol:  "IRON",
		Side:         "SELL",
		Units:        60,
		PricePerUnit: 140,
		TotalPrice:   8400,
		Timestamp:    time.Now().UTC(),
	})

	assert.NoError(t, err)
}
