package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/engine"
	"github.com/andrescamacho/helmsman/test/helpers"
)

// Views only render; the contract worth testing is that they are INSTANT
// and never call the remote API.
func TestViewsAreInstantAndOffline(t *testing.T) {
	env := helpers.NewTestEnv(t)
	env.AddShip(dockedShip("HM-1"))
	env.State.Contracts["C-1"] = &game.Contract{ID: "C-1", Accepted: true}
	env.State.Markets["X1-TEST-A1"] = &game.Market{
		WaypointSymbol: "X1-TEST-A1",
		TradeGoods:     []game.TradeGood{{Symbol: "IRON", Supply: "MODERATE", PurchasePrice: 100, SellPrice: 110}},
	}
	h := NewViewHandler(env.Params)

	views := map[string]engine.HandlerFunc{
		"ships":     h.Ships,
		"agent":     h.Agent,
		"contracts": h.Contracts,
		"surveys":   h.Surveys,
		"markets":   h.Markets,
	}
	for name, view := range views {
		ev := &engine.Event{Type: engine.TypeView, Name: name, Payload: engine.ViewPayload{}}
		assert.Equal(t, engine.ResultInstant, view(ev), "view %s", name)
	}
	assert.Empty(t, env.API.Calls())
}
