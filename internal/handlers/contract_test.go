package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/engine"
	"github.com/andrescamacho/helmsman/test/helpers"
)

func TestContractFetchAllReplacesMap(t *testing.T) {
	env := helpers.NewTestEnv(t)
	env.State.Contracts["OLD"] = &game.Contract{ID: "OLD"}
	env.API.Contracts = []*game.Contract{{ID: "C-1"}, {ID: "C-2"}}
	h := NewContractHandler(env.Params)

	result := h.FetchAll(&engine.Event{Type: engine.TypeContract, Name: "fetch_all"})

	assert.Equal(t, engine.ResultSuccess, result)
	assert.Len(t, env.State.Contracts, 2)
	_, stale := env.State.Contract("OLD")
	assert.False(t, stale)
}

func TestAcceptStoresContractAndAgent(t *testing.T) {
	env := helpers.NewTestEnv(t)
	env.API.ContractsByID["C-1"] = &game.Contract{ID: "C-1", Accepted: true, PaymentOnAccept: 10000}
	env.API.Agent = game.Agent{Symbol: "HM", Credits: 110000}
	h := NewContractHandler(env.Params)

	result := h.Accept(&engine.Event{
		Type:    engine.TypeContract,
		Name:    "accept",
		Payload: engine.ContractPayload{ContractID: "C-1"},
	})

	assert.Equal(t, engine.ResultSuccess, result)
	contract, ok := env.State.Contract("C-1")
	assert.True(t, ok)
	assert.True(t, contract.Accepted)
	assert.Equal(t, 110000, env.State.Agent.Credits)
}

func TestDeliverUpdatesContractAndShipCargo(t *testing.T) {
	env := helpers.NewTestEnv(t)
	ship := env.AddShip(dockedShip("HM-1"))
	ship.Cargo.Inventory = []game.CargoItem{{Symbol: "IRON_ORE", Units: 48}}
	ship.Cargo.Units = 48
	env.API.ContractsByID["C-1"] = &game.Contract{
		ID: "C-1",
		Deliveries: []game.ContractDeliverTerm{
			{TradeSymbol: "IRON_ORE", DestinationSymbol: "X1-TEST-A1", UnitsRequired: 100, UnitsFulfilled: 48},
		},
	}
	env.API.CargoAfterTrade = game.Cargo{Capacity: 60}
	h := NewContractHandler(env.Params)

	result := h.Deliver(&engine.Event{
		Type:    engine.TypeContract,
		Name:    "deliver",
		Payload: engine.DeliverPayload{ContractID: "C-1", Ship: "HM-1", Resource: "IRON_ORE", Units: 48},
	})

	assert.Equal(t, engine.ResultSuccess, result)
	assert.Equal(t, []string{"deliver_contract C-1 HM-1 IRON_ORE 48"}, env.API.Calls())
	contract, _ := env.State.Contract("C-1")
	assert.Equal(t, 52, contract.Deliveries[0].Remaining())
	assert.Equal(t, 0, ship.Cargo.TotalUnits())
}

func TestFulfillMarksContractFulfilled(t *testing.T) {
	env := helpers.NewTestEnv(t)
	env.API.ContractsByID["C-1"] = &game.Contract{ID: "C-1", Accepted: true}
	h := NewContractHandler(env.Params)

	result := h.Fulfill(&engine.Event{
		Type:    engine.TypeContract,
		Name:    "fulfill",
		Payload: engine.ContractPayload{ContractID: "C-1"},
	})

	assert.Equal(t, engine.ResultSuccess, result)
	contract, _ := env.State.Contract("C-1")
	assert.True(t, contract.Fulfilled)
}

func TestDeliverSkipsOnWrongPayload(t *testing.T) {
	env := helpers.NewTestEnv(t)
	h := NewContractHandler(env.Params)

	result := h.Deliver(&engine.Event{Type: engine.TypeContract, Name: "deliver", Payload: "bogus"})

	assert.Equal(t, engine.ResultSkip, result)
	assert.Empty(t, env.API.Calls())
}
