package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/helmsman/internal/engine"
)

func TestParseShipCommands(t *testing.T) {
	tests := []struct {
		line string
		want engine.Spec
	}{
		{
			line: "ships dock HM-1",
			want: engine.Spec{Type: engine.TypeShip, Name: "dock", Payload: engine.ShipPayload{Ship: "HM-1"}},
		},
		{
			line: "ships navigate HM-1 X1-TEST-B2",
			want: engine.Spec{Type: engine.TypeShip, Name: "navigate", Payload: engine.NavigatePayload{Ship: "HM-1", Waypoint: "X1-TEST-B2"}},
		},
		{
			line: "ships extract HM-1",
			want: engine.Spec{Type: engine.TypeShip, Name: "extract", Payload: engine.ExtractPayload{Ship: "HM-1"}},
		},
		{
			line: "ships extract HM-1 SIG-1",
			want: engine.Spec{Type: engine.TypeShip, Name: "extract", Payload: engine.ExtractPayload{Ship: "HM-1", SurveySignature: "SIG-1"}},
		},
		{
			line: "ships sell_cargo_item HM-1 IRON_ORE -1",
			want: engine.Spec{Type: engine.TypeShip, Name: "sell_cargo_item", Payload: engine.CargoPayload{Ship: "HM-1", Resource: "IRON_ORE", Units: -1}},
		},
		{
			line: "ships flight_mode HM-1 burn",
			want: engine.Spec{Type: engine.TypeShip, Name: "flight_mode", Payload: engine.FlightModePayload{Ship: "HM-1", Mode: "BURN"}},
		},
		{
			line: "ships fetch_all",
			want: engine.Spec{Type: engine.TypeShip, Name: "fetch_all"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			spec, err := ParseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec)
		})
	}
}

func TestParseContractCommands(t *testing.T) {
	spec, err := ParseCommand("contracts deliver C-1 HM-1 IRON_ORE 48")
	require.NoError(t, err)
	assert.Equal(t, engine.DeliverPayload{ContractID: "C-1", Ship: "HM-1", Resource: "IRON_ORE", Units: 48}, spec.Payload)

	spec, err = ParseCommand("contracts strategy C-1 X1-TEST-AST")
	require.NoError(t, err)
	assert.Equal(t, engine.ContractStrategyPayload{ContractID: "C-1", Asteroid: "X1-TEST-AST"}, spec.Payload)

	spec, err = ParseCommand("contracts assign_strategy_ship C-1 HM-1")
	require.NoError(t, err)
	assert.Equal(t, engine.AssignShipPayload{ContractID: "C-1", Ship: "HM-1"}, spec.Payload)
}

func TestParseStrategyCommands(t *testing.T) {
	spec, err := ParseCommand("strategy trade HM-T1")
	require.NoError(t, err)
	assert.Equal(t, engine.TradeAssignPayload{Ship: "HM-T1"}, spec.Payload)

	spec, err = ParseCommand("strategy trade HM-T1 IRON X1-TEST-A1 X1-TEST-B2")
	require.NoError(t, err)
	assert.Equal(t, engine.TradeAssignPayload{
		Ship: "HM-T1", Resource: "IRON", Source: "X1-TEST-A1", Target: "X1-TEST-B2",
	}, spec.Payload)

	spec, err = ParseCommand("strategy market_update HM-S1 X1-TEST")
	require.NoError(t, err)
	assert.Equal(t, engine.MarketUpdatePayload{Ship: "HM-S1", System: "X1-TEST"}, spec.Payload)

	spec, err = ParseCommand("strategy trade_routes")
	require.NoError(t, err)
	assert.Nil(t, spec.Payload)
}

func TestParseViewAndDefaultCommands(t *testing.T) {
	spec, err := ParseCommand("view surveys X1-TEST-AST")
	require.NoError(t, err)
	assert.Equal(t, engine.TypeView, spec.Type)
	assert.Equal(t, engine.ViewPayload{Args: []string{"X1-TEST-AST"}}, spec.Payload)

	spec, err = ParseCommand("default exit")
	require.NoError(t, err)
	assert.Equal(t, engine.TypeDefault, spec.Type)
	assert.Equal(t, engine.ExitEvent, spec.Name)
	assert.Nil(t, spec.Payload)
}

func TestParseCaseInsensitiveTypeAndName(t *testing.T) {
	spec, err := ParseCommand("SHIPS DOCK HM-1")
	require.NoError(t, err)
	assert.Equal(t, engine.TypeShip, spec.Type)
	assert.Equal(t, "dock", spec.Name)
	// Arguments keep their case: ship symbols are case-sensitive.
	assert.Equal(t, engine.ShipPayload{Ship: "HM-1"}, spec.Payload)
}

func TestParseErrors(t *testing.T) {
	lines := []string{
		"",
		"ships",
		"warp dock HM-1",
		"ships teleport HM-1",
		"ships navigate HM-1",
		"ships sell_cargo_item HM-1 IRON_ORE lots",
		"contracts deliver C-1 HM-1 IRON_ORE",
		"strategy trade",
	}
	for _, line := range lines {
		_, err := ParseCommand(line)
		assert.Error(t, err, "line %q", line)
	}
}
