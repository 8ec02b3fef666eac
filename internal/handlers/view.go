package handlers

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/andrescamacho/helmsman/internal/app"
	"github.com/andrescamacho/helmsman/internal/engine"
)

// ViewHandler renders read-only console views of the game state. Views
// never touch the remote API: every handler is INSTANT. The REPL runs
// them synchronously on the reader thread, bypassing the worker.
type ViewHandler struct {
	p *app.Params
}

// NewViewHandler creates the view handler.
func NewViewHandler(p *app.Params) *ViewHandler {
	return &ViewHandler{p: p}
}

// Register binds the view event names.
func (h *ViewHandler) Register(reg *engine.Registry) {
	reg.Register(engine.TypeView, "ships", h.Ships)
	reg.Register(engine.TypeView, "agent", h.Agent)
	reg.Register(engine.TypeView, "contracts", h.Contracts)
	reg.Register(engine.TypeView, "surveys", h.Surveys)
	reg.Register(engine.TypeView, "markets", h.Markets)
}

// Ships prints a fleet table.
func (h *ViewHandler) Ships(ev *engine.Event) engine.Result {
	h.p.State.Lock()
	defer h.p.State.Unlock()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SHIP\tSTATUS\tWAYPOINT\tFUEL\tCARGO\tCOOLDOWN")
	symbols := make([]string, 0, len(h.p.State.Ships))
	for symbol := range h.p.State.Ships {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	for _, symbol := range symbols {
		ship := h.p.State.Ships[symbol]
		cooldown := "-"
		if ship.Cooldown.Active(h.p.Clock.Now()) {
			cooldown = ship.Cooldown.Expiration.Format("15:04:05")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%d/%d\t%s\n",
			ship.Symbol, ship.Nav.Status, ship.Nav.WaypointSymbol,
			ship.Fuel.Current, ship.Fuel.Capacity,
			ship.Cargo.TotalUnits(), ship.Cargo.Capacity, cooldown)
	}
	w.Flush()
	return engine.ResultInstant
}

// Agent prints the account line.
func (h *ViewHandler) Agent(ev *engine.Event) engine.Result {
	h.p.State.Lock()
	defer h.p.State.Unlock()

	agent := h.p.State.Agent
	fmt.Printf("Agent %s | HQ %s | credits %d\n", agent.Symbol, agent.Headquarters, agent.Credits)
	return engine.ResultInstant
}

// Contracts prints every known contract with its delivery progress.
func (h *ViewHandler) Contracts(ev *engine.Event) engine.Result {
	h.p.State.Lock()
	defer h.p.State.Unlock()

	for _, contract := range h.p.State.Contracts {
		status := "pending"
		if contract.Fulfilled {
			status = "fulfilled"
		} else if contract.Accepted {
			status = "accepted"
		}
		fmt.Printf("%s [%s] deadline %s\n", contract.ID, status, contract.Deadline.Format("2006-01-02 15:04"))
		for _, term := range contract.Deliveries {
			fmt.Printf("  %s -> %s: %d/%d\n",
				term.TradeSymbol, term.DestinationSymbol, term.UnitsFulfilled, term.UnitsRequired)
		}
	}
	return engine.ResultInstant
}

// Surveys prints the live surveys, if a waypoint argument is given only
// that asteroid's.
func (h *ViewHandler) Surveys(ev *engine.Event) engine.Result {
	payload, _ := ev.Payload.(engine.ViewPayload)

	h.p.State.Lock()
	defer h.p.State.Unlock()

	waypoints := make([]string, 0)
	if len(payload.Args) > 0 {
		waypoints = append(waypoints, payload.Args[0])
	} else {
		for symbol := range h.p.State.Waypoints {
			waypoints = append(waypoints, symbol)
		}
	}
	for _, waypoint := range waypoints {
		for _, survey := range h.p.State.Surveys.AtWaypoint(waypoint) {
			fmt.Printf("%s @ %s (%s) expires %s deposits %v\n",
				survey.Signature, survey.WaypointSymbol, survey.Size,
				survey.Expiration.Format("15:04:05"), survey.Deposits)
		}
	}
	return engine.ResultInstant
}

// Markets prints the cached price sheets.
func (h *ViewHandler) Markets(ev *engine.Event) engine.Result {
	h.p.State.Lock()
	defer h.p.State.Unlock()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WAYPOINT\tGOOD\tSUPPLY\tBUY\tSELL")
	for waypoint, market := range h.p.State.Markets {
		for _, good := range market.TradeGoods {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
				waypoint, good.Symbol, good.Supply, good.PurchasePrice, good.SellPrice)
		}
	}
	w.Flush()
	return engine.ResultInstant
}
