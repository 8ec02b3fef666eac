package strategies

import (
	"time"

	"go.uber.org/zap"

	"github.com/andrescamacho/helmsman/internal/app"
	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/engine"
)

const (
	// Ships haul once the contract cargo fills this share of the usable hold.
	deliveryFillRatio = 0.8

	// Slack added after a cooldown expiration before the next action fires.
	cooldownSlack = 5 * time.Second

	// Slack added after a navigate arrival before the docking batch fires.
	arrivalSlack = 10 * time.Second
)

// requiredResource tracks one outstanding delivery line.
type requiredResource struct {
	symbol    string
	deliverTo string
	remaining int
}

// contractDelivery is a haul committed by the extract handler: the
// navigate completion turns it into a CONTRACT.deliver batch.
type contractDelivery struct {
	resource string
	units    int
	target   string
	fulfill  bool
}

// ContractStrategy mines one asteroid until a contract's delivery lines
// are fulfilled. It reacts to extract, navigate and survey completions
// for the ships it was assigned, and leaves every other ship alone.
//
// All entry points (assignment operations and completion callbacks) run
// under the state lock, which also guards the strategy-local maps.
type ContractStrategy struct {
	p   *app.Params
	log *zap.Logger

	contractID string
	asteroid   string

	required      []*requiredResource
	assignedShips map[string]bool
	surveyor      string
	signature     string
	complete      bool

	pendingNavigates         map[int64]bool
	pendingExtracts          map[int64]bool
	pendingDeliveryNavigates map[int64]*contractDelivery
}

// NewContractStrategy derives the outstanding deliveries from the
// contract terms and subscribes to the completions it steers on.
func NewContractStrategy(p *app.Params, contractID, asteroid string) *ContractStrategy {
	s := &ContractStrategy{
		p:   p,
		log: p.Log.Named("contract_strategy").With(zap.String("contract", contractID)),

		contractID: contractID,
		asteroid:   asteroid,

		assignedShips:            make(map[string]bool),
		pendingNavigates:         make(map[int64]bool),
		pendingExtracts:          make(map[int64]bool),
		pendingDeliveryNavigates: make(map[int64]*contractDelivery),
	}

	p.State.Lock()
	if contract, ok := p.State.Contract(contractID); ok {
		for _, term := range contract.Deliveries {
			if term.Remaining() <= 0 {
				continue
			}
			s.required = append(s.required, &requiredResource{
				symbol:    term.TradeSymbol,
				deliverTo: term.DestinationSymbol,
				remaining: term.Remaining(),
			})
		}
	}
	p.State.Unlock()

	p.Queue.Subscribe(engine.TypeShip, "extract", s.onExtract)
	p.Queue.Subscribe(engine.TypeShip, "navigate", s.onNavigate)
	p.Queue.Subscribe(engine.TypeShip, "survey", s.onSurvey)
	return s
}

// AssignShip routes the ship to the asteroid and starts its mining loop.
func (s *ContractStrategy) AssignShip(symbol string) {
	s.p.State.Lock()
	defer s.p.State.Unlock()

	s.assignedShips[symbol] = true
	s.restoreShip(symbol)
}

// AssignSurveyor nominates the ship that produces surveys for the rest
// of the pool.
func (s *ContractStrategy) AssignSurveyor(symbol string) {
	s.p.State.Lock()
	defer s.p.State.Unlock()

	s.surveyor = symbol
	s.assignedShips[symbol] = true
	s.restoreShip(symbol)
}

// AssignSurvey pins the survey signature miners extract against. The
// survey must be live and belong to the strategy's asteroid.
func (s *ContractStrategy) AssignSurvey(signature string) {
	s.p.State.Lock()
	defer s.p.State.Unlock()

	if _, ok := s.p.State.Surveys.Get(s.asteroid, signature); !ok {
		s.log.Warn("survey rejected", zap.String("signature", signature))
		return
	}
	s.signature = signature
	s.log.Info("survey pinned", zap.String("signature", signature))
}

// restoreShip puts a newly assigned ship back into the loop from whatever
// state it was left in. Caller holds the state lock.
func (s *ContractStrategy) restoreShip(symbol string) {
	ship, ok := s.p.State.Ship(symbol)
	if !ok {
		s.log.Warn("unknown ship assigned", zap.String("ship", symbol))
		return
	}

	if ship.Nav.WaypointSymbol != s.asteroid {
		events := putBatch(s.p.Queue, orbitSpec(symbol), navigateSpec(symbol, s.asteroid))
		s.pendingNavigates[events[len(events)-1].ID] = true
		return
	}

	if symbol == s.surveyor && s.signature == "" {
		putBatch(s.p.Queue, orbitSpec(symbol), surveySpec(symbol))
		return
	}

	var specs []engine.Spec
	if ship.Nav.Status == game.NavStatusInOrbit {
		specs = append(specs, dockSpec(symbol))
	}
	if ship.Fuel.Current < ship.Fuel.Capacity {
		specs = append(specs, refuelSpec(symbol))
	}
	specs = append(specs, extractSpec(symbol, s.signature))
	events := putBatch(s.p.Queue, specs...)
	s.pendingExtracts[events[len(events)-1].ID] = true
}

// surveyValid reports whether the pinned survey still justifies targeted
// extraction. A complete contract mines opportunistically and no longer
// needs one.
func (s *ContractStrategy) surveyValid() bool {
	if s.complete {
		return true
	}
	if s.signature == "" {
		return false
	}
	_, ok := s.p.State.Surveys.Get(s.asteroid, s.signature)
	return ok
}

// onSurvey reacts to the surveyor's fresh surveys: pin the first one that
// covers an outstanding resource and line up the next extraction, or try
// again after the cooldown.
func (s *ContractStrategy) onSurvey(ev *engine.Event) {
	payload, ok := ev.Payload.(engine.ShipPayload)
	if !ok || payload.Ship != s.surveyor {
		return
	}

	s.p.State.Lock()
	defer s.p.State.Unlock()

	ship, ok := s.p.State.Ship(payload.Ship)
	if !ok {
		return
	}

	s.signature = ""
	for _, survey := range s.p.State.Surveys.AtWaypoint(s.asteroid) {
		for _, resource := range s.required {
			if resource.remaining > 0 && survey.HasDeposit(resource.symbol) {
				s.signature = survey.Signature
				break
			}
		}
		if s.signature != "" {
			break
		}
	}

	if s.signature == "" {
		s.log.Info("no usable survey, retrying after cooldown")
		scheduleBatch(s.p.Queue, ship.Cooldown.Expiration, surveySpec(payload.Ship))
		return
	}

	s.log.Info("survey pinned", zap.String("signature", s.signature))
	when := ship.Cooldown.Expiration.Add(cooldownSlack)
	events := scheduleBatch(s.p.Queue, when,
		dockSpec(payload.Ship),
		extractSpec(payload.Ship, s.signature))
	s.pendingExtracts[events[len(events)-1].ID] = true
}

// onExtract drives the core mining loop: sell the junk, count the
// contract cargo, and either keep mining or send the ship on a delivery
// run once the hold is full enough.
func (s *ContractStrategy) onExtract(ev *engine.Event) {
	payload, ok := ev.Payload.(engine.ExtractPayload)
	if !ok {
		return
	}

	s.p.State.Lock()
	defer s.p.State.Unlock()

	if !s.pendingExtracts[ev.ID] {
		return
	}
	delete(s.pendingExtracts, ev.ID)
	ship, ok := s.p.State.Ship(payload.Ship)
	if !ok {
		return
	}

	deliveryThreshold := int(deliveryFillRatio * float64(ship.Cargo.Capacity-ship.Cargo.ReservedUnits()))

	contractItems := make(map[string]int)
	for _, item := range ship.Cargo.Inventory {
		if game.IsReserved(item.Symbol) {
			continue
		}
		if s.requiredResource(item.Symbol) != nil {
			contractItems[item.Symbol] += item.Units
			continue
		}
		putBatch(s.p.Queue, sellSpec(payload.Ship, item.Symbol, item.Units))
	}

	var delivery *contractDelivery
	for _, resource := range s.required {
		if resource.remaining <= 0 || contractItems[resource.symbol] < deliveryThreshold {
			continue
		}
		units := contractItems[resource.symbol]
		if resource.remaining < units {
			units = resource.remaining
		}
		resource.remaining -= units
		delivery = &contractDelivery{
			resource: resource.symbol,
			units:    units,
			target:   resource.deliverTo,
		}
		// One resource per trip.
		break
	}

	if delivery != nil && s.outstanding() == 0 {
		s.complete = true
		delivery.fulfill = true
		s.log.Info("final delivery scheduled")
	}

	when := ship.Cooldown.Expiration.Add(cooldownSlack)

	if delivery == nil {
		if s.signature != "" && !s.surveyValid() {
			s.signature = ""
		}
		if payload.Ship == s.surveyor {
			scheduleBatch(s.p.Queue, when, surveySpec(payload.Ship))
			return
		}
		events := scheduleBatch(s.p.Queue, when, extractSpec(payload.Ship, s.signature))
		s.pendingExtracts[events[0].ID] = true
		return
	}

	events := scheduleBatch(s.p.Queue, when,
		orbitSpec(payload.Ship),
		navigateSpec(payload.Ship, delivery.target))
	s.pendingDeliveryNavigates[events[len(events)-1].ID] = delivery
	s.log.Info("delivery run",
		zap.String("ship", payload.Ship),
		zap.String("resource", delivery.resource),
		zap.Int("units", delivery.units))
}

// onNavigate completes either leg of a delivery trip. Arrivals are acted
// on a little after the reported arrival time so the remote has settled.
func (s *ContractStrategy) onNavigate(ev *engine.Event) {
	payload, ok := ev.Payload.(engine.NavigatePayload)
	if !ok {
		return
	}

	s.p.State.Lock()
	defer s.p.State.Unlock()

	if delivery, ok := s.pendingDeliveryNavigates[ev.ID]; ok {
		delete(s.pendingDeliveryNavigates, ev.ID)
		s.deliveryArrival(payload.Ship, delivery)
		return
	}
	if s.pendingNavigates[ev.ID] {
		delete(s.pendingNavigates, ev.ID)
		s.miningArrival(payload.Ship)
	}
}

// deliveryArrival schedules the turn-in batch at the delivery waypoint and
// the return navigate to the asteroid. Caller holds the state lock.
func (s *ContractStrategy) deliveryArrival(symbol string, delivery *contractDelivery) {
	ship, ok := s.p.State.Ship(symbol)
	if !ok {
		return
	}
	arrival := ship.Nav.Route.Arrival.Add(arrivalSlack)

	specs := []engine.Spec{
		dockSpec(symbol),
		refuelSpec(symbol),
		deliverSpec(s.contractID, symbol, delivery.resource, delivery.units),
	}
	if delivery.fulfill {
		specs = append(specs, fulfillSpec(s.contractID))
	}
	specs = append(specs, orbitSpec(symbol), navigateSpec(symbol, s.asteroid))

	events := scheduleBatch(s.p.Queue, arrival, specs...)
	s.pendingNavigates[events[len(events)-1].ID] = true
}

// miningArrival resumes extraction once the ship is back at the asteroid.
// Caller holds the state lock.
func (s *ContractStrategy) miningArrival(symbol string) {
	ship, ok := s.p.State.Ship(symbol)
	if !ok {
		return
	}
	arrival := ship.Nav.Route.Arrival.Add(arrivalSlack)

	events := scheduleBatch(s.p.Queue, arrival,
		dockSpec(symbol),
		refuelSpec(symbol),
		extractSpec(symbol, s.signature))
	s.pendingExtracts[events[len(events)-1].ID] = true
}

// requiredResource returns the outstanding line for symbol, or nil.
func (s *ContractStrategy) requiredResource(symbol string) *requiredResource {
	for _, resource := range s.required {
		if resource.symbol == symbol {
			return resource
		}
	}
	return nil
}

// outstanding sums the units still owed across all delivery lines.
func (s *ContractStrategy) outstanding() int {
	total := 0
	for _, resource := range s.required {
		total += resource.remaining
	}
	return total
}
