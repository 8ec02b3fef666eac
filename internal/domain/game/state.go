package game

import "sync"

// State is the single shared mutable structure of the process. Handlers
// mutate it and strategies read it, always holding the state lock: one
// coarse lock is enough at the current fleet scale.
type State struct {
	mu sync.Mutex

	Agent     Agent
	Ships     map[string]*Ship
	Contracts map[string]*Contract
	Markets   map[string]*Market
	Waypoints map[string]*Waypoint
	Surveys   *SurveyRegistry
}

// NewState creates an empty game state.
func NewState() *State {
	return &State{
		Ships:     make(map[string]*Ship),
		Contracts: make(map[string]*Contract),
		Markets:   make(map[string]*Market),
		Waypoints: make(map[string]*Waypoint),
		Surveys:   NewSurveyRegistry(),
	}
}

// Lock takes the global state lock.
func (s *State) Lock() {
	s.mu.Lock()
}

// Unlock releases the global state lock.
func (s *State) Unlock() {
	s.mu.Unlock()
}

// Ship returns the ship by symbol. Caller must hold the lock.
func (s *State) Ship(symbol string) (*Ship, bool) {
	ship, ok := s.Ships[symbol]
	return ship, ok
}

// Contract returns the contract by id. Caller must hold the lock.
func (s *State) Contract(id string) (*Contract, bool) {
	contract, ok := s.Contracts[id]
	return contract, ok
}

// MarketsInSystem lists known markets whose waypoint belongs to the system.
// Caller must hold the lock.
func (s *State) MarketsInSystem(systemSymbol string) map[string]*Market {
	markets := make(map[string]*Market)
	for waypoint, market := range s.Markets {
		if SystemOf(waypoint) == systemSymbol {
			markets[waypoint] = market
		}
	}
	return markets
}
