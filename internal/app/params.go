package app

import (
	"go.uber.org/zap"

	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/domain/ports"
	"github.com/andrescamacho/helmsman/internal/domain/shared"
	"github.com/andrescamacho/helmsman/internal/engine"
)

// Params is the shared context record handed to every handler and
// strategy. There are no true globals so tests can substitute any part.
type Params struct {
	Queue *engine.EventQueue
	State *game.State
	API   ports.GameAPI
	Store ports.Store // optional; nil disables persistence
	Clock shared.Clock
	Log   *zap.Logger
}
