package engine

import (
	"github.com/gocnn/cartridge/adapter"
	"github.com/gocnn/cartridge/erased"
	"github.com/gocnn/cartridge/games/tictactoe"
	"github.com/gocnn/cartridge/registry"
)

// RegisterBuiltins enumerates the set of built-in environments this binary
// ships. Called exactly once at service start, before the service accepts
// connections.
func RegisterBuiltins(reg *registry.Registry) {
	reg.Register("tictactoe", func() erased.Game {
		return adapter.New[tictactoe.State, tictactoe.Action, tictactoe.Observation](tictactoe.New())
	})
}
