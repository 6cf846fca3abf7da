// Package erased defines the bytes-only environment contract the engine
// service dispatches through. No environment-specific generic type leaks
// past this package; every environment, regardless of its typed state,
// action and observation shapes, is exposed here as the same interface.
package erased

import "github.com/gocnn/cartridge/env"

// ErrorKind enumerates the erased-layer error taxonomy. Strings carried in
// Error are diagnostic only; callers must dispatch on Kind.
type ErrorKind int

const (
	Encoding ErrorKind = iota
	Decoding
	InvalidState
	InvalidAction
	GameLogic
)

func (k ErrorKind) String() string {
	switch k {
	case Encoding:
		return "Encoding"
	case Decoding:
		return "Decoding"
	case InvalidState:
		return "InvalidState"
	case InvalidAction:
		return "InvalidAction"
	case GameLogic:
		return "GameLogic"
	default:
		return "Unknown"
	}
}

// Error is the erased-layer error type; its Kind is the only thing callers
// should branch on.
type Error struct {
	Kind   ErrorKind
	Reason string
}

func (e *Error) Error() string {
	return k2s(e.Kind) + ": " + e.Reason
}

func k2s(k ErrorKind) string { return k.String() }

// Game is the polymorphic, bytes-only capability set a Registry factory
// produces and the engine service dispatches through.
type Game interface {
	EngineID() env.EngineId
	Capabilities() env.Capabilities

	// Reset must clear both outState and outObs before writing to them.
	Reset(seed uint64, hint []byte, outState, outObs *[]byte) error

	// Step must clear both outState and outObs before writing to them. It
	// reads state and action as opaque blobs, decoding them internally.
	Step(state, action []byte, outState, outObs *[]byte) (reward float32, done bool, err error)
}

// InfoProvider is an optional capability a Game may implement to expose the
// u64 side-channel value of its most recent Reset/Step call. The engine
// service type-asserts for this after every call and reports 0 when it is
// absent.
type InfoProvider interface {
	Info() uint64
}
