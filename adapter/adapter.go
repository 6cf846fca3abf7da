// Package adapter wraps a typed environment (env.Game) and presents it as
// an erased.Game. It owns the wrapped environment exclusively and owns the
// one deterministic PRNG the environment runs against, so that RNG
// progression survives across separate erased Reset/Step calls exactly as
// it would across direct calls into the typed interface.
package adapter

import (
	"github.com/gocnn/cartridge/env"
	"github.com/gocnn/cartridge/erased"
	"github.com/gocnn/cartridge/rand"
)

// placeholderSeed is the fixed seed an Adapter's RNG is constructed with,
// before any Reset has run. The first Reset always reseeds before invoking
// the inner environment, so this value is never observed by a game.
const placeholderSeed uint64 = 0

// Adapter wraps a typed env.Game[State, Action, Obs] and presents it as an
// erased.Game. It is not safe for concurrent use; the engine service
// serialises calls per cache slot, and one Adapter lives inside one slot.
type Adapter[State, Action, Obs any] struct {
	game     env.Game[State, Action, Obs]
	rng      *rand.RNG
	infoSrc  env.InfoSource[State]
	lastInfo uint64
}

// New wraps game, seeding its RNG with the placeholder seed until the first
// Reset supplies a real one. If game also implements
// env.InfoSource[State], the adapter exposes it through erased.InfoProvider.
func New[State, Action, Obs any](game env.Game[State, Action, Obs]) *Adapter[State, Action, Obs] {
	a := &Adapter[State, Action, Obs]{
		game: game,
		rng:  rand.New(placeholderSeed),
	}
	if src, ok := any(game).(env.InfoSource[State]); ok {
		a.infoSrc = src
	}
	return a
}

// Info returns the side-channel value attached to the most recent
// Reset/Step, or 0 if the wrapped game has no InfoSource.
func (a *Adapter[State, Action, Obs]) Info() uint64 {
	return a.lastInfo
}

func (a *Adapter[State, Action, Obs]) EngineID() env.EngineId {
	return a.game.EngineID()
}

func (a *Adapter[State, Action, Obs]) Capabilities() env.Capabilities {
	return a.game.Capabilities()
}

// Reset reseeds the RNG from seed, clears the output buffers, calls the
// inner environment's Reset, then encodes the resulting state and
// observation into the now-empty output buffers.
func (a *Adapter[State, Action, Obs]) Reset(seed uint64, hint []byte, outState, outObs *[]byte) error {
	a.rng.Reseed(seed)
	*outState = (*outState)[:0]
	*outObs = (*outObs)[:0]

	state, obs, err := a.game.Reset(a.rng, hint)
	if err != nil {
		return &erased.Error{Kind: erased.GameLogic, Reason: err.Error()}
	}

	encState, err := a.game.EncodeState(state, *outState)
	if err != nil {
		return &erased.Error{Kind: erased.Encoding, Reason: err.Error()}
	}
	*outState = encState

	encObs, err := a.game.EncodeObs(obs, *outObs)
	if err != nil {
		return &erased.Error{Kind: erased.Encoding, Reason: err.Error()}
	}
	*outObs = encObs

	if a.infoSrc != nil {
		a.lastInfo = a.infoSrc.Info(state)
	}

	return nil
}

// Step clears the output buffers, decodes state and action, calls the
// inner environment's Step with the same RNG instance used across the
// episode (never reseeded here), and encodes the resulting state and
// observation.
func (a *Adapter[State, Action, Obs]) Step(stateBytes, actionBytes []byte, outState, outObs *[]byte) (float32, bool, error) {
	*outState = (*outState)[:0]
	*outObs = (*outObs)[:0]

	state, err := a.game.DecodeState(stateBytes)
	if err != nil {
		return 0, false, &erased.Error{Kind: erased.Decoding, Reason: err.Error()}
	}
	action, err := a.game.DecodeAction(actionBytes)
	if err != nil {
		return 0, false, &erased.Error{Kind: erased.Decoding, Reason: err.Error()}
	}

	obs, reward, done, err := a.game.Step(&state, action, a.rng)
	if err != nil {
		return 0, false, &erased.Error{Kind: erased.GameLogic, Reason: err.Error()}
	}

	encState, err := a.game.EncodeState(state, *outState)
	if err != nil {
		return 0, false, &erased.Error{Kind: erased.Encoding, Reason: err.Error()}
	}
	*outState = encState

	encObs, err := a.game.EncodeObs(obs, *outObs)
	if err != nil {
		return 0, false, &erased.Error{Kind: erased.Encoding, Reason: err.Error()}
	}
	*outObs = encObs

	if a.infoSrc != nil {
		a.lastInfo = a.infoSrc.Info(state)
	}

	return reward, done, nil
}

var (
	_ erased.Game         = (*Adapter[struct{}, struct{}, struct{}])(nil)
	_ erased.InfoProvider = (*Adapter[struct{}, struct{}, struct{}])(nil)
)
