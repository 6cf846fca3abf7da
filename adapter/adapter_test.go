package adapter

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gocnn/cartridge/env"
	"github.com/gocnn/cartridge/erased"
)

// counterGame is a minimal env.Game[int, int, int] used to exercise the
// adapter without pulling in the reference environment. State and
// observation are both the running total; an action is the signed delta to
// apply. Reset draws one value from rng so tests can assert seeding worked.
type counterGame struct{}

func (counterGame) EngineID() env.EngineId {
	return env.EngineId{EnvID: "counter", BuildID: "test"}
}

func (counterGame) Capabilities() env.Capabilities {
	return env.Capabilities{
		ID:          env.EngineId{EnvID: "counter", BuildID: "test"},
		ActionSpace: env.ActionSpace{Kind: env.Discrete, N: 3},
	}
}

func (counterGame) Reset(rng env.RNG, _ []byte) (int, int, error) {
	start := int(rng.Uint32N(1000))
	return start, start, nil
}

func (counterGame) Step(state *int, action int, _ env.RNG) (int, float32, bool, error) {
	*state += action
	done := *state >= 10
	return *state, 1.0, done, nil
}

func (counterGame) EncodeState(s int, out []byte) ([]byte, error) {
	return binary.LittleEndian.AppendUint32(out, uint32(s)), nil
}

func (counterGame) DecodeState(b []byte) (int, error) {
	if len(b) != 4 {
		return 0, &env.DecodeError{Kind: env.InvalidLength, Expected: 4, Actual: len(b)}
	}
	return int(binary.LittleEndian.Uint32(b)), nil
}

func (counterGame) EncodeAction(a int, out []byte) ([]byte, error) {
	return binary.LittleEndian.AppendUint32(out, uint32(a)), nil
}

func (counterGame) DecodeAction(b []byte) (int, error) {
	if len(b) != 4 {
		return 0, &env.DecodeError{Kind: env.InvalidLength, Expected: 4, Actual: len(b)}
	}
	return int(binary.LittleEndian.Uint32(b)), nil
}

func (counterGame) EncodeObs(o int, out []byte) ([]byte, error) {
	return binary.LittleEndian.AppendUint32(out, uint32(o)), nil
}

// infoCounterGame additionally implements env.InfoSource[int].
type infoCounterGame struct{ counterGame }

func (infoCounterGame) Info(s int) uint64 { return uint64(s) * 2 }

func TestAdapterImplementsErasedGame(t *testing.T) {
	var _ erased.Game = New[int, int, int](counterGame{})
}

func TestResetIsDeterministicForSameSeed(t *testing.T) {
	a1 := New[int, int, int](counterGame{})
	a2 := New[int, int, int](counterGame{})

	var state1, obs1, state2, obs2 []byte
	require.NoError(t, a1.Reset(42, nil, &state1, &obs1))
	require.NoError(t, a2.Reset(42, nil, &state2, &obs2))

	require.Equal(t, state1, state2)
	require.Equal(t, obs1, obs2)
}

func TestStepAdvancesEncodedState(t *testing.T) {
	a := New[int, int, int](counterGame{})
	var state, obs []byte
	require.NoError(t, a.Reset(1, nil, &state, &obs))

	action := binary.LittleEndian.AppendUint32(nil, 3)
	var nextState, nextObs []byte
	reward, done, err := a.Step(state, action, &nextState, &nextObs)
	require.NoError(t, err)
	require.Equal(t, float32(1.0), reward)
	require.False(t, done)

	before := binary.LittleEndian.Uint32(state)
	after := binary.LittleEndian.Uint32(nextState)
	require.Equal(t, before+3, after)
}

func TestStepDecodeErrorWrapsAsErasedDecoding(t *testing.T) {
	a := New[int, int, int](counterGame{})
	var state, obs []byte
	require.NoError(t, a.Reset(1, nil, &state, &obs))

	var nextState, nextObs []byte
	_, _, err := a.Step(state, []byte{1, 2}, &nextState, &nextObs)
	require.Error(t, err)

	erasedErr, ok := err.(*erased.Error)
	require.True(t, ok)
	require.Equal(t, erased.Decoding, erasedErr.Kind)
}

func TestInfoReturnsZeroWithoutInfoSource(t *testing.T) {
	a := New[int, int, int](counterGame{})
	var state, obs []byte
	require.NoError(t, a.Reset(1, nil, &state, &obs))
	require.Equal(t, uint64(0), a.Info())
}

func TestInfoReturnsValueFromInfoSource(t *testing.T) {
	a := New[int, int, int](infoCounterGame{})
	var state, obs []byte
	require.NoError(t, a.Reset(1, nil, &state, &obs))

	decoded := binary.LittleEndian.Uint32(state)
	require.Equal(t, uint64(decoded)*2, a.Info())
}

func TestBuffersAreClearedBeforeEachCall(t *testing.T) {
	a := New[int, int, int](counterGame{})
	state := append([]byte(nil), 0xFF, 0xFF, 0xFF, 0xFF, 0xFF) // stale, over-length
	obs := append([]byte(nil), 0xFF, 0xFF)

	require.NoError(t, a.Reset(5, nil, &state, &obs))
	require.Len(t, state, 4)
}
