package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gocnn/cartridge/env"
	"github.com/gocnn/cartridge/erased"
)

type stubGame struct{ id string }

func (g stubGame) EngineID() env.EngineId       { return env.EngineId{EnvID: g.id} }
func (stubGame) Capabilities() env.Capabilities { return env.Capabilities{} }
func (stubGame) Reset(uint64, []byte, *[]byte, *[]byte) error {
	return nil
}
func (stubGame) Step([]byte, []byte, *[]byte, *[]byte) (float32, bool, error) {
	return 0, false, nil
}

var _ erased.Game = stubGame{}

func TestNewWithNilLoggerDoesNotPanic(t *testing.T) {
	r := New(nil)
	require.NotNil(t, r)
}

func TestRegisterAndCreate(t *testing.T) {
	r := New(nil)
	r.Register("tictactoe", func() erased.Game { return stubGame{id: "tictactoe"} })

	game, ok := r.Create("tictactoe")
	require.True(t, ok)
	require.Equal(t, "tictactoe", game.EngineID().EnvID)
}

func TestCreateUnregisteredReturnsFalse(t *testing.T) {
	r := New(nil)
	_, ok := r.Create("nonexistent")
	require.False(t, ok)
}

func TestContainsAndList(t *testing.T) {
	r := New(nil)
	require.False(t, r.Contains("a"))

	r.Register("a", func() erased.Game { return stubGame{id: "a"} })
	r.Register("b", func() erased.Game { return stubGame{id: "b"} })

	require.True(t, r.Contains("a"))
	require.ElementsMatch(t, []string{"a", "b"}, r.List())
}

func TestRegisterOverwritesExisting(t *testing.T) {
	r := New(nil)
	r.Register("a", func() erased.Game { return stubGame{id: "first"} })
	r.Register("a", func() erased.Game { return stubGame{id: "second"} })

	game, ok := r.Create("a")
	require.True(t, ok)
	require.Equal(t, "second", game.EngineID().EnvID)
}

func TestClearRemovesAllEntries(t *testing.T) {
	r := New(nil)
	r.Register("a", func() erased.Game { return stubGame{id: "a"} })
	r.Clear()

	require.Empty(t, r.List())
	require.False(t, r.Contains("a"))
}

func TestCreateProducesFreshInstanceEachCall(t *testing.T) {
	count := 0
	r := New(nil)
	r.Register("a", func() erased.Game {
		count++
		return stubGame{id: "a"}
	})

	r.Create("a")
	r.Create("a")
	require.Equal(t, 2, count)
}
