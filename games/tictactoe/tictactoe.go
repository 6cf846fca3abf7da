// Package tictactoe is the reference environment: a concrete two-player
// board game exercising env.Game end to end. It is not part of the core
// contract, only a conformance target for it.
package tictactoe

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gocnn/cartridge/env"
)

// BuildID is the opaque version tag this binary's tic-tac-toe registration
// advertises.
const BuildID = "tictactoe-go-v1"

// State is the complete state of one game: the board, whose turn it is, and
// whether (and how) the game has ended.
type State struct {
	Board         [9]byte // 0 empty, 1 first mover, 2 second mover
	CurrentPlayer byte    // 1 or 2
	Winner        byte    // 0 ongoing, 1 or 2 that player won, 3 draw
}

// IsDone reports whether the game has a winner or ended in a draw.
func (s State) IsDone() bool {
	return s.Winner != 0
}

// LegalMoves returns the empty board positions, or none if the game is
// over.
func (s State) LegalMoves() []byte {
	if s.IsDone() {
		return nil
	}
	moves := make([]byte, 0, 9)
	for i, cell := range s.Board {
		if cell == 0 {
			moves = append(moves, byte(i))
		}
	}
	return moves
}

var winningLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

func checkWinner(board [9]byte) byte {
	for _, line := range winningLines {
		a, b, c := line[0], line[1], line[2]
		if board[a] != 0 && board[a] == board[b] && board[b] == board[c] {
			return board[a]
		}
	}
	for _, cell := range board {
		if cell == 0 {
			return 0
		}
	}
	return 3
}

// MakeMove returns the state after placing the current player's mark at
// position. An illegal move (game already over, out-of-range position, or
// occupied cell) is a silent no-op: it returns s unchanged.
func (s State) MakeMove(position byte) State {
	if s.IsDone() || position >= 9 || s.Board[position] != 0 {
		return s
	}
	next := s
	next.Board[position] = s.CurrentPlayer
	next.Winner = checkWinner(next.Board)
	if next.Winner == 0 {
		if s.CurrentPlayer == 1 {
			next.CurrentPlayer = 2
		} else {
			next.CurrentPlayer = 1
		}
	}
	return next
}

// Action places a mark at Position.
type Action struct {
	Position byte
}

// Observation is a neural-network-friendly view of a State: one-hot board
// planes, a legal-move mask, and a current-player indicator.
type Observation struct {
	BoardView     [18]float32 // [0:9) first mover's cells, [9:18) second mover's
	LegalMoves    [9]float32
	CurrentPlayer [2]float32 // [is_first_mover, is_second_mover]
}

func observationFromState(s State) Observation {
	var obs Observation
	for i, cell := range s.Board {
		switch cell {
		case 1:
			obs.BoardView[i] = 1.0
		case 2:
			obs.BoardView[i+9] = 1.0
		}
	}
	if !s.IsDone() {
		for _, pos := range s.LegalMoves() {
			obs.LegalMoves[pos] = 1.0
		}
	}
	if s.CurrentPlayer == 1 {
		obs.CurrentPlayer[0] = 1.0
	} else {
		obs.CurrentPlayer[1] = 1.0
	}
	return obs
}

// Game implements env.Game[State, Action, Observation].
type Game struct{}

// New constructs a tic-tac-toe Game.
func New() *Game {
	return &Game{}
}

func (Game) EngineID() env.EngineId {
	return env.EngineId{EnvID: "tictactoe", BuildID: BuildID}
}

func (Game) Capabilities() env.Capabilities {
	return env.Capabilities{
		ID: env.EngineId{EnvID: "tictactoe", BuildID: BuildID},
		Encoding: env.Encoding{
			StateSchema:   "tictactoe_state:v1",
			ActionSchema:  "tictactoe_position:v1",
			ObsSchema:     "f32x29:v1",
			SchemaVersion: 1,
		},
		MaxHorizon:     9,
		ActionSpace:    env.ActionSpace{Kind: env.Discrete, N: 9},
		PreferredBatch: 64,
	}
}

// Reset starts a fresh game. hint is ignored; rng is unused (tic-tac-toe
// has no randomness), but is still threaded through per the contract.
func (Game) Reset(_ env.RNG, _ []byte) (State, Observation, error) {
	state := State{CurrentPlayer: 1}
	return state, observationFromState(state), nil
}

// Step places a mark at action.Position and reports the reward from the
// perspective of whichever player just moved.
func (Game) Step(state *State, action Action, _ env.RNG) (Observation, float32, bool, error) {
	previousPlayer := state.CurrentPlayer
	*state = state.MakeMove(action.Position)

	obs := observationFromState(*state)
	reward := calculateReward(*state, previousPlayer)
	return obs, reward, state.IsDone(), nil
}

func calculateReward(s State, previousPlayer byte) float32 {
	switch s.Winner {
	case 1, 2:
		if previousPlayer == s.Winner {
			return 1.0
		}
		return -1.0
	default:
		return 0.0
	}
}

func (Game) EncodeState(s State, out []byte) ([]byte, error) {
	out = append(out, s.Board[:]...)
	out = append(out, s.CurrentPlayer, s.Winner)
	return out, nil
}

func (Game) DecodeState(b []byte) (State, error) {
	if len(b) != 11 {
		return State{}, &env.DecodeError{Kind: env.InvalidLength, Expected: 11, Actual: len(b)}
	}
	var s State
	copy(s.Board[:], b[0:9])
	s.CurrentPlayer = b[9]
	s.Winner = b[10]

	if s.CurrentPlayer != 1 && s.CurrentPlayer != 2 {
		return State{}, &env.DecodeError{Kind: env.CorruptedData, Reason: fmt.Sprintf("invalid current_player: %d", s.CurrentPlayer)}
	}
	if s.Winner > 3 {
		return State{}, &env.DecodeError{Kind: env.CorruptedData, Reason: fmt.Sprintf("invalid winner: %d", s.Winner)}
	}
	for _, cell := range s.Board {
		if cell > 2 {
			return State{}, &env.DecodeError{Kind: env.CorruptedData, Reason: fmt.Sprintf("invalid board cell: %d", cell)}
		}
	}
	return s, nil
}

func (Game) EncodeAction(a Action, out []byte) ([]byte, error) {
	if a.Position >= 9 {
		return nil, &env.EncodeError{Kind: env.InvalidData, Reason: fmt.Sprintf("invalid action position: %d", a.Position)}
	}
	return append(out, a.Position), nil
}

func (Game) DecodeAction(b []byte) (Action, error) {
	if len(b) != 1 {
		return Action{}, &env.DecodeError{Kind: env.InvalidLength, Expected: 1, Actual: len(b)}
	}
	if b[0] >= 9 {
		return Action{}, &env.DecodeError{Kind: env.CorruptedData, Reason: fmt.Sprintf("invalid action position: %d", b[0])}
	}
	return Action{Position: b[0]}, nil
}

func (Game) EncodeObs(o Observation, out []byte) ([]byte, error) {
	for _, v := range o.BoardView {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	for _, v := range o.LegalMoves {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	for _, v := range o.CurrentPlayer {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out, nil
}

// Info reports the legal-moves bitmask in the low 9 bits, matching the
// reference scenario S5: bit i set means position i is empty.
func (Game) Info(s State) uint64 {
	var mask uint64
	for _, pos := range s.LegalMoves() {
		mask |= 1 << pos
	}
	return mask
}

var _ env.InfoSource[State] = Game{}
