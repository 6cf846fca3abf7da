// Package policy defines the minimal action-selection contract the actor
// drives episodes with, plus a uniform-random implementation derived from
// an environment's advertised Capabilities.
package policy

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gocnn/cartridge/env"
	"github.com/gocnn/cartridge/rand"
)

// Policy selects an action given the current observation.
type Policy interface {
	SelectAction(observation []byte) ([]byte, error)
}

// Random samples uniformly from the action space reported in Capabilities,
// ignoring the observation entirely.
type Random struct {
	rng         *rand.RNG
	actionSpace env.ActionSpace
}

// NewRandom constructs a Random policy from caps. It fails fast on the same
// malformed action spaces §4.8 documents: Discrete(0), any zero
// MultiDiscrete component, or a Continuous space with mismatched or
// inverted bounds.
func NewRandom(caps env.Capabilities, seed uint64) (*Random, error) {
	space := caps.ActionSpace
	if err := space.Validate(); err != nil {
		return nil, fmt.Errorf("no action space specified in capabilities: %w", err)
	}
	return &Random{rng: rand.New(seed), actionSpace: space}, nil
}

// SelectAction ignores observation and samples uniformly from the action
// space, encoding the result per §3: Discrete and MultiDiscrete as
// concatenated little-endian uint32s, Continuous as concatenated
// little-endian float32s.
func (p *Random) SelectAction(_ []byte) ([]byte, error) {
	switch p.actionSpace.Kind {
	case env.Discrete:
		action := p.rng.Uint32N(p.actionSpace.N)
		return binary.LittleEndian.AppendUint32(nil, action), nil

	case env.MultiDiscrete:
		out := make([]byte, 0, len(p.actionSpace.NVec)*4)
		for _, n := range p.actionSpace.NVec {
			out = binary.LittleEndian.AppendUint32(out, p.rng.Uint32N(n))
		}
		return out, nil

	case env.Continuous:
		low, high := p.actionSpace.Low, p.actionSpace.High
		out := make([]byte, 0, len(low)*4)
		for i := range low {
			sample := low[i] + p.rng.Float32()*(high[i]-low[i])
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(sample))
		}
		return out, nil

	default:
		return nil, fmt.Errorf("policy: unknown action space kind %d", p.actionSpace.Kind)
	}
}

var _ Policy = (*Random)(nil)
