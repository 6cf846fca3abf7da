// Package rand provides the deterministic random number generator used by
// every environment instance hosted by the engine.
//
// Reproducibility is the whole point of this package: a [RNG] seeded with the
// same uint64 twice must produce the same stream of values, forever, on this
// implementation. The stream is derived from the ChaCha20 cipher (RFC 8439)
// used as a keystream generator, which gives a much longer period and better
// statistical independence across reseeds than the small xorshift/ PCG
// generators typically used for gameplay RNGs.
//
// The distribution helpers (IntN, Float64, Perm, Shuffle, ...) are supplied
// by math/rand/v2 wrapping our ChaCha20 byte stream as its entropy [rand.Source];
// only the entropy source is swapped out, the sampling algorithms are the
// standard library's own.
package rand

import (
	"encoding/binary"
	"fmt"
	v2 "math/rand/v2"
	"sync"

	"golang.org/x/crypto/chacha20"
)

// chachaSource adapts a keyed ChaCha20 keystream to the math/rand/v2.Source
// interface (a single Uint64 method). The nonce is always the zero nonce:
// determinism comes entirely from the seed-derived key, so there is no need
// for nonce variation within one RNG's lifetime.
type chachaSource struct {
	cipher *chacha20.Cipher
	block  [chachaBlockSize]byte
	pos    int
}

func newChachaSource(seed uint64) *chachaSource {
	key := expandSeed(seed)
	nonce := make([]byte, chacha20.NonceSize)
	cipher, err := chacha20.NewUnauthenticatedCipher(key[:], nonce)
	if err != nil {
		// key and nonce are fixed-size local buffers; this can only fail if
		// the chacha20 package's size constants change underneath us.
		panic(fmt.Sprintf("rand: chacha20 cipher init: %v", err))
	}
	return &chachaSource{cipher: cipher, pos: chachaBlockSize}
}

// expandSeed stretches a 64-bit seed into a 256-bit ChaCha20 key using
// splitmix64, so that seeds differing by one bit still produce unrelated
// keys (ChaCha20 itself assumes a uniformly random key).
func expandSeed(seed uint64) [chacha20.KeySize]byte {
	var key [chacha20.KeySize]byte
	state := seed
	for i := 0; i < chacha20.KeySize/8; i++ {
		state += 0x9E3779B97F4A7C15
		z := state
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		z = z ^ (z >> 31)
		binary.LittleEndian.PutUint64(key[i*8:], z)
	}
	return key
}

// chachaBlockSize is the ChaCha20 block size in bytes; the chacha20 package
// does not export its own constant for it.
const chachaBlockSize = 64

func (s *chachaSource) Uint64() uint64 {
	if s.pos+8 > chachaBlockSize {
		s.refill()
	}
	v := binary.LittleEndian.Uint64(s.block[s.pos:])
	s.pos += 8
	return v
}

func (s *chachaSource) refill() {
	var zero [chachaBlockSize]byte
	s.cipher.XORKeyStream(s.block[:], zero[:])
	s.pos = 0
}

// RNG is the seeded, thread-safe generator every environment instance owns
// through its [adapter]. Seeding is explicit and always effective:
// constructing or reseeding with the same uint64 resets the stream from
// scratch, with no dependence on wall-clock time.
type RNG struct {
	mu   sync.Mutex
	seed uint64
	rng  *v2.Rand
}

// New creates an RNG seeded with seed.
func New(seed uint64) *RNG {
	return &RNG{seed: seed, rng: v2.New(newChachaSource(seed))}
}

// Reseed replaces the RNG's stream as if it had just been constructed with
// seed. Used by the adapter on every Reset; never called between Steps of
// the same episode.
func (r *RNG) Reseed(seed uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seed = seed
	r.rng = v2.New(newChachaSource(seed))
}

// Seed returns the seed the RNG was last (re)seeded with.
func (r *RNG) Seed() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seed
}

// Uint64 returns a pseudo-random 64-bit value.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Uint64()
}

// Uint32 returns a pseudo-random 32-bit value.
func (r *RNG) Uint32() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Uint32()
}

// Uint32N returns a pseudo-random number in [0,n). Panics if n == 0.
func (r *RNG) Uint32N(n uint32) uint32 {
	if n == 0 {
		panic("rand: Uint32N called with n == 0")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Uint32N(n)
}

// IntN returns a pseudo-random number in [0,n). Panics if n <= 0.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("rand: IntN called with n = %d", n))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

// Float32 returns a pseudo-random number in [0.0, 1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float32()
}

// Float64 returns a pseudo-random number in [0.0, 1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// NormFloat64 returns a standard-normal distributed float64.
func (r *RNG) NormFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.NormFloat64()
}

// Perm returns a pseudo-random permutation of the integers [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Perm(n)
}

// Shuffle pseudo-randomizes the order of n elements via swap.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(n, swap)
}
