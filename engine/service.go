// Package engine hosts the three engine RPC operations (GetCapabilities,
// Reset, Step) over the registry, buffer pool and adapters defined in
// packages registry, bufferpool, erased and adapter. It caches one erased
// instance per (env_id, build_id), preserving that instance's RNG
// progression across calls.
package engine

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gocnn/cartridge/bufferpool"
	"github.com/gocnn/cartridge/env"
	"github.com/gocnn/cartridge/erased"
	"github.com/gocnn/cartridge/metrics"
	"github.com/gocnn/cartridge/registry"
)

// ErrorKind enumerates the RPC-surface error taxonomy.
type ErrorKind int

const (
	NotFound ErrorKind = iota
	InvalidArgument
	FailedPrecondition
	Internal
)

func (k ErrorKind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case InvalidArgument:
		return "invalid_argument"
	case FailedPrecondition:
		return "failed_precondition"
	default:
		return "internal"
	}
}

// Error is the RPC-surface error type.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

// cacheSlot guards one (env_id, build_id) instance's synchronous
// reset/step execution. Two concurrent calls to the same slot are fully
// serialised by slot.mu; distinct slots proceed in parallel because slot.mu
// is never held while acquiring mapMu.
type cacheSlot struct {
	mu       sync.Mutex
	instance erased.Game
}

// Service is the engine RPC surface.
type Service struct {
	reg  *registry.Registry
	pool *bufferpool.Pool
	log  *zap.Logger
	met  *metrics.Engine

	mapMu sync.Mutex
	slots map[env.EngineId]*cacheSlot
}

// New constructs a Service. log and met may be nil.
func New(reg *registry.Registry, pool *bufferpool.Pool, log *zap.Logger, met *metrics.Engine) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		reg:   reg,
		pool:  pool,
		log:   log,
		met:   met,
		slots: make(map[env.EngineId]*cacheSlot),
	}
}

// GetCapabilities constructs a fresh, throwaway instance of env_id and
// returns its capabilities.
func (s *Service) GetCapabilities(id env.EngineId) (caps env.Capabilities, err error) {
	start := time.Now()
	defer func() { s.observe("GetCapabilities", err, start) }()

	instance, ok := s.reg.Create(id.EnvID)
	if !ok {
		return env.Capabilities{}, &Error{NotFound, fmt.Sprintf("unregistered env_id %q", id.EnvID)}
	}
	return instance.Capabilities(), nil
}

// Reset looks up or creates the (env_id, build_id) cache slot and resets
// it, returning freshly copied state and observation byte slices.
func (s *Service) Reset(id env.EngineId, seed uint64, hint []byte) (state, obs []byte, err error) {
	start := time.Now()
	defer func() { s.observe("Reset", err, start) }()

	if id.EnvID == "" {
		return nil, nil, &Error{InvalidArgument, "missing env_id"}
	}

	slot, err := s.getOrCreateSlot(id)
	if err != nil {
		return nil, nil, err
	}

	stateBuf := s.pool.AcquireScoped(bufferpool.StateClass)
	defer stateBuf.Release()
	obsBuf := s.pool.AcquireScoped(bufferpool.ObsClass)
	defer obsBuf.Release()

	slot.mu.Lock()
	defer slot.mu.Unlock()

	sb, ob := stateBuf.Buf(), obsBuf.Buf()
	rerr := slot.instance.Reset(seed, hint, &sb, &ob)
	stateBuf.Set(sb)
	obsBuf.Set(ob)
	if rerr != nil {
		s.log.Error("reset failed", zap.String("env_id", id.EnvID), zap.Error(rerr))
		return nil, nil, &Error{Internal, rerr.Error()}
	}

	state = append([]byte(nil), stateBuf.Buf()...)
	obs = append([]byte(nil), obsBuf.Buf()...)
	return state, obs, nil
}

// Step looks up the (env_id, build_id) cache slot — which must already
// exist via a prior Reset — and steps it.
func (s *Service) Step(id env.EngineId, stateIn, actionIn []byte) (state, obs []byte, reward float32, done bool, info uint64, err error) {
	start := time.Now()
	defer func() { s.observe("Step", err, start) }()

	if id.EnvID == "" {
		return nil, nil, 0, false, 0, &Error{InvalidArgument, "missing env_id"}
	}
	if !s.reg.Contains(id.EnvID) {
		return nil, nil, 0, false, 0, &Error{NotFound, fmt.Sprintf("unregistered env_id %q", id.EnvID)}
	}

	slot, ok := s.getSlot(id)
	if !ok {
		return nil, nil, 0, false, 0, &Error{FailedPrecondition, "call reset before step"}
	}

	stateBuf := s.pool.AcquireScoped(bufferpool.StateClass)
	defer stateBuf.Release()
	obsBuf := s.pool.AcquireScoped(bufferpool.ObsClass)
	defer obsBuf.Release()

	slot.mu.Lock()
	defer slot.mu.Unlock()

	sb, ob := stateBuf.Buf(), obsBuf.Buf()
	r, d, serr := slot.instance.Step(stateIn, actionIn, &sb, &ob)
	stateBuf.Set(sb)
	obsBuf.Set(ob)
	if serr != nil {
		s.log.Error("step failed", zap.String("env_id", id.EnvID), zap.Error(serr))
		return nil, nil, 0, false, 0, &Error{Internal, serr.Error()}
	}

	state = append([]byte(nil), stateBuf.Buf()...)
	obs = append([]byte(nil), obsBuf.Buf()...)
	if ip, ok := slot.instance.(erased.InfoProvider); ok {
		info = ip.Info()
	}
	return state, obs, r, d, info, nil
}

// Stats returns the current buffer pool depths, for tests and metrics
// sampling.
func (s *Service) Stats() bufferpool.Stats {
	return s.pool.Stats()
}

func (s *Service) getSlot(id env.EngineId) (*cacheSlot, bool) {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()
	slot, ok := s.slots[id]
	return slot, ok
}

func (s *Service) getOrCreateSlot(id env.EngineId) (*cacheSlot, error) {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()

	if slot, ok := s.slots[id]; ok {
		return slot, nil
	}
	instance, ok := s.reg.Create(id.EnvID)
	if !ok {
		return nil, &Error{NotFound, fmt.Sprintf("unregistered env_id %q", id.EnvID)}
	}
	slot := &cacheSlot{instance: instance}
	s.slots[id] = slot
	return slot, nil
}

func (s *Service) observe(method string, err error, start time.Time) {
	status := "ok"
	if err != nil {
		if rpcErr, ok := err.(*Error); ok {
			status = rpcErr.Kind.String()
		} else {
			status = "internal"
		}
	}
	s.met.Observe(method, status, time.Since(start))
}
