package actor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/gocnn/cartridge/env"
	"github.com/gocnn/cartridge/metrics"
	"github.com/gocnn/cartridge/policy"
	"github.com/gocnn/cartridge/transport"
)

// buildID is the opaque marker this actor tags every Reset/Step with. The
// original implementation uses "actor-rust"; any stable per-client-build
// identifier is acceptable.
const buildID = "actor-go"

// Actor drives episodes against the engine service and streams the
// resulting transitions to the replay service.
type Actor struct {
	cfg Config
	log *zap.Logger
	met *metrics.Actor

	engineConn *grpc.ClientConn
	replayConn *grpc.ClientConn
	engine     *transport.EngineClient
	replay     *transport.ReplayClient

	caps   env.Capabilities
	policy policy.Policy

	mu     sync.Mutex
	buffer []transport.Transition

	shuttingDown atomic.Bool
	episodeIndex int64
}

// New constructs an Actor from a validated Config.
func New(cfg Config, log *zap.Logger, met *metrics.Actor) *Actor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Actor{cfg: cfg, log: log, met: met}
}

// Connect dials the engine and replay services. A connect failure here is
// fatal per §7: callers should surface it and exit.
func (a *Actor) Connect(_ context.Context) error {
	engineConn, err := grpc.NewClient(
		a.cfg.EngineAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(transport.CallOptions()...),
	)
	if err != nil {
		return fmt.Errorf("connect engine at %s: %w", a.cfg.EngineAddr, err)
	}
	a.engineConn = engineConn
	a.engine = transport.NewEngineClient(engineConn)

	replayConn, err := grpc.NewClient(
		a.cfg.ReplayAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(transport.CallOptions()...),
	)
	if err != nil {
		return fmt.Errorf("connect replay at %s: %w", a.cfg.ReplayAddr, err)
	}
	a.replayConn = replayConn
	a.replay = transport.NewReplayClient(replayConn)

	return nil
}

// Discover fetches the configured environment's capabilities and builds a
// uniform-random policy from its advertised action space.
func (a *Actor) Discover(ctx context.Context) error {
	resp, err := a.engine.GetCapabilities(ctx, &transport.GetCapabilitiesRequest{
		ID: env.EngineId{EnvID: a.cfg.EnvID, BuildID: buildID},
	})
	if err != nil {
		return fmt.Errorf("get capabilities for %q: %w", a.cfg.EnvID, err)
	}
	a.caps = resp.Capabilities

	pol, err := policy.NewRandom(a.caps, uint64(time.Now().UnixNano()))
	if err != nil {
		return fmt.Errorf("construct policy: %w", err)
	}
	a.policy = pol
	return nil
}

// Shutdown sets the soft shutdown flag: the in-flight episode's current
// step completes, then the episode loop exits.
func (a *Actor) Shutdown() {
	a.shuttingDown.Store(true)
}

// Close releases the gRPC connections.
func (a *Actor) Close() error {
	var errs []error
	if a.engineConn != nil {
		errs = append(errs, a.engineConn.Close())
	}
	if a.replayConn != nil {
		errs = append(errs, a.replayConn.Close())
	}
	return errors.Join(errs...)
}

// Run executes the main loop until shutdown is requested or ctx is
// cancelled, then performs a final flush before returning.
func (a *Actor) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.flushLoop(ctx)
	}()

	a.episodeLoop(ctx)
	a.Shutdown()
	cancel()
	wg.Wait()

	a.flushIfNonEmpty(context.Background())
	return nil
}

func (a *Actor) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.FlushInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.flushIfNonEmpty(ctx)
		}
	}
}

func (a *Actor) episodeLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil || a.shuttingDown.Load() {
			return
		}
		if a.cfg.MaxEpisodes > 0 && a.episodeIndex >= a.cfg.MaxEpisodes {
			return
		}

		if err := a.runEpisode(ctx); err != nil {
			a.log.Error("episode failed", zap.Int64("episode_index", a.episodeIndex), zap.Error(err))
			a.met.ObserveEpisode(outcomeFor(err))
			continue
		}

		a.episodeIndex++
		a.met.ObserveEpisode("done")
	}
}

func outcomeFor(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "error"
}

// runEpisode composes a fresh seed from wall-clock nanoseconds (actor-level
// determinism is not a goal per §9), resets, then steps until done or
// shutdown, pushing one transition per step.
func (a *Actor) runEpisode(ctx context.Context) error {
	seed := uint64(time.Now().UnixNano())
	episodeID := fmt.Sprintf("%s-ep-%d-%d", a.cfg.ActorID, a.episodeIndex, time.Now().Unix())
	id := env.EngineId{EnvID: a.cfg.EnvID, BuildID: buildID}

	resetCtx, cancel := context.WithTimeout(ctx, a.cfg.EpisodeTimeout())
	resetResp, err := a.engine.Reset(resetCtx, &transport.ResetRequest{ID: id, Seed: seed})
	cancel()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	state, obs := resetResp.State, resetResp.Obs
	var stepNumber uint32

	for {
		if a.shuttingDown.Load() {
			return nil
		}

		action, err := a.policy.SelectAction(obs)
		if err != nil {
			return fmt.Errorf("select action: %w", err)
		}

		stepCtx, cancel := context.WithTimeout(ctx, a.cfg.EpisodeTimeout())
		stepResp, err := a.engine.Step(stepCtx, &transport.StepRequest{ID: id, State: state, Action: action})
		cancel()
		if err != nil {
			return fmt.Errorf("step: %w", err)
		}

		transition := transport.Transition{
			ID:                fmt.Sprintf("%s-%d", episodeID, stepNumber),
			EnvID:             a.cfg.EnvID,
			EpisodeID:         episodeID,
			StepNumber:        stepNumber,
			State:             state,
			Action:            action,
			NextState:         stepResp.State,
			Observation:       obs,
			NextObservation:   stepResp.Obs,
			Reward:            stepResp.Reward,
			Done:              stepResp.Done,
			Priority:          1.0,
			TimestampUnixNano: time.Now().UnixNano(),
			Metadata:          map[string]string{},
		}
		a.pushTransition(ctx, transition)

		state, obs = stepResp.State, stepResp.Obs
		stepNumber++

		if stepResp.Done {
			return nil
		}
	}
}

// pushTransition holds the buffer lock only to push, per §4.7's buffer
// discipline, and triggers a flush outside the lock once the size trigger
// is reached.
func (a *Actor) pushTransition(ctx context.Context, t transport.Transition) {
	a.mu.Lock()
	a.buffer = append(a.buffer, t)
	full := uint32(len(a.buffer)) >= a.cfg.BatchSize
	a.mu.Unlock()

	if full {
		a.flushIfNonEmpty(ctx)
	}
}

// flushIfNonEmpty drains the buffer into a local slice under the lock,
// releases the lock, then performs the remote batch call. On failure the
// batch is logged and discarded, never restored to the buffer.
func (a *Actor) flushIfNonEmpty(ctx context.Context) {
	a.mu.Lock()
	if len(a.buffer) == 0 {
		a.mu.Unlock()
		return
	}
	batch := a.buffer
	a.buffer = nil
	a.mu.Unlock()

	resp, err := a.replay.StoreBatch(ctx, &transport.StoreBatchRequest{Transitions: batch})
	if err != nil {
		a.log.Error("flush failed, batch discarded", zap.Int("count", len(batch)), zap.Error(err))
		a.met.ObserveFlush(len(batch), err)
		return
	}

	a.log.Info("flushed transitions", zap.Int("count", len(batch)), zap.Uint32("stored", resp.StoredCount))
	a.met.ObserveFlush(len(batch), nil)
}
