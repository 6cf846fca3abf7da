// Command actor drives episodes against an engine service and streams the
// resulting transitions to a replay service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"net/http"

	"github.com/gocnn/cartridge/actor"
	"github.com/gocnn/cartridge/metrics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ACTOR")
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "actor",
		Short: "Drives episodes against the Cartridge engine service.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v)
		},
	}

	def := actor.DefaultConfig()
	flags := cmd.Flags()
	flags.String("engine-addr", def.EngineAddr, "engine service address")
	flags.String("replay-addr", def.ReplayAddr, "replay service address")
	flags.String("actor-id", "", "identity embedded in episode ids (required)")
	flags.String("env-id", "", "environment to drive (required)")
	flags.Int64("max-episodes", 0, "episode cap; <= 0 means unlimited")
	flags.Uint64("episode-timeout-secs", def.EpisodeTimeoutSecs, "per-RPC timeout inside an episode")
	flags.Uint32("batch-size", def.BatchSize, "size-trigger for flush")
	flags.Uint64("flush-interval-secs", def.FlushIntervalSecs, "time-trigger for flush")
	flags.String("log-level", def.LogLevel, "one of trace, debug, info, warn, error")
	flags.String("metrics-addr", ":9091", "Prometheus listen address")

	for _, name := range []string{
		"engine_addr", "replay_addr", "actor_id", "env_id", "max_episodes",
		"episode_timeout_secs", "batch_size", "flush_interval_secs", "log_level",
	} {
		v.BindPFlag(name, flags.Lookup(flagName(name)))
	}
	v.BindPFlag("metrics_addr", flags.Lookup("metrics-addr"))

	return cmd
}

func flagName(field string) string {
	out := make([]byte, 0, len(field))
	for i := 0; i < len(field); i++ {
		c := field[i]
		if c == '_' {
			out = append(out, '-')
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

func run(v *viper.Viper) error {
	cfg := actor.Config{
		EngineAddr:         v.GetString("engine_addr"),
		ReplayAddr:         v.GetString("replay_addr"),
		ActorID:            v.GetString("actor_id"),
		EnvID:              v.GetString("env_id"),
		MaxEpisodes:        v.GetInt64("max_episodes"),
		EpisodeTimeoutSecs: v.GetUint64("episode_timeout_secs"),
		BatchSize:          uint32(v.GetUint("batch_size")),
		FlushIntervalSecs:  v.GetUint64("flush_interval_secs"),
		LogLevel:           v.GetString("log_level"),
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	promReg := prometheus.NewRegistry()
	actorMetrics := metrics.NewActor(promReg)

	metricsAddr := v.GetString("metrics_addr")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Error("metrics server exited", zap.Error(err))
		}
	}()

	a := actor.New(cfg, log, actorMetrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer a.Close()

	if err := a.Discover(ctx); err != nil {
		return fmt.Errorf("discover capabilities: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		a.Shutdown()
	}()

	log.Info("actor starting", zap.String("actor_id", cfg.ActorID), zap.String("env_id", cfg.EnvID))
	return a.Run(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	var zapLevel zap.AtomicLevel
	switch level {
	case "trace", "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.Level = zapLevel
	return cfg.Build()
}
