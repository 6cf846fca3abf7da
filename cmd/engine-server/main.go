// Command engine-server hosts the engine RPC surface: GetCapabilities,
// Reset, Step over the registered built-in environments.
package main

import (
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/gocnn/cartridge/bufferpool"
	"github.com/gocnn/cartridge/engine"
	"github.com/gocnn/cartridge/metrics"
	"github.com/gocnn/cartridge/registry"
	"github.com/gocnn/cartridge/transport"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ENGINE")
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "engine-server",
		Short: "Hosts the Cartridge engine RPC surface.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v)
		},
	}

	flags := cmd.Flags()
	flags.String("listen-addr", ":50051", "gRPC listen address")
	flags.String("metrics-addr", ":9090", "Prometheus listen address")
	flags.String("log-level", "info", "one of trace, debug, info, warn, error")

	v.BindPFlag("listen_addr", flags.Lookup("listen-addr"))
	v.BindPFlag("metrics_addr", flags.Lookup("metrics-addr"))
	v.BindPFlag("log_level", flags.Lookup("log-level"))

	return cmd
}

func run(v *viper.Viper) error {
	log, err := newLogger(v.GetString("log_level"))
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	reg := registry.New(log)
	engine.RegisterBuiltins(reg)

	promReg := prometheus.NewRegistry()
	engineMetrics := metrics.NewEngine(promReg)

	pool := bufferpool.New()
	svc := engine.New(reg, pool, log, engineMetrics)

	grpcServer := grpc.NewServer()
	transport.RegisterEngineServer(grpcServer, transport.NewEngineServiceAdapter(svc))

	listenAddr := v.GetString("listen_addr")
	lis, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddr, err)
	}

	metricsAddr := v.GetString("metrics_addr")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
		log.Info("metrics listening", zap.String("addr", metricsAddr))
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Error("metrics server exited", zap.Error(err))
		}
	}()

	log.Info("engine-server listening", zap.String("addr", listenAddr), zap.Strings("environments", reg.List()))
	return grpcServer.Serve(lis)
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
