package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/solarfolio/solarfolio/assets"
	"github.com/solarfolio/solarfolio/internal/config"
	"github.com/solarfolio/solarfolio/internal/content"
	"github.com/solarfolio/solarfolio/internal/logging"
	"github.com/solarfolio/solarfolio/internal/observability"
)

type flags struct {
	config      string
	metricsAddr string
}

// env is what every command needs before it starts.
type env struct {
	cfg      config.Config
	log      logging.Logger
	manifest *content.Manifest
	metrics  *observability.SceneCollector
}

func setup(f *flags) (*env, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return nil, err
	}
	if f.metricsAddr != "" {
		cfg.Metrics.Addr = f.metricsAddr
	}
	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	data, err := readManifest(cfg.Assets.Manifest)
	if err != nil {
		return nil, err
	}
	m, err := content.Load(data)
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewSceneCollector(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	return &env{cfg: cfg, log: logger, manifest: m, metrics: metrics}, nil
}

func readManifest(path string) ([]byte, error) {
	if path == "" {
		return assets.Files.ReadFile(assets.ManifestPath)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return data, nil
}

// serveMetrics runs /metrics in the background when an address is set.
func (e *env) serveMetrics(ctx context.Context) {
	addr := e.cfg.Metrics.Addr
	if addr == "" {
		return
	}
	go func() {
		if err := e.metrics.Serve(ctx, addr); err != nil {
			e.log.Error(ctx, "metrics server stopped", logging.Err(err))
		}
	}()
	e.log.Info(ctx, "serving metrics", logging.String("addr", addr))
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "solarfolio",
		Short:         "Interactive solar-system portfolio",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindow(cmd.Context(), f)
		},
	}
	root.PersistentFlags().StringVar(&f.config, "config", "", "config file (default ./solarfolio.toml if present)")
	root.PersistentFlags().StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Open the scene in a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindow(cmd.Context(), f)
		},
	})
	root.AddCommand(newBenchCmd(f))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}
