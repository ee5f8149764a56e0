package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/gridcast-dev/gridcast/internal/config"
	"github.com/gridcast-dev/gridcast/pkg/canvas"
	"github.com/gridcast-dev/gridcast/pkg/hub"
	"github.com/gridcast-dev/gridcast/pkg/life"
	"github.com/gridcast-dev/gridcast/pkg/painting"
	"github.com/gridcast-dev/gridcast/pkg/server"
	"github.com/gridcast-dev/gridcast/pkg/snapshot"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		address    string
		staticDir  string
		seed       uint64
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the canvas server",
		Long: `Run the canvas server.

Configuration is read from gridcast.json in the working directory (or
the file given with --config); missing values fall back to defaults.
Command-line flags override the file.

Examples:
  gridcast serve
  gridcast serve --address=:9090
  gridcast serve --config=/etc/gridcast/gridcast.json --static=./static`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, address, staticDir, seed, verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to gridcast.json (default ./gridcast.json)")
	cmd.Flags().StringVarP(&address, "address", "a", "", "Listen address (overrides config)")
	cmd.Flags().StringVar(&staticDir, "static", "", "Static frontend directory (overrides config)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Simulation random seed (0 = from system)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug-level logging")

	return cmd
}

func runServe(configPath, address, staticDir string, seed uint64, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if address != "" {
		cfg.Address = address
	}
	if staticDir != "" {
		cfg.StaticDir = staticDir
	}
	if seed != 0 {
		cfg.Canvas.Seed = seed
	}

	engine := life.NewEngine(&life.EngineConfig{
		Width:   cfg.Canvas.Width,
		Height:  cfg.Canvas.Height,
		Workers: cfg.Canvas.Workers,
		Seed:    cfg.Canvas.Seed,
	})
	engine.Reseed(life.DefaultDensity)

	paint := painting.New(&painting.Config{
		Width:  cfg.Canvas.Width,
		Height: cfg.Canvas.Height,
		Seed:   cfg.Canvas.Seed,
	})

	dispatcher := canvas.New(engine, paint, logger)

	serverCfg := cfg.ServerConfig()
	hubCfg := &hub.Config{
		HistorySize:      serverCfg.HistorySize,
		SubscriberBuffer: serverCfg.SubscriberBuffer,
		Logger:           logger,
	}
	if serverCfg.ReplayMode == server.ReplaySnapshot {
		hubCfg.Snapshot = dispatcher.SnapshotFrame
	}
	h := hub.New(hubCfg)

	store, err := exportStore(cfg.Export)
	if err != nil {
		return err
	}

	srv := server.New(serverCfg, server.Deps{
		Engine:     engine,
		Dispatcher: dispatcher,
		Hub:        h,
		Snapshots:  store,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting gridcast",
		"address", cfg.Address,
		"canvas", fmt.Sprintf("%dx%d", cfg.Canvas.Width, cfg.Canvas.Height),
		"replay_mode", cfg.Replay.Mode,
	)
	return srv.Run(ctx)
}

// loadConfig reads the config file, treating a missing default file as
// an empty configuration. An explicit --config path must exist.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.Load(".")
	if errors.Is(err, config.ErrNotFound) {
		return config.New(), nil
	}
	return cfg, err
}

// exportStore builds the snapshot export backend, or nil when export is
// disabled.
func exportStore(cfg config.ExportConfig) (snapshot.Store, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "disk":
		return snapshot.NewDiskStore(cfg.Dir)
	case "s3":
		client := s3.New(s3.Options{Region: cfg.Region})
		return snapshot.NewS3Store(client, cfg.Bucket, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown export backend %q", cfg.Backend)
	}
}
