package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hdiexplorer/internal/api"
	"hdiexplorer/internal/config"
	"hdiexplorer/internal/engine"
	"hdiexplorer/internal/logging"

	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	loader := config.NewLoader()

	cmd := &cobra.Command{
		Use:           "hdi-server",
		Short:         "Serve the human development indicator explorer over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loader.BindFlags(cmd.Flags()); err != nil {
				return err
			}
			cfg, err := loader.Load(cfgFile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "path to a YAML config file")
	f.String("data", "", "CSV dataset to load (default data.csv)")
	f.String("addr", "", "listen address (default :8080)")
	f.Float64("margin", 0, "axis padding as a fraction of the global span")
	f.Int("width", 0, "chart width in pixels")
	f.Int("height", 0, "chart height in pixels")
	f.Float64("rate-limit", 0, "requests per second per client, 0 disables")
	f.Int("rate-burst", 0, "requests a client may send at once")
	f.String("log-level", "", "debug, info, warn or error")
	f.Bool("log-json", false, "emit JSON logs")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(cfg.Log, os.Stdout)

	// 1. The API is live immediately but answers 503 until the data is in
	h := api.NewHandler(cfg, nil, logger)
	e := api.NewServer(cfg, h, logger)

	g, ctx := errgroup.WithContext(ctx)

	// 2. Load in the background; a load failure stops the whole process
	g.Go(func() error {
		t0 := time.Now()
		ds, err := engine.LoadDataset(cfg.DataPath, memory.NewGoAllocator())
		if err != nil {
			return err
		}
		h.SetData(ds)
		logger.Info("dataset ready, API fully available", "elapsed", time.Since(t0))
		return nil
	})

	// 3. Serve
	g.Go(func() error {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 4. Shut down on signal or on the first failure
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
