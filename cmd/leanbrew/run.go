package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/leanbrew/feedfilter"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Launch Chrome and filter the home timeline until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runFilter,
}

func runFilter(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := feedfilter.OpenStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	sinks, err := feedfilter.SinksFromConfig(cfg.Sinks, logger)
	if err != nil {
		return err
	}
	f := feedfilter.New(cfg, store, logger, sinks...)
	defer f.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Panel.Addr != "" {
		srv := &http.Server{Addr: cfg.Panel.Addr, Handler: f.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("leanbrew: panel listening", "addr", cfg.Panel.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("leanbrew: panel", "error", err)
			}
		}()
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutCtx)
		}()
	}

	if err := f.Run(ctx); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	logger.Info("leanbrew: stopped")
	return nil
}
