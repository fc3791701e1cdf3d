// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/db47h/cedarsim/config"
	"github.com/db47h/cedarsim/internal/telemetry"
	"github.com/db47h/cedarsim/server"
	"github.com/db47h/cedarsim/store"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve simulation sessions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := cfg.Logger(os.Stderr)
	shutdownTracing, err := telemetry.Setup(cfg.Trace, os.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown", "err", err)
		}
	}()
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	st, err := store.Open(store.Config{Path: cfg.Store.Path, InMemory: cfg.Store.InMemory, Logger: log})
	if err != nil {
		return err
	}
	defer st.Close()

	srv := server.New(server.Config{
		Catalog:       cat,
		Store:         st,
		StepInterval:  cfg.StepInterval,
		StepsPerTick:  cfg.StepsPerTick,
		MaxSlotEvents: cfg.MaxSlotEvents,
		MaxSessions:   cfg.MaxSessions,
		CommandRate:   cfg.CommandRate,
		CommandBurst:  cfg.CommandBurst,
		Logger:        log,
	})
	defer srv.Close()
	hs := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", cfg.Listen)
		if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "serve")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return hs.Shutdown(sctx)
	})
	return g.Wait()
}
