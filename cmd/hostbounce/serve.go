package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hostbounce/hostbounce/pkg/cache"
	"github.com/hostbounce/hostbounce/pkg/config"
	"github.com/hostbounce/hostbounce/pkg/hitlog"
	"github.com/hostbounce/hostbounce/pkg/resolver"
	"github.com/hostbounce/hostbounce/pkg/server"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the redirect server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := openStore(ctx, cfg.Store)
			if err != nil {
				return fmt.Errorf("init store: %w", err)
			}
			defer func() { _ = st.Close() }()

			var hits *hitlog.Logger
			if cfg.HitLog.Enabled {
				hits, err = hitlog.New(cfg.HitLog.DBPath, cfg.HitLog.RetentionDays)
				if err != nil {
					return fmt.Errorf("init hit log: %w", err)
				}
				defer func() { _ = hits.Close() }()
			}

			c := cache.New(cfg.Cache.TTL)
			srv := server.New(cfg, resolver.New(st, c), hits)

			g, ctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				return srv.ListenAndServe(ctx)
			})

			if cfg.Cache.SweepInterval > 0 {
				sweeper, err := cache.NewSweeper(c, cfg.Cache.SweepInterval)
				if err != nil {
					return fmt.Errorf("init sweeper: %w", err)
				}
				g.Go(func() error {
					return sweeper.Run(ctx)
				})
			}

			log.Printf("starting hostbounce with config: %s", configPath)
			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hostbounce.yaml", "path to config file")
	return cmd
}
