package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/OCAP2/pinmap/internal/config"
	"github.com/OCAP2/pinmap/internal/influx"
	"github.com/OCAP2/pinmap/internal/server"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// serve runs the pin server until SIGINT or SIGTERM.
func serve(ctx context.Context, rt *runtime) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := createStorageBackend(rt, config.GetStorageConfig())
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			rt.Logger.Error("Failed to close storage backend", "error", err)
		}
	}()

	var opts []server.Option
	influxCfg := config.GetInfluxConfig()
	if influxCfg.Enabled {
		backupPath := filepath.Join(viper.GetString("logsDir"),
			fmt.Sprintf("%s_activity_%s.lp.gz", AppName, rt.SessionStart.Format("20060102_150405")))
		activity := influx.NewManager(influxCfg, rt.zerologFor("influx"), backupPath)
		if err := activity.Connect(ctx); err != nil {
			rt.Logger.Warn("InfluxDB activity recording disabled", "error", err)
		} else {
			opts = append(opts, server.WithActivity(activity))
			defer func() {
				if err := activity.Close(); err != nil {
					rt.Logger.Warn("Failed to close InfluxDB manager", "error", err)
				}
			}()
		}
	}

	srv := server.New(backend, rt.Logger, opts...)
	addr := viper.GetString("server.addr")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rt.Logger.Info("Pin server listening", "addr", addr, "storage", config.GetStorageConfig().Type)
		return srv.Run(gctx, addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		rt.Logger.Info("Shutting down pin server")
		return nil
	})
	return g.Wait()
}
