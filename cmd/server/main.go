package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/lad94220/ML-Lab1/pkg/api"
	"github.com/lad94220/ML-Lab1/pkg/config"
	"github.com/lad94220/ML-Lab1/pkg/insights"
	"github.com/lad94220/ML-Lab1/pkg/logging"
	"github.com/lad94220/ML-Lab1/pkg/monitor"
	"github.com/lad94220/ML-Lab1/pkg/pricing"
)

// main 是钻石价格预测服务的入口。
// 模型缺失时服务照常启动，预测接口返回 500。
func main() {
	configPath := flag.String("config", "", "path to YAML config (default: configs/diamond.yaml, diamond.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	pipeline, err := pricing.Load(cfg.Model.Path)
	if err != nil {
		logging.Warn().Err(err).Str("path", cfg.Model.Path).
			Msg("model not loaded, predictions will fail until the model is trained")
	} else {
		logging.Info().Str("path", cfg.Model.Path).Msg("model loaded")
	}

	stats := monitor.NewStats()
	server := api.NewServer(
		pipeline,
		insights.NewService(cfg.Dataset.Path, cfg.Dataset.DBPath, cfg.Dataset.SampleSize),
		stats,
		api.Options{
			CORSOrigins:       cfg.Server.CORSOrigins,
			RateLimitRequests: cfg.Server.RateLimitRequests,
			RateLimitWindow:   cfg.Server.RateLimitWindow,
		},
	)

	sup := suture.New("diamond", suture.Spec{
		EventHook: func(e suture.Event) {
			logging.Warn().Fields(e.Map()).Msg(e.String())
		},
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   5 * time.Second,
		Timeout:          cfg.Server.ShutdownTimeout + time.Second,
	})
	sup.Add(api.NewService(cfg.Server.Addr, server.Handler(), cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("addr", cfg.Server.Addr).
		Bool("model_loaded", pipeline.Loaded()).
		Str("dataset", cfg.Dataset.Path).
		Msg("diamond price predictor starting")

	if err := sup.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("supervisor stopped")
	}
	logging.Info().Msg("shutdown complete")
}
