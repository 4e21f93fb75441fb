package main

import (
	"flag"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/mernshop/shop-backend/pkg/api"
	"github.com/mernshop/shop-backend/pkg/config"
	"github.com/mernshop/shop-backend/pkg/featureflag"
	"github.com/mernshop/shop-backend/pkg/metrics"
	"github.com/mernshop/shop-backend/pkg/middleware"
	"github.com/mernshop/shop-backend/pkg/sampler"
	"github.com/mernshop/shop-backend/pkg/server"
	"github.com/mernshop/shop-backend/pkg/signals"
	klog "k8s.io/klog/v2"
)

var (
	configFile             string
	defaultMetricsInterval time.Duration
	shutdownTimeout        time.Duration
)

func init() {
	klog.InitFlags(nil)

	flag.StringVar(
		&configFile,
		"config",
		config.DefaultFile,
		"The path of the YAML config file read in development mode.",
	)
	flag.DurationVar(
		&defaultMetricsInterval,
		"default-metrics-interval",
		0,
		"The refresh interval of the process and runtime metrics. Overrides the config file if positive.",
	)
	flag.DurationVar(
		&shutdownTimeout,
		"shutdown-timeout",
		0,
		"The maximum time in-flight requests may take to complete at shutdown. Overrides the config file if positive.",
	)

	flag.Parse()
}

func main() {
	defer klog.Flush()

	featureflag.Log(klog.Background())

	cfg, err := config.Load(configFile)
	if err != nil {
		klog.ErrorS(err, "Failed to load configuration")
		klog.FlushAndExit(klog.ExitFlushTimeout, 1)
	}
	if defaultMetricsInterval > 0 {
		cfg.DefaultMetricsInterval = defaultMetricsInterval
	}
	if shutdownTimeout > 0 {
		cfg.ShutdownTimeout = shutdownTimeout
	}
	if cfg.Mode == config.ModeProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	klog.InfoS("Configuration loaded",
		"mode", cfg.Mode,
		"port", cfg.Port,
		"defaultMetricsInterval", cfg.DefaultMetricsInterval,
		"shutdownTimeout", cfg.ShutdownTimeout,
	)

	signals.SetupThreadDumpSignalHandler()
	shutdownCtx := signals.SetupShutdownSignalHandler()

	registry := metrics.NewRegistry()
	defaultCollector := metrics.NewDefaultCollector(cfg.DefaultMetricsInterval)
	if err := registry.IncludeDefaults(defaultCollector); err != nil {
		klog.ErrorS(err, "Failed to include default metrics")
		klog.FlushAndExit(klog.ExitFlushTimeout, 1)
	}
	instruments, err := middleware.NewInstruments(registry)
	if err != nil {
		klog.ErrorS(err, "Failed to register HTTP metrics")
		klog.FlushAndExit(klog.ExitFlushTimeout, 1)
	}

	clk := clock.New()
	srv := server.New(
		cfg,
		registry,
		api.NewStore(clk),
		middleware.Chain(clk, sampler.New(clk), instruments)...,
	)

	if err := srv.RunWithCollector(shutdownCtx, defaultCollector); err != nil {
		klog.ErrorS(err, "Server terminated with error")
		klog.FlushAndExit(klog.ExitFlushTimeout, 1)
	}
	klog.InfoS("Server terminated")
}
