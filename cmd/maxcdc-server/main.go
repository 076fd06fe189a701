package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"maxcdc/pkg/app"
	"maxcdc/pkg/config"
	"maxcdc/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
)

func main() {
	// 1. Load Config
	cfgFile := flag.String("config", "", "config file (default is ./.maxcdc/config.yaml or $HOME/.maxcdc/config.yaml)")
	flag.Parse()

	if err := config.Load(*cfgFile); err != nil {
		slog.Error("config error", slog.Any("err", err))
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: config.LogLevel()})))

	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("err", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Metrics Registry
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// 3. Init Core Application
	a, err := app.NewApp(ctx, reg)
	if err != nil {
		return err
	}
	defer a.Close()
	slog.Info("maxcdc core initialized",
		slog.Int("window", a.Chunker.Window()),
		slog.String("storage", viper.GetString("storage.type")),
		slog.Bool("metadata_db", a.Meta != nil),
	)

	// 4. Setup Network
	addr := viper.GetString("server.addr")
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	// 5. Serve until SIGINT / SIGTERM
	return server.New(a, reg, viper.GetString("server.metrics_addr")).Serve(ctx, lis)
}
