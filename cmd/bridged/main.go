package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/embedhost/webbridge/internal/config"
	"github.com/embedhost/webbridge/internal/logging"
	"github.com/embedhost/webbridge/internal/monitoring"
	"github.com/embedhost/webbridge/internal/server"
)

func main() {
	port := flag.String("port", "", "Server port (overrides PORT)")
	policyPath := flag.String("policy", "", "Trust policy YAML file (overrides BRIDGE_POLICY_FILE)")
	dev := flag.Bool("dev", false, "Development mode: debug logging, console output")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *policyPath != "" {
		policy, err := config.LoadPolicy(*policyPath)
		if err != nil {
			// Logger is not up yet; fail the old-fashioned way.
			panic(err)
		}
		cfg.Policy = *policy
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	log, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	metrics := monitoring.NewMetrics()
	srv := server.New(cfg, log, metrics)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		log.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("shutdown error", zap.Error(err))
		}
	case err := <-errChan:
		log.Fatal("server error", zap.Error(err))
	}
}
