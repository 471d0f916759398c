package main

import (
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/strataview/marketgraph/pkg/api"
	"github.com/strataview/marketgraph/pkg/logging"
	"github.com/strataview/marketgraph/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	port := flag.Int("port", 0, "HTTP server port (default 8080, or set PORT)")
	flag.Parse()

	cfg := api.DefaultConfig()
	if *configPath != "" {
		loaded, err := api.LoadConfig(*configPath)
		if err != nil {
			logging.NewDefaultLogger().Error("loading config", logging.Error(err))
			os.Exit(1)
		}
		cfg = loaded
	}

	// Flag beats config file beats PORT env
	if *port != 0 {
		cfg.Port = *port
	} else if envPort := os.Getenv("PORT"); envPort != "" {
		if p, err := strconv.Atoi(envPort); err == nil {
			cfg.Port = p
		}
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))
	logger.Info("marketgraph server starting",
		logging.Int("port", cfg.Port),
		logging.String("log_level", cfg.LogLevel))

	server := api.NewServer(cfg, logger, metrics.DefaultRegistry())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down server")
		os.Exit(0)
	}()

	if err := server.Start(); err != nil {
		logger.Error("server error", logging.Error(err))
		os.Exit(1)
	}
}
