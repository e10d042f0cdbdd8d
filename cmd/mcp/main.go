package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/richard-senior/rfef/internal/app"
	"github.com/richard-senior/rfef/internal/config"
	"github.com/richard-senior/rfef/internal/logger"
	"github.com/richard-senior/rfef/pkg/server"
	"github.com/richard-senior/rfef/pkg/tools"
	"github.com/richard-senior/rfef/pkg/transport"
)

const version = "1.0.0"

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
		os.Exit(2)
	}

	// stdout carries the protocol, so logs go to a file
	logger.SetShowDateTime(true)
	if err := logger.SetLogOutput('f'); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Close()
	logger.SetLevel(cfg.LogLevel)
	if *debug {
		logger.SetLevel(logger.DEBUG)
		logger.Debug("Debug logging enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		logger.Error("Startup failed", err)
		os.Exit(1)
	}
	defer a.Close()

	s := server.New(transport.NewStdioTransport(), "rfef", version)
	tools.Register(s, a.Service, a.Roster)

	if err := s.Serve(ctx); err != nil {
		logger.Error("Server error:", err)
		a.Close()
		os.Exit(1)
	}
	logger.Info("MCP server shutting down")
}
