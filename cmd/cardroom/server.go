package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/cardroomhq/cardroom/internal/server"
)

// ServerCmd runs the WebSocket server.
type ServerCmd struct {
	Config    string `short:"c" default:"cardroom.hcl" help:"Path to HCL configuration file"`
	Addr      string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel  string `short:"l" help:"Log level (overrides config)"`
	TimeoutMs int    `help:"Action timeout in milliseconds (overrides config)"`
	Seed      *int64 `help:"Deterministic shuffle seed (optional)"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}

	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	addr := cfg.Address()
	if c.Addr != "" {
		addr = c.Addr
	}

	timeout := cfg.ActionTimeout()
	if c.TimeoutMs > 0 {
		timeout = time.Duration(c.TimeoutMs) * time.Millisecond
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("using deterministic seed", "seed", seed)
	}

	wsServer := server.NewServer(addr, logger)
	service := server.NewService(server.NewMemoryStore(), logger,
		server.WithNotifier(wsServer),
		server.WithActionTimeout(timeout),
		server.WithRNG(rand.New(rand.NewSource(seed))),
	)
	wsServer.SetService(service)

	for _, tableConfig := range cfg.Tables {
		view, err := service.CreateTable(tableConfig.Settings())
		if err != nil {
			return err
		}
		logger.Info("configured table ready",
			"name", tableConfig.Name, "table", view.TableID, "code", view.Code)
	}

	logger.Info("starting cardroom server",
		"addr", addr,
		"tables", len(cfg.Tables),
		"action_timeout", timeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(wsServer.Start)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		service.Close()
		return wsServer.Stop()
	})
	return g.Wait()
}
