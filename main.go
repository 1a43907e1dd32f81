package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Deadjed/blank-bot/agent"
	"github.com/Deadjed/blank-bot/config"
	"github.com/Deadjed/blank-bot/faction"
	"github.com/Deadjed/blank-bot/ipc"
)

const banner = `
 _     _             _          _           _
| |__ | | __ _ _ __ | | __     | |__   ___ | |_
| '_ \| |/ _' | '_ \| |/ /_____| '_ \ / _ \| __|
| |_) | | (_| | | | |   <______| |_) | (_) | |_
|_.__/|_|\__,_|_| |_|_|\_\     |_.__/ \___/ \__|

Rule-Driven RTS Macro Agent`

func main() {
	configDir := flag.String("config", ".", "directory containing blankbot.yaml")
	flag.Parse()

	if err := config.Load(*configDir); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Get()
	if err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	// Fail fast on a broken default profile rather than on the first hello.
	if _, err := faction.Load(cfg.Faction.ProfilesDir, cfg.Faction.Default); err != nil {
		slog.Error("failed to load default faction", "faction", cfg.Faction.Default, "error", err)
		os.Exit(1)
	}

	metrics, err := agent.NewMetrics()
	if err != nil {
		slog.Error("failed to create metrics", "error", err)
		os.Exit(1)
	}

	opts := agent.Options{
		DefaultFaction: cfg.Faction.Default,
		ProfilesDir:    cfg.Faction.ProfilesDir,
		Seed:           cfg.Placement.Seed,
		Macro:          cfg.Macro,
		Allocator:      cfg.Allocator,
		RuleOverrides:  cfg.Rules.Overrides,
	}
	slog.Info("starting blank-bot",
		"transport", cfg.Bridge.Transport,
		"faction", cfg.Faction.Default,
		"factions", faction.BuiltinNames(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	setup := func(c *ipc.Connection) func() {
		a := agent.New(c, opts, metrics)
		a.Register()
		return a.Close
	}

	switch cfg.Bridge.Transport {
	case config.TransportWebSocket:
		err = serveWebSocket(ctx, cfg.Bridge, setup)
	default:
		err = serveUnix(ctx, cfg.Bridge.SocketPath, setup)
	}
	if err != nil {
		slog.Error("bridge listener failed", "error", err)
		os.Exit(1)
	}
	slog.Info("shutting down")
}

func serveUnix(ctx context.Context, socketPath string, setup ipc.SessionFunc) error {
	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(socketPath); err != nil {
		return fmt.Errorf("clean up socket %s: %w", socketPath, err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", socketPath, err)
	}
	defer os.Remove(socketPath)

	slog.Info("listening on domain socket", "path", socketPath)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("failed to accept connection", "error", err)
			continue
		}
		slog.Info("new connection accepted")
		go func() {
			c := ipc.NewConnection(conn, nil)
			defer setup(c)()
			c.ReadLoop()
		}()
	}
}

func serveWebSocket(ctx context.Context, bridge config.BridgeConfig, setup ipc.SessionFunc) error {
	mux := http.NewServeMux()
	mux.Handle(bridge.WSPath, ipc.WebSocketHandler(setup))

	srv := &http.Server{
		Addr:              bridge.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("listening for websocket bridge", "addr", bridge.ListenAddr, "path", bridge.WSPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve websocket: %w", err)
	}
	return nil
}
