package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cubeworld/relay/internal/config"
	"github.com/cubeworld/relay/internal/dispatch"
	"github.com/cubeworld/relay/internal/ext"
	"github.com/cubeworld/relay/internal/hub"
	"github.com/cubeworld/relay/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "", "path to a TOML config file (defaults apply if omitted)")
	flag.Parse()

	var cfg *config.Config
	if *cfgPath == "" {
		cfg = config.Default()
	} else {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	adapter, err := ext.NewLuaAdapter(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("load scripts: %w", err)
	}
	defer adapter.Close()
	hooks := adapter.Hooks()

	h := hub.New(cfg, log)
	defer h.Shutdown()

	server, err := dispatch.NewServer(cfg, h, hooks, log)
	if err != nil {
		return fmt.Errorf("bind %s: %w", cfg.Network.BindAddress, err)
	}
	go server.AcceptLoop()
	log.Info("listening", zap.String("addr", server.Addr().String()))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-shutdownCh
	log.Info("shutting down", zap.String("signal", sig.String()))
	server.Shutdown()
	return nil
}
