package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/danmuck/posebridge/internal/actuator"
	"github.com/danmuck/posebridge/internal/bridge"
	"github.com/danmuck/posebridge/internal/logging"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "path to posebridge TOML config (built-in defaults when empty)")
	address := flag.String("address", "", "peer address host:port, overrides config")
	mode := flag.String("mode", "", "once|stream, overrides config")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "posebridge: load .env: %v\n", err)
		os.Exit(1)
	}
	logging.ConfigureRuntime()

	if err := run(*configPath, *address, *mode); err != nil {
		fmt.Fprintf(os.Stderr, "posebridge: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, address, mode string) error {
	cfg := bridge.DefaultServiceConfig()
	if strings.TrimSpace(configPath) != "" {
		loaded, err := loadServiceConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if v := strings.TrimSpace(address); v != "" {
		cfg.Session.Address = v
	}
	if strings.TrimSpace(mode) != "" {
		m, err := bridge.ParseMode(mode)
		if err != nil {
			return err
		}
		cfg.Mode = m
	}

	act := actuator.NewLogActuator(log.Logger.With().Str("component", "actuator").Logger())
	svc, err := bridge.NewService(cfg, act)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log.Info().Msgf("posebridge starting peer=%q mode=%s", cfg.Session.Address, cfg.Mode)
	return svc.Run(ctx)
}
