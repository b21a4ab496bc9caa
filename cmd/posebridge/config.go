package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/posebridge/internal/bridge"
	"github.com/danmuck/posebridge/internal/config"
	"github.com/danmuck/posebridge/internal/pose"
	"github.com/danmuck/posebridge/internal/session"
	"github.com/rs/zerolog/log"
)

func loadServiceConfig(path string) (bridge.ServiceConfig, error) {
	cfg := bridge.DefaultServiceConfig()

	var raw config.BridgeConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return bridge.ServiceConfig{}, fmt.Errorf("load posebridge config: %w", err)
	}
	for _, key := range meta.Undecoded() {
		log.Warn().Msgf("posebridge config ignoring unknown key=%q", key.String())
	}
	// Same rules as configgen -validate; address and host/port are exclusive.
	if err := config.ValidateBridgeConfig(raw); err != nil {
		return bridge.ServiceConfig{}, fmt.Errorf("posebridge config %s: %w", path, err)
	}

	if meta.IsDefined("address") {
		cfg.Session.Address = strings.TrimSpace(raw.Address)
	}
	if meta.IsDefined("host") {
		cfg.Session.Address = session.JoinAddress(strings.TrimSpace(raw.Host), raw.Port)
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"connect_timeout", raw.ConnectTimeout, &cfg.Session.ConnectTimeout},
		{"read_timeout", raw.ReadTimeout, &cfg.Session.ReadTimeout},
		{"write_timeout", raw.WriteTimeout, &cfg.Session.WriteTimeout},
		{"retry_delay", raw.RetryDelay, &cfg.Session.RetryDelay},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := config.ParseDuration(d.key, d.raw)
		if err != nil {
			return bridge.ServiceConfig{}, err
		}
		if v > 0 {
			*d.dst = v
		}
	}

	if meta.IsDefined("ready_notice") {
		cfg.Session.ReadyNotice = raw.ReadyNotice
	}

	if meta.IsDefined("mode") {
		mode, err := bridge.ParseMode(raw.Mode)
		if err != nil {
			return bridge.ServiceConfig{}, err
		}
		cfg.Mode = mode
	}

	if meta.IsDefined("truncation") {
		policy, err := pose.ParsePolicy(raw.Truncation)
		if err != nil {
			return bridge.ServiceConfig{}, err
		}
		cfg.Truncation = policy
	}

	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}

	if strings.TrimSpace(cfg.Session.Address) == "" {
		return bridge.ServiceConfig{}, fmt.Errorf("posebridge config: empty peer address")
	}
	return cfg, nil
}
