package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// BridgeConfig is the on-disk schema shared by posebridge and configgen.
type BridgeConfig struct {
	Address        string `toml:"address"`
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	ConnectTimeout string `toml:"connect_timeout"`
	ReadTimeout    string `toml:"read_timeout"`
	WriteTimeout   string `toml:"write_timeout"`
	RetryDelay     string `toml:"retry_delay"`
	ReadyNotice    string `toml:"ready_notice"`
	Mode           string `toml:"mode"`
	Truncation     string `toml:"truncation"`
	MetricsAddr    string `toml:"metrics_addr"`
}

// LoadBridgeConfig decodes path strictly; unknown keys are errors.
func LoadBridgeConfig(path string) (BridgeConfig, error) {
	var cfg BridgeConfig
	if err := loadToml(path, &cfg); err != nil {
		return BridgeConfig{}, err
	}
	if err := ValidateBridgeConfig(cfg); err != nil {
		return BridgeConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateBridgeConfig(cfg BridgeConfig) error {
	if strings.TrimSpace(cfg.Address) == "" && strings.TrimSpace(cfg.Host) == "" {
		return fmt.Errorf("bridge config requires address or host")
	}
	if strings.TrimSpace(cfg.Address) != "" && strings.TrimSpace(cfg.Host) != "" {
		return fmt.Errorf("bridge config sets both address and host")
	}
	if strings.TrimSpace(cfg.Address) != "" && cfg.Port != 0 {
		return fmt.Errorf("bridge config sets both address and port; put the port in address")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("bridge config port out of range: %d", cfg.Port)
	}
	for key, raw := range map[string]string{
		"connect_timeout": cfg.ConnectTimeout,
		"read_timeout":    cfg.ReadTimeout,
		"write_timeout":   cfg.WriteTimeout,
		"retry_delay":     cfg.RetryDelay,
	} {
		if _, err := ParseDuration(key, raw); err != nil {
			return err
		}
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case "", "once", "stream":
	default:
		return fmt.Errorf("bridge config mode must be once or stream: %q", cfg.Mode)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Truncation)) {
	case "", "truncate", "strict":
	default:
		return fmt.Errorf("bridge config truncation must be truncate or strict: %q", cfg.Truncation)
	}
	return nil
}

// ParseDuration parses an optional positive duration; "" yields 0.
func ParseDuration(key, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive: %s", key, raw)
	}
	return d, nil
}
