package session

import (
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPort        = 5000
	DefaultReadyNotice = "客户端就绪"
	// MaxLineBytes caps one received line, terminator excluded.
	MaxLineBytes = 4096
)

// Config defines link reliability defaults.
type Config struct {
	Address        string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RetryDelay     time.Duration
	ReadyNotice    string
}

func DefaultConfig() Config {
	return Config{
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    20 * time.Second,
		WriteTimeout:   15 * time.Second,
		RetryDelay:     5 * time.Second,
		ReadyNotice:    DefaultReadyNotice,
	}
}

// WithDefaults fills zero durations and an empty notice from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = def.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = def.RetryDelay
	}
	if strings.TrimSpace(c.ReadyNotice) == "" {
		c.ReadyNotice = def.ReadyNotice
	}
	return c
}

// JoinAddress builds host:port, defaulting the port to DefaultPort.
func JoinAddress(host string, port int) string {
	if port <= 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(strings.TrimSpace(host), strconv.Itoa(port))
}
