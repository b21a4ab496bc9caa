package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/posebridge/internal/actuator"
	"github.com/danmuck/posebridge/internal/observability"
	"github.com/danmuck/posebridge/internal/pose"
	"github.com/danmuck/posebridge/internal/session"
	"github.com/rs/zerolog/log"
)

var ErrActuatorRequired = errors.New("bridge: actuator required")

// Mode selects how many poses a Service handles before returning.
type Mode string

const (
	// ModeOnce reads, acknowledges and actuates one pose, then returns.
	ModeOnce Mode = "once"
	// ModeStream repeats until the context is cancelled.
	ModeStream Mode = "stream"
)

func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeOnce:
		return ModeOnce, nil
	case ModeStream:
		return ModeStream, nil
	default:
		return "", fmt.Errorf("bridge: unknown mode %q", raw)
	}
}

// ServiceConfig configures one bridge process.
type ServiceConfig struct {
	Session     session.Config
	Truncation  pose.Policy
	Mode        Mode
	MetricsAddr string
}

func DefaultServiceConfig() ServiceConfig {
	cfg := session.DefaultConfig()
	cfg.Address = session.JoinAddress("127.0.0.1", session.DefaultPort)
	return ServiceConfig{
		Session:    cfg,
		Truncation: pose.PolicyTruncate,
		Mode:       ModeOnce,
	}
}

// Service owns one link and drives poses from it into an actuator.
type Service struct {
	cfg      ServiceConfig
	link     Link
	reader   *Reader
	actuator actuator.Actuator
}

// NewService builds a Service on a fresh session.Session.
func NewService(cfg ServiceConfig, act actuator.Actuator, opts ...session.Option) (*Service, error) {
	link, err := session.New(cfg.Session, opts...)
	if err != nil {
		return nil, err
	}
	return NewServiceWithLink(cfg, link, act)
}

func NewServiceWithLink(cfg ServiceConfig, link Link, act actuator.Actuator) (*Service, error) {
	if act == nil {
		return nil, ErrActuatorRequired
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeOnce
	}
	if cfg.Truncation == "" {
		cfg.Truncation = pose.PolicyTruncate
	}
	return &Service{
		cfg:      cfg,
		link:     link,
		reader:   NewReader(link, pose.Validator{Policy: cfg.Truncation}),
		actuator: act,
	}, nil
}

// Run connects and handles poses per Mode. Reads go through a Worker that
// owns the link until Run returns. Cancelling ctx is an orderly shutdown and
// returns nil.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer s.shutdown()
	defer cancel()

	if addr := strings.TrimSpace(s.cfg.MetricsAddr); addr != "" {
		go func() {
			if err := observability.Serve(ctx, addr, s.health); err != nil {
				log.Error().Msgf("bridge.Service.Run metrics listener err=%v", err)
			}
		}()
	}

	if err := s.start(ctx); err != nil {
		return interrupted(err)
	}
	log.Info().Msgf("bridge.Service.Run ready mode=%s truncation=%s", s.cfg.Mode, s.cfg.Truncation)

	worker := NewWorker(s.reader)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()
	// The link is closed only after the worker has let go of it.
	defer func() {
		cancel()
		<-done
	}()

	for {
		if err := s.handleOne(ctx, worker); err != nil {
			return interrupted(err)
		}
		if s.cfg.Mode == ModeOnce {
			return nil
		}
	}
}

// start makes one connect attempt, then falls back to the unbounded reconnect loop.
func (s *Service) start(ctx context.Context) error {
	err := s.link.Connect(ctx)
	if err == nil {
		return nil
	}
	var cerr *session.ConnectError
	if errors.As(err, &cerr) && cerr.Kind == session.ConnectRefused {
		log.Warn().Msg("bridge.Service.start peer refused; make sure the phone server is running")
	}
	return s.link.Reconnect(ctx)
}

func (s *Service) handleOne(ctx context.Context, worker *Worker) error {
	rec, err := worker.Request(ctx)
	if err != nil {
		return err
	}
	s.actuate(ctx, rec)
	return nil
}

// actuate hands rec to the actuator. Failures stay local to log and metrics.
func (s *Service) actuate(ctx context.Context, rec pose.Record) {
	err := s.actuator.Move(ctx, rec)
	observability.RecordActuation(err == nil)
	if err != nil {
		log.Error().Msgf("bridge.Service.actuate move failed %s err=%v", rec, err)
		return
	}
	log.Info().Msgf("bridge.Service.actuate move ok %s", rec)
}

func (s *Service) health() (string, bool) {
	state := s.link.State()
	return state.String(), state == session.StateConnected
}

func (s *Service) shutdown() {
	if err := s.link.Close(); err != nil {
		log.Warn().Msgf("bridge.Service.shutdown close err=%v", err)
	}
	log.Info().Msg("bridge.Service.shutdown link closed")
}

func interrupted(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		log.Info().Msgf("bridge.Service.Run interrupted: %v", err)
		return nil
	}
	return err
}
