package session

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/danmuck/posebridge/internal/observability"
	"github.com/rs/zerolog/log"
)

// Dialer opens the underlying stream. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// SleepFunc waits d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type Option func(*Session)

func WithDialer(d Dialer) Option {
	return func(s *Session) {
		if d != nil {
			s.dialer = d
		}
	}
}

func WithSleep(fn SleepFunc) Option {
	return func(s *Session) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// Session is one logical link to the peer. The conn, its reader and any
// partial line are replaced together on every connect.
type Session struct {
	cfg    Config
	dialer Dialer
	sleep  SleepFunc

	state      atomic.Int32
	conn       net.Conn
	reader     *bufio.Reader
	partial    strings.Builder
	discarding bool
}

func New(cfg Config, opts ...Option) (*Session, error) {
	if strings.TrimSpace(cfg.Address) == "" {
		return nil, ErrAddressRequired
	}
	cfg = cfg.WithDefaults()
	s := &Session{
		cfg:    cfg,
		dialer: &net.Dialer{Timeout: cfg.ConnectTimeout},
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Session) Address() string {
	return s.cfg.Address
}

// State is safe to read from other goroutines, e.g. health checks.
func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(state State) {
	s.state.Store(int32(state))
}

// Connect makes one dial attempt and sends the readiness notice.
// Failures come back as *ConnectError and are not retried here.
func (s *Session) Connect(ctx context.Context) error {
	s.dropConn()
	s.setState(StateConnecting)
	log.Info().Msgf("session.Session.Connect dialing addr=%q", s.cfg.Address)

	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	conn, err := s.dialer.DialContext(dialCtx, "tcp", s.cfg.Address)
	cancel()
	if err != nil {
		return s.connectFailure(err)
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetKeepAlive(true)
		_ = tcpConn.SetKeepAlivePeriod(30 * time.Second)
	}

	s.conn = conn
	s.reader = bufio.NewReader(conn)
	s.setState(StateConnected)
	// Written directly so a failed notice counts once, as a connect failure.
	if err := s.write(s.cfg.ReadyNotice); err != nil {
		return s.connectFailure(err)
	}

	observability.RecordConnect("ok")
	log.Info().Msgf("session.Session.Connect connected addr=%q local=%s", s.cfg.Address, conn.LocalAddr())
	return nil
}

func (s *Session) connectFailure(err error) error {
	s.dropConn()
	kind := classifyConnect(err)
	observability.RecordConnect(string(kind))
	if kind == ConnectRefused {
		log.Warn().Msgf("session.Session.Connect refused addr=%q (is the peer listening?)", s.cfg.Address)
	} else {
		log.Warn().Msgf("session.Session.Connect failed addr=%q err=%v", s.cfg.Address, err)
	}
	return &ConnectError{Addr: s.cfg.Address, Kind: kind, Err: err}
}

// Send writes line plus a newline terminator.
func (s *Session) Send(line string) error {
	if s.conn == nil {
		return ErrNotConnected
	}
	if err := s.write(line); err != nil {
		return s.transportFailure("send", err)
	}
	return nil
}

func (s *Session) write(line string) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
		return err
	}
	_, err := io.WriteString(s.conn, line+"\n")
	return err
}

// Receive waits up to ReadTimeout for one line. ok is false on timeout or when
// the line is blank after trimming; neither is an error. Bytes read before a
// timeout are kept and prefixed to the next line. A line longer than
// MaxLineBytes yields ErrLineTooLong once and the rest of it is discarded.
func (s *Session) Receive() (line string, ok bool, err error) {
	if s.conn == nil {
		return "", false, ErrNotConnected
	}
	if err := s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
		return "", false, s.transportFailure("receive", err)
	}

	for {
		chunk, readErr := s.reader.ReadSlice('\n')
		if s.discarding {
			if readErr == nil {
				s.discarding = false
				continue
			}
		} else {
			s.partial.Write(chunk)
			pending := s.partial.Len()
			if readErr == nil {
				pending--
			}
			if pending > MaxLineBytes {
				log.Warn().Msgf("session.Session.Receive line exceeds limit=%d, discarding", MaxLineBytes)
				s.partial.Reset()
				s.discarding = readErr != nil
				return "", false, ErrLineTooLong
			}
		}

		switch {
		case readErr == nil:
			return s.takeLine()
		case errors.Is(readErr, bufio.ErrBufferFull):
			continue
		case isTimeout(readErr):
			log.Debug().Msgf("session.Session.Receive timeout after=%s pending=%d", s.cfg.ReadTimeout, s.partial.Len())
			return "", false, nil
		case readErr == io.EOF && strings.TrimSpace(s.partial.String()) != "":
			// Deliver an unterminated final line; the next call sees the close.
			return s.takeLine()
		default:
			return "", false, s.transportFailure("receive", readErr)
		}
	}
}

func (s *Session) takeLine() (string, bool, error) {
	line := strings.TrimSpace(s.partial.String())
	s.partial.Reset()
	if line == "" {
		return "", false, nil
	}
	observability.RecordLineReceived()
	log.Debug().Msgf("session.Session.Receive line=%q", line)
	return line, true, nil
}

func (s *Session) transportFailure(op string, err error) error {
	kind := classifyTransport(err)
	s.dropConn()
	observability.RecordTransportError(op, string(kind))
	log.Warn().Msgf("session.Session.%s peer lost addr=%q kind=%s err=%v", op, s.cfg.Address, kind, err)
	return &TransportError{Op: op, Kind: kind, Err: err}
}

// Reconnect replaces the conn, retrying Connect every RetryDelay until one
// succeeds. There is no attempt cap; only ctx cancellation ends the loop early.
func (s *Session) Reconnect(ctx context.Context) error {
	s.dropConn()
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		observability.RecordReconnectAttempt()
		err := s.Connect(ctx)
		if err == nil {
			log.Info().Msgf("session.Session.Reconnect restored addr=%q attempts=%d", s.cfg.Address, attempt)
			return nil
		}
		log.Info().Msgf("session.Session.Reconnect retry in %s attempt=%d", s.cfg.RetryDelay, attempt)
		if err := s.sleep(ctx, s.cfg.RetryDelay); err != nil {
			return err
		}
	}
}

// Close releases the conn. It is safe to call more than once.
func (s *Session) Close() error {
	if s.conn == nil {
		s.setState(StateDisconnected)
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.reader = nil
	s.partial.Reset()
	s.discarding = false
	s.setState(StateDisconnected)
	log.Info().Msgf("session.Session.Close addr=%q", s.cfg.Address)
	return err
}

func (s *Session) dropConn() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.conn = nil
	s.reader = nil
	s.partial.Reset()
	s.discarding = false
	s.setState(StateDisconnected)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
