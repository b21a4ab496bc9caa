package bridge

import (
	"context"
	"errors"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/danmuck/posebridge/internal/actuator"
	"github.com/danmuck/posebridge/internal/pose"
	"github.com/danmuck/posebridge/internal/session"
	"github.com/danmuck/posebridge/internal/testutil/testlog"
)

type moveRecorder struct {
	moves []pose.Record
	err   error
	after func(n int)
}

func (m *moveRecorder) Move(_ context.Context, rec pose.Record) error {
	m.moves = append(m.moves, rec)
	if m.after != nil {
		m.after(len(m.moves))
	}
	return m.err
}

func TestParseMode(t *testing.T) {
	for raw, want := range map[string]Mode{"": ModeOnce, "once": ModeOnce, " STREAM ": ModeStream} {
		got, err := ParseMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q)=%q,%v want %q", raw, got, err, want)
		}
	}
	if _, err := ParseMode("forever"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewServiceRequiresActuator(t *testing.T) {
	if _, err := NewServiceWithLink(DefaultServiceConfig(), &fakeLink{}, nil); !errors.Is(err, ErrActuatorRequired) {
		t.Fatalf("expected ErrActuatorRequired, got %v", err)
	}
}

func TestDefaultServiceConfig(t *testing.T) {
	cfg := DefaultServiceConfig()
	if cfg.Mode != ModeOnce || cfg.Truncation != pose.PolicyTruncate {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Session.Address != "127.0.0.1:5000" {
		t.Fatalf("unexpected address: %q", cfg.Session.Address)
	}
	if cfg.Session.ReadTimeout != 20*time.Second || cfg.Session.RetryDelay != 5*time.Second {
		t.Fatalf("unexpected session timing: %+v", cfg.Session)
	}
}

func TestServiceRunOnce(t *testing.T) {
	testlog.Start(t)
	link := &fakeLink{steps: []recvStep{timeout(), line("1 2"), line(validLine), line(validLine)}}
	moves := &moveRecorder{}
	svc, err := NewServiceWithLink(DefaultServiceConfig(), link, moves)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !reflect.DeepEqual(moves.moves, []pose.Record{validRecord}) {
		t.Fatalf("unexpected moves: %+v", moves.moves)
	}
	if link.connects != 1 || link.closed != 1 {
		t.Fatalf("unexpected lifecycle connects=%d closed=%d", link.connects, link.closed)
	}
	if got := link.sentLines(); !reflect.DeepEqual(got, []string{pose.AckWrongArity, pose.AckSaved}) {
		t.Fatalf("unexpected acks: %q", got)
	}
}

func TestServiceInitialConnectFailureFallsBackToReconnect(t *testing.T) {
	testlog.Start(t)
	link := &fakeLink{
		steps:      []recvStep{line(validLine)},
		connectErr: &session.ConnectError{Addr: "peer:5000", Kind: session.ConnectRefused, Err: errors.New("refused")},
	}
	svc, err := NewServiceWithLink(DefaultServiceConfig(), link, &moveRecorder{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if link.connects != 1 || link.reconnects != 1 {
		t.Fatalf("unexpected connects=%d reconnects=%d", link.connects, link.reconnects)
	}
}

func TestServiceStreamRunsUntilCancelled(t *testing.T) {
	testlog.Start(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	link := &fakeLink{steps: []recvStep{line(validLine), line("0 0 0 0 0 0 0"), line(validLine)}}
	moves := &moveRecorder{after: func(n int) {
		if n == 2 {
			cancel()
		}
	}}
	cfg := DefaultServiceConfig()
	cfg.Mode = ModeStream
	svc, err := NewServiceWithLink(cfg, link, moves)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Run(ctx); err != nil {
		t.Fatalf("interrupt should be a clean exit, got %v", err)
	}
	if len(moves.moves) != 2 {
		t.Fatalf("unexpected move count: %d", len(moves.moves))
	}
	if moves.moves[1] != (pose.Record{}) {
		t.Fatalf("unexpected second move: %+v", moves.moves[1])
	}
	if link.closed != 1 {
		t.Fatalf("expected orderly close, got %d", link.closed)
	}
}

func TestServiceActuatorFailureStaysLocal(t *testing.T) {
	testlog.Start(t)
	link := &fakeLink{steps: []recvStep{line(validLine)}}
	moves := &moveRecorder{err: errors.New("arm fault")}
	svc, err := NewServiceWithLink(DefaultServiceConfig(), link, moves)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := link.sentLines(); !reflect.DeepEqual(got, []string{pose.AckSaved}) {
		t.Fatalf("actuator failure must not reach the peer, got %q", got)
	}
}

func TestServiceReturnsUnexpectedLinkErrors(t *testing.T) {
	testlog.Start(t)
	svc, err := NewServiceWithLink(DefaultServiceConfig(), &fakeLink{}, &moveRecorder{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Run(context.Background()); !errors.Is(err, errScriptDone) {
		t.Fatalf("expected script error, got %v", err)
	}
}

func TestServiceHealth(t *testing.T) {
	link := &fakeLink{}
	svc, err := NewServiceWithLink(DefaultServiceConfig(), link, &moveRecorder{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if state, ok := svc.health(); ok || state != "disconnected" {
		t.Fatalf("unexpected health: %s %v", state, ok)
	}
	_ = link.Connect(context.Background())
	if state, ok := svc.health(); !ok || state != "connected" {
		t.Fatalf("unexpected health: %s %v", state, ok)
	}
}

func TestServiceEndToEnd(t *testing.T) {
	testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	peerDone := make(chan error, 1)
	go func() {
		peerDone <- func() error {
			p, err := acceptPhone(ln)
			if err != nil {
				return err
			}
			defer p.conn.Close()
			if err := p.send("abc 20 30 0.5 0.5 -0.5 -0.5"); err != nil {
				return err
			}
			if err := p.expectAck(pose.AckNotNumeric); err != nil {
				return err
			}
			if err := p.send(validLine); err != nil {
				return err
			}
			return p.expectAck(pose.AckSaved)
		}()
	}()

	cfg := DefaultServiceConfig()
	cfg.Session = fastSessionConfig(ln.Addr().String())
	var moved []pose.Record
	act := actuator.Func(func(_ context.Context, rec pose.Record) error {
		moved = append(moved, rec)
		return nil
	})
	svc, err := NewService(cfg, act, session.WithSleep(noDelay))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := <-peerDone; err != nil {
		t.Fatalf("peer: %v", err)
	}
	if !reflect.DeepEqual(moved, []pose.Record{validRecord}) {
		t.Fatalf("unexpected moves: %+v", moved)
	}
}
