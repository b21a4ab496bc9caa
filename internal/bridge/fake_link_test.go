package bridge

import (
	"context"
	"errors"
	"sync"

	"github.com/danmuck/posebridge/internal/session"
)

var errScriptDone = errors.New("fake link: script exhausted")

// recvStep is one scripted Receive outcome. A zero step is a read timeout.
type recvStep struct {
	line string
	err  error
}

func line(s string) recvStep { return recvStep{line: s} }

func timeout() recvStep { return recvStep{} }

func reset() recvStep {
	return recvStep{err: &session.TransportError{Op: "receive", Kind: session.ConnectionReset, Err: errors.New("eof")}}
}

type fakeLink struct {
	mu         sync.Mutex
	steps      []recvStep
	sent       []string
	sendErrs   []error
	connectErr error
	connects   int
	reconnects int
	closed     int
	state      session.State
}

func (l *fakeLink) Connect(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connects++
	if l.connectErr != nil {
		l.state = session.StateDisconnected
		return l.connectErr
	}
	l.state = session.StateConnected
	return nil
}

func (l *fakeLink) Reconnect(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	l.reconnects++
	l.state = session.StateConnected
	return nil
}

func (l *fakeLink) Send(s string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.sendErrs) > 0 {
		err := l.sendErrs[0]
		l.sendErrs = l.sendErrs[1:]
		if err != nil {
			l.state = session.StateDisconnected
			return err
		}
	}
	l.sent = append(l.sent, s)
	return nil
}

func (l *fakeLink) Receive() (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.steps) == 0 {
		return "", false, errScriptDone
	}
	step := l.steps[0]
	l.steps = l.steps[1:]
	if step.err != nil {
		l.state = session.StateDisconnected
		return "", false, step.err
	}
	return step.line, step.line != "", nil
}

func (l *fakeLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed++
	l.state = session.StateDisconnected
	return nil
}

func (l *fakeLink) State() session.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *fakeLink) sentLines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.sent...)
}
