package session

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

var (
	ErrAddressRequired = errors.New("session: address required")
	ErrNotConnected    = errors.New("session: not connected")
	// ErrLineTooLong reports a peer line over MaxLineBytes. The link stays up.
	ErrLineTooLong = errors.New("session: line too long")
)

// ConnectKind classifies a failed connect attempt.
type ConnectKind string

const (
	ConnectRefused ConnectKind = "refused"
	ConnectOther   ConnectKind = "other"
)

// ConnectError is returned by Connect. It is never retried internally.
type ConnectError struct {
	Addr string
	Kind ConnectKind
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("session: connect %s %s: %v", e.Addr, e.Kind, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// TransportKind classifies peer loss on an established link.
type TransportKind string

const (
	BrokenPipe      TransportKind = "broken_pipe"
	ConnectionReset TransportKind = "connection_reset"
)

// TransportError means the link is gone and Reconnect must run before further I/O.
type TransportError struct {
	Op   string
	Kind TransportKind
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("session: %s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NeedsReconnect reports whether err leaves the session without a usable link.
func NeedsReconnect(err error) bool {
	if errors.Is(err, ErrNotConnected) {
		return true
	}
	var terr *TransportError
	return errors.As(err, &terr)
}

func classifyConnect(err error) ConnectKind {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ConnectRefused
	}
	return ConnectOther
}

// classifyTransport maps write/read failures. A clean EOF from the peer is
// reported as a reset since both end the session the same way.
func classifyTransport(err error) TransportKind {
	if errors.Is(err, syscall.EPIPE) {
		return BrokenPipe
	}
	return ConnectionReset
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
