package bridge

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/posebridge/internal/pose"
	"github.com/danmuck/posebridge/internal/session"
	"github.com/danmuck/posebridge/internal/testutil/testlog"
)

const (
	validLine = "10 20 30 0.5 0.5 -0.5 -0.5"
)

var validRecord = pose.Record{Yaw: 10, Pitch: 20, Roll: 30, LX: 0.5, LY: 0.5, RX: -0.5, RY: -0.5}

func TestReadPoseAcceptsValidLine(t *testing.T) {
	testlog.Start(t)
	link := &fakeLink{steps: []recvStep{line(validLine)}}
	rec, err := NewReader(link, pose.Validator{}).ReadPose(context.Background())
	if err != nil {
		t.Fatalf("read pose: %v", err)
	}
	if rec != validRecord {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if got := link.sentLines(); !reflect.DeepEqual(got, []string{pose.AckSaved}) {
		t.Fatalf("unexpected acks: %q", got)
	}
}

func TestReadPoseTimeoutsAreSilent(t *testing.T) {
	testlog.Start(t)
	link := &fakeLink{steps: []recvStep{timeout(), timeout(), timeout(), line(validLine)}}
	if _, err := NewReader(link, pose.Validator{}).ReadPose(context.Background()); err != nil {
		t.Fatalf("read pose: %v", err)
	}
	if got := link.sentLines(); !reflect.DeepEqual(got, []string{pose.AckSaved}) {
		t.Fatalf("timeouts must not emit protocol lines, got %q", got)
	}
	if link.reconnects != 0 {
		t.Fatalf("timeouts must not reconnect, got %d", link.reconnects)
	}
}

func TestReadPoseReconnectsAfterReset(t *testing.T) {
	testlog.Start(t)
	link := &fakeLink{steps: []recvStep{reset(), line(validLine)}}
	rec, err := NewReader(link, pose.Validator{}).ReadPose(context.Background())
	if err != nil {
		t.Fatalf("read pose: %v", err)
	}
	if rec != validRecord {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if link.reconnects != 1 {
		t.Fatalf("expected one reconnect, got %d", link.reconnects)
	}
}

func TestReadPoseRejectsUntilValid(t *testing.T) {
	testlog.Start(t)
	link := &fakeLink{steps: []recvStep{
		line("10 20 30 0.5 0.5"),
		line("abc 20 30 0.5 0.5 -0.5 -0.5"),
		line("200 20 30 0.5 0.5 -0.5 -0.5"),
		line("10 20 30 0.5 0.5 -0.5 -1000.001"),
		line(validLine),
	}}
	rec, err := NewReader(link, pose.Validator{}).ReadPose(context.Background())
	if err != nil {
		t.Fatalf("read pose: %v", err)
	}
	if rec != validRecord {
		t.Fatalf("unexpected record: %+v", rec)
	}
	want := []string{
		pose.AckWrongArity,
		pose.AckNotNumeric,
		pose.AckAngleOutOfRange,
		pose.AckCoordinateOutRange,
		pose.AckSaved,
	}
	if got := link.sentLines(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected acks:\n got=%q\nwant=%q", got, want)
	}
}

func TestReadPoseStrictPolicy(t *testing.T) {
	testlog.Start(t)
	link := &fakeLink{steps: []recvStep{line(validLine + " 1 2"), line(validLine)}}
	if _, err := NewReader(link, pose.Validator{Policy: pose.PolicyStrict}).ReadPose(context.Background()); err != nil {
		t.Fatalf("read pose: %v", err)
	}
	want := []string{pose.AckWrongArity, pose.AckSaved}
	if got := link.sentLines(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected acks: %q", got)
	}
}

func TestReadPoseAckFailureReconnectsAndReturnsRecord(t *testing.T) {
	testlog.Start(t)
	link := &fakeLink{
		steps:    []recvStep{line(validLine)},
		sendErrs: []error{&session.TransportError{Op: "send", Kind: session.BrokenPipe, Err: errors.New("epipe")}},
	}
	rec, err := NewReader(link, pose.Validator{}).ReadPose(context.Background())
	if err != nil {
		t.Fatalf("read pose: %v", err)
	}
	if rec != validRecord {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if link.reconnects != 1 {
		t.Fatalf("expected reconnect after broken pipe, got %d", link.reconnects)
	}
}

func TestReadPoseRejectionAckFailureKeepsReading(t *testing.T) {
	testlog.Start(t)
	link := &fakeLink{
		steps:    []recvStep{line("1 2"), line(validLine)},
		sendErrs: []error{&session.TransportError{Op: "send", Kind: session.ConnectionReset, Err: errors.New("reset")}},
	}
	if _, err := NewReader(link, pose.Validator{}).ReadPose(context.Background()); err != nil {
		t.Fatalf("read pose: %v", err)
	}
	if got := link.sentLines(); !reflect.DeepEqual(got, []string{pose.AckSaved}) {
		t.Fatalf("unexpected acks: %q", got)
	}
}

func TestReadPoseAnswersOversizedLineAsWrongArity(t *testing.T) {
	testlog.Start(t)
	link := &fakeLink{steps: []recvStep{{err: session.ErrLineTooLong}, line(validLine)}}
	rec, err := NewReader(link, pose.Validator{}).ReadPose(context.Background())
	if err != nil {
		t.Fatalf("read pose: %v", err)
	}
	if rec != validRecord {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if got := link.sentLines(); !reflect.DeepEqual(got, []string{pose.AckWrongArity, pose.AckSaved}) {
		t.Fatalf("unexpected acks: %q", got)
	}
	if link.reconnects != 0 {
		t.Fatalf("oversized line must not reconnect, got %d", link.reconnects)
	}
}

func TestReadPoseReturnsNonTransportErrors(t *testing.T) {
	testlog.Start(t)
	link := &fakeLink{}
	_, err := NewReader(link, pose.Validator{}).ReadPose(context.Background())
	if !errors.Is(err, errScriptDone) {
		t.Fatalf("expected script error, got %v", err)
	}
}

func TestReadPoseHonorsCancelledContext(t *testing.T) {
	testlog.Start(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	link := &fakeLink{steps: []recvStep{line(validLine)}}
	if _, err := NewReader(link, pose.Validator{}).ReadPose(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(link.sentLines()) != 0 {
		t.Fatalf("cancelled read must not acknowledge")
	}
}
