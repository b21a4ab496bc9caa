package bridge

import (
	"context"
	"errors"

	"github.com/danmuck/posebridge/internal/observability"
	"github.com/danmuck/posebridge/internal/pose"
	"github.com/danmuck/posebridge/internal/session"
	"github.com/rs/zerolog/log"
)

// Link is the peer connection as the bridge uses it. *session.Session satisfies it.
type Link interface {
	Connect(ctx context.Context) error
	Reconnect(ctx context.Context) error
	Send(line string) error
	Receive() (string, bool, error)
	Close() error
	State() session.State
}

var _ Link = (*session.Session)(nil)

// Reader reads validated poses from a Link.
type Reader struct {
	link      Link
	validator pose.Validator
}

func NewReader(link Link, validator pose.Validator) *Reader {
	return &Reader{link: link, validator: validator}
}

// ReadPose blocks until the peer sends a valid pose line and returns it.
// Rejected lines are answered and skipped; lost links are reconnected.
// It returns early only on ctx cancellation or a non-transport link error.
func (r *Reader) ReadPose(ctx context.Context) (pose.Record, error) {
	for {
		if err := ctx.Err(); err != nil {
			return pose.Record{}, err
		}
		line, ok, err := r.link.Receive()
		if errors.Is(err, session.ErrLineTooLong) {
			verr := &pose.ValidationError{Kind: pose.KindWrongArity}
			observability.RecordValidation(pose.Outcome(verr))
			log.Warn().Msgf("bridge.Reader.ReadPose rejected oversized line err=%v", err)
			if err := r.acknowledge(ctx, pose.Acknowledgement(verr)); err != nil {
				return pose.Record{}, err
			}
			continue
		}
		if err != nil {
			if !session.NeedsReconnect(err) {
				return pose.Record{}, err
			}
			log.Warn().Msgf("bridge.Reader.ReadPose link lost err=%v", err)
			if err := r.link.Reconnect(ctx); err != nil {
				return pose.Record{}, err
			}
			continue
		}
		if !ok {
			continue
		}

		rec, verr := r.validator.Validate(line)
		observability.RecordValidation(pose.Outcome(verr))
		if verr != nil {
			log.Warn().Msgf("bridge.Reader.ReadPose rejected line=%q err=%v", line, verr)
		} else {
			log.Info().Msgf("bridge.Reader.ReadPose accepted %s", rec)
		}

		if err := r.acknowledge(ctx, pose.Acknowledgement(verr)); err != nil {
			return pose.Record{}, err
		}
		if verr == nil {
			return rec, nil
		}
	}
}

// acknowledge sends the status line. A lost link is reconnected and the
// acknowledgement is not resent.
func (r *Reader) acknowledge(ctx context.Context, status string) error {
	err := r.link.Send(status)
	if err == nil || !session.NeedsReconnect(err) {
		return err
	}
	log.Warn().Msgf("bridge.Reader.acknowledge link lost err=%v", err)
	return r.link.Reconnect(ctx)
}
