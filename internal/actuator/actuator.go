// Package actuator defines the boundary to the arm driver that consumes
// validated poses. Driver internals live outside this module.
package actuator

import (
	"context"

	"github.com/danmuck/posebridge/internal/pose"
	"github.com/rs/zerolog"
)

// Actuator performs one side-effecting move for a validated pose.
type Actuator interface {
	Move(ctx context.Context, rec pose.Record) error
}

// Func adapts a plain function to Actuator.
type Func func(ctx context.Context, rec pose.Record) error

func (f Func) Move(ctx context.Context, rec pose.Record) error {
	return f(ctx, rec)
}

// LogActuator records moves in the log instead of driving hardware.
type LogActuator struct {
	logger zerolog.Logger
}

func NewLogActuator(logger zerolog.Logger) *LogActuator {
	return &LogActuator{logger: logger}
}

func (a *LogActuator) Move(_ context.Context, rec pose.Record) error {
	a.logger.Info().
		Float64("yaw", rec.Yaw).
		Float64("pitch", rec.Pitch).
		Float64("roll", rec.Roll).
		Float64("lx", rec.LX).
		Float64("ly", rec.LY).
		Float64("rx", rec.RX).
		Float64("ry", rec.RY).
		Msg("actuator.LogActuator.Move")
	return nil
}
