package pose

import (
	"errors"
	"fmt"
)

var (
	ErrWrongArity           = errors.New("pose: wrong field count")
	ErrTooManyFields        = errors.New("pose: too many fields")
	ErrNotNumeric           = errors.New("pose: field is not numeric")
	ErrAngleOutOfRange      = errors.New("pose: angle out of range")
	ErrCoordinateOutOfRange = errors.New("pose: coordinate out of range")
)

// Kind labels a validation failure. Values double as metric labels.
type Kind string

const (
	KindWrongArity           Kind = "wrong_arity"
	KindTooManyFields        Kind = "too_many_fields"
	KindNotNumeric           Kind = "not_numeric"
	KindAngleOutOfRange      Kind = "angle_out_of_range"
	KindCoordinateOutOfRange Kind = "coordinate_out_of_range"
)

// ValidationError describes why a line did not become a Record.
type ValidationError struct {
	Kind  Kind
	Field string
	Token string
	Value float64
	Count int
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindWrongArity, KindTooManyFields:
		return fmt.Sprintf("%v: got=%d want=%d", e.Unwrap(), e.Count, Arity)
	case KindNotNumeric:
		return fmt.Sprintf("%v: field=%s token=%q", e.Unwrap(), e.Field, e.Token)
	default:
		return fmt.Sprintf("%v: field=%s value=%g", e.Unwrap(), e.Field, e.Value)
	}
}

func (e *ValidationError) Unwrap() error {
	switch e.Kind {
	case KindWrongArity:
		return ErrWrongArity
	case KindTooManyFields:
		return ErrTooManyFields
	case KindNotNumeric:
		return ErrNotNumeric
	case KindAngleOutOfRange:
		return ErrAngleOutOfRange
	case KindCoordinateOutOfRange:
		return ErrCoordinateOutOfRange
	default:
		return nil
	}
}

// KindOf returns the failure kind of err, or "" when err is not a validation error.
func KindOf(err error) Kind {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Kind
	}
	return ""
}
