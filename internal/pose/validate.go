package pose

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Policy decides what happens to lines with more than Arity fields.
type Policy string

const (
	// PolicyTruncate keeps the leading Arity fields and drops the rest.
	PolicyTruncate Policy = "truncate"
	// PolicyStrict rejects the line with KindTooManyFields.
	PolicyStrict Policy = "strict"
)

func ParsePolicy(raw string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyTruncate:
		return PolicyTruncate, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("pose: unknown truncation policy %q", raw)
	}
}

// Validator turns raw pose lines into Records. The zero value truncates.
type Validator struct {
	Policy Policy
}

// Validate is Validator{}.Validate.
func Validate(raw string) (Record, error) {
	return Validator{}.Validate(raw)
}

func (v Validator) Validate(raw string) (Record, error) {
	tokens := strings.Fields(raw)
	if len(tokens) > Arity {
		if v.Policy == PolicyStrict {
			return Record{}, &ValidationError{Kind: KindTooManyFields, Count: len(tokens)}
		}
		log.Warn().Msgf("pose.Validate truncated fields got=%d keep=%d", len(tokens), Arity)
		tokens = tokens[:Arity]
	}
	if len(tokens) != Arity {
		return Record{}, &ValidationError{Kind: KindWrongArity, Count: len(tokens)}
	}

	var values [Arity]float64
	for i, tok := range tokens {
		f, err := parseDecimal(tok)
		if err != nil {
			return Record{}, &ValidationError{Kind: KindNotNumeric, Field: FieldNames[i], Token: tok}
		}
		values[i] = f
	}

	// Negated comparisons so NaN fails both checks.
	for i := 0; i < 3; i++ {
		if !(values[i] > AngleMin && values[i] < AngleMax) {
			return Record{}, &ValidationError{Kind: KindAngleOutOfRange, Field: FieldNames[i], Value: values[i]}
		}
	}
	for i := 3; i < Arity; i++ {
		if !(values[i] >= CoordinateMin && values[i] <= CoordinateMax) {
			return Record{}, &ValidationError{Kind: KindCoordinateOutOfRange, Field: FieldNames[i], Value: values[i]}
		}
	}
	return recordFrom(values), nil
}

// parseDecimal accepts decimal and exponent notation plus nan/inf. Hex
// floats are refused even though ParseFloat would take them. Overflow
// yields ±Inf, which the range checks reject.
func parseDecimal(tok string) (float64, error) {
	if strings.ContainsAny(tok, "xX") {
		return 0, strconv.ErrSyntax
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return f, nil
}
