package s3511a

import (
	"errors"
	"strconv"
)

// Errors returned by the driver. Errors caused by a byte read from the chip
// are wrapped in a *ValueError carrying that byte; use errors.Is to match.
var (
	// Hardware state.
	ErrPowerFailure  = errors.New("s3511a: backup power failure")
	ErrTestMode      = errors.New("s3511a: chip is in test mode")
	ErrInvalidStatus = errors.New("s3511a: invalid status")
	ErrNotEnabled    = errors.New("s3511a: GPIO port is not enabled")

	// Value domain.
	ErrInvalidBCD      = errors.New("s3511a: not a binary coded decimal")
	ErrInvalidMonth    = errors.New("s3511a: invalid month")
	ErrInvalidDay      = errors.New("s3511a: invalid day")
	ErrInvalidHour     = errors.New("s3511a: invalid hour")
	ErrInvalidMinute   = errors.New("s3511a: invalid minute")
	ErrInvalidSecond   = errors.New("s3511a: invalid second")
	ErrAmPmBitPresent  = errors.New("s3511a: chip is not in 24-hour mode")
	ErrInvalidDateTime = errors.New("s3511a: invalid date or time")

	// Arithmetic.
	ErrOverflow = errors.New("s3511a: date out of range")
)

// ValueError reports a raw or decoded byte that failed validation.
type ValueError struct {
	Err   error
	Value uint8
}

func (e *ValueError) Error() string {
	return e.Err.Error() + ": 0x" + strconv.FormatUint(uint64(e.Value), 16)
}

func (e *ValueError) Unwrap() error { return e.Err }

// Kind groups driver errors by what went wrong.
type Kind uint8

const (
	KindNone Kind = iota
	KindHardware
	KindValue
	KindArithmetic
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindHardware:
		return "hardware"
	case KindValue:
		return "value"
	case KindArithmetic:
		return "arithmetic"
	}
	return "other"
}

// KindOf classifies err. A nil error is KindNone and an error not produced by
// this package is KindOther.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrPowerFailure), errors.Is(err, ErrTestMode),
		errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrNotEnabled):
		return KindHardware
	case errors.Is(err, ErrInvalidBCD), errors.Is(err, ErrInvalidMonth),
		errors.Is(err, ErrInvalidDay), errors.Is(err, ErrInvalidHour),
		errors.Is(err, ErrInvalidMinute), errors.Is(err, ErrInvalidSecond),
		errors.Is(err, ErrAmPmBitPresent), errors.Is(err, ErrInvalidDateTime):
		return KindValue
	case errors.Is(err, ErrOverflow):
		return KindArithmetic
	}
	return KindOther
}
