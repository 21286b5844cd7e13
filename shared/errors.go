package shared

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed failure taxonomy. Every error the engine returns
// carries exactly one kind; callers branch on the kind, not on message text.
type ErrorKind uint8

const (
	KindConfig     ErrorKind = 1
	KindState      ErrorKind = 2
	KindArithmetic ErrorKind = 3
	KindSlippage   ErrorKind = 4
	KindSettlement ErrorKind = 5
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindState:
		return "state"
	case KindArithmetic:
		return "arithmetic"
	case KindSlippage:
		return "slippage"
	case KindSettlement:
		return "settlement"
	}
	return "unknown"
}

// Error is a tagged failure. Op names the operation that rejected,
// Msg the reason, Err an optional wrapped cause.
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s error: %s: %v", e.Op, e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %s", e.Op, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches kind sentinels so errors.Is(err, shared.ErrState) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrConfig     = &Error{Kind: KindConfig}
	ErrState      = &Error{Kind: KindState}
	ErrArithmetic = &Error{Kind: KindArithmetic}
	ErrSlippage   = &Error{Kind: KindSlippage}
	ErrSettlement = &Error{Kind: KindSettlement}
)

func ConfigErrf(op, format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func StateErrf(op, format string, args ...any) *Error {
	return &Error{Kind: KindState, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func ArithmeticErrf(op, format string, args ...any) *Error {
	return &Error{Kind: KindArithmetic, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func SlippageErrf(op, format string, args ...any) *Error {
	return &Error{Kind: KindSlippage, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func SettlementErrf(op, format string, args ...any) *Error {
	return &Error{Kind: KindSettlement, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// WrapErr attaches a cause to a taxonomy error.
func WrapErr(kind ErrorKind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// KindOf reports the taxonomy kind of err, or zero when err carries none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
