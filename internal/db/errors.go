package db

import (
	"fmt"

	"github.com/pkg/errors"
)

var errEmptyResult = errors.New("empty result")

type Kind int

const (
	// KindConnect means no usable connection could be acquired.
	KindConnect Kind = iota + 1
	// KindExecute means the routine or query failed or returned malformed data.
	KindExecute
	// KindInvalid means the call was rejected before touching the database.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindExecute:
		return "execute"
	case KindInvalid:
		return "invalid call"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind   Kind
	Target string
	Err    error
}

func (e *Error) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Target, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Cause() error {
	return e.Err
}

func newError(kind Kind, target string, err error) error {
	return &Error{Kind: kind, Target: target, Err: errors.WithStack(err)}
}

func IsConnect(err error) bool {
	return isKind(err, KindConnect)
}

func IsExecute(err error) bool {
	return isKind(err, KindExecute)
}

func IsInvalid(err error) bool {
	return isKind(err, KindInvalid)
}

func isKind(err error, kind Kind) bool {
	var dbErr *Error
	if !errors.As(err, &dbErr) {
		return false
	}
	return dbErr.Kind == kind
}
