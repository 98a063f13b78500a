package meshdiff

import (
	"fmt"

	"github.com/pkg/errors"
)

// An ErrorKind classifies the stage failures a pipeline run can end with.
type ErrorKind int

const (
	LoadError ErrorKind = iota + 1
	RebuildError
	CombineError
	SaveError
)

func (k ErrorKind) String() string {
	switch k {
	case LoadError:
		return "LoadError"
	case RebuildError:
		return "RebuildError"
	case CombineError:
		return "CombineError"
	case SaveError:
		return "SaveError"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the failure value returned by collaborators.
//
// Path is the mesh file involved, if any, and Err is the underlying cause.
type Error struct {
	Kind ErrorKind
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, path string, err error, format string, args ...any) *Error {
	return &Error{
		Kind: kind,
		Path: path,
		Msg:  fmt.Sprintf(format, args...),
		Err:  err,
	}
}

// KindOf returns the ErrorKind of the first *Error in err's chain, or 0 if
// there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
