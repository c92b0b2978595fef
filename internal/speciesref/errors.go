package speciesref

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why a run failed. Each kind maps to its own exit status.
type Kind int

const (
	// KindUnknown is any error that isn't an *Error
	KindUnknown Kind = iota

	// KindValidation is malformed or inconsistent input. Nothing ran
	KindValidation

	// KindToolMissing is an external tool that's neither overridden nor on $PATH
	KindToolMissing

	// KindToolFailed is an external tool that exited non-zero
	KindToolFailed

	// KindFilesystem is an intermediate file that couldn't be created, read or removed
	KindFilesystem

	// KindTimeout is an external tool that outlived the configured timeout
	KindTimeout

	// KindCanceled is a run interrupted by a signal
	KindCanceled
)

// ErrToolNotFound is wrapped by validation errors for tool overrides
// that do not point at an existing file.
var ErrToolNotFound = errors.New("tool not found")

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "invalid input"
	case KindToolMissing:
		return "missing tool"
	case KindToolFailed:
		return "tool failed"
	case KindFilesystem:
		return "filesystem"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	}
	return "error"
}

// Error is a failure of the reference build, with the tool, argument
// or file at fault in Path.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func validationErr(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Err: errors.Errorf(format, args...)}
}

func fsErr(path string, err error) error {
	return &Error{Kind: KindFilesystem, Path: path, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch KindOf(err) {
	case KindValidation:
		return 2
	case KindToolMissing:
		return 3
	case KindToolFailed:
		return 4
	case KindFilesystem:
		return 5
	case KindTimeout:
		return 6
	case KindCanceled:
		return 130
	}
	return 1
}
