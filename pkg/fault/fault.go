package fault

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind int

const (
	// Input covers a missing, unreadable or undecodable input image.
	Input Kind = iota + 1
	// Output covers an output file or directory that cannot be created.
	Output
	// Config covers parameters that make a run impossible.
	Config
	// Encode covers a failure writing a frame or a still in the middle of a run.
	Encode
)

func (k Kind) String() string {
	switch k {
	case Input:
		return "input"
	case Output:
		return "output"
	case Config:
		return "config"
	case Encode:
		return "encode"
	}
	return "unknown"
}

// Error is a terminal failure of a run, tagged with what was being done and on
// which path.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s '%s': %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Cause lets github.com/pkg/errors.Cause walk through.
func (e *Error) Cause() error {
	return e.Err
}

func New(kind Kind, op, path string, err error) error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

func Inputf(path string, err error, op string, args ...interface{}) error {
	return New(Input, fmt.Sprintf(op, args...), path, err)
}

func Outputf(path string, err error, op string, args ...interface{}) error {
	return New(Output, fmt.Sprintf(op, args...), path, err)
}

func Encodef(path string, err error, op string, args ...interface{}) error {
	return New(Encode, fmt.Sprintf(op, args...), path, err)
}

func Configf(err error, op string, args ...interface{}) error {
	return New(Config, fmt.Sprintf(op, args...), "", err)
}

// KindOf returns the kind of the outermost *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
