package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cpcf/loom/archive"
	"github.com/cpcf/loom/flow"
	"github.com/cpcf/loom/resolve"
	"github.com/cpcf/loom/transform"
)

// ErrorKind classifies generation failures.
type ErrorKind int

const (
	IO ErrorKind = iota
	MissingSource
	InvalidPath
	InvalidPattern
	InvalidRegex
	UnresolvedPlaceholder
	Render
)

func (k ErrorKind) String() string {
	switch k {
	case MissingSource:
		return "missing source"
	case InvalidPath:
		return "invalid path"
	case InvalidPattern:
		return "invalid pattern"
	case InvalidRegex:
		return "invalid regex"
	case UnresolvedPlaceholder:
		return "unresolved placeholder"
	case Render:
		return "render"
	default:
		return "io"
	}
}

// GenerationError is the terminal error of a failed generation. Directive is
// nil for failures outside any directive, such as writing the manifest.
type GenerationError struct {
	Directive flow.Directive
	Path      string
	Kind      ErrorKind
	Err       error
}

func (e *GenerationError) Error() string {
	if e.Directive != nil {
		return fmt.Sprintf("%s: %s: %v", e.Directive, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// MultiError collects the failures of a Check run.
type MultiError struct {
	Errors []*GenerationError
}

func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	msgs := make([]string, 0, len(m.Errors))
	for _, err := range m.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d errors:\n%s", len(m.Errors), strings.Join(msgs, "\n"))
}

func (m *MultiError) Unwrap() []error {
	errs := make([]error, 0, len(m.Errors))
	for _, err := range m.Errors {
		errs = append(errs, err)
	}
	return errs
}

func (m *MultiError) add(err error) {
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		genErr = &GenerationError{Kind: classify(err), Err: err}
	}
	m.Errors = append(m.Errors, genErr)
}

func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}

// KindOf returns the kind of err. Errors that carry no kind are IO.
func KindOf(err error) ErrorKind {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return classify(err)
}

func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, archive.ErrNotFound):
		return MissingSource
	case errors.Is(err, resolve.ErrInvalidPath):
		return InvalidPath
	case errors.Is(err, resolve.ErrInvalidPattern):
		return InvalidPattern
	case errors.Is(err, transform.ErrInvalidRegex):
		return InvalidRegex
	case errors.Is(err, transform.ErrUnresolvedPlaceholder):
		return UnresolvedPlaceholder
	default:
		return IO
	}
}

func fail(d flow.Directive, path string, err error) error {
	return &GenerationError{Directive: d, Path: path, Kind: classify(err), Err: err}
}
