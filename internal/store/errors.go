package store

import (
	"encoding/json"
	"fmt"
	"io/fs"

	"gitlab.com/tozd/go/errors"
)

// ErrorKind classifies store failures so callers can tell a missing file
// from a corrupt one or a permission problem.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindPermission
	KindCorrupt
	KindInvalidInput
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPermission:
		return "permission denied"
	case KindCorrupt:
		return "corrupt"
	case KindInvalidInput:
		return "invalid input"
	case KindIO:
		return "i/o"
	default:
		return "unknown"
	}
}

// ErrRecordNotFound is returned when no record matches an id or index.
var ErrRecordNotFound = errors.Base("record not found")

// Error describes a failed store operation.
type Error struct {
	Op   string
	Path string
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error of an explicit kind.
func NewError(op, path string, kind ErrorKind, err error) error {
	return errors.WithStack(&Error{Op: op, Path: path, Kind: kind, Err: err})
}

// Wrap builds an Error whose kind is derived from err.
func Wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(op, path, Classify(err), err)
}

// Classify maps an arbitrary error onto an ErrorKind.
func Classify(err error) ErrorKind {
	var storeErr *Error
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &storeErr):
		return storeErr.Kind
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, ErrRecordNotFound):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermission
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return KindCorrupt
	default:
		return KindIO
	}
}

// KindOf returns the kind of err, or KindUnknown for nil.
func KindOf(err error) ErrorKind {
	return Classify(err)
}

// Source names the generation a Load was served from.
type Source int

const (
	SourceNone Source = iota
	SourcePrimary
	SourceBackup
)

func (s Source) String() string {
	switch s {
	case SourcePrimary:
		return "primary"
	case SourceBackup:
		return "backup"
	default:
		return "none"
	}
}

// Report explains how a Load was satisfied. Load never fails; the report
// carries what went wrong on the way.
type Report struct {
	Source Source

	// Primary is set when the primary file could not be used.
	// A missing primary on first run is reported as KindNotFound.
	Primary error

	// Backup is set when the backup was consulted and could not be used.
	Backup error
}

// Recovered reports whether the records came from the backup generation.
func (r Report) Recovered() bool {
	return r.Source == SourceBackup
}

// Lost reports whether an existing primary was unusable and no backup could
// stand in for it.
func (r Report) Lost() bool {
	return r.Source == SourceNone && r.Primary != nil && KindOf(r.Primary) != KindNotFound
}
