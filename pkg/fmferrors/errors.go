// Package fmferrors defines the typed error taxonomy shared by every
// subsystem: discovery, loader, tree assembly, context/adjust and
// query/filter. One concrete *Error type carries a Kind plus the
// offending file path and node name; per-Kind sentinels make the
// taxonomy usable with errors.Is, and errors.As recovers the full
// context.
package fmferrors

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error categories.
type Kind int

const (
	// KindGeneral is any other user-facing failure.
	KindGeneral Kind = iota
	// KindRootMissing means the tree root was not found.
	KindRootMissing
	// KindFile means a file was unreadable or carried a duplicate key.
	KindFile
	// KindYAML means YAML parsing failed, optionally with a location.
	KindYAML
	// KindInvalidDirective means a malformed '/' block or unknown key.
	KindInvalidDirective
	// KindMerge means an operator was applied to incompatible types.
	KindMerge
	// KindFilter means a filter expression had a syntax error.
	KindFilter
	// KindContext means a 'when' expression or context value was malformed.
	KindContext
)

func (k Kind) String() string {
	switch k {
	case KindRootMissing:
		return "RootMissing"
	case KindFile:
		return "FileError"
	case KindYAML:
		return "YamlError"
	case KindInvalidDirective:
		return "InvalidDirective"
	case KindMerge:
		return "MergeError"
	case KindFilter:
		return "FilterError"
	case KindContext:
		return "ContextError"
	default:
		return "GeneralError"
	}
}

// Error is the concrete error type returned by every package in this
// module. File and Node are populated where applicable, so every
// diagnostic can point at the offending file path and node name.
type Error struct {
	Kind    Kind
	File    string
	Node    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	prefix := e.Kind.String()
	if e.File != "" {
		prefix = fmt.Sprintf("%s: %s", prefix, e.File)
	}
	if e.Node != "" {
		prefix = fmt.Sprintf("%s (%s)", prefix, e.Node)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is the sentinel for e's Kind, so callers
// can write errors.Is(err, fmferrors.RootMissing).
func (e *Error) Is(target error) bool {
	sentinel, ok := target.(*Error)
	if !ok {
		return false
	}
	return sentinel.Kind == e.Kind && sentinel.File == "" && sentinel.Node == "" && sentinel.Message == ""
}

func newKind(kind Kind) *Error { return &Error{Kind: kind} }

// Sentinels usable with errors.Is, one per Kind.
var (
	General          = newKind(KindGeneral)
	RootMissing      = newKind(KindRootMissing)
	File             = newKind(KindFile)
	YAML             = newKind(KindYAML)
	InvalidDirective = newKind(KindInvalidDirective)
	Merge            = newKind(KindMerge)
	Filter           = newKind(KindFilter)
	Context          = newKind(KindContext)
)

func new_(kind Kind, file, node, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, File: file, Node: node, Message: fmt.Sprintf(format, args...)}
}

func wrap(kind Kind, file, node string, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, File: file, Node: node, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// NewRootMissing reports that no ancestor of path contains a readable
// '.fmf/version' marker.
func NewRootMissing(path string) error {
	return new_(KindRootMissing, path, "", "unable to find tree root")
}

// NewFile wraps a file-level read/duplicate-key failure.
func NewFile(file string, cause error, format string, args ...interface{}) error {
	return wrap(KindFile, file, "", cause, format, args...)
}

// NewYAML wraps a parse failure, optionally with a location already
// embedded in format/args (e.g. "line %d, column %d").
func NewYAML(file string, cause error, format string, args ...interface{}) error {
	return wrap(KindYAML, file, "", cause, format, args...)
}

// NewInvalidDirective reports a malformed '/' directive block.
func NewInvalidDirective(node, format string, args ...interface{}) error {
	return new_(KindInvalidDirective, "", node, format, args...)
}

// NewMerge reports an operator applied to incompatible types.
func NewMerge(node, format string, args ...interface{}) error {
	return new_(KindMerge, "", node, format, args...)
}

// NewFilter reports a filter-expression syntax error.
func NewFilter(format string, args ...interface{}) error {
	return new_(KindFilter, "", "", format, args...)
}

// NewContext reports a malformed 'when' expression or context value.
func NewContext(format string, args ...interface{}) error {
	return new_(KindContext, "", "", format, args...)
}

// NewGeneral wraps any other user-facing failure.
func NewGeneral(format string, args ...interface{}) error {
	return new_(KindGeneral, "", "", format, args...)
}

// As is a thin re-export of errors.As for callers that don't want an
// extra import; kept intentionally trivial.
func As(err error, target interface{}) bool { return errors.As(err, target) }
