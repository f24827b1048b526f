package generator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoPrimaryNode is returned when no active central node anchors the
	// virtual host
	ErrNoPrimaryNode = errors.New("no primary central node found")
	// ErrUnknownKind is returned by the registry for a kind it has no generator for
	ErrUnknownKind = errors.New("unknown generator kind")
)

// GenerateError carries the object that was being generated when a fatal
// error occurred
type GenerateError struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *GenerateError) Error() string {
	return fmt.Sprintf("failed to generate %s %s: %v", e.Kind, e.Key, e.Err)
}

func (e *GenerateError) Unwrap() error {
	return e.Err
}

// CycleError is returned when an object transitively requires itself
type CycleError struct {
	Kind Kind
	Key  string
	// Path lists the objects on the generation stack, outermost first,
	// ending with the object that closed the cycle
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("reference cycle detected at %s %s: %s", e.Kind, e.Key, strings.Join(e.Path, " -> "))
}

// OutputError is returned when a configuration file cannot be written or removed
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error {
	return e.Err
}
