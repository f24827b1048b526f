package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/t77yq/bamcfg/internal/datastore"
	"github.com/t77yq/bamcfg/internal/generator"
)

// ErrNotIdle is returned by Generate when the orchestrator was not reset
// since its last pass
var ErrNotIdle = errors.New("orchestrator is not idle")

// Code classifies why a pass was aborted
type Code int

const (
	CodeInternal Code = iota + 1
	CodeNoPrimaryNode
	CodeQueryFailed
	CodeCycle
	CodeOutput
	CodeCanceled
)

func (c Code) String() string {
	switch c {
	case CodeInternal:
		return "internal"
	case CodeNoPrimaryNode:
		return "no_primary_node"
	case CodeQueryFailed:
		return "query_failed"
	case CodeCycle:
		return "reference_cycle"
	case CodeOutput:
		return "output"
	case CodeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// PassError is the fatal error of an aborted pass
type PassError struct {
	NodeID int
	Kind   generator.Kind
	Code   Code
	Err    error
}

func (e *PassError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("generation pass for node %d failed (%s): %v", e.NodeID, e.Code, e.Err)
	}
	return fmt.Sprintf("generation pass for node %d failed at %s (%s): %v", e.NodeID, e.Kind, e.Code, e.Err)
}

func (e *PassError) Unwrap() error {
	return e.Err
}

// newPassError classifies err. The kind of the generator that raised the
// error wins over the step the pass was in.
func newPassError(nodeID int, step generator.Kind, err error) *PassError {
	passErr := &PassError{NodeID: nodeID, Kind: step, Code: CodeInternal, Err: err}

	var genErr *generator.GenerateError
	var cycleErr *generator.CycleError
	var queryErr *datastore.QueryError
	var outputErr *generator.OutputError

	switch {
	case errors.As(err, &cycleErr):
		passErr.Kind = cycleErr.Kind
		passErr.Code = CodeCycle
		return passErr
	case errors.As(err, &genErr):
		passErr.Kind = genErr.Kind
	}

	switch {
	case errors.Is(err, generator.ErrNoPrimaryNode):
		passErr.Code = CodeNoPrimaryNode
	case errors.As(err, &queryErr):
		passErr.Code = CodeQueryFailed
	case errors.As(err, &outputErr):
		passErr.Code = CodeOutput
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		passErr.Code = CodeCanceled
	}
	return passErr
}
