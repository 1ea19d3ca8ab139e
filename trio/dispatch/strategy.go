package dispatch

import (
	"context"
	"fmt"

	"github.com/Hanaasagi/trio/trio/offload"
	"github.com/Hanaasagi/trio/trio/purepath"

	"github.com/spf13/afero"
)

// Strategy is the calling convention assigned to a classified operation.
type Strategy int

const (
	// StrategyPure forwards synchronously on the caller's goroutine.
	StrategyPure Strategy = iota
	// StrategyBlocking offloads to a worker and suspends the caller.
	StrategyBlocking
	// StrategyOperator forwards an operator taking at most one operand.
	StrategyOperator
)

// String returns the strategy name for logging and errors.
func (s Strategy) String() string {
	switch s {
	case StrategyPure:
		return "pure"
	case StrategyBlocking:
		return "blocking"
	case StrategyOperator:
		return "operator"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// PureFunc is the shape of a non-blocking forward: it computes on the raw
// value only and performs no I/O.
type PureFunc func(raw purepath.RawPath, args []interface{}) (interface{}, error)

// BlockingFunc is the shape of a blocking forward: it may perform I/O
// against the filesystem and must only run on an offload worker.
type BlockingFunc func(fsys afero.Fs, raw purepath.RawPath, args []interface{}) (interface{}, error)

// OperatorFunc is the shape of an operator forward. operand is nil for
// unary operators such as string conversion.
type OperatorFunc func(raw purepath.RawPath, operand interface{}) (interface{}, error)

// Entry binds one classified operation name to its strategy and to exactly
// one bound function of the matching shape. Entries are immutable after
// classification.
type Entry struct {
	name     string
	strategy Strategy

	pure     PureFunc
	blocking BlockingFunc
	operator OperatorFunc
}

// Name returns the operation name.
func (e *Entry) Name() string {
	return e.name
}

// Strategy returns the calling convention assigned by the classifier.
func (e *Entry) Strategy() Strategy {
	return e.strategy
}

// InvokePure runs a pure forward on the caller's goroutine. Arguments must
// already be unwrapped; the result may be a purepath.RawPath for the caller
// to rewrap.
func (e *Entry) InvokePure(raw purepath.RawPath, args []interface{}) (interface{}, error) {
	if e.strategy != StrategyPure {
		return nil, fmt.Errorf("%w: %s is %s, not pure", ErrWrongStrategy, e.name, e.strategy)
	}
	return e.pure(raw, args)
}

// InvokeBlocking binds the operation and its unwrapped arguments into a
// deferred invocation, hands it to the runner, and suspends until the
// worker reports completion. Errors from the underlying operation are
// returned unchanged.
func (e *Entry) InvokeBlocking(ctx context.Context, runner *offload.Runner, fsys afero.Fs, raw purepath.RawPath, args []interface{}) (interface{}, error) {
	if e.strategy != StrategyBlocking {
		return nil, fmt.Errorf("%w: %s is %s, not blocking", ErrWrongStrategy, e.name, e.strategy)
	}

	fut, err := runner.Submit(ctx, func() (interface{}, error) {
		return e.blocking(fsys, raw, args)
	})
	if err != nil {
		return nil, err
	}
	return fut.Await(ctx)
}

// InvokeOperator runs an operator forward. operand must already be
// unwrapped; pass nil for unary operators.
func (e *Entry) InvokeOperator(raw purepath.RawPath, operand interface{}) (interface{}, error) {
	if e.strategy != StrategyOperator {
		return nil, fmt.Errorf("%w: %s is %s, not operator", ErrWrongStrategy, e.name, e.strategy)
	}
	return e.operator(raw, operand)
}
