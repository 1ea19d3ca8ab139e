// Package pathfs exposes the asynchronous path facade. A Path owns exactly
// one raw path value and forwards every operation through the dispatch
// table: pure operations run on the caller's goroutine, blocking
// operations are offloaded to workers, and operators interoperate between
// facade and raw operands.
package pathfs

import (
	"fmt"

	"github.com/Hanaasagi/trio/trio/dispatch"
	"github.com/Hanaasagi/trio/trio/purepath"
)

// Path wraps one raw path value. The facade exclusively owns its raw
// value; it is only exposed transiently across a dispatcher call. Path
// values are immutable: every forwarded operation that produces a path
// produces a new facade.
type Path struct {
	raw purepath.RawPath
	env *Env
}

// New builds a Path from path segments in the default environment.
// Segments may be strings, raw path values, or other facade paths, which
// are unwrapped first.
func New(segments ...interface{}) (*Path, error) {
	return NewIn(DefaultEnv(), segments...)
}

// NewIn builds a Path bound to the given environment.
func NewIn(env *Env, segments ...interface{}) (*Path, error) {
	if env == nil {
		env = DefaultEnv()
	}
	parts := make([]string, 0, len(segments))
	for i, seg := range UnwrapArgs(segments) {
		switch s := seg.(type) {
		case string:
			parts = append(parts, s)
		case purepath.RawPath:
			parts = append(parts, s.String())
		default:
			return nil, fmt.Errorf("segment %d: unsupported type %T", i, seg)
		}
	}
	return &Path{raw: purepath.New(parts...), env: env}, nil
}

// MustNew is New for segments known to be valid; it panics on error.
func MustNew(segments ...interface{}) *Path {
	p, err := New(segments...)
	if err != nil {
		panic(fmt.Sprintf("pathfs: %v", err))
	}
	return p
}

// Raw returns the owned raw path value, satisfying the unwrap protocol.
func (p *Path) Raw() purepath.RawPath {
	return p.raw
}

// Env returns the environment the path is bound to.
func (p *Path) Env() *Env {
	return p.env
}

// pure is the non-blocking dispatcher: unwrap arguments, invoke the
// classified pure forward on the owned raw value, rewrap the result.
func (p *Path) pure(name string, args ...interface{}) (interface{}, error) {
	entry, err := dispatch.Shared().Lookup(name)
	if err != nil {
		return nil, err
	}
	value, err := entry.InvokePure(p.raw, UnwrapArgs(args))
	if err != nil {
		return nil, err
	}
	return p.env.rewrap(value), nil
}

// mustPure invokes a pure forward whose binding cannot fail. A failure
// here means the dispatch table itself is broken.
func (p *Path) mustPure(name string, args ...interface{}) interface{} {
	value, err := p.pure(name, args...)
	if err != nil {
		panic(fmt.Sprintf("pathfs: %s: %v", name, err))
	}
	return value
}

// operator is the operator dispatcher: unwrap the operand if it is a
// facade, invoke the classified operator forward, rewrap the result.
// A nil operand selects the unary form.
func (p *Path) operator(name string, operand interface{}) (interface{}, error) {
	entry, err := dispatch.Shared().Lookup(name)
	if err != nil {
		return nil, err
	}
	if w, ok := operand.(Wrapper); ok {
		operand = w.Raw()
	}
	value, err := entry.InvokeOperator(p.raw, operand)
	if err != nil {
		return nil, err
	}
	return p.env.rewrap(value), nil
}

func (p *Path) mustOperator(name string, operand interface{}) interface{} {
	value, err := p.operator(name, operand)
	if err != nil {
		panic(fmt.Sprintf("pathfs: %s: %v", name, err))
	}
	return value
}

// Pure forwards. These never suspend and always run to completion on the
// caller's goroutine.

// Name returns the final path component.
func (p *Path) Name() string {
	return p.mustPure("name").(string)
}

// Stem returns the final path component without its suffix.
func (p *Path) Stem() string {
	return p.mustPure("stem").(string)
}

// Suffix returns the extension of the final path component.
func (p *Path) Suffix() string {
	return p.mustPure("suffix").(string)
}

// Parts returns the path components.
func (p *Path) Parts() []string {
	return p.mustPure("parts").([]string)
}

// Parent returns the logical parent path.
func (p *Path) Parent() *Path {
	return p.mustPure("parent").(*Path)
}

// IsAbs reports whether the path is absolute.
func (p *Path) IsAbs() bool {
	return p.mustPure("is_abs").(bool)
}

// Join appends segments, which may be strings, raw paths, or facades.
func (p *Path) Join(segments ...interface{}) (*Path, error) {
	value, err := p.pure("join", segments...)
	if err != nil {
		return nil, err
	}
	return value.(*Path), nil
}

// Match reports whether the path matches the shell pattern.
func (p *Path) Match(pattern string) (bool, error) {
	value, err := p.pure("match", pattern)
	if err != nil {
		return false, err
	}
	return value.(bool), nil
}

// RelativeTo returns the path relative to other.
func (p *Path) RelativeTo(other interface{}) (*Path, error) {
	value, err := p.pure("relative_to", other)
	if err != nil {
		return nil, err
	}
	return value.(*Path), nil
}

// WithName returns a path with the final component replaced.
func (p *Path) WithName(name string) (*Path, error) {
	value, err := p.pure("with_name", name)
	if err != nil {
		return nil, err
	}
	return value.(*Path), nil
}

// WithSuffix returns a path with the suffix of the final component
// replaced.
func (p *Path) WithSuffix(suffix string) (*Path, error) {
	value, err := p.pure("with_suffix", suffix)
	if err != nil {
		return nil, err
	}
	return value.(*Path), nil
}

// Clean returns the cleaned path.
func (p *Path) Clean() *Path {
	return p.mustPure("clean").(*Path)
}

// Operator forwards. Binary operators accept a facade path, a raw path,
// or a string operand.

// String returns the path string. Implementing fmt.Stringer is the
// facade's path-like integration point with the rest of the platform.
func (p *Path) String() string {
	return p.mustOperator("str", nil).(string)
}

// Bytes returns the path string as a byte slice.
func (p *Path) Bytes() []byte {
	return p.mustOperator("bytes", nil).([]byte)
}

// Equal reports whether other holds the same path. A non-path operand
// compares unequal rather than failing.
func (p *Path) Equal(other interface{}) bool {
	return p.mustOperator("eq", other).(bool)
}

// Less reports whether p orders before other.
func (p *Path) Less(other interface{}) (bool, error) {
	value, err := p.operator("lt", other)
	if err != nil {
		return false, err
	}
	return value.(bool), nil
}

// LessEq reports whether p orders before or equal to other.
func (p *Path) LessEq(other interface{}) (bool, error) {
	value, err := p.operator("le", other)
	if err != nil {
		return false, err
	}
	return value.(bool), nil
}

// Greater reports whether p orders after other.
func (p *Path) Greater(other interface{}) (bool, error) {
	value, err := p.operator("gt", other)
	if err != nil {
		return false, err
	}
	return value.(bool), nil
}

// GreaterEq reports whether p orders after or equal to other.
func (p *Path) GreaterEq(other interface{}) (bool, error) {
	value, err := p.operator("ge", other)
	if err != nil {
		return false, err
	}
	return value.(bool), nil
}

// Div is the path-join operator: it appends other and returns a new
// facade. It panics on an operand that is not path-like.
func (p *Path) Div(other interface{}) *Path {
	return p.mustOperator("div", other).(*Path)
}

// RDiv is the reverse path-join operator: other / p.
func (p *Path) RDiv(other interface{}) *Path {
	return p.mustOperator("rdiv", other).(*Path)
}
