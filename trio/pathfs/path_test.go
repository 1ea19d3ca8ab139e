package pathfs

import (
	"testing"

	"github.com/Hanaasagi/trio/trio/dispatch"
	"github.com/Hanaasagi/trio/trio/offload"
	"github.com/Hanaasagi/trio/trio/purepath"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemEnv(t *testing.T) *Env {
	t.Helper()
	runner := offload.NewRunner(2, 8)
	t.Cleanup(runner.Close)
	return NewEnv(WithFs(afero.NewMemMapFs()), WithRunner(runner))
}

func TestNewFromMixedSegments(t *testing.T) {
	inner := MustNew("a")

	p, err := New(inner, "b", purepath.New("c"))
	require.NoError(t, err)
	assert.Equal(t, "a/b/c", p.String())
}

func TestNewRejectsUnsupportedSegment(t *testing.T) {
	_, err := New(42)
	assert.Error(t, err)

	assert.Panics(t, func() { MustNew(42) })
}

func TestConstructionIsIdempotent(t *testing.T) {
	p := MustNew("dir", "file.txt")
	rewrapped := MustNew(p)

	assert.True(t, p.Equal(rewrapped))
	assert.Equal(t, p.String(), rewrapped.String())
}

func TestUnwrapRewrapRoundTrip(t *testing.T) {
	p := MustNew("some", "path")

	unwrapped := UnwrapArgs([]interface{}{p})
	require.Len(t, unwrapped, 1)
	raw, ok := unwrapped[0].(purepath.RawPath)
	require.True(t, ok, "facade argument must unwrap to its raw value")

	back := Rewrap(raw)
	assert.True(t, p.Equal(back))
}

func TestUnwrapPassesOtherValuesThrough(t *testing.T) {
	assert.Empty(t, UnwrapArgs(nil))

	args := UnwrapArgs([]interface{}{"plain", 7, true})
	assert.Equal(t, []interface{}{"plain", 7, true}, args)
}

func TestRewrapPassesOtherValuesThrough(t *testing.T) {
	assert.Equal(t, "x", Rewrap("x"))
	assert.Equal(t, 7, Rewrap(7))

	// Only a single top-level path value is rewrapped, never values
	// inside a sequence.
	raws := []purepath.RawPath{purepath.New("a")}
	assert.Equal(t, raws, Rewrap(raws))
}

func TestRewrapPreservesEnvironment(t *testing.T) {
	env := newMemEnv(t)
	p, err := NewIn(env, "dir", "file.txt")
	require.NoError(t, err)

	parent := p.Parent()
	assert.Same(t, env, parent.Env())
}

func TestPureForwardsMatchRawValue(t *testing.T) {
	p := MustNew("dir", "archive.tar.gz")
	raw := p.Raw()

	assert.Equal(t, raw.Name(), p.Name())
	assert.Equal(t, raw.Stem(), p.Stem())
	assert.Equal(t, raw.Suffix(), p.Suffix())
	assert.Equal(t, raw.Parts(), p.Parts())
	assert.Equal(t, raw.IsAbs(), p.IsAbs())
	assert.True(t, p.Parent().Raw().Equal(raw.Parent()))
}

func TestJoinAcceptsFacadeSegments(t *testing.T) {
	p, err := MustNew("a").Join("b", MustNew("c"))
	require.NoError(t, err)
	assert.Equal(t, "a/b/c", p.String())
}

func TestRelativeToAcceptsFacadeOperand(t *testing.T) {
	rel, err := MustNew("a/b/c").RelativeTo(MustNew("a"))
	require.NoError(t, err)
	assert.Equal(t, "b/c", rel.String())
}

func TestWithNameAndSuffix(t *testing.T) {
	p, err := MustNew("dir/file.txt").WithName("other.go")
	require.NoError(t, err)
	assert.Equal(t, "dir/other.go", p.String())

	p, err = MustNew("dir/file.txt").WithSuffix(".md")
	require.NoError(t, err)
	assert.Equal(t, "dir/file.md", p.String())
}

func TestEqualityAcceptsMixedOperands(t *testing.T) {
	p := MustNew("a")

	assert.True(t, p.Equal(MustNew("a")))
	assert.True(t, p.Equal(purepath.New("a")))
	assert.True(t, p.Equal("a"))
	assert.False(t, p.Equal(MustNew("b")))
	assert.False(t, p.Equal(42))
}

func TestOrderingOperators(t *testing.T) {
	a := MustNew("a")

	lt, err := a.Less("b")
	require.NoError(t, err)
	assert.True(t, lt)

	le, err := a.LessEq(MustNew("a"))
	require.NoError(t, err)
	assert.True(t, le)

	gt, err := a.Greater(purepath.New("b"))
	require.NoError(t, err)
	assert.False(t, gt)

	ge, err := a.GreaterEq("a")
	require.NoError(t, err)
	assert.True(t, ge)

	_, err = a.Less(42)
	assert.Error(t, err)
}

func TestJoinOperatorReturnsFacade(t *testing.T) {
	joined := MustNew("a").Div("b")
	assert.True(t, joined.Equal(MustNew("a/b")))

	rjoined := MustNew("a").RDiv(MustNew("b"))
	assert.True(t, rjoined.Equal(MustNew("b/a")))
}

func TestStringAndBytesOperators(t *testing.T) {
	p := MustNew("dir", "file.txt")
	assert.Equal(t, "dir/file.txt", p.String())
	assert.Equal(t, []byte("dir/file.txt"), p.Bytes())
}

func TestCallPureRejectsBlockingOperations(t *testing.T) {
	p := MustNew("a")

	_, err := p.CallPure("stat")
	assert.ErrorIs(t, err, dispatch.ErrWrongStrategy)

	value, err := p.CallPure("name")
	require.NoError(t, err)
	assert.Equal(t, "a", value)

	value, err = p.CallPure("eq", "a")
	require.NoError(t, err)
	assert.Equal(t, true, value)
}

func TestCallUnknownOperation(t *testing.T) {
	_, err := MustNew("a").CallPure("no_such_op")
	assert.ErrorIs(t, err, dispatch.ErrUnknownOperation)
}

func TestCallOperatorOperandCount(t *testing.T) {
	_, err := MustNew("a").CallPure("eq", "b", "c")
	assert.Error(t, err)
}
