package evaluator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ralix-lang/ralix/internal/environment"
	"github.com/ralix-lang/ralix/internal/evaluator"
	"github.com/ralix-lang/ralix/internal/lexer"
	"github.com/ralix-lang/ralix/internal/object"
	"github.com/ralix-lang/ralix/internal/parser"
)

func run(t *testing.T, input string) evaluator.EvalResult {
	t.Helper()
	p := parser.New(lexer.New(input))
	program := p.ParseProgram()
	require.Empty(t, p.Errors())
	ev := evaluator.New()
	env := environment.New()
	return ev.EvalProgram(program, env)
}

func TestEvalSimpleArithmetic(t *testing.T) {
	r := run(t, `int a = 3; a + 4`)
	require.Equal(t, evaluator.ValueResult, r.Kind)
	require.Equal(t, int64(7), r.Value.(*object.Int).Value)
}

func TestEvalLetInfersType(t *testing.T) {
	r := run(t, `let s = "foo"; s + "bar"`)
	require.Equal(t, evaluator.ValueResult, r.Kind)
	require.Equal(t, "foobar", r.Value.(*object.String).Value)
}

func TestEvalColonBodyFunctionCall(t *testing.T) {
	r := run(t, `fn add(int x, int y) -> int: x + y; add(2,3)`)
	require.Equal(t, evaluator.ValueResult, r.Kind)
	require.Equal(t, int64(5), r.Value.(*object.Int).Value)
}

func TestEvalGenericIdentityReturnsBool(t *testing.T) {
	r := run(t, `fn id[T](T x) -> T: x; id(true)`)
	require.Equal(t, evaluator.ValueResult, r.Kind)
	require.Equal(t, true, r.Value.(*object.Bool).Value)
}

func TestEvalArrayIndexAndOutOfRange(t *testing.T) {
	r := run(t, `let a = [1,2,3]; a[1]`)
	require.Equal(t, evaluator.ValueResult, r.Kind)
	require.Equal(t, int64(2), r.Value.(*object.Int).Value)

	r = run(t, `let a = [1,2,3]; a[10]`)
	require.Equal(t, evaluator.ValueResult, r.Kind)
	_, isNull := r.Value.(*object.Null)
	require.True(t, isNull)
}

func TestEvalTryPassesNonNullValueThroughCall(t *testing.T) {
	r := run(t, `fn first[T](arr[T] xs) -> T?: xs[0]?; first([10,20])`)
	require.Equal(t, evaluator.ValueResult, r.Kind)
	require.Equal(t, int64(10), r.Value.(*object.Int).Value)
}

func TestEvalDivisionByZeroPropagatesError(t *testing.T) {
	r := run(t, `1 / 0`)
	require.Equal(t, evaluator.ErrResult, r.Kind)
	require.Error(t, r.Err)
}

func TestEvalScopeReturnsLastExpressionValue(t *testing.T) {
	r := run(t, `{ 1 + 1; 2 + 2 }`)
	require.Equal(t, evaluator.ValueResult, r.Kind)
	require.Equal(t, int64(4), r.Value.(*object.Int).Value)
}

func TestEvalArrayReadSharesAggregate(t *testing.T) {
	// reading an identifier bound to an aggregate hands back the same
	// underlying Array rather than a deep copy: mutating through one
	// alias is visible through the other.
	r := run(t, `arr[int] xs = [1, 2, 3]; arr[int] ys = xs; ys[0] = 9; xs[0]`)
	require.Equal(t, evaluator.ValueResult, r.Kind)
	require.Equal(t, int64(9), r.Value.(*object.Int).Value)
}

func TestEvalCopyDuplicatesAggregate(t *testing.T) {
	r := run(t, `arr[int] xs = [1, 2, 3]; arr[int] ys = copy xs; ys[0] = 9; xs[0]`)
	require.Equal(t, evaluator.ValueResult, r.Kind)
	require.Equal(t, int64(1), r.Value.(*object.Int).Value)
}

func TestEvalConstReassignmentAtRuntimeWrites(t *testing.T) {
	// the checker is the layer that rejects `const` reassignment
	// (IsAConstant); the evaluator itself has no notion of constness
	// and will happily perform the write if asked directly.
	r := run(t, `const int c = 1; c = 2; c`)
	require.Equal(t, evaluator.ValueResult, r.Kind)
	require.Equal(t, int64(2), r.Value.(*object.Int).Value)
}

func TestCopyBitsScalarsAreIndependent(t *testing.T) {
	a := &object.Int{Value: 1}
	b, ok := object.CopyBits(a)
	require.True(t, ok)
	b.(*object.Int).Value = 2
	require.Equal(t, int64(1), a.Value)
}
