package checker_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ralix-lang/ralix/internal/checker"
	"github.com/ralix-lang/ralix/internal/lexer"
	"github.com/ralix-lang/ralix/internal/parser"
)

func check(t *testing.T, input string) *checker.Checker {
	t.Helper()
	p := parser.New(lexer.New(input))
	program := p.ParseProgram()
	require.Empty(t, p.Errors())
	c := checker.New()
	c.Check(program)
	return c
}

func TestCheckSimpleArithmeticBinding(t *testing.T) {
	c := check(t, `int a = 3; a + 4`)
	require.Empty(t, c.Errors())
}

func TestCheckFunctionCall(t *testing.T) {
	c := check(t, `fn add(int x, int y) -> int { x + y } add(2, 3)`)
	require.Empty(t, c.Errors())
}

func TestCheckGenericIdentity(t *testing.T) {
	c := check(t, `fn id[T](T x) -> T { x } id(true)`)
	require.Empty(t, c.Errors())
}

func TestCheckConstReassignmentFails(t *testing.T) {
	c := check(t, `const int C = 1; C = 2;`)
	require.NotEmpty(t, c.Errors())
	require.Contains(t, c.Errors()[0].Message, "IsAConstant")
}

func TestCheckTypeMismatchOnBinding(t *testing.T) {
	c := check(t, `bool b = 1;`)
	require.NotEmpty(t, c.Errors())
}

func TestCheckUndefinedIdentifier(t *testing.T) {
	c := check(t, `missing + 1`)
	require.NotEmpty(t, c.Errors())
	require.Contains(t, c.Errors()[0].Message, "Undefined")
}

func TestCheckArrayElementUnification(t *testing.T) {
	c := check(t, `arr[int] xs = [1, 2, 3];`)
	require.Empty(t, c.Errors())
}

func TestCheckNullableAssignment(t *testing.T) {
	c := check(t, `int? maybe = null; maybe = 5;`)
	require.Empty(t, c.Errors())
}

func TestCheckLetInfersFromValue(t *testing.T) {
	c := check(t, `let s = "foo"; s + "bar"`)
	require.Empty(t, c.Errors())
}

func TestCheckColonBodyReturnTypeMismatch(t *testing.T) {
	c := check(t, `fn f() -> int: "s";`)
	require.NotEmpty(t, c.Errors())
}

func TestCheckIndexAssignmentTypeMismatch(t *testing.T) {
	c := check(t, `arr[int] xs = [1, 2, 3]; xs[0] = "nope";`)
	require.NotEmpty(t, c.Errors())
}

func TestCheckVoidReturningFunctionAcceptsAnyTrailingExpression(t *testing.T) {
	c := check(t, `fn log(int x) -> void: x;`)
	require.Empty(t, c.Errors())
}

func TestCheckIfWithoutElseYieldsNullable(t *testing.T) {
	c := check(t, `bool cond = true; int? x = if cond { 5 };`)
	require.Empty(t, c.Errors())
}

func TestCheckTypeAliasUsableAsTypeName(t *testing.T) {
	c := check(t, `type Meters = int; Meters d = 5; d + 1`)
	require.Empty(t, c.Errors())
}

