package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ralix-lang/ralix/internal/ast"
	"github.com/ralix-lang/ralix/internal/lexer"
	"github.com/ralix-lang/ralix/internal/parser"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(input))
	program := p.ParseProgram()
	require.Empty(t, p.Errors(), "unexpected parse errors: %v", p.Errors())
	return program
}

func TestParseBinding(t *testing.T) {
	program := parseProgram(t, `int a = 3;`)
	require.Len(t, program.Statements, 1)
	b, ok := program.Statements[0].(*ast.Binding)
	require.True(t, ok)
	require.Equal(t, "a", b.Name.Value)
	require.True(t, b.HasType)
}

func TestParseInfixArithmetic(t *testing.T) {
	program := parseProgram(t, `a + 4 * 2`)
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	infix, ok := stmt.Expression.(*ast.Infix)
	require.True(t, ok)
	require.Equal(t, "+", infix.Operator)
	right, ok := infix.Right.(*ast.Infix)
	require.True(t, ok)
	require.Equal(t, "*", right.Operator)
}

func TestParseFunctionLiteralAndCall(t *testing.T) {
	program := parseProgram(t, `fn add(int x, int y) -> int { x + y } add(2, 3)`)
	require.Len(t, program.Statements, 2)

	fnStmt := program.Statements[0].(*ast.ExpressionStatement)
	fn, ok := fnStmt.Expression.(*ast.FunctionLiteral)
	require.True(t, ok)
	require.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)

	callStmt := program.Statements[1].(*ast.ExpressionStatement)
	call, ok := callStmt.Expression.(*ast.Call)
	require.True(t, ok)
	require.Len(t, call.Arguments, 2)
}

func TestParseGenericFunction(t *testing.T) {
	program := parseProgram(t, `fn id[T](T x) -> T { x }`)
	fn := program.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.FunctionLiteral)
	require.Equal(t, []string{"T"}, fn.Generics)
	require.Equal(t, "T", fn.Params[0].Type.Generic)
}

func TestParseIfElse(t *testing.T) {
	program := parseProgram(t, `if a > 0 { 1 } else { 2 }`)
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	ie, ok := stmt.Expression.(*ast.IfElse)
	require.True(t, ok)
	require.NotNil(t, ie.Consequence)
	require.NotNil(t, ie.Alternative)
}

func TestParseArrayAndIndex(t *testing.T) {
	program := parseProgram(t, `[1, 2, 3][0]`)
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	idx, ok := stmt.Expression.(*ast.Index)
	require.True(t, ok)
	arr, ok := idx.Left.(*ast.Array)
	require.True(t, ok)
	require.Len(t, arr.Elements, 3)
}

func TestParseConstReassignmentStillParses(t *testing.T) {
	program := parseProgram(t, `const int C = 1; C = 2;`)
	require.Len(t, program.Statements, 2)
	_, ok := program.Statements[1].(*ast.Assign)
	require.True(t, ok)
}

func TestParseNullableTypeAnnotation(t *testing.T) {
	program := parseProgram(t, `int? maybe = null;`)
	b := program.Statements[0].(*ast.Binding)
	require.True(t, b.TypeAnnotation.Nullable)
}

func TestParseLetInfersType(t *testing.T) {
	program := parseProgram(t, `let s = "foo";`)
	b := program.Statements[0].(*ast.Binding)
	require.False(t, b.HasType)
	require.Equal(t, "s", b.Name.Value)
}

func TestParseColonBodyFunctionSugar(t *testing.T) {
	program := parseProgram(t, `fn add(int x, int y) -> int: x + y; add(2,3)`)
	require.Len(t, program.Statements, 2)
	fn := program.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.FunctionLiteral)
	body, ok := fn.Body.(*ast.Scope)
	require.True(t, ok)
	require.Len(t, body.Statements, 1)
}

func TestParseIndexAssignment(t *testing.T) {
	program := parseProgram(t, `arr[int] xs = [1, 2, 3]; xs[0] = 9;`)
	require.Len(t, program.Statements, 2)
	assign, ok := program.Statements[1].(*ast.Assign)
	require.True(t, ok)
	_, ok = assign.Target.(*ast.Index)
	require.True(t, ok)
}

func TestParseCopyExpression(t *testing.T) {
	program := parseProgram(t, `arr[int] xs = [1, 2, 3]; arr[int] ys = copy xs;`)
	b := program.Statements[1].(*ast.Binding)
	_, ok := b.Value.(*ast.Copy)
	require.True(t, ok)
}

func TestParseTypeAlias(t *testing.T) {
	program := parseProgram(t, `type Meters = int;`)
	require.Len(t, program.Statements, 1)
	a, ok := program.Statements[0].(*ast.Alias)
	require.True(t, ok)
	require.Equal(t, "Meters", a.Name.Value)
	require.Equal(t, "int", a.Type.Name)
}

func TestParseAliasUsableAsTypeName(t *testing.T) {
	program := parseProgram(t, `type Meters = int; Meters d = 5;`)
	require.Len(t, program.Statements, 2)
	b, ok := program.Statements[1].(*ast.Binding)
	require.True(t, ok)
	require.True(t, b.HasType)
	require.Equal(t, "Meters", b.TypeAnnotation.Generic)
	require.Equal(t, "d", b.Name.Value)
}
