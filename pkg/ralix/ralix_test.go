package ralix_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ralix-lang/ralix/internal/object"
	"github.com/ralix-lang/ralix/pkg/ralix"
)

// The table mirrors spec.md's concrete end-to-end scenarios: source in,
// expected runtime value or checker/parser error out.

func TestScenario1_IntArithmetic(t *testing.T) {
	v, err := ralix.Execute(`int a = 3; a + 4`)
	require.NoError(t, err)
	require.Equal(t, int64(7), v.(*object.Int).Value)
}

func TestScenario2_LetInferredStringConcat(t *testing.T) {
	v, err := ralix.Execute(`let s = "foo"; s + "bar"`)
	require.NoError(t, err)
	require.Equal(t, "foobar", v.(*object.String).Value)
}

func TestScenario3_ColonBodyFunctionCall(t *testing.T) {
	v, err := ralix.Execute(`fn add(int x, int y) -> int: x + y; add(2,3)`)
	require.NoError(t, err)
	require.Equal(t, int64(5), v.(*object.Int).Value)
}

func TestScenario4_GenericIdentityBoundToBool(t *testing.T) {
	program, err := ralix.Parse(`fn id[T](T x) -> T: x; id(true)`)
	require.NoError(t, err)
	_, err = ralix.Check(program)
	require.NoError(t, err)

	v, err := ralix.Execute(`fn id[T](T x) -> T: x; id(true)`)
	require.NoError(t, err)
	require.Equal(t, true, v.(*object.Bool).Value)
}

func TestScenario5_ArrayIndexAndOutOfRangeIsNull(t *testing.T) {
	v, err := ralix.Execute(`let a = [1,2,3]; a[1]`)
	require.NoError(t, err)
	require.Equal(t, int64(2), v.(*object.Int).Value)

	v, err = ralix.Execute(`let a = [1,2,3]; a[10]`)
	require.NoError(t, err)
	_, isNull := v.(*object.Null)
	require.True(t, isNull)
}

func TestScenario6_GenericFirstWithTryPropagation(t *testing.T) {
	v, err := ralix.Execute(`fn first[T](arr[T] xs) -> T?: xs[0]?; first([10,20])`)
	require.NoError(t, err)
	require.Equal(t, int64(10), v.(*object.Int).Value)
}

func TestScenario7_ConstReassignmentIsCheckerError(t *testing.T) {
	program, err := ralix.Parse(`const int C = 1; C = 2;`)
	require.NoError(t, err)

	_, err = ralix.Check(program)
	require.Error(t, err)

	checkErr, ok := err.(*ralix.CheckError)
	require.True(t, ok)
	require.NotEmpty(t, checkErr.Errors)
	require.Contains(t, checkErr.Errors[0].Message, "IsAConstant")
}

func TestScenario8_ReturnTypeMismatchIsCheckerError(t *testing.T) {
	program, err := ralix.Parse(`fn f() -> int: "s";`)
	require.NoError(t, err)

	_, err = ralix.Check(program)
	require.Error(t, err)

	checkErr, ok := err.(*ralix.CheckError)
	require.True(t, ok)
	require.NotEmpty(t, checkErr.Errors)
}

func TestSessionRunPersistsBindingsAcrossTurns(t *testing.T) {
	s := ralix.NewSession()

	_, err := s.Run(`int a = 3;`)
	require.NoError(t, err)

	v, err := s.Run(`a + 1`)
	require.NoError(t, err)
	require.Equal(t, int64(4), v.(*object.Int).Value)
}

func TestDiagnoseFormatsParseErrorWithCaret(t *testing.T) {
	source := `int a = ;`
	_, err := ralix.Parse(source)
	require.Error(t, err)

	out := ralix.Diagnose(source, err, false)
	require.Contains(t, out, "int a = ;")
}

func TestDiagnoseFormatsCheckError(t *testing.T) {
	source := `bool b = 1;`
	program, err := ralix.Parse(source)
	require.NoError(t, err)

	_, err = ralix.Check(program)
	require.Error(t, err)

	out := ralix.Diagnose(source, err, false)
	require.Contains(t, out, "bool b = 1;")
}
