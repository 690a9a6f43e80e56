package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ralix-lang/ralix/internal/types"
)

func TestSatisfiesIdentity(t *testing.T) {
	require.True(t, types.Satisfies(types.Int, types.Int))
	require.False(t, types.Satisfies(types.Int, types.Bool))
}

func TestSatisfiesNeverSatisfiesAnything(t *testing.T) {
	require.True(t, types.Satisfies(types.Never, types.Int))
	require.True(t, types.Satisfies(types.Never, types.Bool))
}

func TestSatisfiesEverythingSatisfiesUnknown(t *testing.T) {
	require.True(t, types.Satisfies(types.Int, types.Unknown))
	require.True(t, types.Satisfies(&types.Function{Params: []types.Type{types.Int}, Return: types.Bool}, types.Unknown))
}

func TestSatisfiesNonNullIntoNullable(t *testing.T) {
	nullableInt := &types.Nullable{Elem: types.Int}
	require.True(t, types.Satisfies(types.Int, nullableInt))
	require.True(t, types.Satisfies(types.Null, nullableInt))
	require.False(t, types.Satisfies(types.Bool, nullableInt))
}

func TestUnwrapNullableDoesNotRecurse(t *testing.T) {
	require.Equal(t, types.Int, types.UnwrapNullable(types.Int))
	require.Equal(t, types.Int, types.UnwrapNullable(&types.Nullable{Elem: types.Int}))
}

func TestHashable(t *testing.T) {
	require.True(t, types.Hashable(types.Int))
	require.True(t, types.Hashable(types.String))
	require.False(t, types.Hashable(&types.Array{Elem: types.Int}))
}

func TestUnifyBindsTypeVar(t *testing.T) {
	tv := &types.TypeVar{Name: "T", ID: 1}
	subst, err := types.Unify(tv, types.Int)
	require.NoError(t, err)
	require.Equal(t, types.Int, tv.Apply(subst))
}

func TestUnifyOccursCheckFails(t *testing.T) {
	tv := &types.TypeVar{Name: "T", ID: 1}
	_, err := types.Unify(tv, &types.Array{Elem: tv})
	require.Error(t, err)
}

func TestUnifyMismatchFails(t *testing.T) {
	_, err := types.Unify(types.Int, types.Bool)
	require.Error(t, err)
}

func TestUnifyFunctionTypes(t *testing.T) {
	tv := &types.TypeVar{Name: "T", ID: 1}
	generic := &types.Function{Params: []types.Type{tv}, Return: tv}
	concrete := &types.Function{Params: []types.Type{types.Bool}, Return: types.Bool}
	subst, err := types.Unify(generic, concrete)
	require.NoError(t, err)
	require.Equal(t, types.Bool, tv.Apply(subst))
}
