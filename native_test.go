package ink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalBinary(t *testing.T, kind NativeFunctionCallKind, left, right Value) Value {
	t.Helper()
	stack := NewEvalStack()
	stack.Push(left)
	stack.Push(right)
	require.NoError(t, executeNativeFunction(stack, NewListDefinitions(), kind))
	v, err := stack.Pop()
	require.NoError(t, err)
	return v
}

func TestNativeFunctions_Arithmetic(t *testing.T) {
	assert.Equal(t, IntValue(5), evalBinary(t, OpAdd, IntValue(2), IntValue(3)))
	assert.Equal(t, FloatValue(2.5), evalBinary(t, OpAdd, FloatValue(1), FloatValue(1.5)))
	assert.Equal(t, StringValue("ab"), evalBinary(t, OpAdd, StringValue("a"), StringValue("b")))
}

func TestNativeFunctions_DivisionByZero(t *testing.T) {
	stack := NewEvalStack()
	stack.Push(IntValue(1))
	stack.Push(IntValue(0))
	err := executeNativeFunction(stack, NewListDefinitions(), OpDivide)
	require.Error(t, err)
	assert.True(t, IsRuntime(err))
}

func TestNativeFunctions_Comparisons(t *testing.T) {
	assert.Equal(t, IntValue(1), evalBinary(t, OpGreaterThan, IntValue(5), IntValue(3)))
	assert.Equal(t, IntValue(0), evalBinary(t, OpGreaterThan, IntValue(3), IntValue(5)))
	assert.Equal(t, IntValue(1), evalBinary(t, OpEquals, StringValue("x"), StringValue("x")))
}

func TestNativeFunctions_UnaryNegateAndNot(t *testing.T) {
	stack := NewEvalStack()
	stack.Push(IntValue(5))
	require.NoError(t, executeNativeFunction(stack, NewListDefinitions(), OpNegate))
	v, err := stack.Pop()
	require.NoError(t, err)
	assert.Equal(t, IntValue(-5), v)

	stack.Push(IntValue(0))
	require.NoError(t, executeNativeFunction(stack, NewListDefinitions(), OpNot))
	v, err = stack.Pop()
	require.NoError(t, err)
	assert.Equal(t, IntValue(1), v)
}

func TestNativeFunctions_ListIncrementViaAdd(t *testing.T) {
	defs := newDefs()
	monday := listOf(defs, "Weekday", "Monday")
	stack := NewEvalStack()
	stack.Push(monday)
	stack.Push(IntValue(1))
	require.NoError(t, executeNativeFunction(stack, defs, OpAdd))
	result, err := stack.Pop()
	require.NoError(t, err)
	lv, ok := result.(*ListValue)
	require.True(t, ok)
	assert.Equal(t, 1, lv.Len())
}
