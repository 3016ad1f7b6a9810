package ink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngineWithGlobals(globals map[string]Value) *Engine {
	root := NewContainer("root")
	return NewEngine(root, NewListDefinitions(), globals, NewConfig(), 0)
}

func TestGetVariable_GlobalLookup(t *testing.T) {
	e := newEngineWithGlobals(map[string]Value{"gold": IntValue(10)})

	v, err := e.GetVariable("gold", ContextUnknown)
	require.NoError(t, err)
	assert.Equal(t, IntValue(10), v)
}

func TestGetVariable_Undefined_IsWarning(t *testing.T) {
	e := newEngineWithGlobals(nil)

	_, err := e.GetVariable("missing", ContextUnknown)
	require.Error(t, err)
	se, ok := err.(StoryError)
	require.True(t, ok)
	assert.Equal(t, KindWarning, se.Kind)
}

func TestGetVariable_UnknownContextPrefersGlobalOverTemporary(t *testing.T) {
	e := newEngineWithGlobals(map[string]Value{"x": IntValue(1)})
	e.callStack.CurrentElement().Temporary["x"] = IntValue(99)

	v, err := e.GetVariable("x", ContextUnknown)
	require.NoError(t, err)
	assert.Equal(t, IntValue(1), v)
}

func TestGetVariable_VariablePointerDereferences(t *testing.T) {
	e := newEngineWithGlobals(map[string]Value{
		"gold":    IntValue(5),
		"goldRef": VariablePointerValue{Name: "gold", Context: ContextGlobal},
	})

	v, err := e.GetVariable("goldRef", ContextUnknown)
	require.NoError(t, err)
	assert.Equal(t, IntValue(5), v)
}

func TestAssign_NewGlobalDeclaration(t *testing.T) {
	e := newEngineWithGlobals(nil)

	require.NoError(t, e.Assign(&VariableAssignment{Name: "score", IsNewDeclaration: true, IsGlobal: true}, IntValue(0)))

	v, err := e.GetVariable("score", ContextGlobal)
	require.NoError(t, err)
	assert.Equal(t, IntValue(0), v)
}

func TestAssign_Reassignment_FollowsPointerChain(t *testing.T) {
	e := newEngineWithGlobals(map[string]Value{
		"gold":    IntValue(5),
		"goldRef": VariablePointerValue{Name: "gold", Context: ContextGlobal},
	})

	require.NoError(t, e.Assign(&VariableAssignment{Name: "goldRef", IsNewDeclaration: false}, IntValue(42)))

	v, err := e.GetVariable("gold", ContextGlobal)
	require.NoError(t, err)
	assert.Equal(t, IntValue(42), v)

	slot, ctx, err := e.peekStorageSlot("goldRef", ContextGlobal)
	require.NoError(t, err)
	assert.Equal(t, ContextGlobal, ctx)
	assert.Equal(t, VariablePointerValue{Name: "gold", Context: ContextGlobal}, slot)
}

func TestAssign_PreservesListOrigin(t *testing.T) {
	defs := newDefs()
	monday := listOf(defs, "Weekday", "Monday")
	e := NewEngine(NewContainer("root"), defs, map[string]Value{"day": monday}, NewConfig(), 0)

	tuesday := listOf(defs, "Weekday", "Tuesday")
	require.NoError(t, e.Assign(&VariableAssignment{Name: "day", IsNewDeclaration: false}, tuesday))

	v, err := e.GetVariable("day", ContextGlobal)
	require.NoError(t, err)
	lv, ok := v.(*ListValue)
	require.True(t, ok)
	assert.True(t, lv.Contains(tuesday))
}

func TestResolveVariableContext(t *testing.T) {
	e := newEngineWithGlobals(map[string]Value{"gold": IntValue(1)})
	assert.Equal(t, ContextGlobal, e.ResolveVariableContext("gold"))
	assert.Equal(t, ContextTemporary, e.ResolveVariableContext("unseen"))
}
