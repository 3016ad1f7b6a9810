package ink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSnapshotRestore_RoundTripsState(t *testing.T) {
	e := NewEngine(buildCrossroadsStory(), NewListDefinitions(), map[string]Value{"gold": IntValue(3)}, NewConfig(), 11)
	drainText(t, e)
	require.NoError(t, e.Assign(&VariableAssignment{Name: "gold"}, IntValue(7)))

	data, err := e.Snapshot()
	require.NoError(t, err)

	restored := NewEngine(buildCrossroadsStory(), NewListDefinitions(), map[string]Value{"gold": IntValue(3)}, NewConfig(), 11)
	require.NoError(t, restored.Restore(data))

	gold, err := restored.GetVariable("gold", ContextGlobal)
	require.NoError(t, err)
	assert.Equal(t, IntValue(7), gold)

	assert.Equal(t, 1, restored.VisitCount(NewAbsolutePath(NameComponent("crossroads"))))
	assert.Len(t, restored.VisibleChoices(), 2)
	assert.False(t, restored.CanContinue())
}

func TestSnapshotRestore_ClearsErrorsAndWarnings(t *testing.T) {
	e := NewEngine(buildCrossroadsStory(), NewListDefinitions(), nil, NewConfig(), 1)
	drainText(t, e)
	_, _ = e.GetVariable("nonexistent", ContextUnknown)
	e.currentWarnings = append(e.currentWarnings, NewAuthoringWarning("synthetic"))

	data, err := e.Snapshot()
	require.NoError(t, err)

	restored := NewEngine(buildCrossroadsStory(), NewListDefinitions(), nil, NewConfig(), 1)
	require.NoError(t, restored.Restore(data))

	assert.Empty(t, restored.CurrentWarnings())
	assert.Empty(t, restored.CurrentErrors())
}

func TestLoadSnapshot_DecodesWithoutApplying(t *testing.T) {
	e := NewEngine(buildCrossroadsStory(), NewListDefinitions(), map[string]Value{"gold": IntValue(3)}, NewConfig(), 1)
	data, err := e.Snapshot()
	require.NoError(t, err)

	snap, err := LoadSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.StorySeed)
}

func TestPatch_OnlyIncludesChangedState(t *testing.T) {
	e := NewEngine(buildCrossroadsStory(), NewListDefinitions(), map[string]Value{"gold": IntValue(3)}, NewConfig(), 5)
	baselineData, err := e.Snapshot()
	require.NoError(t, err)
	baseline, err := LoadSnapshot(baselineData)
	require.NoError(t, err)

	require.NoError(t, e.Assign(&VariableAssignment{Name: "gold"}, IntValue(99)))

	patchData, err := e.Patch(baseline)
	require.NoError(t, err)

	var p patchDTO
	require.NoError(t, yaml.Unmarshal(patchData, &p))
	require.Contains(t, p.Globals, "gold")
	assert.Equal(t, int64(99), p.Globals["gold"].Int)
}
