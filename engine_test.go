package ink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildCrossroadsStory mirrors the demo story built by cmd/ink, kept
// small and local to the test package rather than importing the cmd.
func buildCrossroadsStory() *Container {
	root := NewContainer("root")

	crossroads := NewContainer("crossroads")
	crossroads.VisitsShouldBeCounted = true
	crossroads.AddContent(NewValueObject(StringValue("You stand at a crossroads.\n")))

	goNorth := NewContainer("go_north")
	goNorth.AddContent(
		NewValueObject(StringValue("You walk north.\n")),
		NewControlCommand(CmdEnd),
	)

	goSouth := NewContainer("go_south")
	goSouth.AddContent(
		NewValueObject(StringValue("You walk south.\n")),
		NewControlCommand(CmdEnd),
	)

	crossroads.AddContent(
		NewControlCommand(CmdEvalStart),
		NewValueObject(StringValue("Head north")),
		NewControlCommand(CmdEvalEnd),
		&ChoicePoint{
			PathOnChoice:    NewRelativePath(ParentComponent, NameComponent("go_north")),
			HasStartContent: true,
		},
		NewControlCommand(CmdEvalStart),
		NewValueObject(StringValue("Head south")),
		NewControlCommand(CmdEvalEnd),
		&ChoicePoint{
			PathOnChoice:    NewRelativePath(ParentComponent, NameComponent("go_south")),
			HasStartContent: true,
		},
		NewControlCommand(CmdDone),
	)

	root.AddContent(crossroads, goNorth, goSouth)
	return root
}

// drainText calls Continue until the engine can no longer continue,
// concatenating every line produced.
func drainText(t *testing.T, e *Engine) string {
	t.Helper()
	var out string
	for e.CanContinue() {
		text, err := e.Continue()
		require.NoError(t, err)
		out += text
	}
	return out
}

func TestEngine_ContinueToChoicePoint(t *testing.T) {
	e := NewEngine(buildCrossroadsStory(), NewListDefinitions(), nil, NewConfig(), 1)

	text := drainText(t, e)
	assert.Equal(t, "You stand at a crossroads.\n", text)

	choices := e.VisibleChoices()
	require.Len(t, choices, 2)
	assert.Equal(t, "Head north", choices[0].Text)
	assert.Equal(t, "Head south", choices[1].Text)

	require.False(t, e.CanContinue())
}

func TestEngine_ChooseChoiceIndex(t *testing.T) {
	e := NewEngine(buildCrossroadsStory(), NewListDefinitions(), nil, NewConfig(), 1)
	drainText(t, e)

	require.NoError(t, e.ChooseChoiceIndex(0))
	require.True(t, e.CanContinue())

	text := drainText(t, e)
	assert.Equal(t, "You walk north.\n", text)
	assert.False(t, e.CanContinue())
}

func TestContinue_Deterministic(t *testing.T) {
	runOnce := func(seed int64) (string, []string) {
		e := NewEngine(buildCrossroadsStory(), NewListDefinitions(), nil, NewConfig(), seed)
		text := drainText(t, e)
		var choiceTexts []string
		for _, c := range e.VisibleChoices() {
			choiceTexts = append(choiceTexts, c.Text)
		}
		return text, choiceTexts
	}

	text1, choices1 := runOnce(7)
	text2, choices2 := runOnce(7)
	assert.Equal(t, text1, text2)
	assert.Equal(t, choices1, choices2)
}

func TestEngine_VisitCounting(t *testing.T) {
	e := NewEngine(buildCrossroadsStory(), NewListDefinitions(), nil, NewConfig(), 1)
	drainText(t, e)

	assert.Equal(t, 1, e.VisitCount(NewAbsolutePath(NameComponent("crossroads"))))
}

func TestEngine_GlobalVariableAssignmentAndObserver(t *testing.T) {
	root := NewContainer("root")
	root.AddContent(
		&VariableAssignment{Name: "score", IsNewDeclaration: true, IsGlobal: true},
	)
	e := NewEngine(root, NewListDefinitions(), map[string]Value{"score": IntValue(0)}, NewConfig(), 0)

	var observed Value
	e.ObserveVariable("score", func(name string, v Value) { observed = v })

	require.NoError(t, e.Assign(&VariableAssignment{Name: "score", IsNewDeclaration: false}, IntValue(10)))
	e.flushObserverEvents()

	assert.Equal(t, IntValue(10), observed)
	got, err := e.GetVariable("score", ContextGlobal)
	require.NoError(t, err)
	assert.Equal(t, IntValue(10), got)
}
