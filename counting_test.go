package ink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildLoopingStory() *Container {
	root := NewContainer("root")

	hub := NewContainer("hub")
	hub.VisitsShouldBeCounted = true
	hub.TurnIndexShouldBeCounted = true
	hub.AddContent(
		NewValueObject(StringValue("At the hub.\n")),
		NewControlCommand(CmdDone),
	)

	root.AddContent(hub)
	return root
}

func TestEnterContainer_CountsVisitsAndTurns(t *testing.T) {
	e := NewEngine(buildLoopingStory(), NewListDefinitions(), nil, NewConfig(), 0)
	drainText(t, e)

	path := NewAbsolutePath(NameComponent("hub"))
	assert.Equal(t, 1, e.VisitCount(path))
	assert.Equal(t, 0, e.TurnsSince(path))
}

func TestTurnsSince_UnvisitedIsNegativeOne(t *testing.T) {
	e := NewEngine(buildLoopingStory(), NewListDefinitions(), nil, NewConfig(), 0)
	assert.Equal(t, -1, e.TurnsSince(NewAbsolutePath(NameComponent("hub"))))
}

func TestVisitCount_UnknownPathIsZero(t *testing.T) {
	e := NewEngine(buildLoopingStory(), NewListDefinitions(), nil, NewConfig(), 0)
	assert.Equal(t, 0, e.VisitCount(NewAbsolutePath(NameComponent("nowhere"))))
}

func TestEnterContainer_SkipsUncountedContainers(t *testing.T) {
	root := NewContainer("root")
	plain := NewContainer("plain")
	plain.AddContent(NewControlCommand(CmdDone))
	root.AddContent(plain)

	e := NewEngine(root, NewListDefinitions(), nil, NewConfig(), 0)
	drainText(t, e)

	assert.Equal(t, 0, e.VisitCount(NewAbsolutePath(NameComponent("plain"))))
}
