package ink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallStack_PushPop(t *testing.T) {
	root := NewContainer("root", NewValueObject(IntValue(1)))
	cs := NewCallStack(ToStartOfContainer(root))

	cs.CurrentThread().Push(NewElement(ToStartOfContainer(root), PushFunction))
	assert.Equal(t, 2, len(cs.CurrentThread().Elements))

	_, err := cs.CurrentThread().Pop()
	require.NoError(t, err)
	assert.Equal(t, 1, len(cs.CurrentThread().Elements))
}

func TestThread_Pop_LastElementErrors(t *testing.T) {
	root := NewContainer("root")
	thread := NewThread(0, ToStartOfContainer(root))
	_, err := thread.Pop()
	require.Error(t, err)
	assert.True(t, IsInternal(err))
}

func TestThread_Fork_IsIndependent(t *testing.T) {
	root := NewContainer("root")
	thread := NewThread(0, ToStartOfContainer(root))
	thread.Top().Temporary["x"] = IntValue(1)

	fork := thread.Fork(1)
	fork.Top().Temporary["x"] = IntValue(2)

	assert.Equal(t, IntValue(1), thread.Top().Temporary["x"])
	assert.Equal(t, IntValue(2), fork.Top().Temporary["x"])
}

func TestCallStack_ThreadLifecycle(t *testing.T) {
	root := NewContainer("root")
	cs := NewCallStack(ToStartOfContainer(root))

	cs.PushThread()
	assert.Equal(t, 2, len(cs.Threads))

	require.NoError(t, cs.PopThread())
	assert.Equal(t, 1, len(cs.Threads))

	err := cs.PopThread()
	require.Error(t, err)
	assert.True(t, IsInternal(err))
}

func TestCallStack_ResetToSingleThread(t *testing.T) {
	root := NewContainer("root")
	cs := NewCallStack(ToStartOfContainer(root))
	cs.PushThread()
	cs.ResetToSingleThread()
	assert.Equal(t, 1, len(cs.Threads))
	assert.True(t, cs.CurrentElement().CurrentPointer.IsNull())
}
