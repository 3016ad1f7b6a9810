package ink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIn(t *testing.T) {
	leaf := NewValueObject(IntValue(42))
	inner := NewContainer("inner", leaf)
	root := NewContainer("root", inner)

	tests := []struct {
		name string
		path Path
		want Object
	}{
		{"by name", NewAbsolutePath(NameComponent("inner")), inner},
		{"by index", NewAbsolutePath(IndexComponent(0)), inner},
		{"nested by name+index", NewAbsolutePath(NameComponent("inner"), IndexComponent(0)), leaf},
		{"parent ascent", NewAbsolutePath(NameComponent("inner"), ParentComponent), root},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveIn(root, tt.path)
			require.True(t, ok)
			assert.Same(t, tt.want, got)
		})
	}
}

func TestResolveIn_NotFound(t *testing.T) {
	root := NewContainer("root")
	_, ok := ResolveIn(root, NewAbsolutePath(NameComponent("missing")))
	assert.False(t, ok)
}

func TestCanonicalPath(t *testing.T) {
	leaf := NewValueObject(IntValue(1))
	inner := NewContainer("inner", leaf)
	unnamed := NewContainer("", inner)
	NewContainer("root", unnamed)

	got := CanonicalPath(leaf)
	assert.Equal(t, "0.inner.0", got.String())
}
