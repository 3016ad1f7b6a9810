package ink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name       string
		a, b       Value
		wantA      Value
		wantB      Value
	}{
		{"int+int unchanged", IntValue(1), IntValue(2), IntValue(1), IntValue(2)},
		{"int promotes to float", IntValue(1), FloatValue(2.5), FloatValue(1), FloatValue(2.5)},
		{"float promotes to float (order b,a)", FloatValue(2.5), IntValue(1), FloatValue(2.5), FloatValue(1)},
		{"int coerces to string", IntValue(7), StringValue("x"), StringValue("7"), StringValue("x")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, err := Coerce(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.wantA, a)
			assert.Equal(t, tt.wantB, b)
		})
	}
}

func TestCoerce_Incompatible(t *testing.T) {
	_, _, err := Coerce(IntValue(1), DivertTargetValue{Target: NewAbsolutePath(NameComponent("x"))})
	require.Error(t, err)
	assert.True(t, IsRuntime(err))
}

func TestDivertTargetValue_TruthyErrors(t *testing.T) {
	v := DivertTargetValue{Target: NewAbsolutePath(NameComponent("x"))}
	_, err := v.Truthy()
	require.Error(t, err)
	assert.True(t, IsInternal(err))
}

func TestIntValue_Truthy(t *testing.T) {
	truthy, err := IntValue(0).Truthy()
	require.NoError(t, err)
	assert.False(t, truthy)

	truthy, err = IntValue(3).Truthy()
	require.NoError(t, err)
	assert.True(t, truthy)
}
