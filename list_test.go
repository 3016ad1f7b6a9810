package ink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newDefs() *ListDefinitions {
	defs := NewListDefinitions()
	defs.AddOrigin("Weekday", map[string]int64{
		"Monday": 1, "Tuesday": 2, "Wednesday": 3, "Thursday": 4, "Friday": 5,
	})
	return defs
}

func listOf(defs *ListDefinitions, origin string, names ...string) *ListValue {
	lv := NewListValue().WithOrigin(origin)
	for _, n := range names {
		it, ok := defs.EntryByValue(origin, defs.Origins[origin].Entries[n])
		if ok {
			lv.Add(it)
		}
	}
	return lv
}

func TestListValue_UnionIntersectDifference(t *testing.T) {
	defs := newDefs()
	a := listOf(defs, "Weekday", "Monday", "Tuesday")
	b := listOf(defs, "Weekday", "Tuesday", "Wednesday")

	assert.Equal(t, 3, a.Union(b).Len())
	assert.Equal(t, 1, a.Intersect(b).Len())
	assert.Equal(t, 1, a.Difference(b).Len())
}

func TestListValue_ComparisonEdgeCases(t *testing.T) {
	defs := newDefs()
	empty := NewListValue().WithOrigin("Weekday")
	mon := listOf(defs, "Weekday", "Monday")

	assert.True(t, mon.GreaterThan(empty), "anything is greater than an empty list")
	assert.False(t, empty.GreaterThan(mon))
	assert.False(t, mon.LessThan(empty), "nothing is less than an empty list")
	assert.True(t, empty.LessThan(mon))
}

func TestListValue_IncrementDropsUnmapped(t *testing.T) {
	defs := newDefs()
	friday := listOf(defs, "Weekday", "Friday")
	out := friday.Increment(1, defs)
	assert.Equal(t, 0, out.Len(), "incrementing past the last entry drops it")

	monday := listOf(defs, "Weekday", "Monday")
	out = monday.Increment(1, defs)
	assert.Len(t, out.Items, 1)
}

func TestListValue_Invert(t *testing.T) {
	defs := newDefs()
	some := listOf(defs, "Weekday", "Monday", "Tuesday")
	inverted := some.Invert(defs)
	assert.Equal(t, 3, inverted.Len())
}

func TestListDefinitions_ListItemNamed(t *testing.T) {
	defs := newDefs()
	lv, ok := defs.ListItemNamed("Weekday", "Wednesday")
	assert := assert.New(t)
	assert.True(ok)
	assert.Equal(1, lv.Len())
}
