package ink

import "sort"

// ListItem is one (origin, name, value) entry of a List value.
type ListItem struct {
	Origin string
	Name   string
	Value  int64
}

func (i ListItem) key() string { return i.Origin + "." + i.Name }

// ListValue is a set of ListItems plus the set of origin (list-type)
// names it was drawn from, needed to preserve provenance across
// operations like Invert that must range over "everything this list
// could contain" (spec.md §3 List).
type ListValue struct {
	Items   map[string]ListItem
	Origins map[string]struct{}
}

func NewListValue() *ListValue {
	return &ListValue{Items: map[string]ListItem{}, Origins: map[string]struct{}{}}
}

func (*ListValue) isValue() {}

func (l *ListValue) Truthy() (bool, error) { return len(l.Items) > 0, nil }

func (l *ListValue) String() string {
	names := l.sortedItems()
	s := ""
	for i, it := range names {
		if i > 0 {
			s += ", "
		}
		s += it.Name
	}
	return s
}

func (l *ListValue) sortedItems() []ListItem {
	items := make([]ListItem, 0, len(l.Items))
	for _, it := range l.Items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Value != items[j].Value {
			return items[i].Value < items[j].Value
		}
		return items[i].Name < items[j].Name
	})
	return items
}

// WithOrigin adds origin o to the list's known-origins set (used when
// declaring an empty list typed to a particular list definition).
func (l *ListValue) WithOrigin(o string) *ListValue {
	clone := l.Clone()
	clone.Origins[o] = struct{}{}
	return clone
}

// WithEmptyOrigins returns a clone of l carrying the origin set of
// other but none of its items — used when overwriting a List variable
// so the new value keeps the variable's declared type (spec.md §4.4).
func (l *ListValue) WithEmptyOrigins(other *ListValue) *ListValue {
	clone := l.Clone()
	for o := range other.Origins {
		clone.Origins[o] = struct{}{}
	}
	return clone
}

func (l *ListValue) Clone() *ListValue {
	c := NewListValue()
	for k, v := range l.Items {
		c.Items[k] = v
	}
	for o := range l.Origins {
		c.Origins[o] = struct{}{}
	}
	return c
}

func (l *ListValue) Add(item ListItem) {
	l.Items[item.key()] = item
	l.Origins[item.Origin] = struct{}{}
}

func (l *ListValue) Len() int { return len(l.Items) }

// Union returns l | other.
func (l *ListValue) Union(other *ListValue) *ListValue {
	out := l.Clone()
	for k, v := range other.Items {
		out.Items[k] = v
	}
	for o := range other.Origins {
		out.Origins[o] = struct{}{}
	}
	return out
}

// Intersect returns l & other.
func (l *ListValue) Intersect(other *ListValue) *ListValue {
	out := NewListValue()
	for o := range l.Origins {
		out.Origins[o] = struct{}{}
	}
	for o := range other.Origins {
		out.Origins[o] = struct{}{}
	}
	for k, v := range l.Items {
		if _, ok := other.Items[k]; ok {
			out.Items[k] = v
		}
	}
	return out
}

// Difference returns l − other.
func (l *ListValue) Difference(other *ListValue) *ListValue {
	out := NewListValue()
	for o := range l.Origins {
		out.Origins[o] = struct{}{}
	}
	for k, v := range l.Items {
		if _, ok := other.Items[k]; !ok {
			out.Items[k] = v
		}
	}
	return out
}

// Contains reports whether l is a subset of other.
func (l *ListValue) Contains(other *ListValue) bool {
	for k := range other.Items {
		if _, ok := l.Items[k]; !ok {
			return false
		}
	}
	return true
}

func (l *ListValue) minMax() (min, max int64, ok bool) {
	first := true
	for _, it := range l.Items {
		if first {
			min, max = it.Value, it.Value
			first = false
			continue
		}
		if it.Value < min {
			min = it.Value
		}
		if it.Value > max {
			max = it.Value
		}
	}
	return min, max, !first
}

// GreaterThan implements the asymmetric min/max comparison of
// spec.md §3: min(a) > max(b), with an empty right side always true.
func (l *ListValue) GreaterThan(other *ListValue) bool {
	_, omax, oOk := other.minMax()
	if !oOk {
		return true
	}
	lmin, _, lOk := l.minMax()
	if !lOk {
		return false
	}
	return lmin > omax
}

// GreaterOrEqual implements min(a) ≥ min(b) ∧ max(a) ≥ max(b).
func (l *ListValue) GreaterOrEqual(other *ListValue) bool {
	omin, omax, oOk := other.minMax()
	if !oOk {
		return true
	}
	lmin, lmax, lOk := l.minMax()
	if !lOk {
		return false
	}
	return lmin >= omin && lmax >= omax
}

// LessThan implements max(a) < min(b), with an empty right side always
// false.
func (l *ListValue) LessThan(other *ListValue) bool {
	omin, _, oOk := other.minMax()
	if !oOk {
		return false
	}
	_, lmax, lOk := l.minMax()
	if !lOk {
		return true
	}
	return lmax < omin
}

// LessOrEqual is the dual of GreaterOrEqual.
func (l *ListValue) LessOrEqual(other *ListValue) bool {
	omin, omax, oOk := other.minMax()
	if !oOk {
		return false
	}
	lmin, lmax, lOk := l.minMax()
	if !lOk {
		return true
	}
	return lmin <= omin && lmax <= omax
}

// ListDefinitions maps a list-type name to its ordered entries.
type ListDefinitions struct {
	Origins map[string]*ListOrigin
}

// ListOrigin is one named list-type: an ordered set of name→value
// entries sharing an origin.
type ListOrigin struct {
	Name    string
	Entries map[string]int64
}

func NewListDefinitions() *ListDefinitions {
	return &ListDefinitions{Origins: map[string]*ListOrigin{}}
}

func (d *ListDefinitions) AddOrigin(name string, entries map[string]int64) {
	d.Origins[name] = &ListOrigin{Name: name, Entries: entries}
}

// EntryByValue looks up the entry of origin with the given value.
func (d *ListDefinitions) EntryByValue(origin string, value int64) (ListItem, bool) {
	o, ok := d.Origins[origin]
	if !ok {
		return ListItem{}, false
	}
	for name, v := range o.Entries {
		if v == value {
			return ListItem{Origin: origin, Name: name, Value: v}, true
		}
	}
	return ListItem{}, false
}

// ListItemNamed looks up a single "Origin.Name" qualified entry,
// returning a single-entry ListValue wrapping it (used by variable
// resolution's "ListDef.item" fallback, spec.md §4.4).
func (d *ListDefinitions) ListItemNamed(origin, name string) (*ListValue, bool) {
	o, ok := d.Origins[origin]
	if !ok {
		return nil, false
	}
	v, ok := o.Entries[name]
	if !ok {
		return nil, false
	}
	lv := NewListValue()
	lv.Add(ListItem{Origin: origin, Name: name, Value: v})
	return lv, true
}

// Increment maps each entry to the entry of the same origin whose
// value is entry.Value+d, dropping entries with no such sibling.
func (l *ListValue) Increment(d int64, defs *ListDefinitions) *ListValue {
	out := l.Clone()
	out.Items = map[string]ListItem{}
	for _, it := range l.Items {
		if item, ok := defs.EntryByValue(it.Origin, it.Value+d); ok {
			out.Items[item.key()] = item
		}
	}
	return out
}

// Invert returns all entries in l's origins minus l's items.
func (l *ListValue) Invert(defs *ListDefinitions) *ListValue {
	out := NewListValue()
	for o := range l.Origins {
		out.Origins[o] = struct{}{}
	}
	for o := range l.Origins {
		origin, ok := defs.Origins[o]
		if !ok {
			continue
		}
		for name, v := range origin.Entries {
			item := ListItem{Origin: o, Name: name, Value: v}
			if _, has := l.Items[item.key()]; !has {
				out.Items[item.key()] = item
			}
		}
	}
	return out
}

// All returns every entry of every origin referenced by l.
func (l *ListValue) All(defs *ListDefinitions) *ListValue {
	out := NewListValue()
	for o := range l.Origins {
		out.Origins[o] = struct{}{}
		origin, ok := defs.Origins[o]
		if !ok {
			continue
		}
		for name, v := range origin.Entries {
			item := ListItem{Origin: o, Name: name, Value: v}
			out.Items[item.key()] = item
		}
	}
	return out
}

// Min returns a single-element list holding l's minimum entry, or an
// empty list preserving l's origins if l is empty.
func (l *ListValue) Min() *ListValue {
	out := NewListValue()
	for o := range l.Origins {
		out.Origins[o] = struct{}{}
	}
	items := l.sortedItems()
	if len(items) == 0 {
		return out
	}
	out.Add(items[0])
	return out
}

// Max returns a single-element list holding l's maximum entry.
func (l *ListValue) Max() *ListValue {
	out := NewListValue()
	for o := range l.Origins {
		out.Origins[o] = struct{}{}
	}
	items := l.sortedItems()
	if len(items) == 0 {
		return out
	}
	out.Add(items[len(items)-1])
	return out
}

// ValueOfList returns the integer value of l's maximum entry, or 0 if
// empty.
func (l *ListValue) ValueOfList() int64 {
	_, max, ok := l.minMax()
	if !ok {
		return 0
	}
	return max
}

// Slice returns the entries of l whose value is within [min, max]
// inclusive (spec.md §4.6 ListRange).
func (l *ListValue) Slice(min, max int64) *ListValue {
	out := NewListValue()
	for o := range l.Origins {
		out.Origins[o] = struct{}{}
	}
	for _, it := range l.Items {
		if it.Value >= min && it.Value <= max {
			out.Items[it.key()] = it
		}
	}
	return out
}
