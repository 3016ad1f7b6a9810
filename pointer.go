package ink

// Pointer is a (container, optional index) cursor into the content
// graph. A nil Index names the container itself; otherwise it names the
// Index-th child of Container. A Pointer with a nil Container is null
// and terminal (spec.md §4.2).
type Pointer struct {
	Container *Container
	Index     *int
}

// NullPointer returns the terminal pointer.
func NullPointer() Pointer { return Pointer{} }

func (p Pointer) IsNull() bool { return p.Container == nil }

// Resolve returns the Object this pointer names.
func (p Pointer) Resolve() (Object, bool) {
	if p.IsNull() {
		return nil, false
	}
	if p.Index == nil {
		return p.Container, true
	}
	i := *p.Index
	if i < 0 || i >= len(p.Container.Content) {
		return nil, false
	}
	return p.Container.Content[i], true
}

func intPtr(i int) *int { return &i }

// ToStartOfContainer returns a pointer at index 0 of c, or a container
// pointer (nil index) if c is empty.
func ToStartOfContainer(c *Container) Pointer {
	if c == nil {
		return NullPointer()
	}
	if len(c.Content) == 0 {
		return Pointer{Container: c}
	}
	return Pointer{Container: c, Index: intPtr(0)}
}

// Next advances the pointer to the next sibling within its container,
// returning ok=false if there is no next sibling (caller falls back to
// popping a frame).
func (p Pointer) Next() (Pointer, bool) {
	if p.IsNull() || p.Index == nil {
		return NullPointer(), false
	}
	next := *p.Index + 1
	if next >= len(p.Container.Content) {
		return NullPointer(), false
	}
	return Pointer{Container: p.Container, Index: intPtr(next)}, true
}
