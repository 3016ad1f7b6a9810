package ink

import "strconv"

// Component is one step of a Path: an index into a container's content,
// the name of a child container, or an ascent to the parent container.
type Component interface {
	isComponent()
	String() string
}

type IndexComponent int

func (IndexComponent) isComponent()    {}
func (c IndexComponent) String() string { return strconv.Itoa(int(c)) }

type NameComponent string

func (NameComponent) isComponent()    {}
func (c NameComponent) String() string { return string(c) }

type parentComponent struct{}

func (parentComponent) isComponent()    {}
func (parentComponent) String() string { return "^" }

// ParentComponent ascends one container.
var ParentComponent Component = parentComponent{}

// Path is an ordered sequence of Components, either relative to some
// base container or absolute (resolved against the story root).
type Path struct {
	Components []Component
	IsRelative bool
}

func NewAbsolutePath(components ...Component) Path {
	return Path{Components: components}
}

func NewRelativePath(components ...Component) Path {
	return Path{Components: components, IsRelative: true}
}

func (p Path) Empty() bool { return len(p.Components) == 0 }

func (p Path) Last() (Component, bool) {
	if p.Empty() {
		return nil, false
	}
	return p.Components[len(p.Components)-1], true
}

// WithoutLast returns the path minus its final component, used when
// resolving the parent of an Index-terminated path (see PathToPointer).
func (p Path) WithoutLast() Path {
	if p.Empty() {
		return p
	}
	return Path{Components: p.Components[:len(p.Components)-1], IsRelative: p.IsRelative}
}

func (p Path) String() string {
	s := ""
	if p.IsRelative {
		s += "."
	}
	for i, c := range p.Components {
		if i > 0 {
			s += "."
		}
		s += c.String()
	}
	return s
}

// ResolveIn resolves a Path against a base Container, per spec.md §4.1.
// Absolute paths must be resolved against the story root; relative
// paths may be resolved against any base.
func ResolveIn(base *Container, p Path) (Object, bool) {
	if p.Empty() {
		return nil, false
	}

	var current Object = base
	currentContainer := base

	for _, c := range p.Components {
		switch comp := c.(type) {
		case IndexComponent:
			i := int(comp)
			if currentContainer == nil || i < 0 || i >= len(currentContainer.Content) {
				return nil, false
			}
			current = currentContainer.Content[i]
			if child, ok := current.(*Container); ok {
				currentContainer = child
			} else {
				currentContainer = nil
			}

		case NameComponent:
			if currentContainer == nil {
				return nil, false
			}
			child, ok := currentContainer.namedChild(string(comp))
			if !ok {
				return nil, false
			}
			current = child
			currentContainer = child

		case parentComponent:
			if currentContainer == nil || currentContainer.parent == nil {
				return nil, false
			}
			current = currentContainer.parent
			currentContainer = currentContainer.parent

		default:
			return nil, false
		}
	}

	return current, true
}

// CanonicalPath produces the absolute Path from the story root to o, by
// walking parent back-links and recording each child's name (if it has
// a non-empty one) or its index in its parent otherwise.
func CanonicalPath(o Object) Path {
	var comps []Component
	for {
		parent := o.Parent()
		if parent == nil {
			break
		}
		slot := o.ParentSlot()
		if named, ok := o.(interface{ ContainerName() string }); ok && named.ContainerName() != "" {
			comps = append([]Component{NameComponent(named.ContainerName())}, comps...)
		} else {
			comps = append([]Component{IndexComponent(slot)}, comps...)
		}
		o = parent
	}
	return Path{Components: comps}
}
