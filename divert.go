package ink

// PathToPointer implements spec.md §4.5's path-to-pointer mapping: if
// the last component is an Index, resolve the parent container and
// return a pointer directly at that index (without descending into it);
// otherwise resolve the container at path and return a pointer naming
// that container itself (see below). A relative path resolves against
// from rather than root.
func PathToPointer(root, from *Container, p Path) (Pointer, error) {
	base := root
	if p.IsRelative && from != nil {
		base = from
	}

	last, ok := p.Last()
	if !ok {
		return NullPointer(), NewRuntimeError("cannot divert to an empty path")
	}

	if idx, isIndex := last.(IndexComponent); isIndex {
		parentObj, ok := ResolveIn(base, p.WithoutLast())
		if !ok {
			return NullPointer(), NewRuntimeError("divert target not found: %s", p.WithoutLast().String())
		}
		parent, ok := parentObj.(*Container)
		if !ok {
			return NullPointer(), NewRuntimeError("divert target parent is not a container: %s", p.String())
		}
		i := int(idx)
		return Pointer{Container: parent, Index: &i}, nil
	}

	obj, ok := ResolveIn(base, p)
	if !ok {
		return NullPointer(), NewRuntimeError("divert target not found: %s", p.String())
	}
	container, ok := obj.(*Container)
	if !ok {
		return NullPointer(), NewRuntimeError("divert target is not a container: %s", p.String())
	}
	// A pointer naming the container itself (nil index), not its first
	// child, so step dispatches through the *Container case and runs
	// enterContainer — diverting into a knot counts as visiting it.
	return Pointer{Container: container}, nil
}

// performDivert implements spec.md §4.5. A pushed tunnel/function frame
// deliberately does not give its caller frame a precomputed resume
// pointer: the caller's own CurrentPointer is left sitting at the
// Divert object itself, and step's unconditional post-dispatch
// nextContent call (run once the pushed frame has since been popped by
// PopFunction/PopTunnel) advances it exactly one step past the divert —
// the correct resume position — for free.
func (e *Engine) performDivert(d *Divert) error {
	if d.IsConditional {
		v, err := e.evalStack.Pop()
		if err != nil {
			return err
		}
		truthy, err := v.Truthy()
		if err != nil {
			return err
		}
		if !truthy {
			return nil
		}
	}

	var target Pointer
	var isExternal bool

	switch d.Kind {
	case DivertToPath:
		p, err := PathToPointer(e.mainContainer, d.Parent(), d.TargetPath)
		if err != nil {
			return err
		}
		target = p

	case DivertToVariable:
		v, err := e.GetVariable(d.VariableName, ContextUnknown)
		if err != nil {
			return err
		}
		dt, ok := v.(DivertTargetValue)
		if !ok {
			return NewRuntimeError("variable %q is not a divert target", d.VariableName)
		}
		p, err := PathToPointer(e.mainContainer, d.Parent(), dt.Target)
		if err != nil {
			return err
		}
		target = p

	case DivertToExternal:
		isExternal = true
		if err := e.callExternal(d.External); err != nil {
			return err
		}
	}

	if d.PushesToStack {
		if d.StackPushType == PushTunnel && e.callStack.Depth() >= e.config.GetInt("engine.max_tunnel_depth") {
			return NewRuntimeError("max tunnel depth exceeded (%d)", e.config.GetInt("engine.max_tunnel_depth"))
		}
		returnPointer := e.callStack.CurrentElement().CurrentPointer
		frame := NewElement(returnPointer, d.StackPushType)
		frame.EvaluationStackSizeWhenCalled = e.evalStack.Len()
		frame.FunctionStartInOutputStream = e.output.Len()
		e.callStack.CurrentThread().Push(frame)
	}

	if isExternal {
		return nil
	}
	if target.IsNull() {
		return NewRuntimeError("divert has no resolvable target")
	}
	e.divertedPointer = target
	e.hasPendingDivert = true
	return nil
}
