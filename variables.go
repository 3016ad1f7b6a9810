package ink

import "reflect"

// GetVariable resolves a variable by name, following VariablePointer
// indirection, per spec.md §4.4.
func (e *Engine) GetVariable(name string, ctx VariableContext) (Value, error) {
	v, _, _, err := e.getRaw(name, ctx)
	return v, err
}

// getRaw performs one lookup step and returns the Value found together
// with the (name, ctx) it was actually stored under — needed by Assign
// to follow a VariablePointer chain to its terminal storage location.
// Property 6 (spec.md §8) holds because Assign always resolves new
// declarations to a non-pointer context before storing, so chains
// cannot cycle.
func (e *Engine) getRaw(name string, ctx VariableContext) (Value, string, VariableContext, error) {
	if ctx == ContextUnknown || ctx == ContextGlobal {
		if v, ok := e.globalVariables[name]; ok {
			return e.derefIfPointer(v, name, ContextGlobal)
		}
		if v, ok := e.defaultGlobalVariables[name]; ok {
			return e.derefIfPointer(v, name, ContextGlobal)
		}
		if ctx == ContextGlobal {
			return nil, name, ctx, NewAuthoringWarning("global variable %q is not defined", name)
		}
	}

	frame := e.callStack.CurrentElement()
	if ctx == ContextTemporary {
		// No frame index is consulted here: a temporary is always
		// read from the current thread's top frame below.
	}
	if v, ok := frame.Temporary[name]; ok {
		return e.derefIfPointer(v, name, ContextTemporary)
	}

	if dotIdx := indexOfDot(name); dotIdx >= 0 {
		origin, item := name[:dotIdx], name[dotIdx+1:]
		if lv, ok := e.listDefinitions.ListItemNamed(origin, item); ok {
			return lv, name, ContextGlobal, nil
		}
	}

	return nil, name, ctx, NewAuthoringWarning("variable %q is not defined", name)
}

func (e *Engine) derefIfPointer(v Value, name string, ctx VariableContext) (Value, string, VariableContext, error) {
	if vp, ok := v.(VariablePointerValue); ok {
		return e.getRaw(vp.Name, vp.Context)
	}
	return v, name, ctx, nil
}

func indexOfDot(s string) int {
	for i, r := range s {
		if r == '.' {
			return i
		}
	}
	return -1
}

// ResolveVariableContext implements spec.md §4.4's context-resolution
// rule for an assignment or a VariablePointer with ctx=Unknown: Global
// if name exists as a global or default global, else Temporary.
func (e *Engine) ResolveVariableContext(name string) VariableContext {
	if _, ok := e.globalVariables[name]; ok {
		return ContextGlobal
	}
	if _, ok := e.defaultGlobalVariables[name]; ok {
		return ContextGlobal
	}
	return ContextTemporary
}

// Assign implements spec.md §4.4's Assign algorithm.
func (e *Engine) Assign(assignment *VariableAssignment, value Value) error {
	if assignment.IsNewDeclaration {
		if vp, ok := value.(VariablePointerValue); ok && vp.Context == ContextUnknown {
			vp.Context = e.ResolveVariableContext(vp.Name)
			value = vp
		}
		if assignment.IsGlobal {
			return e.store(assignment.Name, value, ContextGlobal)
		}
		return e.store(assignment.Name, value, ContextTemporary)
	}

	name, ctx := assignment.Name, e.ResolveVariableContext(assignment.Name)
	for {
		current, foundCtx, err := e.peekStorageSlot(name, ctx)
		if err != nil {
			return err
		}
		vp, isPtr := current.(VariablePointerValue)
		if !isPtr {
			ctx = foundCtx
			break
		}
		name, ctx = vp.Name, vp.Context
		if ctx == ContextUnknown {
			ctx = e.ResolveVariableContext(name)
		}
	}

	return e.store(name, value, ctx)
}

// peekStorageSlot looks at the current value stored at (name, ctx)
// without dereferencing VariablePointer chains, so Assign can walk the
// chain itself one hop at a time.
func (e *Engine) peekStorageSlot(name string, ctx VariableContext) (Value, VariableContext, error) {
	if ctx == ContextGlobal {
		if v, ok := e.globalVariables[name]; ok {
			return v, ContextGlobal, nil
		}
		return nil, ContextGlobal, nil
	}
	frame := e.callStack.CurrentElement()
	if v, ok := frame.Temporary[name]; ok {
		return v, ContextTemporary, nil
	}
	return nil, ContextTemporary, nil
}

func (e *Engine) store(name string, value Value, ctx VariableContext) error {
	prevValue, _, _ := e.peekStorageSlot(name, ctx)
	if lv, ok := value.(*ListValue); ok {
		if prev, _, err := e.peekStorageSlot(name, ctx); err == nil {
			if prevList, ok := prev.(*ListValue); ok {
				value = lv.WithEmptyOrigins(prevList)
			}
		}
	}

	switch ctx {
	case ContextGlobal:
		e.globalVariables[name] = value
	default:
		e.callStack.CurrentElement().Temporary[name] = value
	}

	if prevValue == nil || !reflect.DeepEqual(prevValue, value) {
		e.queueVariableChange(name, value)
	}
	return nil
}
