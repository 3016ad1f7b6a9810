package ink

// ExternalFunction is a host-provided function reachable from a Divert
// with an External target (spec.md §6).
type ExternalFunction func(args []Value) (Value, error)

// RegisterExternal registers a host function by name, per the §6
// external function contract.
func (e *Engine) RegisterExternal(name string, fn ExternalFunction) {
	e.externals[name] = fn
}

// callExternal dispatches an External divert target: pop its args in
// order, call the registered handler (or fall back to a story-defined
// function at its path if nothing is registered). A registered
// handler's return value is pushed only when the target is declared to
// keep it (SPEC_FULL.md's supplemented Divert.External.Keep, resolving
// spec.md §9's "external argument/return" Open Question); the
// story-function fallback does not consult Keep.
func (e *Engine) callExternal(target ExternalDivertTarget) error {
	args := make([]Value, target.Args)
	for i := target.Args - 1; i >= 0; i-- {
		v, err := e.evalStack.Pop()
		if err != nil {
			return err
		}
		args[i] = v
	}

	name := target.Path.String()
	fn, ok := e.externals[name]
	if !ok {
		if obj, found := ResolveIn(e.mainContainer, target.Path); found {
			if container, isContainer := obj.(*Container); isContainer {
				return e.callStoryFunctionFallback(container, args, target.Keep)
			}
		}
		return NewRuntimeError("unknown external function %q and no story-defined fallback", name)
	}

	result, err := fn(args)
	if err != nil {
		return err
	}
	if target.Keep {
		if result == nil {
			e.evalStack.PushVoid()
		} else {
			e.evalStack.Push(result)
		}
	}
	return nil
}

// callStoryFunctionFallback pushes args as temporaries isn't meaningful
// without a compiled function-call convention, so the fallback instead
// pushes a FunctionEvaluationFromGame frame at the container's start —
// the same push/pop discipline EvaluateFunction uses (spec.md §6).
func (e *Engine) callStoryFunctionFallback(container *Container, args []Value, keep bool) error {
	for i := len(args) - 1; i >= 0; i-- {
		e.evalStack.Push(args[i])
	}
	frame := NewElement(ToStartOfContainer(container), PushFunctionEvaluationFromGame)
	frame.EvaluationStackSizeWhenCalled = e.evalStack.Len() - len(args)
	frame.FunctionStartInOutputStream = e.output.Len()
	e.callStack.CurrentThread().Push(frame)
	return nil
}
