package ink

import "strings"

// Engine holds every piece of mutable state a running story needs
// (spec.md §3 Story): the content graph it executes, its callstack and
// evaluation stack, variable tables, visit/turn counters, the
// deterministic RNG, and the host-facing registries (externals,
// observers). Grounded on the teacher's vm.go interpreter struct, which
// bundles its own program/frame-stack/io state the same way.
type Engine struct {
	mainContainer   *Container
	listDefinitions *ListDefinitions
	config          *Config

	output         *OutputStream
	currentChoices []*Choice

	callStack *CallStack
	evalStack *EvalStack

	globalVariables        map[string]Value
	defaultGlobalVariables map[string]Value

	visitCounts map[string]int
	turnIndices map[string]int

	currentTurnIndex int
	rng              *RNGState

	divertedPointer  Pointer
	hasPendingDivert bool
	didSafeExit      bool

	// skipNextContentAdvance is set by popPushedFrame when it exits a
	// FunctionEvaluationFromGame frame cleanly: the frame it pops back
	// to belongs to whatever called EvaluateFunction, not to this
	// control command, so step's usual post-dispatch nextContent must
	// not touch it.
	skipNextContentAdvance bool

	externals             map[string]ExternalFunction
	observers             map[string][]Observer
	pendingObserverEvents []variableChange

	currentErrors   []StoryError
	currentWarnings []StoryError

	// lastLineStart is the output-stream offset Continue most recently
	// started stepping from, scoping CurrentTags to the current line
	// (spec.md §6's "tag texts emitted with current line").
	lastLineStart int

	// stringCaptureStarts tracks nested BeginString/EndString output
	// offsets (spec.md §4.6).
	stringCaptureStarts []int
}

// NewEngine constructs a story ready to run from its root container,
// list definitions, declared global defaults, and configuration.
func NewEngine(root *Container, defs *ListDefinitions, globals map[string]Value, cfg *Config, seed int64) *Engine {
	if defs == nil {
		defs = NewListDefinitions()
	}
	if cfg == nil {
		cfg = NewConfig()
	}
	defaults := make(map[string]Value, len(globals))
	for k, v := range globals {
		defaults[k] = v
	}

	e := &Engine{
		mainContainer:          root,
		listDefinitions:        defs,
		config:                 cfg,
		output:                 NewOutputStream(),
		callStack:              NewCallStack(Pointer{Container: root}),
		evalStack:              NewEvalStack(),
		globalVariables:        make(map[string]Value, len(globals)),
		defaultGlobalVariables: defaults,
		visitCounts:            map[string]int{},
		turnIndices:            map[string]int{},
		rng:                    NewRNGState(seed),
		externals:              map[string]ExternalFunction{},
		observers:              map[string][]Observer{},
	}
	for k, v := range globals {
		e.globalVariables[k] = v
	}
	return e
}

// CanContinue reports whether Continue may be called again without an
// intervening choice selection (spec.md §6).
func (e *Engine) CanContinue() bool { return !e.didSafeExit }

// CurrentErrors and CurrentWarnings surface the diagnostics accumulated
// since they were last drained.
func (e *Engine) CurrentErrors() []StoryError   { return e.currentErrors }
func (e *Engine) CurrentWarnings() []StoryError { return e.currentWarnings }

// CurrentTags returns the tags emitted on the line Continue most
// recently produced.
func (e *Engine) CurrentTags() []string {
	return e.output.TagsRange(e.lastLineStart, e.output.Len())
}

// Continue steps the engine until it produces a complete line of text,
// the story safely ends, or a RuntimeError halts it (spec.md §4.7, §6).
// Generating a choice does not by itself stop the loop.
func (e *Engine) Continue() (string, error) {
	if !e.CanContinue() {
		return "", NewRuntimeError("story has reached an ending; choose a choice or restart")
	}

	e.currentChoices = nil
	e.currentErrors = nil
	e.currentWarnings = nil
	start := e.output.Len()
	e.lastLineStart = start

	for {
		if err := e.step(); err != nil {
			se, ok := err.(StoryError)
			if !ok {
				return "", err
			}
			switch se.Kind {
			case KindWarning:
				e.currentWarnings = append(e.currentWarnings, se)
				continue
			case KindRuntime:
				e.currentErrors = append(e.currentErrors, se)
				_ = e.nextContent()
				if e.config.GetBool("engine.halt_on_runtime_error") {
					goto doneStepping
				}
				continue
			default:
				return "", se
			}
		}
		if e.didSafeExit {
			break
		}
		if e.output.Len() > start && strings.HasSuffix(e.output.TextRange(start, e.output.Len()), "\n") {
			break
		}
	}
doneStepping:

	e.flushObserverEvents()

	if followed, err := e.autoFollowInvisibleDefault(); err != nil {
		return "", err
	} else if followed {
		if _, err := e.Continue(); err != nil {
			return "", err
		}
	}

	return e.output.TextRange(start, e.output.Len()), nil
}

// step executes exactly one Object of the content stream, or advances
// past a resolved pending divert (spec.md §4.7).
func (e *Engine) step() error {
	if e.hasPendingDivert {
		e.callStack.CurrentElement().CurrentPointer = e.divertedPointer
		e.divertedPointer = NullPointer()
		e.hasPendingDivert = false
	}

	element := e.callStack.CurrentElement()
	obj, ok := element.CurrentPointer.Resolve()
	if !ok {
		return e.nextContent()
	}

	if container, isContainer := obj.(*Container); isContainer {
		e.enterContainer(container)
		element.CurrentPointer = ToStartOfContainer(container)
		return nil
	}

	switch v := obj.(type) {
	case *ControlCommand:
		if err := e.executeControlCommand(v); err != nil {
			return err
		}
		if e.skipNextContentAdvance {
			e.skipNextContentAdvance = false
			return nil
		}

	case *Divert:
		return e.performDivert(v)

	case *ChoicePoint:
		if err := e.processChoicePoint(v); err != nil {
			return err
		}

	case *NativeFunctionCall:
		if err := executeNativeFunction(e.evalStack, e.listDefinitions, v.Kind); err != nil {
			return err
		}

	case *VariableAssignment:
		val, err := e.evalStack.Pop()
		if err != nil {
			return err
		}
		if err := e.Assign(v, val); err != nil {
			return err
		}

	case *VariableReference:
		if err := e.pushVariableReference(v); err != nil {
			return err
		}

	case *ValueObject:
		pushed := v
		if vp, isPtr := v.Value.(VariablePointerValue); isPtr && vp.Context == ContextUnknown {
			vp.Context = e.ResolveVariableContext(vp.Name)
			pushed = NewValueObject(vp)
		}
		if element.InExpressionEvaluation {
			e.evalStack.PushObject(pushed)
		} else {
			e.output.Append(pushed)
		}

	case *Glue:
		e.output.AddGlue()

	case *Tag:
		e.output.Append(v)

	case *Void:
		if element.InExpressionEvaluation {
			e.evalStack.PushVoid()
		}

	default:
		return NewInternalError("unrecognized object in content stream: %T", obj)
	}

	return e.nextContent()
}

func (e *Engine) pushVariableReference(v *VariableReference) error {
	if v.Kind == VarRefPathForCount {
		key := v.Path.String()
		if obj, ok := ResolveIn(e.mainContainer, v.Path); ok {
			key = CanonicalPath(obj).String()
		}
		e.evalStack.Push(IntValue(e.visitCounts[key]))
		return nil
	}

	val, err := e.GetVariable(v.Name, ContextUnknown)
	if err != nil {
		se, ok := err.(StoryError)
		if ok && se.Kind == KindWarning {
			e.currentWarnings = append(e.currentWarnings, se)
			e.evalStack.Push(IntValue(0))
			return nil
		}
		return err
	}
	e.evalStack.Push(val)
	return nil
}

// setCurrentPointer overwrites the current thread's active frame
// pointer directly, bypassing the pending-divert indirection — used
// when resuming a choice's captured thread (spec.md §4.8).
func (e *Engine) setCurrentPointer(p Pointer) {
	e.callStack.CurrentElement().CurrentPointer = p
}

// incrementContentPointer advances p to the next sibling, climbing to
// successive parent containers when p is the last child of its own
// container, per the standard content-stream traversal algorithm.
func incrementContentPointer(p Pointer) (Pointer, bool) {
	if p.IsNull() {
		return NullPointer(), false
	}
	container := p.Container
	index := 0
	if p.Index != nil {
		index = *p.Index + 1
	} else {
		index = len(container.Content)
	}
	for {
		if index < len(container.Content) {
			return Pointer{Container: container, Index: intPtr(index)}, true
		}
		parent := container.Parent()
		if parent == nil {
			return NullPointer(), false
		}
		index = container.ParentSlot() + 1
		container = parent
	}
}

// nextContent advances the current frame's pointer, popping frames and
// threads as content runs out (spec.md §4.7, §5).
func (e *Engine) nextContent() error {
	thread := e.callStack.CurrentThread()
	element := thread.Top()

	if next, ok := incrementContentPointer(element.CurrentPointer); ok {
		element.CurrentPointer = next
		return nil
	}

	return e.popFrame()
}

// popFrame implements the fallback for content running out without an
// explicit PopFunction/PopTunnel/Done/End control command: pop the
// current frame (trimming trailing whitespace and pushing a Void
// placeholder for functions, per spec.md §4.6), pop the thread if it
// was the thread's last frame, or mark a safe exit if it was the
// callstack's last thread.
func (e *Engine) popFrame() error {
	thread := e.callStack.CurrentThread()

	if len(thread.Elements) > 1 {
		popped, err := thread.Pop()
		if err != nil {
			return err
		}
		if popped.PushPopType != PushTunnel {
			e.trimFunctionWhitespace(popped)
			e.evalStack.PushVoid()
		}
		return nil
	}

	if len(e.callStack.Threads) > 1 {
		return e.callStack.PopThread()
	}

	e.didSafeExit = true
	return nil
}

// trimFunctionWhitespace drops the run of trailing whitespace-only String
// fragments a function call leaves in the output stream, back to (but
// not past) the function's start, resolving DESIGN.md's decided Open
// Question #1.
func (e *Engine) trimFunctionWhitespace(popped *Element) {
	items := e.output.Items()
	end := len(items)
	for end > popped.FunctionStartInOutputStream {
		vo, isValue := items[end-1].(*ValueObject)
		if !isValue {
			break
		}
		s, isString := vo.Value.(StringValue)
		if !isString || !isWhitespaceOnly(string(s)) {
			break
		}
		end--
	}
	e.output.TruncateTo(end)
}

// EvaluateFunction calls a story-defined container as a function with
// the given arguments, capturing its textual side effects separately
// from the main output stream and returning its implicit or explicit
// return value (spec.md §6).
func (e *Engine) EvaluateFunction(path Path, args []Value) (string, Value, error) {
	obj, ok := ResolveIn(e.mainContainer, path)
	if !ok {
		return "", nil, NewRuntimeError("function not found: %s", path.String())
	}
	container, ok := obj.(*Container)
	if !ok {
		return "", nil, NewRuntimeError("%s is not a callable container", path.String())
	}

	outputStart := e.output.Len()
	for i := len(args) - 1; i >= 0; i-- {
		e.evalStack.Push(args[i])
	}
	evalStart := e.evalStack.Len() - len(args)

	thread := e.callStack.CurrentThread()
	frame := NewElement(ToStartOfContainer(container), PushFunctionEvaluationFromGame)
	frame.InExpressionEvaluation = true
	frame.EvaluationStackSizeWhenCalled = evalStart
	frame.FunctionStartInOutputStream = outputStart
	thread.Push(frame)
	targetDepth := len(thread.Elements) - 1

	for e.callStack.CurrentThread() == thread && len(thread.Elements) > targetDepth && !e.didSafeExit {
		if err := e.step(); err != nil {
			return "", nil, err
		}
	}

	text := strings.TrimSpace(e.output.TextRange(outputStart, e.output.Len()))
	e.output.TruncateTo(outputStart)

	var result Value
	if e.evalStack.Len() > evalStart {
		obj, err := e.evalStack.PopObject()
		if err != nil {
			return "", nil, err
		}
		if vo, ok := obj.(*ValueObject); ok {
			result = vo.Value
		}
	}
	e.evalStack.TruncateTo(evalStart)

	return text, result, nil
}
