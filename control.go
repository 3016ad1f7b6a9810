package ink

// executeControlCommand dispatches one of the 24 control command kinds
// of spec.md §4.6 against the engine's evaluation/output/call state.
func (e *Engine) executeControlCommand(cmd *ControlCommand) error {
	switch cmd.Kind {
	case CmdNoOp:
		return nil

	case CmdEvalStart:
		e.callStack.CurrentElement().InExpressionEvaluation = true
		return nil

	case CmdEvalEnd:
		e.callStack.CurrentElement().InExpressionEvaluation = false
		return nil

	case CmdEvalOutput:
		obj, err := e.evalStack.PopObject()
		if err != nil {
			return err
		}
		vo, isValue := obj.(*ValueObject)
		if !isValue {
			return nil
		}
		e.output.Append(NewValueObject(StringValue(vo.Value.String())))
		return nil

	case CmdDuplicate:
		return e.evalStack.Duplicate()

	case CmdPopEvaluatedValue:
		_, err := e.evalStack.PopObject()
		return err

	case CmdPopFunction:
		return e.popPushedFrame(PushFunction)

	case CmdPopTunnel:
		return e.popPushedFrame(PushTunnel)

	case CmdBeginString:
		e.callStack.CurrentElement().InExpressionEvaluation = false
		e.stringCaptureStarts = append(e.stringCaptureStarts, e.output.Len())
		return nil

	case CmdEndString:
		if len(e.stringCaptureStarts) == 0 {
			return NewInternalError("EndString with no matching BeginString")
		}
		n := len(e.stringCaptureStarts) - 1
		start := e.stringCaptureStarts[n]
		e.stringCaptureStarts = e.stringCaptureStarts[:n]
		text := e.output.TextRange(start, e.output.Len())
		e.output.TruncateTo(start)
		e.callStack.CurrentElement().InExpressionEvaluation = true
		e.evalStack.Push(StringValue(text))
		return nil

	case CmdChoiceCount:
		e.evalStack.Push(IntValue(len(e.currentChoices)))
		return nil

	case CmdTurns:
		e.evalStack.Push(IntValue(e.currentTurnIndex))
		return nil

	case CmdTurnsSince:
		dt, err := e.evalStack.Pop()
		if err != nil {
			return err
		}
		target, ok := dt.(DivertTargetValue)
		if !ok {
			return NewRuntimeError("TURNS_SINCE expects a divert target operand")
		}
		key := target.Target.String()
		if obj, ok := ResolveIn(e.mainContainer, target.Target); ok {
			key = CanonicalPath(obj).String()
		}
		turn, seen := e.turnIndices[key]
		if !seen {
			e.evalStack.Push(IntValue(-1))
			return nil
		}
		e.evalStack.Push(IntValue(e.currentTurnIndex - turn))
		return nil

	case CmdReadCount:
		p, err := e.evalStack.Pop()
		if err != nil {
			return err
		}
		target, ok := p.(DivertTargetValue)
		if !ok {
			return NewRuntimeError("READ_COUNT expects a divert target operand")
		}
		key := target.Target.String()
		if obj, ok := ResolveIn(e.mainContainer, target.Target); ok {
			key = CanonicalPath(obj).String()
		}
		e.evalStack.Push(IntValue(e.visitCounts[key]))
		return nil

	case CmdRandom:
		max, err := e.evalStack.PopInt()
		if err != nil {
			return err
		}
		min, err := e.evalStack.PopInt()
		if err != nil {
			return err
		}
		e.evalStack.Push(IntValue(e.rng.Next(min, max)))
		return nil

	case CmdSeedRandom:
		seed, err := e.evalStack.PopInt()
		if err != nil {
			return err
		}
		e.rng.Seed(seed)
		return nil

	case CmdVisitIndex:
		key := CanonicalPath(e.currentContainer()).String()
		e.evalStack.Push(IntValue(e.visitCounts[key]))
		return nil

	case CmdSequenceShuffleIndex:
		numElements, err := e.evalStack.PopInt()
		if err != nil {
			return err
		}
		seqCount, err := e.evalStack.PopInt()
		if err != nil {
			return err
		}
		path := CanonicalPath(e.currentContainer())
		e.evalStack.Push(IntValue(SequenceShuffleIndex(path, seqCount, numElements, e.rng.StorySeed)))
		return nil

	case CmdStartThread:
		e.callStack.PushThread()
		return nil

	case CmdDone:
		if len(e.callStack.Threads) > 1 {
			return e.callStack.PopThread()
		}
		e.didSafeExit = true
		return nil

	case CmdEnd:
		e.callStack.ResetToSingleThread()
		e.didSafeExit = true
		return nil

	case CmdListFromInt:
		originName, err := e.evalStack.PopString()
		if err != nil {
			return err
		}
		value, err := e.evalStack.PopInt()
		if err != nil {
			return err
		}
		item, ok := e.listDefinitions.EntryByValue(originName, value)
		out := NewListValue().WithOrigin(originName)
		if ok {
			out.Add(item)
		}
		e.evalStack.Push(out)
		return nil

	case CmdListRange:
		right, err := e.evalStack.Pop()
		if err != nil {
			return err
		}
		left, err := e.evalStack.Pop()
		if err != nil {
			return err
		}
		listVal, err := e.evalStack.Pop()
		if err != nil {
			return err
		}
		lst, ok := listVal.(*ListValue)
		if !ok {
			return NewRuntimeError("LIST_RANGE expects a list operand")
		}
		min, err := toInt(left)
		if err != nil {
			return err
		}
		max, err := toInt(right)
		if err != nil {
			return err
		}
		e.evalStack.Push(lst.Slice(min, max))
		return nil

	case CmdListRandom:
		v, err := e.evalStack.Pop()
		if err != nil {
			return err
		}
		lst, ok := v.(*ListValue)
		if !ok {
			return NewRuntimeError("LIST_RANDOM expects a list operand")
		}
		if lst.Len() == 0 {
			e.evalStack.Push(lst.Clone())
			return nil
		}
		items := lst.sortedItems()
		picked := e.rng.ListRandomPick(items)
		out := lst.Clone()
		out.Items = map[string]ListItem{picked.Origin + "." + picked.Name: picked}
		e.evalStack.Push(out)
		return nil
	}

	return NewInternalError("unimplemented control command %d", cmd.Kind)
}

// popPushedFrame implements the explicit PopFunction/PopTunnel control
// commands (spec.md §4.6): if the current frame was pushed by
// EvaluateFunction rather than a story Divert, exit cleanly regardless
// of which pop command triggered it, since that frame has no story-side
// counterpart to match against. Otherwise pop a frame of the matching
// push_pop_type (mismatch is a RuntimeError, an authoring error rather
// than an engine bug), trimming trailing whitespace and pushing a Void
// return placeholder for functions evaluated as expressions. A
// PopTunnel may be preceded by a DivertTarget left on the evaluation
// stack ("tunnel onwards"): instead of resuming at the tunnel's call
// site, the engine diverts onward to that target.
func (e *Engine) popPushedFrame(expect StackPushType) error {
	thread := e.callStack.CurrentThread()

	if thread.Top().PushPopType == PushFunctionEvaluationFromGame {
		popped, err := thread.Pop()
		if err != nil {
			return err
		}
		e.trimFunctionWhitespace(popped)
		if popped.InExpressionEvaluation {
			e.evalStack.PushVoid()
		}
		e.skipNextContentAdvance = true
		return nil
	}

	var onwards *DivertTargetValue
	if expect == PushTunnel {
		if top, err := e.evalStack.TopObject(); err == nil {
			if vo, isValue := top.(*ValueObject); isValue {
				if dt, isDivert := vo.Value.(DivertTargetValue); isDivert {
					_, _ = e.evalStack.PopObject()
					onwards = &dt
				}
			}
		}
	}

	popped, err := thread.Pop()
	if err != nil {
		return err
	}
	if popped.PushPopType != expect {
		return NewRuntimeError("mismatched pop: expected %v, found %v", expect, popped.PushPopType)
	}

	if expect == PushFunction {
		e.trimFunctionWhitespace(popped)
		if popped.InExpressionEvaluation {
			e.evalStack.PushVoid()
		}
		return nil
	}

	if onwards != nil {
		target, err := PathToPointer(e.mainContainer, popped.CurrentPointer.Container, onwards.Target)
		if err != nil {
			return err
		}
		e.divertedPointer = target
		e.hasPendingDivert = true
	}
	return nil
}

// currentContainer returns the Container that most tightly encloses
// the current pointer, for VisitIndex/SequenceShuffleIndex which always
// refer to "the container currently being stepped through".
func (e *Engine) currentContainer() *Container {
	p := e.callStack.CurrentElement().CurrentPointer
	if p.IsNull() {
		return e.mainContainer
	}
	return p.Container
}

func toInt(v Value) (int64, error) {
	switch t := v.(type) {
	case IntValue:
		return int64(t), nil
	case FloatValue:
		return int64(t), nil
	case *ListValue:
		min, _, ok := t.minMax()
		if !ok {
			return 0, NewRuntimeError("LIST_RANGE bound is an empty list")
		}
		return min, nil
	}
	return 0, NewRuntimeError("expected a numeric operand, got %s", v.String())
}
