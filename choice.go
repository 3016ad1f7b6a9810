package ink

import "strings"

// Choice is a materialized, currently-selectable branch (spec.md §4.8).
type Choice struct {
	Text               string
	TargetPath         Path
	IsInvisibleDefault bool
	ThreadAtGeneration *Thread

	// sourcePath is the ChoicePoint's own path, kept with the choice and
	// round-tripped by snapshots; distinct from TargetPath
	// (path_on_choice), whose visit count the once_only check reads.
	sourcePath Path

	// sourceContainer anchors TargetPath's resolution when it is
	// relative (spec.md §4.1).
	sourceContainer *Container
}

// processChoicePoint implements spec.md §4.8. It pops condition/content
// values off the engine's evaluation stack unconditionally (even when
// the choice ends up hidden), and appends a visible Choice to
// e.currentChoices when it is not hidden.
func (e *Engine) processChoicePoint(cp *ChoicePoint) error {
	hidden := false

	if cp.HasCondition {
		v, err := e.evalStack.Pop()
		if err != nil {
			return err
		}
		truthy, err := v.Truthy()
		if err != nil {
			return err
		}
		if !truthy {
			hidden = true
		}
	}

	choiceOnly := ""
	if cp.HasChoiceOnlyContent {
		s, err := e.evalStack.PopString()
		if err != nil {
			return err
		}
		choiceOnly = s
	}

	prefix := ""
	if cp.HasStartContent {
		s, err := e.evalStack.PopString()
		if err != nil {
			return err
		}
		prefix = s
	}

	if cp.OnceOnly {
		if target, err := PathToPointer(e.mainContainer, cp.Parent(), cp.PathOnChoice); err == nil {
			if obj, resolved := target.Resolve(); resolved {
				if container, isContainer := obj.(*Container); isContainer {
					if e.visitCounts[CanonicalPath(container).String()] > 0 {
						hidden = true
					}
				}
			}
		}
	}

	if hidden {
		return nil
	}

	choice := &Choice{
		Text:               strings.TrimSpace(prefix + choiceOnly),
		TargetPath:         cp.PathOnChoice,
		IsInvisibleDefault: cp.IsInvisibleDefault,
		ThreadAtGeneration: e.callStack.CurrentThread().Fork(-1),
		sourcePath:         CanonicalPath(cp),
		sourceContainer:    cp.Parent(),
	}
	e.currentChoices = append(e.currentChoices, choice)
	return nil
}

// VisibleChoices returns the current choices excluding invisible
// defaults, per the CurrentChoices external interface (spec.md §6).
func (e *Engine) VisibleChoices() []*Choice {
	var out []*Choice
	for _, c := range e.currentChoices {
		if !c.IsInvisibleDefault {
			out = append(out, c)
		}
	}
	return out
}

// ChooseChoiceIndex implements spec.md §4.8: resume on the chosen
// choice's captured thread snapshot, clear current choices, jump to its
// target, bump the turn index, then resume stepping.
func (e *Engine) ChooseChoiceIndex(i int) error {
	visible := e.VisibleChoices()
	if i < 0 || i >= len(visible) {
		return NewRuntimeError("choice index %d out of range [0, %d)", i, len(visible))
	}
	return e.chooseChoice(visible[i], true)
}

func (e *Engine) chooseChoice(choice *Choice, bumpTurn bool) error {
	e.callStack.PushThreadFrom(choice.ThreadAtGeneration)
	e.currentChoices = nil

	target, err := PathToPointer(e.mainContainer, choice.sourceContainer, choice.TargetPath)
	if err != nil {
		return err
	}
	e.setCurrentPointer(target)

	if bumpTurn {
		e.currentTurnIndex++
	}
	e.didSafeExit = false
	return nil
}

// autoFollowInvisibleDefault implements spec.md §4.7's "when the story
// cannot continue and the only choice is is_invisible_default, follow
// it without incrementing the turn index".
func (e *Engine) autoFollowInvisibleDefault() (bool, error) {
	if e.CanContinue() || len(e.currentChoices) != 1 {
		return false, nil
	}
	only := e.currentChoices[0]
	if !only.IsInvisibleDefault {
		return false, nil
	}
	if err := e.chooseChoice(only, false); err != nil {
		return false, err
	}
	return true, nil
}
