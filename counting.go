package ink

// enterContainer records a visit/turn-count update for a container the
// engine has just stepped onto, honoring its authoring flags
// (spec.md §4.9).
func (e *Engine) enterContainer(c *Container) {
	countAll := e.config.GetBool("engine.count_all_visits")
	if !c.VisitsShouldBeCounted && !countAll && !c.TurnIndexShouldBeCounted {
		return
	}
	key := CanonicalPath(c).String()
	if c.VisitsShouldBeCounted || countAll {
		e.visitCounts[key]++
	}
	if c.TurnIndexShouldBeCounted {
		e.turnIndices[key] = e.currentTurnIndex
	}
}

// VisitCount reports the number of times the container at path has
// been entered, for host code inspecting story progress without
// stepping the engine (spec.md §6).
func (e *Engine) VisitCount(path Path) int {
	obj, ok := ResolveIn(e.mainContainer, path)
	if !ok {
		return 0
	}
	return e.visitCounts[CanonicalPath(obj).String()]
}

// TurnsSince reports turns elapsed since path was last entered, or -1
// if it has never been entered.
func (e *Engine) TurnsSince(path Path) int {
	obj, ok := ResolveIn(e.mainContainer, path)
	if !ok {
		return -1
	}
	turn, seen := e.turnIndices[CanonicalPath(obj).String()]
	if !seen {
		return -1
	}
	return e.currentTurnIndex - turn
}
