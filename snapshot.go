package ink

import (
	"reflect"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Snapshot is the durable, story-agnostic state of a running Engine
// (spec.md §6): everything needed to resume execution against the same
// compiled content graph. It excludes the graph itself, per the
// Non-goal that deserializing the compiled format is out of scope.
type Snapshot struct {
	TurnIndex      int            `yaml:"turn_index"`
	StorySeed      int64          `yaml:"story_seed"`
	PreviousRandom int64          `yaml:"previous_random"`
	DidSafeExit    bool           `yaml:"did_safe_exit"`
	VisitCounts    map[string]int `yaml:"visit_counts"`
	TurnIndices    map[string]int `yaml:"turn_indices"`
	Globals        map[string]valueDTO `yaml:"globals"`
	CallStack      callStackDTO   `yaml:"call_stack"`
	EvalStack      []objectDTO    `yaml:"eval_stack"`
	Output         []objectDTO    `yaml:"output"`
	CurrentChoices []choiceDTO    `yaml:"current_choices,omitempty"`
}

type valueDTO struct {
	Type              string        `yaml:"type"`
	Int               int64         `yaml:"int,omitempty"`
	Float             float64       `yaml:"float,omitempty"`
	Str               string        `yaml:"str,omitempty"`
	DivertTarget      pathDTO       `yaml:"divert_target,omitempty"`
	VarPointerName    string        `yaml:"var_pointer_name,omitempty"`
	VarPointerContext int           `yaml:"var_pointer_context,omitempty"`
	ListOrigins       []string      `yaml:"list_origins,omitempty"`
	ListItems         []listItemDTO `yaml:"list_items,omitempty"`
}

type listItemDTO struct {
	Origin string `yaml:"origin"`
	Name   string `yaml:"name"`
	Value  int64  `yaml:"value"`
}

type pathDTO struct {
	Components []string `yaml:"components,omitempty"`
	Relative   bool     `yaml:"relative,omitempty"`
}

type pointerDTO struct {
	Null     bool    `yaml:"null,omitempty"`
	Path     pathDTO `yaml:"path,omitempty"`
	HasIndex bool    `yaml:"has_index,omitempty"`
	Index    int     `yaml:"index,omitempty"`
}

type elementDTO struct {
	Pointer                       pointerDTO          `yaml:"pointer"`
	InExpressionEvaluation        bool                `yaml:"in_expression_evaluation"`
	Temporary                     map[string]valueDTO `yaml:"temporary"`
	PushPopType                   int                 `yaml:"push_pop_type"`
	EvaluationStackSizeWhenCalled int                 `yaml:"eval_stack_size_when_called"`
	FunctionStartInOutputStream   int                 `yaml:"function_start_in_output_stream"`
}

type threadDTO struct {
	Index           int          `yaml:"index"`
	PreviousPointer pointerDTO   `yaml:"previous_pointer"`
	Elements        []elementDTO `yaml:"elements"`
}

type callStackDTO struct {
	Threads []threadDTO `yaml:"threads"`
}

// choiceDTO serializes a materialized Choice, including the thread
// snapshot it resumes on — current_choices is part of Engine state
// (spec.md §3) and a snapshot must round-trip it like anything else.
type choiceDTO struct {
	Text               string     `yaml:"text"`
	TargetPath         pathDTO    `yaml:"target_path"`
	IsInvisibleDefault bool       `yaml:"is_invisible_default,omitempty"`
	SourcePath         pathDTO    `yaml:"source_path"`
	SourceContainer    pathDTO    `yaml:"source_container"`
	ThreadAtGeneration threadDTO  `yaml:"thread_at_generation"`
}

type objectDTO struct {
	Kind  string   `yaml:"kind"`
	Value valueDTO `yaml:"value,omitempty"`
	Tag   string   `yaml:"tag,omitempty"`
}

func pathToDTO(p Path) pathDTO {
	comps := make([]string, len(p.Components))
	for i, c := range p.Components {
		comps[i] = c.String()
	}
	return pathDTO{Components: comps, Relative: p.IsRelative}
}

func dtoToPath(d pathDTO) Path {
	comps := make([]Component, len(d.Components))
	for i, s := range d.Components {
		switch {
		case s == "^":
			comps[i] = ParentComponent
		default:
			if n, err := strconv.Atoi(s); err == nil {
				comps[i] = IndexComponent(n)
			} else {
				comps[i] = NameComponent(s)
			}
		}
	}
	return Path{Components: comps, IsRelative: d.Relative}
}

func valueToDTO(v Value) valueDTO {
	switch t := v.(type) {
	case IntValue:
		return valueDTO{Type: "int", Int: int64(t)}
	case FloatValue:
		return valueDTO{Type: "float", Float: float64(t)}
	case StringValue:
		return valueDTO{Type: "string", Str: string(t)}
	case DivertTargetValue:
		return valueDTO{Type: "divert_target", DivertTarget: pathToDTO(t.Target)}
	case VariablePointerValue:
		return valueDTO{Type: "variable_pointer", VarPointerName: t.Name, VarPointerContext: int(t.Context)}
	case *ListValue:
		origins := make([]string, 0, len(t.Origins))
		for o := range t.Origins {
			origins = append(origins, o)
		}
		items := make([]listItemDTO, 0, len(t.Items))
		for _, it := range t.Items {
			items = append(items, listItemDTO{Origin: it.Origin, Name: it.Name, Value: it.Value})
		}
		return valueDTO{Type: "list", ListOrigins: origins, ListItems: items}
	}
	return valueDTO{Type: "void"}
}

func dtoToValue(d valueDTO) Value {
	switch d.Type {
	case "int":
		return IntValue(d.Int)
	case "float":
		return FloatValue(d.Float)
	case "string":
		return StringValue(d.Str)
	case "divert_target":
		return DivertTargetValue{Target: dtoToPath(d.DivertTarget)}
	case "variable_pointer":
		return VariablePointerValue{Name: d.VarPointerName, Context: VariableContext(d.VarPointerContext)}
	case "list":
		lv := NewListValue()
		for _, o := range d.ListOrigins {
			lv.Origins[o] = struct{}{}
		}
		for _, it := range d.ListItems {
			lv.Add(ListItem{Origin: it.Origin, Name: it.Name, Value: it.Value})
		}
		return lv
	}
	return nil
}

func (e *Engine) pointerToDTO(p Pointer) pointerDTO {
	if p.IsNull() {
		return pointerDTO{Null: true}
	}
	d := pointerDTO{Path: pathToDTO(CanonicalPath(p.Container))}
	if p.Index != nil {
		d.HasIndex = true
		d.Index = *p.Index
	}
	return d
}

func (e *Engine) dtoToPointer(d pointerDTO) (Pointer, error) {
	if d.Null {
		return NullPointer(), nil
	}
	container := e.mainContainer
	if len(d.Path.Components) > 0 {
		obj, ok := ResolveIn(e.mainContainer, dtoToPath(d.Path))
		if !ok {
			return NullPointer(), NewRuntimeError("snapshot pointer path not found: %v", d.Path.Components)
		}
		container, ok = obj.(*Container)
		if !ok {
			return NullPointer(), NewRuntimeError("snapshot pointer does not resolve to a container")
		}
	}
	if !d.HasIndex {
		return Pointer{Container: container}, nil
	}
	return Pointer{Container: container, Index: intPtr(d.Index)}, nil
}

func (e *Engine) objectToDTO(o Object) objectDTO {
	switch v := o.(type) {
	case *ValueObject:
		return objectDTO{Kind: "value", Value: valueToDTO(v.Value)}
	case *Void:
		return objectDTO{Kind: "void"}
	case *Glue:
		return objectDTO{Kind: "glue"}
	case *Tag:
		return objectDTO{Kind: "tag", Tag: v.Text}
	}
	return objectDTO{Kind: "void"}
}

func (e *Engine) dtoToObject(d objectDTO) Object {
	switch d.Kind {
	case "value":
		return NewValueObject(dtoToValue(d.Value))
	case "glue":
		return &Glue{}
	case "tag":
		return &Tag{Text: d.Tag}
	default:
		return &Void{}
	}
}

func (e *Engine) threadToDTO(t *Thread) threadDTO {
	td := threadDTO{Index: t.Index, PreviousPointer: e.pointerToDTO(t.PreviousPointer)}
	for _, el := range t.Elements {
		ed := elementDTO{
			Pointer:                       e.pointerToDTO(el.CurrentPointer),
			InExpressionEvaluation:        el.InExpressionEvaluation,
			Temporary:                     map[string]valueDTO{},
			PushPopType:                   int(el.PushPopType),
			EvaluationStackSizeWhenCalled: el.EvaluationStackSizeWhenCalled,
			FunctionStartInOutputStream:   el.FunctionStartInOutputStream,
		}
		for k, v := range el.Temporary {
			ed.Temporary[k] = valueToDTO(v)
		}
		td.Elements = append(td.Elements, ed)
	}
	return td
}

func (e *Engine) dtoToThread(td threadDTO) (*Thread, error) {
	prevPtr, err := e.dtoToPointer(td.PreviousPointer)
	if err != nil {
		return nil, err
	}
	thread := &Thread{Index: td.Index, PreviousPointer: prevPtr}
	for _, ed := range td.Elements {
		ptr, err := e.dtoToPointer(ed.Pointer)
		if err != nil {
			return nil, err
		}
		el := NewElement(ptr, StackPushType(ed.PushPopType))
		el.InExpressionEvaluation = ed.InExpressionEvaluation
		el.EvaluationStackSizeWhenCalled = ed.EvaluationStackSizeWhenCalled
		el.FunctionStartInOutputStream = ed.FunctionStartInOutputStream
		for k, v := range ed.Temporary {
			el.Temporary[k] = dtoToValue(v)
		}
		thread.Elements = append(thread.Elements, el)
	}
	return thread, nil
}

func (e *Engine) choiceToDTO(c *Choice) choiceDTO {
	sourceContainer := Path{}
	if c.sourceContainer != nil {
		sourceContainer = CanonicalPath(c.sourceContainer)
	}
	return choiceDTO{
		Text:               c.Text,
		TargetPath:         pathToDTO(c.TargetPath),
		IsInvisibleDefault: c.IsInvisibleDefault,
		SourcePath:         pathToDTO(c.sourcePath),
		SourceContainer:    pathToDTO(sourceContainer),
		ThreadAtGeneration: e.threadToDTO(c.ThreadAtGeneration),
	}
}

func (e *Engine) dtoToChoice(d choiceDTO) (*Choice, error) {
	thread, err := e.dtoToThread(d.ThreadAtGeneration)
	if err != nil {
		return nil, err
	}
	var sourceContainer *Container
	if obj, ok := ResolveIn(e.mainContainer, dtoToPath(d.SourceContainer)); ok {
		sourceContainer, _ = obj.(*Container)
	}
	return &Choice{
		Text:               d.Text,
		TargetPath:         dtoToPath(d.TargetPath),
		IsInvisibleDefault: d.IsInvisibleDefault,
		ThreadAtGeneration: thread,
		sourcePath:         dtoToPath(d.SourcePath),
		sourceContainer:    sourceContainer,
	}, nil
}

// buildSnapshot captures the engine's full resumable state.
func (e *Engine) buildSnapshot() *Snapshot {
	s := &Snapshot{
		TurnIndex:      e.currentTurnIndex,
		StorySeed:      e.rng.StorySeed,
		PreviousRandom: e.rng.PreviousRandom,
		DidSafeExit:    e.didSafeExit,
		VisitCounts:    copyIntMap(e.visitCounts),
		TurnIndices:    copyIntMap(e.turnIndices),
		Globals:        map[string]valueDTO{},
	}
	for k, v := range e.globalVariables {
		s.Globals[k] = valueToDTO(v)
	}

	for _, t := range e.callStack.Threads {
		s.CallStack.Threads = append(s.CallStack.Threads, e.threadToDTO(t))
	}

	for _, o := range e.evalStack.items {
		s.EvalStack = append(s.EvalStack, e.objectToDTO(o))
	}
	for _, o := range e.output.Items() {
		s.Output = append(s.Output, e.objectToDTO(o))
	}
	for _, c := range e.currentChoices {
		s.CurrentChoices = append(s.CurrentChoices, e.choiceToDTO(c))
	}

	return s
}

func copyIntMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// applySnapshot overwrites the engine's mutable state from a decoded
// Snapshot, leaving the compiled content graph untouched.
func (e *Engine) applySnapshot(s *Snapshot) error {
	e.currentTurnIndex = s.TurnIndex
	e.rng.StorySeed = s.StorySeed
	e.rng.PreviousRandom = s.PreviousRandom
	e.didSafeExit = s.DidSafeExit
	e.visitCounts = copyIntMap(s.VisitCounts)
	e.turnIndices = copyIntMap(s.TurnIndices)

	e.globalVariables = make(map[string]Value, len(s.Globals))
	for k, v := range s.Globals {
		e.globalVariables[k] = dtoToValue(v)
	}

	threads := make([]*Thread, 0, len(s.CallStack.Threads))
	for _, td := range s.CallStack.Threads {
		thread, err := e.dtoToThread(td)
		if err != nil {
			return err
		}
		threads = append(threads, thread)
	}
	e.callStack.Threads = threads

	e.evalStack = NewEvalStack()
	for _, od := range s.EvalStack {
		e.evalStack.PushObject(e.dtoToObject(od))
	}

	e.output = NewOutputStream()
	for _, od := range s.Output {
		e.output.Append(e.dtoToObject(od))
	}
	e.lastLineStart = e.output.Len()
	e.currentErrors = nil
	e.currentWarnings = nil

	e.currentChoices = nil
	for _, cd := range s.CurrentChoices {
		choice, err := e.dtoToChoice(cd)
		if err != nil {
			return err
		}
		e.currentChoices = append(e.currentChoices, choice)
	}

	return nil
}

// Snapshot serializes the engine's resumable state to YAML.
func (e *Engine) Snapshot() ([]byte, error) {
	return yaml.Marshal(e.buildSnapshot())
}

// Restore overwrites the engine's state from previously-serialized
// Snapshot bytes.
func (e *Engine) Restore(data []byte) error {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return NewRuntimeError("invalid snapshot: %v", err)
	}
	return e.applySnapshot(&s)
}

// LoadSnapshot decodes previously-serialized Snapshot bytes without
// applying them, for use as a Patch baseline.
func LoadSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, NewRuntimeError("invalid snapshot: %v", err)
	}
	return &s, nil
}

// patchDTO carries only the fields that changed since a baseline
// Snapshot, grounded on original_source/'s incremental state patch but
// scoped to persisted state rather than in-flight execution state,
// which the Non-goals exclude.
type patchDTO struct {
	TurnIndex      *int            `yaml:"turn_index,omitempty"`
	StorySeed      *int64          `yaml:"story_seed,omitempty"`
	PreviousRandom *int64          `yaml:"previous_random,omitempty"`
	VisitCounts    map[string]int  `yaml:"visit_counts,omitempty"`
	TurnIndices    map[string]int  `yaml:"turn_indices,omitempty"`
	Globals        map[string]valueDTO `yaml:"globals,omitempty"`
}

// Patch produces a YAML diff of persisted state against a baseline
// Snapshot: only global variables and visit/turn counters that changed
// are included, plus the scalar RNG/turn fields when they differ.
func (e *Engine) Patch(since *Snapshot) ([]byte, error) {
	current := e.buildSnapshot()
	p := patchDTO{VisitCounts: map[string]int{}, TurnIndices: map[string]int{}, Globals: map[string]valueDTO{}}

	if since == nil || current.TurnIndex != since.TurnIndex {
		p.TurnIndex = &current.TurnIndex
	}
	if since == nil || current.StorySeed != since.StorySeed {
		p.StorySeed = &current.StorySeed
	}
	if since == nil || current.PreviousRandom != since.PreviousRandom {
		p.PreviousRandom = &current.PreviousRandom
	}

	baseVisits := map[string]int{}
	baseTurns := map[string]int{}
	baseGlobals := map[string]valueDTO{}
	if since != nil {
		baseVisits, baseTurns, baseGlobals = since.VisitCounts, since.TurnIndices, since.Globals
	}
	for k, v := range current.VisitCounts {
		if baseVisits[k] != v {
			p.VisitCounts[k] = v
		}
	}
	for k, v := range current.TurnIndices {
		if baseTurns[k] != v {
			p.TurnIndices[k] = v
		}
	}
	for k, v := range current.Globals {
		if ov, ok := baseGlobals[k]; !ok || !reflect.DeepEqual(ov, v) {
			p.Globals[k] = v
		}
	}

	return yaml.Marshal(p)
}
