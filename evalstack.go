package ink

// EvalStack is the LIFO of Objects (Value or Void) backing expression
// evaluation (spec.md §4.3).
type EvalStack struct {
	items []Object
}

func NewEvalStack() *EvalStack { return &EvalStack{} }

func (s *EvalStack) PushObject(o Object) { s.items = append(s.items, o) }

func (s *EvalStack) Push(v Value) { s.PushObject(NewValueObject(v)) }

func (s *EvalStack) PushVoid() { s.PushObject(&Void{}) }

func (s *EvalStack) Len() int { return len(s.items) }

// PopObject pops the raw top Object (a *ValueObject or *Void).
func (s *EvalStack) PopObject() (Object, error) {
	if len(s.items) == 0 {
		return nil, NewInternalError("cannot pop from an empty evaluation stack")
	}
	o := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return o, nil
}

// Pop pops the top value, requiring it not be Void.
func (s *EvalStack) Pop() (Value, error) {
	o, err := s.PopObject()
	if err != nil {
		return nil, err
	}
	vo, ok := o.(*ValueObject)
	if !ok {
		return nil, NewInternalError("expected a value on the evaluation stack, found Void")
	}
	return vo.Value, nil
}

// TopObject peeks without popping.
func (s *EvalStack) TopObject() (Object, error) {
	if len(s.items) == 0 {
		return nil, NewInternalError("cannot peek an empty evaluation stack")
	}
	return s.items[len(s.items)-1], nil
}

// Duplicate pushes a copy of the top of the stack.
func (s *EvalStack) Duplicate() error {
	top, err := s.TopObject()
	if err != nil {
		return err
	}
	s.PushObject(top)
	return nil
}

func (s *EvalStack) TruncateTo(size int) {
	if size < len(s.items) {
		s.items = s.items[:size]
	}
}

// PopString requires the popped value be a String (any other value is
// a RuntimeError, with no coercion), used by ChoicePoint processing
// (spec.md §4.8).
func (s *EvalStack) PopString() (string, error) {
	v, err := s.Pop()
	if err != nil {
		return "", err
	}
	str, ok := v.(StringValue)
	if !ok {
		return "", NewRuntimeError("expected a string on the evaluation stack, got %s", v.String())
	}
	return string(str), nil
}

// PopInt requires the popped value be an Int.
func (s *EvalStack) PopInt() (int64, error) {
	v, err := s.Pop()
	if err != nil {
		return 0, err
	}
	i, ok := v.(IntValue)
	if !ok {
		return 0, NewRuntimeError("expected an int on the evaluation stack, got %s", v.String())
	}
	return int64(i), nil
}
