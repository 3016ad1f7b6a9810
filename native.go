package ink

import (
	"fmt"
	"math"
)

// executeNativeFunction applies a NativeFunctionCall over the top 1 or 2 Values of
// the evaluation stack, per spec.md §4.3: pop right then left (order
// matters), coerce, apply, push the result.
func executeNativeFunction(stack *EvalStack, defs *ListDefinitions, kind NativeFunctionCallKind) error {
	n := nativeFunctionArity[kind]
	if n == 2 {
		right, err := stack.Pop()
		if err != nil {
			return err
		}
		left, err := stack.Pop()
		if err != nil {
			return err
		}
		result, err := applyBinary(kind, left, right, defs)
		if err != nil {
			return err
		}
		stack.Push(result)
		return nil
	}

	operand, err := stack.Pop()
	if err != nil {
		return err
	}
	result, err := applyUnary(kind, operand, defs)
	if err != nil {
		return err
	}
	stack.Push(result)
	return nil
}

func applyBinary(kind NativeFunctionCallKind, left, right Value, defs *ListDefinitions) (Value, error) {
	// List+Int / Int+List increment is a special case handled before
	// generic coercion, since it is not a symmetric promotion.
	if kind == OpAdd || kind == OpSubtract {
		if lst, ok := left.(*ListValue); ok {
			if i, ok := right.(IntValue); ok {
				if kind == OpAdd {
					return lst.Increment(int64(i), defs), nil
				}
				return lst.Increment(-int64(i), defs), nil
			}
		}
		if i, ok := left.(IntValue); ok && kind == OpAdd {
			if lst, ok := right.(*ListValue); ok {
				return lst.Increment(int64(i), defs), nil
			}
		}
	}

	switch kind {
	case OpEquals:
		return IntValue(b2i(valuesEqual(left, right))), nil
	case OpNotEquals:
		return IntValue(b2i(!valuesEqual(left, right))), nil
	}

	l, r, err := Coerce(left, right)
	if err != nil {
		return nil, err
	}

	switch kind {
	case OpAdd:
		return arithAdd(l, r)
	case OpSubtract:
		return arithSub(l, r)
	case OpMultiply:
		return arithNumeric(l, r, func(a, b float64) float64 { return a * b }, func(a, b int64) int64 { return a * b })
	case OpDivide:
		return arithDivide(l, r)
	case OpMod:
		return arithMod(l, r)
	case OpGreaterThan:
		return compare(l, r, func(c int) bool { return c > 0 }, func(a, b *ListValue) bool { return a.GreaterThan(b) })
	case OpGreaterThanOrEquals:
		return compare(l, r, func(c int) bool { return c >= 0 }, func(a, b *ListValue) bool { return a.GreaterOrEqual(b) })
	case OpLessThan:
		return compare(l, r, func(c int) bool { return c < 0 }, func(a, b *ListValue) bool { return a.LessThan(b) })
	case OpLessThanOrEquals:
		return compare(l, r, func(c int) bool { return c <= 0 }, func(a, b *ListValue) bool { return a.LessOrEqual(b) })
	case OpAnd:
		return logical(l, r, func(a, b bool) bool { return a && b })
	case OpOr:
		return logical(l, r, func(a, b bool) bool { return a || b })
	case OpMin:
		return arithNumeric(l, r, math.Min, func(a, b int64) int64 {
			if a < b {
				return a
			}
			return b
		})
	case OpMax:
		return arithNumeric(l, r, math.Max, func(a, b int64) int64 {
			if a > b {
				return a
			}
			return b
		})
	case OpPow:
		return arithNumeric(l, r, math.Pow, func(a, b int64) int64 { return int64(math.Pow(float64(a), float64(b))) })
	case OpHas:
		return has(l, r)
	case OpHasnt:
		v, err := has(l, r)
		if err != nil {
			return nil, err
		}
		return IntValue(1 - v.(IntValue)), nil
	case OpIntersect:
		lst, rst, err := asLists(l, r)
		if err != nil {
			return nil, err
		}
		return lst.Intersect(rst), nil
	}
	return nil, NewInternalError("unimplemented binary native function %d", kind)
}

func applyUnary(kind NativeFunctionCallKind, v Value, defs *ListDefinitions) (Value, error) {
	switch kind {
	case OpFloor:
		return numericUnary(v, math.Floor, func(i int64) int64 { return i })
	case OpCeiling:
		return numericUnary(v, math.Ceil, func(i int64) int64 { return i })
	case OpInt:
		switch t := v.(type) {
		case IntValue:
			return t, nil
		case FloatValue:
			return IntValue(int64(t)), nil
		}
		return nil, NewRuntimeError("cannot convert %s to Int", v.String())
	case OpFloat:
		switch t := v.(type) {
		case FloatValue:
			return t, nil
		case IntValue:
			return FloatValue(t), nil
		}
		return nil, NewRuntimeError("cannot convert %s to Float", v.String())
	case OpListMin:
		lst, err := asList(v)
		if err != nil {
			return nil, err
		}
		return lst.Min(), nil
	case OpListMax:
		lst, err := asList(v)
		if err != nil {
			return nil, err
		}
		return lst.Max(), nil
	case OpCount:
		switch t := v.(type) {
		case *ListValue:
			return IntValue(t.Len()), nil
		case StringValue:
			return IntValue(len(t)), nil
		}
		return nil, NewRuntimeError("cannot Count a %s", v.String())
	case OpValueOfList:
		lst, err := asList(v)
		if err != nil {
			return nil, err
		}
		return IntValue(lst.ValueOfList()), nil
	case OpAll:
		lst, err := asList(v)
		if err != nil {
			return nil, err
		}
		return lst.All(defs), nil
	case OpInvert:
		lst, err := asList(v)
		if err != nil {
			return nil, err
		}
		return lst.Invert(defs), nil
	case OpNot:
		truthy, err := v.Truthy()
		if err != nil {
			return nil, err
		}
		return IntValue(b2i(!truthy)), nil
	case OpNegate:
		switch t := v.(type) {
		case IntValue:
			return -t, nil
		case FloatValue:
			return -t, nil
		}
		return nil, NewRuntimeError("cannot negate %s", v.String())
	}
	return nil, NewInternalError("unimplemented unary native function %d", kind)
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func valuesEqual(a, b Value) bool {
	l, r, err := Coerce(a, b)
	if err != nil {
		return false
	}
	switch lv := l.(type) {
	case IntValue:
		return lv == r.(IntValue)
	case FloatValue:
		return lv == r.(FloatValue)
	case StringValue:
		return lv == r.(StringValue)
	case *ListValue:
		rv := r.(*ListValue)
		return lv.Contains(rv) && rv.Contains(lv)
	case DivertTargetValue:
		return lv.Target.String() == r.(DivertTargetValue).Target.String()
	}
	return false
}

func arithAdd(l, r Value) (Value, error) {
	switch lv := l.(type) {
	case StringValue:
		return lv + r.(StringValue), nil
	case *ListValue:
		return lv.Union(r.(*ListValue)), nil
	}
	return arithNumeric(l, r, func(a, b float64) float64 { return a + b }, func(a, b int64) int64 { return a + b })
}

func arithSub(l, r Value) (Value, error) {
	if lv, ok := l.(*ListValue); ok {
		return lv.Difference(r.(*ListValue)), nil
	}
	return arithNumeric(l, r, func(a, b float64) float64 { return a - b }, func(a, b int64) int64 { return a - b })
}

func arithNumeric(l, r Value, ffn func(a, b float64) float64, ifn func(a, b int64) int64) (Value, error) {
	switch lv := l.(type) {
	case IntValue:
		return IntValue(ifn(int64(lv), int64(r.(IntValue)))), nil
	case FloatValue:
		return FloatValue(ffn(float64(lv), float64(r.(FloatValue)))), nil
	}
	return nil, NewRuntimeError("cannot apply arithmetic to %s", l.String())
}

func arithDivide(l, r Value) (Value, error) {
	switch lv := l.(type) {
	case IntValue:
		rv := r.(IntValue)
		if rv == 0 {
			return nil, NewRuntimeError("division by zero")
		}
		return IntValue(int64(lv) / int64(rv)), nil
	case FloatValue:
		rv := r.(FloatValue)
		if rv == 0 {
			return nil, NewRuntimeError("division by zero")
		}
		return FloatValue(float64(lv) / float64(rv)), nil
	}
	return nil, NewRuntimeError("cannot divide %s", l.String())
}

func arithMod(l, r Value) (Value, error) {
	switch lv := l.(type) {
	case IntValue:
		rv := r.(IntValue)
		if rv == 0 {
			return nil, NewRuntimeError("modulo by zero")
		}
		return IntValue(int64(lv) % int64(rv)), nil
	case FloatValue:
		rv := r.(FloatValue)
		if rv == 0 {
			return nil, NewRuntimeError("modulo by zero")
		}
		return FloatValue(math.Mod(float64(lv), float64(rv))), nil
	}
	return nil, NewRuntimeError("cannot apply mod to %s", l.String())
}

func compare(l, r Value, cmp func(int) bool, listCmp func(a, b *ListValue) bool) (Value, error) {
	switch lv := l.(type) {
	case IntValue:
		rv := int64(r.(IntValue))
		return IntValue(b2i(cmp(signOf(int64(lv) - rv)))), nil
	case FloatValue:
		rv := float64(r.(FloatValue))
		d := float64(lv) - rv
		var s int
		if d > 0 {
			s = 1
		} else if d < 0 {
			s = -1
		}
		return IntValue(b2i(cmp(s))), nil
	case StringValue:
		rv := string(r.(StringValue))
		var s int
		if string(lv) > rv {
			s = 1
		} else if string(lv) < rv {
			s = -1
		}
		return IntValue(b2i(cmp(s))), nil
	case *ListValue:
		return IntValue(b2i(listCmp(lv, r.(*ListValue)))), nil
	}
	return nil, NewRuntimeError("cannot compare %s", l.String())
}

func signOf(d int64) int {
	if d > 0 {
		return 1
	}
	if d < 0 {
		return -1
	}
	return 0
}

func logical(l, r Value, fn func(a, b bool) bool) (Value, error) {
	lt, err := l.Truthy()
	if err != nil {
		return nil, err
	}
	rt, err := r.Truthy()
	if err != nil {
		return nil, err
	}
	return IntValue(b2i(fn(lt, rt))), nil
}

func has(l, r Value) (Value, error) {
	switch lv := l.(type) {
	case StringValue:
		rv, ok := r.(StringValue)
		if !ok {
			return nil, NewRuntimeError("Has expects a string operand")
		}
		return IntValue(b2i(containsSubstring(string(lv), string(rv)))), nil
	case *ListValue:
		rv, err := asList(r)
		if err != nil {
			return nil, err
		}
		return IntValue(b2i(lv.Contains(rv))), nil
	}
	return nil, fmt.Errorf("cannot apply Has to %s", l.String())
}

func containsSubstring(s, sub string) bool {
	if len(sub) == 0 {
		return true
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func asList(v Value) (*ListValue, error) {
	lv, ok := v.(*ListValue)
	if !ok {
		return nil, NewRuntimeError("expected a list value, got %s", v.String())
	}
	return lv, nil
}

func asLists(a, b Value) (*ListValue, *ListValue, error) {
	la, err := asList(a)
	if err != nil {
		return nil, nil, err
	}
	lb, err := asList(b)
	if err != nil {
		return nil, nil, err
	}
	return la, lb, nil
}

func numericUnary(v Value, ffn func(float64) float64, ifn func(int64) int64) (Value, error) {
	switch t := v.(type) {
	case IntValue:
		return IntValue(ifn(int64(t))), nil
	case FloatValue:
		return FloatValue(ffn(float64(t))), nil
	}
	return nil, NewRuntimeError("cannot apply numeric function to %s", v.String())
}
