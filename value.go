package ink

import (
	"fmt"
	"strconv"
)

// Value is the tagged scalar/compound domain flowing through the
// evaluation stack and variable tables (spec.md §3).
type Value interface {
	isValue()
	Truthy() (bool, error)
	String() string
}

// VariableContext disambiguates where a variable name should be looked
// up: global, a specific temporary frame, or unresolved.
type VariableContext int

const (
	ContextUnknown VariableContext = iota
	ContextGlobal
	ContextTemporary
)

type IntValue int64

func (IntValue) isValue()             {}
func (v IntValue) Truthy() (bool, error) { return v != 0, nil }
func (v IntValue) String() string     { return strconv.FormatInt(int64(v), 10) }

type FloatValue float64

func (FloatValue) isValue()               {}
func (v FloatValue) Truthy() (bool, error) { return v != 0, nil }
func (v FloatValue) String() string       { return strconv.FormatFloat(float64(v), 'g', -1, 64) }

type StringValue string

func (StringValue) isValue()               {}
func (v StringValue) Truthy() (bool, error) { return len(v) > 0, nil }
func (v StringValue) String() string       { return string(v) }

// DivertTargetValue carries a Path naming where a divert would jump.
type DivertTargetValue struct {
	Target Path
}

func (DivertTargetValue) isValue() {}
func (v DivertTargetValue) Truthy() (bool, error) {
	return false, NewInternalError("cannot evaluate truthiness of a divert target")
}
func (v DivertTargetValue) String() string { return "-> " + v.Target.String() }

// VariablePointerValue names another variable, optionally tagged with
// the context it was captured in, and (for temporaries) which thread
// frame index it refers to.
type VariablePointerValue struct {
	Name         string
	Context      VariableContext
	FrameIndex   int
}

func (VariablePointerValue) isValue() {}
func (v VariablePointerValue) Truthy() (bool, error) {
	return false, NewInternalError("cannot evaluate truthiness of a variable pointer")
}
func (v VariablePointerValue) String() string { return "VarPtr(" + v.Name + ")" }

// coercionRank implements the promotion priority of spec.md §4.3:
// DivertTarget ≻ List ≻ String ≻ Float ≻ Int.
func coercionRank(v Value) int {
	switch v.(type) {
	case DivertTargetValue:
		return 5
	case *ListValue:
		return 4
	case StringValue:
		return 3
	case FloatValue:
		return 2
	case IntValue:
		return 1
	default:
		return 0
	}
}

// Coerce promotes a and b to the same rank, following §4.3's priority
// order. Either operand can force the other up; incompatible pairs
// (e.g. Int and DivertTarget) return an error.
func Coerce(a, b Value) (Value, Value, error) {
	ra, rb := coercionRank(a), coercionRank(b)
	if ra == rb {
		return a, b, nil
	}
	hi, lo := a, b
	hiRank, loRank := ra, rb
	if rb > ra {
		hi, lo = b, a
		hiRank, loRank = rb, ra
	}

	switch hiRank {
	case 5: // DivertTarget: nothing coerces into it.
		return nil, nil, NewRuntimeError(fmt.Sprintf("cannot coerce %s to a divert target", lo.String()))
	case 4: // List
		if loRank == 1 { // Int promotes into a single-entry increment target elsewhere; plain coercion fails.
			return nil, nil, NewRuntimeError(fmt.Sprintf("cannot coerce %s to a list", lo.String()))
		}
		return nil, nil, NewRuntimeError(fmt.Sprintf("cannot coerce %s to a list", lo.String()))
	case 3: // String
		loStr := StringValue(lo.String())
		if hi == a {
			return hi, loStr, nil
		}
		return loStr, hi, nil
	case 2: // Float
		var f FloatValue
		switch t := lo.(type) {
		case IntValue:
			f = FloatValue(t)
		default:
			return nil, nil, NewRuntimeError(fmt.Sprintf("cannot coerce %s to a float", lo.String()))
		}
		if hi == a {
			return hi, f, nil
		}
		return f, hi, nil
	}
	return nil, nil, NewInternalError("unreachable coercion rank")
}
