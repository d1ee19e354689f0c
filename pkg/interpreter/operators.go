package interpreter

import (
	"math"
	"strconv"

	"github.com/latticelang/evaluator/pkg/runtime"
)

// truthy implements the language's boolean coercion for conditionals and
// logical operators: false, 0, NaN, "", null, and undefined are falsy;
// everything else (including empty arrays/objects) is truthy.
func truthy(v runtime.Value) bool {
	switch val := v.(type) {
	case runtime.UndefinedValue:
		return false
	case runtime.NullValue:
		return false
	case runtime.BoolValue:
		return val.Val
	case runtime.NumberValue:
		return val.Val != 0 && !runtime.IsNaN(val.Val)
	case runtime.StringValue:
		return val.Val != ""
	default:
		return true
	}
}

// isNullish reports whether v is null or undefined — the only values the
// nullish-coalescing operator (`??`) treats specially.
func isNullish(v runtime.Value) bool {
	switch v.(type) {
	case runtime.UndefinedValue, runtime.NullValue:
		return true
	default:
		return false
	}
}

// strictEquals implements `===`: no coercion, same-kind comparison,
// reference identity for containers/functions/classes.
func strictEquals(a, b runtime.Value) bool {
	switch av := a.(type) {
	case runtime.UndefinedValue:
		_, ok := b.(runtime.UndefinedValue)
		return ok
	case runtime.NullValue:
		_, ok := b.(runtime.NullValue)
		return ok
	case runtime.BoolValue:
		bv, ok := b.(runtime.BoolValue)
		return ok && av.Val == bv.Val
	case runtime.NumberValue:
		bv, ok := b.(runtime.NumberValue)
		return ok && av.Val == bv.Val
	case runtime.StringValue:
		bv, ok := b.(runtime.StringValue)
		return ok && av.Val == bv.Val
	case *runtime.ArrayValue:
		bv, ok := b.(*runtime.ArrayValue)
		return ok && av == bv
	case *runtime.ObjectValue:
		bv, ok := b.(*runtime.ObjectValue)
		return ok && av == bv
	case *runtime.FunctionValue:
		bv, ok := b.(*runtime.FunctionValue)
		return ok && av == bv
	case *runtime.ClassValue:
		bv, ok := b.(*runtime.ClassValue)
		return ok && av == bv
	case *runtime.ErrorValue:
		bv, ok := b.(*runtime.ErrorValue)
		return ok && av == bv
	default:
		return a == b
	}
}

func toNumber(v runtime.Value) float64 {
	switch val := v.(type) {
	case runtime.NumberValue:
		return val.Val
	case runtime.BoolValue:
		if val.Val {
			return 1
		}
		return 0
	case runtime.StringValue:
		f, err := strconv.ParseFloat(val.Val, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case runtime.NullValue:
		return 0
	default:
		return math.NaN()
	}
}

func toStringValue(v runtime.Value) string {
	switch val := v.(type) {
	case runtime.StringValue:
		return val.Val
	case runtime.NumberValue:
		return formatNumber(val.Val)
	case runtime.BoolValue:
		if val.Val {
			return "true"
		}
		return "false"
	case runtime.UndefinedValue:
		return "undefined"
	case runtime.NullValue:
		return "null"
	case *runtime.ArrayValue:
		parts := make([]string, len(val.Elements))
		for idx, e := range val.Elements {
			parts[idx] = toStringValue(e)
		}
		return joinComma(parts)
	case *runtime.ObjectValue:
		return "[object Object]"
	case *runtime.FunctionValue:
		return "[function " + val.Name + "]"
	case *runtime.ClassValue:
		return "[class " + val.Name + "]"
	case *runtime.ErrorValue:
		return val.Error()
	default:
		return ""
	}
}

// toStringKey is toStringValue's sibling used specifically for coercing a
// computed member/pattern key to its object-key string form.
func toStringKey(v runtime.Value) string { return toStringValue(v) }

func joinComma(parts []string) string {
	out := ""
	for idx, p := range parts {
		if idx > 0 {
			out += ","
		}
		out += p
	}
	return out
}

func formatNumber(f float64) string {
	if runtime.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// evalBinary implements BinaryExpression operator semantics (spec.md
// §4.4): IEEE-754 arithmetic for numbers, string concatenation for `+`
// when either side is a string, and standard relational/equality
// coercions otherwise.
func evalBinary(op string, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case "+":
		if _, ok := left.(runtime.StringValue); ok {
			return runtime.StringValue{Val: toStringValue(left) + toStringValue(right)}, nil
		}
		if _, ok := right.(runtime.StringValue); ok {
			return runtime.StringValue{Val: toStringValue(left) + toStringValue(right)}, nil
		}
		return runtime.NumberValue{Val: toNumber(left) + toNumber(right)}, nil
	case "-":
		return runtime.NumberValue{Val: toNumber(left) - toNumber(right)}, nil
	case "*":
		return runtime.NumberValue{Val: toNumber(left) * toNumber(right)}, nil
	case "/":
		return runtime.NumberValue{Val: toNumber(left) / toNumber(right)}, nil
	case "%":
		return runtime.NumberValue{Val: math.Mod(toNumber(left), toNumber(right))}, nil
	case "**":
		return runtime.NumberValue{Val: math.Pow(toNumber(left), toNumber(right))}, nil
	case "==":
		return runtime.BoolValue{Val: looseEquals(left, right)}, nil
	case "!=":
		return runtime.BoolValue{Val: !looseEquals(left, right)}, nil
	case "===":
		return runtime.BoolValue{Val: strictEquals(left, right)}, nil
	case "!==":
		return runtime.BoolValue{Val: !strictEquals(left, right)}, nil
	case "<":
		return compare(left, right, func(c int) bool { return c < 0 })
	case "<=":
		return compare(left, right, func(c int) bool { return c <= 0 })
	case ">":
		return compare(left, right, func(c int) bool { return c > 0 })
	case ">=":
		return compare(left, right, func(c int) bool { return c >= 0 })
	default:
		return nil, fault(runtime.ErrUnsupported, "unsupported binary operator: "+op)
	}
}

func looseEquals(a, b runtime.Value) bool {
	if isNullish(a) && isNullish(b) {
		return true
	}
	if strictEquals(a, b) {
		return true
	}
	_, aNum := a.(runtime.NumberValue)
	_, bNum := b.(runtime.NumberValue)
	_, aStr := a.(runtime.StringValue)
	_, bStr := b.(runtime.StringValue)
	_, aBool := a.(runtime.BoolValue)
	_, bBool := b.(runtime.BoolValue)
	if (aNum || aStr || aBool) && (bNum || bStr || bBool) {
		return toNumber(a) == toNumber(b)
	}
	return false
}

func compare(left, right runtime.Value, test func(int) bool) (runtime.Value, error) {
	ls, lok := left.(runtime.StringValue)
	rs, rok := right.(runtime.StringValue)
	if lok && rok {
		switch {
		case ls.Val < rs.Val:
			return runtime.BoolValue{Val: test(-1)}, nil
		case ls.Val > rs.Val:
			return runtime.BoolValue{Val: test(1)}, nil
		default:
			return runtime.BoolValue{Val: test(0)}, nil
		}
	}
	ln, rn := toNumber(left), toNumber(right)
	if runtime.IsNaN(ln) || runtime.IsNaN(rn) {
		return runtime.BoolValue{Val: false}, nil
	}
	switch {
	case ln < rn:
		return runtime.BoolValue{Val: test(-1)}, nil
	case ln > rn:
		return runtime.BoolValue{Val: test(1)}, nil
	default:
		return runtime.BoolValue{Val: test(0)}, nil
	}
}

func evalUnary(op string, v runtime.Value) (runtime.Value, error) {
	switch op {
	case "-":
		return runtime.NumberValue{Val: -toNumber(v)}, nil
	case "+":
		return runtime.NumberValue{Val: toNumber(v)}, nil
	case "!":
		return runtime.BoolValue{Val: !truthy(v)}, nil
	case "typeof":
		return runtime.StringValue{Val: typeofValue(v)}, nil
	default:
		return nil, fault(runtime.ErrUnsupported, "unsupported unary operator: "+op)
	}
}

func typeofValue(v runtime.Value) string {
	switch v.(type) {
	case runtime.UndefinedValue:
		return "undefined"
	case runtime.NullValue:
		return "object"
	case runtime.BoolValue:
		return "boolean"
	case runtime.NumberValue:
		return "number"
	case runtime.StringValue:
		return "string"
	case *runtime.FunctionValue, *runtime.ClassValue:
		return "function"
	default:
		return "object"
	}
}

// iterableElements implements the iterator protocol subset the evaluator
// needs: arrays iterate their elements and strings iterate per rune,
// matching spec.md's for-of/spread requirement without depending on a
// general Symbol.iterator-style host protocol.
func iterableElements(v runtime.Value) ([]runtime.Value, error) {
	switch val := v.(type) {
	case *runtime.ArrayValue:
		out := make([]runtime.Value, len(val.Elements))
		copy(out, val.Elements)
		return out, nil
	case runtime.StringValue:
		runes := []rune(val.Val)
		out := make([]runtime.Value, len(runes))
		for idx, r := range runes {
			out[idx] = runtime.StringValue{Val: string(r)}
		}
		return out, nil
	default:
		return nil, fault(runtime.ErrType, "value is not iterable")
	}
}
