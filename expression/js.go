package expression

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Parse builds an expression from its interchange tree.
func Parse(js any) (Expression, error) {
	return parse(js, "$")
}

// ParseLoose is like Parse but also accepts a bare boolean as a literal.
func ParseLoose(js any) (Expression, error) {
	if b, ok := js.(bool); ok {
		return Literal{Value: Bool(b)}, nil
	}
	return Parse(js)
}

func parse(js any, path string) (Expression, error) {
	m, ok := js.(map[string]any)
	if !ok {
		return nil, malformed(path, "expected object, got %T", js)
	}

	op, _ := m["op"].(string)
	switch Op(op) {
	case OpRef:
		name, ok := m["name"].(string)
		if !ok || name == "" {
			return nil, malformed(path, "ref must have a name")
		}
		return NewRef(name), nil

	case OpLiteral:
		return parseLiteral(m, path)

	case OpAnd:
		items, ok := m["operands"].([]any)
		if !ok {
			return nil, malformed(path, "and operands should be []any, got %T", m["operands"])
		}
		operands := make([]Expression, 0, len(items))
		for i, item := range items {
			operand, err := parse(item, fmt.Sprintf("%s.operands[%d]", path, i))
			if err != nil {
				return nil, err
			}
			operands = append(operands, operand)
		}
		return conjoin(operands...), nil

	case OpChain:
		return parseChain(m, path)

	default:
		return nil, malformed(path, "unsupported op %q", op)
	}
}

func parseChain(m map[string]any, path string) (Expression, error) {
	current, err := parse(m["expression"], path+".expression")
	if err != nil {
		return nil, err
	}

	actions, ok := m["actions"].([]any)
	if !ok || len(actions) == 0 {
		return nil, malformed(path, "chain must have actions")
	}

	for i, item := range actions {
		actionPath := fmt.Sprintf("%s.actions[%d]", path, i)
		action, ok := item.(map[string]any)
		if !ok {
			return nil, malformed(actionPath, "expected object, got %T", item)
		}
		operand, err := parse(action["expression"], actionPath+".expression")
		if err != nil {
			return nil, err
		}

		name, _ := action["action"].(string)
		switch name {
		case "in":
			literal, ok := operand.(Literal)
			if !ok {
				return nil, malformed(actionPath, "in expects a literal, got %s", operand.Op())
			}
			current = In{Operand: current, Values: literal}
		case "and":
			current = conjoin(current, operand)
		default:
			return nil, malformed(actionPath, "unsupported action %q", name)
		}
	}
	return current, nil
}

func parseLiteral(m map[string]any, path string) (Expression, error) {
	typ, _ := m["type"].(string)
	value := m["value"]

	switch Type(typ) {
	case "", TypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, malformed(path, "unsupported literal value %T", value)
		}
		return Literal{Value: Bool(b)}, nil

	case TypeSet:
		set, err := parseSet(value, path+".value")
		if err != nil {
			return nil, err
		}
		return Literal{Value: set}, nil

	case TypeNumberRange:
		bounds, ok := value.(map[string]any)
		if !ok {
			return nil, malformed(path, "number range should be an object, got %T", value)
		}
		start, okStart := toFloat(bounds["start"])
		end, okEnd := toFloat(bounds["end"])
		if !okStart || !okEnd {
			return nil, malformed(path, "number range bounds must be numbers")
		}
		return Literal{Value: NumberRange{Start: start, End: end}}, nil

	case TypeTimeRange:
		bounds, ok := value.(map[string]any)
		if !ok {
			return nil, malformed(path, "time range should be an object, got %T", value)
		}
		start, err := parseTime(bounds["start"], path+".value.start")
		if err != nil {
			return nil, err
		}
		end, err := parseTime(bounds["end"], path+".value.end")
		if err != nil {
			return nil, err
		}
		return Literal{Value: TimeRange{Start: start, End: end}}, nil

	default:
		return nil, malformed(path, "unsupported literal type %q", typ)
	}
}

func parseSet(value any, path string) (Set, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return Set{}, malformed(path, "set should be an object, got %T", value)
	}
	items, ok := m["elements"].([]any)
	if !ok {
		return Set{}, malformed(path, "set elements should be []any, got %T", m["elements"])
	}
	setType, _ := m["setType"].(string)

	elements := make([]any, 0, len(items))
	for i, item := range items {
		itemPath := fmt.Sprintf("%s.elements[%d]", path, i)
		switch x := item.(type) {
		case nil, bool, float64:
			elements = append(elements, x)
		case string:
			switch setType {
			case SetTypeTime:
				t, err := parseTime(x, itemPath)
				if err != nil {
					return Set{}, err
				}
				elements = append(elements, t)
			case SetTypeNumber:
				n := normalizeNumber(x)
				if n == nil {
					return Set{}, malformed(itemPath, "%q is not a number", x)
				}
				elements = append(elements, n)
			default:
				elements = append(elements, x)
			}
		case time.Time:
			elements = append(elements, x)
		default:
			n := normalizeScalar(x)
			if scalarSetType(n) != SetTypeNumber {
				return Set{}, malformed(itemPath, "unsupported set element %T", item)
			}
			elements = append(elements, n)
		}
	}

	set := NewSet(elements...)
	if err := set.Validate(); err != nil {
		return Set{}, errors.Wrap(err, path)
	}
	if actual := set.SetType(); setType != "" && actual != SetTypeNull && actual != setType {
		return Set{}, malformed(path, "set declared as %s holds %s elements", setType, actual)
	}
	return set, nil
}

func parseTime(v any, path string) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return time.Time{}, errors.Wrapf(ErrMalformedExpression, "%s: %s", path, err)
		}
		return t.UTC(), nil
	default:
		return time.Time{}, malformed(path, "time should be an RFC 3339 string, got %T", v)
	}
}

func toFloat(v any) (float64, bool) {
	switch normalized := normalizeScalar(v).(type) {
	case float64:
		return normalized, true
	case int64:
		return float64(normalized), true
	case uint64:
		return float64(normalized), true
	default:
		return 0, false
	}
}

// conjoin flattens nested conjunctions but keeps every other operand, literals included,
// so a parsed tree keeps the shape it was sent in.
func conjoin(exprs ...Expression) And {
	operands := make([]Expression, 0, len(exprs))
	for _, e := range exprs {
		if and, ok := e.(And); ok {
			operands = append(operands, and.Operands...)
			continue
		}
		operands = append(operands, e)
	}
	return And{Operands: operands}
}

func malformed(path, format string, args ...any) error {
	return errors.Wrapf(ErrMalformedExpression, "%s: %s", path, fmt.Sprintf(format, args...))
}
