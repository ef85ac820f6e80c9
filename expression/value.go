package expression

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Type names the kind of a literal value.
type Type string

const (
	TypeBoolean     Type = "BOOLEAN"
	TypeSet         Type = "SET"
	TypeNumberRange Type = "NUMBER_RANGE"
	TypeTimeRange   Type = "TIME_RANGE"
)

// Set element types, as reported by Set.SetType.
const (
	SetTypeString  = "STRING"
	SetTypeNumber  = "NUMBER"
	SetTypeBoolean = "BOOLEAN"
	SetTypeTime    = "TIME"
	SetTypeNull    = "NULL"
)

// Value is a literal value carried by a Literal expression.
// The implementations are Bool, Set, NumberRange and TimeRange.
type Value interface {
	Type() Type
	Equals(other Value) bool
	String() string
	toJS() any
}

// Range is a half-open interval [start, end) over an ordered type.
// The implementations are NumberRange and TimeRange.
type Range interface {
	Value
	// Bounds returns the start (inclusive) and end (exclusive) of the range.
	Bounds() (start, end any)
	isRange()
}

// Bool is a literal boolean.
type Bool bool

func (b Bool) Type() Type { return TypeBoolean }

func (b Bool) Equals(other Value) bool {
	o, ok := other.(Bool)
	return ok && o == b
}

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

func (b Bool) toJS() any { return bool(b) }

// Set is an immutable set of scalar values.
// Membership and equality ignore order, but the insertion order is kept for display.
// The zero value is the empty set.
type Set struct {
	elements []any
}

// NewSet creates a set from the given values, dropping duplicates.
// Values are normalized by kind: named string, bool and numeric types become their base type,
// pointers are dereferenced and times are stored in UTC. Numbers are stored as float64 when
// that is exact, and as int64 or uint64 otherwise, so distinct integers never collapse.
func NewSet(values ...any) Set {
	elements := make([]any, 0, len(values))
	for _, v := range values {
		v = normalizeScalar(v)
		if containsScalar(elements, v) {
			continue
		}
		elements = append(elements, v)
	}
	return Set{elements: elements}
}

func (s Set) Type() Type { return TypeSet }

// SetType reports the element type of the set, derived from its first non-nil element.
// It is empty if that element is not a scalar.
func (s Set) SetType() string {
	for _, e := range s.elements {
		if t := scalarSetType(e); t != SetTypeNull {
			return t
		}
	}
	return SetTypeNull
}

// Validate fails with ErrMalformedExpression if an element is not a scalar,
// or if the non-nil elements are not all of one set type.
func (s Set) Validate() error {
	setType := ""
	for i, e := range s.elements {
		t := scalarSetType(e)
		switch {
		case t == "":
			return errors.Wrapf(ErrMalformedExpression, "set element %d has unsupported type %T", i, e)
		case t == SetTypeNull:
			continue
		case setType != "" && t != setType:
			return errors.Wrapf(ErrMalformedExpression, "set mixes %s and %s elements", setType, t)
		}
		setType = t
	}
	return nil
}

// Elements returns a copy of the elements in insertion order.
func (s Set) Elements() []any {
	return append([]any(nil), s.elements...)
}

func (s Set) Size() int { return len(s.elements) }

func (s Set) Empty() bool { return len(s.elements) == 0 }

func (s Set) Contains(v any) bool {
	return containsScalar(s.elements, normalizeScalar(v))
}

// Add returns a set with v appended. The receiver is returned if v is already present.
func (s Set) Add(v any) Set {
	v = normalizeScalar(v)
	if containsScalar(s.elements, v) {
		return s
	}
	elements := make([]any, len(s.elements), len(s.elements)+1)
	copy(elements, s.elements)
	return Set{elements: append(elements, v)}
}

// Remove returns a set without v. The receiver is returned if v is absent.
func (s Set) Remove(v any) Set {
	v = normalizeScalar(v)
	if !containsScalar(s.elements, v) {
		return s
	}
	return Set{elements: lo.Reject(s.elements, func(e any, _ int) bool {
		return scalarEqual(e, v)
	})}
}

func (s Set) Equals(other Value) bool {
	o, ok := other.(Set)
	if !ok || len(o.elements) != len(s.elements) {
		return false
	}
	for _, e := range s.elements {
		if !containsScalar(o.elements, e) {
			return false
		}
	}
	return true
}

func (s Set) String() string {
	parts := lo.Map(s.elements, func(e any, _ int) string {
		return formatScalar(e)
	})
	return "[" + strings.Join(parts, ",") + "]"
}

func (s Set) toJS() any {
	return map[string]any{
		"setType": s.SetType(),
		"elements": lo.Map(s.elements, func(e any, _ int) any {
			switch x := e.(type) {
			case time.Time:
				return formatTime(x)
			case int64, uint64:
				// Not exact as a float64, so it travels as a decimal string.
				return fmt.Sprint(x)
			default:
				return e
			}
		}),
	}
}

// NumberRange is the half-open interval [Start, End).
type NumberRange struct {
	Start float64
	End   float64
}

func (r NumberRange) Type() Type { return TypeNumberRange }

func (r NumberRange) Bounds() (start, end any) { return r.Start, r.End }

func (r NumberRange) isRange() {}

func (r NumberRange) Equals(other Value) bool {
	o, ok := other.(NumberRange)
	return ok && o == r
}

func (r NumberRange) String() string {
	return "[" + formatScalar(r.Start) + "," + formatScalar(r.End) + ")"
}

func (r NumberRange) toJS() any {
	return map[string]any{"start": r.Start, "end": r.End}
}

// TimeRange is the half-open interval [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

func (r TimeRange) Type() Type { return TypeTimeRange }

func (r TimeRange) Bounds() (start, end any) { return r.Start, r.End }

func (r TimeRange) isRange() {}

func (r TimeRange) Equals(other Value) bool {
	o, ok := other.(TimeRange)
	return ok && o.Start.Equal(r.Start) && o.End.Equal(r.End)
}

func (r TimeRange) String() string {
	return "[" + formatTime(r.Start) + "," + formatTime(r.End) + ")"
}

func (r TimeRange) toJS() any {
	return map[string]any{"start": formatTime(r.Start), "end": formatTime(r.End)}
}

func normalizeScalar(v any) any {
	switch x := v.(type) {
	case nil, string, bool, float64:
		return x
	case time.Time:
		return x.UTC()
	case json.Number:
		return normalizeNumber(string(x))
	case jsoniter.Number:
		return normalizeNumber(string(x))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return normalizeScalar(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return normalizeInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return normalizeUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		return v
	}
}

func normalizeInt(i int64) any {
	if f := float64(i); f < math.MaxInt64 && int64(f) == i {
		return f
	}
	return i
}

func normalizeUint(u uint64) any {
	if u <= math.MaxInt64 {
		return normalizeInt(int64(u))
	}
	if f := float64(u); f < math.MaxUint64 && uint64(f) == u {
		return f
	}
	return u
}

// normalizeNumber returns nil if s is not a decimal number.
func normalizeNumber(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return normalizeInt(i)
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return normalizeUint(u)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return nil
}

// scalarSetType returns "" for values that cannot be set elements.
func scalarSetType(v any) string {
	switch v.(type) {
	case nil:
		return SetTypeNull
	case string:
		return SetTypeString
	case float64, int64, uint64:
		return SetTypeNumber
	case bool:
		return SetTypeBoolean
	case time.Time:
		return SetTypeTime
	default:
		return ""
	}
}

func scalarEqual(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

func containsScalar(elements []any, v any) bool {
	return lo.ContainsBy(elements, func(e any) bool {
		return scalarEqual(e, v)
	})
}

func formatScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return formatTime(x)
	default:
		return fmt.Sprint(x)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
