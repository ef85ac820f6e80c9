package dimension

import (
	"reflect"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sunfmin/reflectutils"

	"github.com/theplant/pivot/expression"
)

// Kind is the value kind of a dimension.
type Kind string

const (
	KindString  Kind = "STRING"
	KindNumber  Kind = "NUMBER"
	KindTime    Kind = "TIME"
	KindBoolean Kind = "BOOLEAN"
)

// Dimension is a column of the dataset that clauses can be bound to.
type Dimension struct {
	Name       string
	Title      string
	Kind       Kind
	Expression expression.Ref
}

// New returns a dimension referenced by its name, with a title derived from the name.
func New(name string, kind Kind) *Dimension {
	return &Dimension{
		Name:       name,
		Title:      titleize(name),
		Kind:       kind,
		Expression: expression.NewRef(name),
	}
}

func (d *Dimension) IsTime() bool {
	return d.Kind == KindTime
}

// Dimensions is an ordered list of dimensions.
type Dimensions []*Dimension

// FindDimensionForExpression returns the dimension bound to ref, or nil.
func (ds Dimensions) FindDimensionForExpression(ref expression.Ref) *Dimension {
	d, _ := lo.Find(ds, func(d *Dimension) bool {
		return d.Expression == ref
	})
	return d
}

// FindByName returns the dimension with the given name, or nil.
func (ds Dimensions) FindByName(name string) *Dimension {
	d, _ := lo.Find(ds, func(d *Dimension) bool {
		return d.Name == name
	})
	return d
}

// TimeDimension returns the first time dimension, or nil.
func (ds Dimensions) TimeDimension() *Dimension {
	d, _ := lo.Find(ds, func(d *Dimension) bool {
		return d.IsTime()
	})
	return d
}

// Infer builds dimensions for the given field paths of model, deriving each kind from the field type.
// Paths use the reflectutils syntax, e.g. "Country" or "Company.Name".
func Infer(model any, paths ...string) (Dimensions, error) {
	if model == nil {
		return nil, errors.New("model is nil")
	}
	ds := make(Dimensions, 0, len(paths))
	for _, path := range paths {
		typ := reflectutils.GetType(model, path)
		if typ == nil {
			return nil, errors.Errorf("field %s not found in %T", path, model)
		}
		kind, err := kindOf(typ)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", path)
		}
		ds = append(ds, New(path, kind))
	}
	return ds, nil
}

var timeType = reflect.TypeOf(time.Time{})

func kindOf(typ reflect.Type) (Kind, error) {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ == timeType {
		return KindTime, nil
	}
	switch typ.Kind() {
	case reflect.String:
		return KindString, nil
	case reflect.Bool:
		return KindBoolean, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber, nil
	default:
		return "", errors.Errorf("unsupported dimension type %s", typ)
	}
}

func titleize(name string) string {
	words := lo.Words(name)
	return strings.Join(lo.Map(words, func(w string, _ int) string {
		return lo.Capitalize(w)
	}), " ")
}
