package filter

import (
	"bytes"

	"github.com/hashicorp/go-multierror"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tidwall/sjson"

	"github.com/theplant/pivot/expression"
)

var jsoniterForFilter = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Parse builds a filter from its interchange tree: either a conjunction of single-dimension
// constraints, or the legacy list of clauses.
func Parse(js any) (*Filter, error) {
	if list, ok := js.([]any); ok {
		return parseClauseList(list)
	}
	if js == nil {
		return nil, errors.Wrap(ErrMalformedFilter, "filter is nil")
	}
	e, err := expression.ParseLoose(js)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedFilter, err.Error())
	}
	return FromExpression(e)
}

func parseClauseList(list []any) (*Filter, error) {
	conjuncts := make([]expression.Expression, 0, len(list))
	var errs *multierror.Error
	for i, item := range list {
		e, err := expression.Parse(item)
		if err != nil {
			errs = multierror.Append(errs, errors.Wrapf(ErrMalformedFilter, "clause %d: %s", i, err))
			continue
		}
		conjuncts = append(conjuncts, e)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return fromConjuncts(conjuncts)
}

// ParseJSON parses the JSON encoding of the interchange tree.
// A legacy JSON array of clauses is wrapped into a conjunction first.
func ParseJSON(data []byte) (*Filter, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		wrapped, err := sjson.SetRawBytes([]byte(`{"op":"and"}`), "operands", data)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedFilter, "wrap legacy clauses: %s", err)
		}
		data = wrapped
	}

	var js any
	if err := jsoniterForFilter.Unmarshal(data, &js); err != nil {
		return nil, errors.Wrapf(ErrMalformedFilter, "unmarshal filter: %s", err)
	}
	return Parse(js)
}

func (f *Filter) MarshalJSON() ([]byte, error) {
	data, err := jsoniterForFilter.Marshal(f.ToJS())
	if err != nil {
		return nil, errors.Wrap(err, "marshal filter")
	}
	return data, nil
}

// UnmarshalJSON fills a freshly allocated Filter, such as new(Filter) or a struct field.
// It writes through the receiver, so never call it on a filter that may be shared,
// like those returned by Parse or protofilter.FromProto. A filter decoded from
// the literal true equals Empty but is not the same pointer.
func (f *Filter) UnmarshalJSON(data []byte) error {
	if f == Empty {
		return errors.New("cannot unmarshal into filter.Empty")
	}
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	f.clauses = parsed.clauses
	return nil
}
