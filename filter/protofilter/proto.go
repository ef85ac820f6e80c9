package protofilter

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/theplant/pivot/expression"
	"github.com/theplant/pivot/filter"
)

type FromProtoOption func(*fromProtoOptions)

type fromProtoOptions struct {
	complexityLimits *filter.ComplexityLimits
	catalog          filter.DimensionCatalog
}

// WithComplexityLimits sets custom complexity limits for the filter.
// By default, filter.DefaultLimits is used.
// Pass nil to disable complexity checking.
func WithComplexityLimits(limits *filter.ComplexityLimits) FromProtoOption {
	return func(opts *fromProtoOptions) {
		opts.complexityLimits = limits
	}
}

// WithDimensionCatalog drops clauses on dimensions the catalog does not know.
func WithDimensionCatalog(catalog filter.DimensionCatalog) FromProtoOption {
	return func(opts *fromProtoOptions) {
		opts.catalog = catalog
	}
}

// ToProto converts a filter to its interchange tree as a structpb.Value.
// A nil filter is treated as filter.Empty.
func ToProto(f *filter.Filter) (*structpb.Value, error) {
	if f == nil {
		f = filter.Empty
	}
	v, err := structpb.NewValue(f.ToJS())
	if err != nil {
		return nil, errors.Wrapf(err, "convert filter %s to proto", f)
	}
	return v, nil
}

// FromProto parses a filter from its interchange tree carried in a structpb.Value.
// A nil value yields filter.Empty.
// By default, complexity is checked against filter.DefaultLimits.
// Parsed filters are cached and shared between callers, so never decode JSON into one.
func FromProto(v *structpb.Value, opts ...FromProtoOption) (*filter.Filter, error) {
	options := &fromProtoOptions{
		complexityLimits: filter.DefaultLimits,
	}
	for _, opt := range opts {
		opt(options)
	}

	if v == nil {
		return filter.Empty, nil
	}

	f, err := parse(v)
	if err != nil {
		return nil, err
	}

	if err := filter.CheckComplexity(f, options.complexityLimits); err != nil {
		return nil, err
	}

	if options.catalog != nil {
		f = f.ConstrainToDimensions(options.catalog, expression.Ref{}, expression.Ref{})
	}
	return f, nil
}

var (
	parsedCache     *lru.Cache[string, *filter.Filter]
	parsedCacheOnce sync.Once
)

func getParsedCache() *lru.Cache[string, *filter.Filter] {
	parsedCacheOnce.Do(func() {
		cache, err := lru.New[string, *filter.Filter](4096)
		if err != nil {
			panic(err)
		}
		parsedCache = cache
	})
	return parsedCache
}

// parse shares one *filter.Filter between equal trees; filters are immutable.
func parse(v *structpb.Value) (*filter.Filter, error) {
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal proto filter")
	}
	key := string(data)

	cache := getParsedCache()
	if cached, ok := cache.Get(key); ok {
		return cached, nil
	}

	f, err := filter.Parse(v.AsInterface())
	if err != nil {
		return nil, err
	}
	cache.Add(key, f)
	return f, nil
}
