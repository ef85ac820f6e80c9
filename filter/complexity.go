package filter

import (
	"github.com/pkg/errors"

	"github.com/theplant/pivot/expression"
)

// ComplexityLimits defines limits for filter complexity.
// A value of 0 means no limit for that metric.
type ComplexityLimits struct {
	MaxClauses   int // Maximum number of clauses
	MaxSetValues int // Maximum number of values in a single value set
}

// ComplexityResult contains the calculated complexity metrics of a filter.
type ComplexityResult struct {
	Clauses      int // Total number of clauses
	ValueClauses int // Number of value set clauses
	RangeClauses int // Number of range clauses
	MaxSetValues int // Largest value set
}

// Predefined complexity limits
var (
	// DefaultLimits provides reasonable defaults for most use cases.
	DefaultLimits = &ComplexityLimits{
		MaxClauses:   20,
		MaxSetValues: 1000,
	}

	// StrictLimits provides tighter limits for filters coming from untrusted clients.
	StrictLimits = &ComplexityLimits{
		MaxClauses:   10,
		MaxSetValues: 100,
	}

	// RelaxedLimits provides looser limits for trusted/internal use.
	RelaxedLimits = &ComplexityLimits{
		MaxClauses:   50,
		MaxSetValues: 10000,
	}
)

// CheckComplexity validates that a filter doesn't exceed the specified limits.
// Returns an error describing which limit was exceeded, or nil if within limits.
// If limits is nil, no validation is performed.
func CheckComplexity(f *Filter, limits *ComplexityLimits) error {
	if limits == nil || f == nil {
		return nil
	}

	result := CalculateComplexity(f)

	if limits.MaxClauses > 0 && result.Clauses > limits.MaxClauses {
		return errors.Errorf("filter clause count %d exceeds limit %d", result.Clauses, limits.MaxClauses)
	}
	if limits.MaxSetValues > 0 && result.MaxSetValues > limits.MaxSetValues {
		return errors.Errorf("filter set size %d exceeds limit %d", result.MaxSetValues, limits.MaxSetValues)
	}

	return nil
}

// CalculateComplexity analyzes a filter and returns its complexity metrics.
func CalculateComplexity(f *Filter) *ComplexityResult {
	result := &ComplexityResult{Clauses: f.Len()}
	for _, c := range f.clauses {
		switch sel := c.selection.(type) {
		case expression.Set:
			result.ValueClauses++
			if sel.Size() > result.MaxSetValues {
				result.MaxSetValues = sel.Size()
			}
		case expression.Range:
			result.RangeClauses++
		}
	}
	return result
}
