package gormfilter

import (
	"cmp"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/theplant/pivot/expression"
	"github.com/theplant/pivot/filter"
	"github.com/theplant/pivot/internal/hook"
)

// ColumnInput describes the dimension whose column is being resolved.
type ColumnInput struct {
	Statement *gorm.Statement
	Ref       expression.Ref
}

// ColumnOutput holds the resolved column, usually a clause.Column or a clause.Expr.
type ColumnOutput struct {
	Column any
}

type ColumnFunc func(input *ColumnInput) (*ColumnOutput, error)

type options struct {
	columnHook func(next ColumnFunc) ColumnFunc
	limits     *filter.ComplexityLimits
}

type Option func(*options)

// WithColumnHook overrides how a dimension is resolved to a column.
// Hooks added later run before hooks added earlier.
func WithColumnHook(hooks ...func(next ColumnFunc) ColumnFunc) Option {
	return func(o *options) {
		o.columnHook = hook.Prepend(o.columnHook, hooks...)
	}
}

// WithComplexityLimits rejects filters exceeding limits before any SQL is built.
func WithComplexityLimits(limits *filter.ComplexityLimits) Option {
	return func(o *options) {
		o.limits = limits
	}
}

func Scope(f *filter.Filter, opts ...Option) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if db == nil {
			return nil
		}
		fdb, err := addFilter(db, f, opts...)
		if err != nil {
			db.AddError(err)
			return db
		}
		return fdb
	}
}

func addFilter(db *gorm.DB, f *filter.Filter, opts ...Option) (*gorm.DB, error) {
	if f == nil || f.IsEmpty() {
		return db, nil
	}

	model := cmp.Or(db.Statement.Model, db.Statement.Dest)
	if model == nil {
		return nil, errors.New("model is nil")
	}
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, errors.Wrap(err, "parse schema with db")
	}

	expr, err := BuildExpression(stmt, f, opts...)
	if err != nil {
		db.Logger.Warn(db.Statement.Context, "gormfilter: rejected %s: %v", f, err)
		return nil, err
	}
	db.Logger.Info(db.Statement.Context, "gormfilter: %s", f)
	return db.Where(expr), nil
}

// BuildExpression compiles f into a WHERE expression for the statement's schema.
// An empty filter yields a nil expression.
func BuildExpression(stmt *gorm.Statement, f *filter.Filter, opts ...Option) (clause.Expression, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if err := filter.CheckComplexity(f, o.limits); err != nil {
		return nil, errors.Wrap(err, "check filter complexity")
	}
	if f == nil || f.IsEmpty() {
		return nil, nil
	}
	if stmt.Schema == nil {
		return nil, errors.New("statement schema is not parsed")
	}

	resolve := defaultColumn
	if o.columnHook != nil {
		resolve = o.columnHook(resolve)
	}

	exprs := make([]clause.Expression, 0, f.Len())
	for _, c := range f.Clauses() {
		output, err := resolve(&ColumnInput{Statement: stmt, Ref: c.Ref()})
		if err != nil {
			return nil, errors.Wrapf(err, "resolve column for %s", c.Ref())
		}
		expr, err := buildClauseExpr(output.Column, c)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return combineExprs(exprs...), nil
}

func defaultColumn(input *ColumnInput) (*ColumnOutput, error) {
	stmt := input.Statement
	name := input.Ref.Name
	field := stmt.Schema.LookUpField(name)
	if field == nil {
		field = stmt.Schema.LookUpField(SmartPascalCase(name))
	}
	if field == nil || field.DBName == "" {
		return nil, errors.Errorf("missing column for dimension %q in schema %s", name, stmt.Schema.Name)
	}
	return &ColumnOutput{
		Column: clause.Column{Table: stmt.Table, Name: field.DBName},
	}, nil
}

func buildClauseExpr(column any, c filter.Clause) (clause.Expression, error) {
	switch v := c.Literal().(type) {
	case expression.Set:
		values, nulls := lo.FilterReject(v.Elements(), func(e any, _ int) bool {
			return e != nil
		})
		isNull := clause.Eq{Column: column, Value: nil}
		switch {
		case len(values) == 0:
			return isNull, nil
		case len(nulls) > 0:
			return clause.Or(clause.IN{Column: column, Values: values}, isNull), nil
		default:
			return clause.IN{Column: column, Values: values}, nil
		}
	case expression.NumberRange:
		return clause.And(
			clause.Gte{Column: column, Value: v.Start},
			clause.Lt{Column: column, Value: v.End},
		), nil
	case expression.TimeRange:
		return clause.And(
			clause.Gte{Column: column, Value: v.Start},
			clause.Lt{Column: column, Value: v.End},
		), nil
	default:
		return nil, errors.Wrapf(filter.ErrInvalidClauseKind, "unsupported selection %T on %s", v, c.Ref())
	}
}

func combineExprs(exprs ...clause.Expression) clause.Expression {
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	default:
		return clause.And(exprs...)
	}
}
