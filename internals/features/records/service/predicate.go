package service

import (
	"strings"

	"gorm.io/gorm/clause"
)

// Predicates collects optional WHERE clauses; each filter adds at most one.
type Predicates struct {
	exprs []clause.Expression
}

func (p *Predicates) Add(e clause.Expression) *Predicates {
	if e != nil {
		p.exprs = append(p.exprs, e)
	}
	return p
}

func (p *Predicates) Len() int { return len(p.exprs) }

// Build ANDs everything collected.
func (p *Predicates) Build() clause.Expression {
	return clause.And(p.exprs...)
}

// ContainsFold is a case-insensitive substring match on one column.
func ContainsFold(column, term string) clause.Expression {
	return clause.Expr{
		SQL:  "LOWER(?) LIKE ? ESCAPE '\\'",
		Vars: []any{clause.Column{Name: column}, likePattern(term)},
	}
}

// ContainsFoldAny matches the term against any of the columns.
func ContainsFoldAny(term string, columns ...string) clause.Expression {
	ors := make([]clause.Expression, 0, len(columns))
	for _, c := range columns {
		ors = append(ors, ContainsFold(c, term))
	}
	return clause.Or(ors...)
}

func Equals(column string, value any) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: column}, Value: value}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern lowercases the term and wraps it in %...% with LIKE metacharacters escaped.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
