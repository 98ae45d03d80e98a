package repo

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/query"
)

// Aggregate runs p and scans every projected row into R.
func Aggregate[R any](ctx context.Context, r *GormRepo, p *query.Pipeline) ([]R, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	tx, err := compile(db, p, false)
	if err != nil {
		return nil, err
	}
	out := make([]R, 0)
	if err := tx.Scan(&out).Error; err != nil {
		return nil, translate(err, p.From)
	}
	return out, nil
}

// AggregateOne is Aggregate for pipelines expected to yield one row.
func AggregateOne[R any](ctx context.Context, r *GormRepo, p *query.Pipeline, what string) (*R, error) {
	rows, err := Aggregate[R](ctx, r, p)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound(what + " not found")
	}
	return &rows[0], nil
}

// CountPipeline counts the rows p would return before projection and windowing.
func (r *GormRepo) CountPipeline(ctx context.Context, p *query.Pipeline) (int64, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	tx, err := compile(db, p, true)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, translate(err, p.From)
	}
	return n, nil
}

func compile(db *gorm.DB, p *query.Pipeline, countOnly bool) (*gorm.DB, error) {
	if err := p.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "invalid query", err)
	}

	tx := db.Table(p.From)
	var (
		computed []string
		args     []any
		project  *query.Project
		group    *query.Group
		sortKeys []query.SortKey
		sorted   bool
		page     *query.Page
	)

	for _, s := range p.Stages {
		switch st := s.(type) {
		case query.Match:
			for _, c := range st.Conds {
				sql, v := condSQL(c, c.Field)
				tx = tx.Where(sql, v)
			}
		case query.MatchAny:
			ors := make([]string, 0, len(st.Conds))
			vals := make([]any, 0, len(st.Conds))
			for _, c := range st.Conds {
				sql, v := condSQL(c, c.Field)
				ors = append(ors, sql)
				vals = append(vals, v)
			}
			tx = tx.Where("("+strings.Join(ors, " OR ")+")", vals...)
		case query.Search:
			where, whereArgs, score, scoreArgs := searchSQL(st)
			if where != "" {
				tx = tx.Where(where, whereArgs...)
			}
			computed = append(computed, score+" AS score")
			args = append(args, scoreArgs...)
		case query.Lookup:
			tx = tx.Joins(fmt.Sprintf("JOIN %s AS %s ON %s.%s = %s",
				st.From, st.As, st.As, st.ForeignField, st.LocalField))
		case query.CountOf:
			sub, subArgs := correlated(st.From, st.ForeignField, st.LocalField, st.Where, st.As)
			computed = append(computed, fmt.Sprintf("(SELECT COUNT(*) %s) AS %s", sub, st.As))
			args = append(args, subArgs...)
		case query.Exists:
			sub, subArgs := correlated(st.From, st.ForeignField, st.LocalField, st.Where, st.As)
			computed = append(computed, fmt.Sprintf("EXISTS (SELECT 1 %s) AS %s", sub, st.As))
			args = append(args, subArgs...)
		case query.Project:
			project = &st
		case query.Group:
			group = &st
		case query.Sort:
			sortKeys, sorted = st.Keys, true
		case query.Page:
			page = &st
		}
	}

	if countOnly {
		return tx, nil
	}

	var cols []string
	if group != nil {
		args = nil
		for _, a := range group.Accs {
			switch a.Kind {
			case query.AccCount:
				cols = append(cols, "COUNT(*) AS "+a.As)
			case query.AccSum:
				cols = append(cols, fmt.Sprintf("CAST(COALESCE(SUM(%s), 0) AS BIGINT) AS %s", a.Field, a.As))
			}
		}
	} else {
		if project != nil {
			for _, f := range project.Fields {
				cols = append(cols, f.Expr+" AS "+f.OutputName())
			}
		} else {
			cols = append(cols, p.From+".*")
		}
		cols = append(cols, computed...)
	}
	tx = tx.Clauses(clause.Select{Expression: clause.Expr{SQL: strings.Join(cols, ", "), Vars: args}})

	if sorted && group == nil {
		for _, k := range query.StableKeys(sortKeys, p.Key) {
			dir := " ASC"
			if k.Desc {
				dir = " DESC"
			}
			tx = tx.Order(k.Field + dir)
		}
	}
	if page != nil {
		if page.Skip > 0 {
			tx = tx.Offset(page.Skip)
		}
		if page.Limit > 0 {
			tx = tx.Limit(page.Limit)
		}
	}
	return tx, nil
}

func condSQL(c query.Cond, field string) (string, any) {
	if c.Op == query.OpIn {
		return field + " IN ?", c.Values
	}
	return field + " = ?", c.Value
}

// correlated renders "FROM t AS alias WHERE alias.fk = outer [AND ...]".
func correlated(from, foreign, local string, where []query.Cond, as string) (string, []any) {
	alias := "sub_" + as
	var b strings.Builder
	fmt.Fprintf(&b, "FROM %s AS %s WHERE %s.%s = %s", from, alias, alias, foreign, local)
	args := make([]any, 0, len(where))
	for _, c := range where {
		sql, v := condSQL(c, alias+"."+c.Field)
		b.WriteString(" AND " + sql)
		args = append(args, v)
	}
	return b.String(), args
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func searchSQL(st query.Search) (where string, whereArgs []any, score string, scoreArgs []any) {
	if len(st.Terms) == 0 || len(st.Fields) == 0 {
		return "", nil, "0", nil
	}
	var ors, parts []string
	for _, term := range st.Terms {
		pat := "%" + likeEscaper.Replace(term) + "%"
		for _, f := range st.Fields {
			like := fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '!'", f.Field)
			ors = append(ors, like)
			whereArgs = append(whereArgs, pat)
			parts = append(parts, fmt.Sprintf("CASE WHEN %s THEN %d ELSE 0 END", like, f.Weight))
			scoreArgs = append(scoreArgs, pat)
		}
	}
	return "(" + strings.Join(ors, " OR ") + ")", whereArgs, "(" + strings.Join(parts, " + ") + ")", scoreArgs
}
