// Package query describes read pipelines as a list of stages
// (filter, join, computed columns, project, group, sort, window) that the
// repository compiles for whichever SQL store backs it.
package query

import (
	"fmt"
	"regexp"
	"strings"
)

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z_][a-z0-9_]*)?$`)

// ValidIdent accepts table, column and alias names, optionally qualified.
func ValidIdent(s string) bool { return identRe.MatchString(s) }

type Stage interface{ stage() }

// Cond is an equality or membership condition on a (qualified) column.
type Cond struct {
	Field  string
	Op     Op
	Value  any
	Values []any
}

type Op int

const (
	OpEq Op = iota
	OpIn
)

func Eq(field string, v any) Cond { return Cond{Field: field, Op: OpEq, Value: v} }

func In[T any](field string, vs []T) Cond {
	values := make([]any, len(vs))
	for i, v := range vs {
		values[i] = v
	}
	return Cond{Field: field, Op: OpIn, Values: values}
}

// Match keeps rows satisfying every condition.
type Match struct{ Conds []Cond }

// MatchAny keeps rows satisfying at least one condition.
type MatchAny struct{ Conds []Cond }

// Weighted is a text column and its contribution to the relevance score.
type Weighted struct {
	Field  string
	Weight int
}

// Search keeps rows where any term occurs in any field and exposes the
// summed weights of the hits as the computed column "score".
type Search struct {
	Terms  []string
	Fields []Weighted
}

// Lookup joins exactly one row of From per input row (one-to-one flatten).
type Lookup struct {
	From         string
	As           string
	ForeignField string
	LocalField   string
}

// CountOf adds the number of rows in From whose ForeignField equals LocalField.
type CountOf struct {
	From         string
	ForeignField string
	LocalField   string
	Where        []Cond
	As           string
}

// Exists adds a boolean telling whether such a row exists.
type Exists struct {
	From         string
	ForeignField string
	LocalField   string
	Where        []Cond
	As           string
}

type Field struct {
	Expr string
	As   string
}

// Project picks the output columns.
type Project struct{ Fields []Field }

type AccKind int

const (
	AccCount AccKind = iota
	AccSum
)

type Accumulator struct {
	Kind  AccKind
	Field string
	As    string
}

func Count(as string) Accumulator      { return Accumulator{Kind: AccCount, As: as} }
func Sum(field, as string) Accumulator { return Accumulator{Kind: AccSum, Field: field, As: as} }

// Group collapses all matched rows into one row of accumulators.
type Group struct{ Accs []Accumulator }

type SortKey struct {
	Field string
	Desc  bool
}

func Desc(field string) SortKey { return SortKey{Field: field, Desc: true} }
func Asc(field string) SortKey  { return SortKey{Field: field} }

type Sort struct{ Keys []SortKey }

type Page struct {
	Skip  int
	Limit int
}

func (Match) stage()    {}
func (MatchAny) stage() {}
func (Search) stage()   {}
func (Lookup) stage()   {}
func (CountOf) stage()  {}
func (Exists) stage()   {}
func (Project) stage()  {}
func (Group) stage()    {}
func (Sort) stage()     {}
func (Page) stage()     {}

type Pipeline struct {
	From   string
	Key    string
	Stages []Stage
}

func From(table string) *Pipeline { return &Pipeline{From: table, Key: table + ".id"} }

// KeyedBy overrides the unique column used as the final sort tiebreaker.
func (p *Pipeline) KeyedBy(field string) *Pipeline {
	p.Key = field
	return p
}

func (p *Pipeline) add(s Stage) *Pipeline {
	p.Stages = append(p.Stages, s)
	return p
}

func (p *Pipeline) Match(conds ...Cond) *Pipeline { return p.add(Match{Conds: conds}) }

func (p *Pipeline) MatchAny(conds ...Cond) *Pipeline { return p.add(MatchAny{Conds: conds}) }

// Search splits q into lowercase terms; an empty q matches everything with score 0.
func (p *Pipeline) Search(q string, fields ...Weighted) *Pipeline {
	return p.add(Search{Terms: Terms(q), Fields: fields})
}

func (p *Pipeline) Lookup(l Lookup) *Pipeline   { return p.add(l) }
func (p *Pipeline) CountOf(c CountOf) *Pipeline { return p.add(c) }
func (p *Pipeline) Exists(e Exists) *Pipeline   { return p.add(e) }

func (p *Pipeline) Project(fields ...Field) *Pipeline { return p.add(Project{Fields: fields}) }

func (p *Pipeline) Group(accs ...Accumulator) *Pipeline { return p.add(Group{Accs: accs}) }

func (p *Pipeline) Sort(keys ...SortKey) *Pipeline { return p.add(Sort{Keys: keys}) }

func (p *Pipeline) Page(skip, limit int) *Pipeline { return p.add(Page{Skip: skip, Limit: limit}) }

// F builds projected fields from "expr" or "expr as alias" strings.
func F(specs ...string) []Field {
	out := make([]Field, 0, len(specs))
	for _, s := range specs {
		expr, as, ok := strings.Cut(s, " as ")
		if !ok {
			out = append(out, Field{Expr: strings.TrimSpace(s)})
			continue
		}
		out = append(out, Field{Expr: strings.TrimSpace(expr), As: strings.TrimSpace(as)})
	}
	return out
}

// OutputName is the column name a projected field is scanned from.
func (f Field) OutputName() string {
	if f.As != "" {
		return f.As
	}
	if i := strings.LastIndexByte(f.Expr, '.'); i >= 0 {
		return f.Expr[i+1:]
	}
	return f.Expr
}

const maxTerms = 8

func Terms(q string) []string {
	fields := strings.Fields(strings.ToLower(q))
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
		if len(out) == maxTerms {
			break
		}
	}
	return out
}

// StableKeys appends the unique tiebreaker unless the keys already end with it,
// so equal sort values never reorder between pages.
func StableKeys(keys []SortKey, tiebreaker string) []SortKey {
	out := make([]SortKey, 0, len(keys)+1)
	for _, k := range keys {
		if k.Field == tiebreaker {
			continue
		}
		out = append(out, k)
	}
	return append(out, Asc(tiebreaker))
}

// Validate rejects identifiers that could not have come from code.
func (p *Pipeline) Validate() error {
	check := func(kind, s string) error {
		if !ValidIdent(s) {
			return fmt.Errorf("query: invalid %s %q", kind, s)
		}
		return nil
	}
	checkConds := func(conds []Cond) error {
		for _, c := range conds {
			if err := check("field", c.Field); err != nil {
				return err
			}
			if c.Op == OpIn && len(c.Values) == 0 {
				return fmt.Errorf("query: empty IN list for %q", c.Field)
			}
		}
		return nil
	}

	if err := check("table", p.From); err != nil {
		return err
	}
	if err := check("key", p.Key); err != nil {
		return err
	}
	for _, s := range p.Stages {
		var err error
		switch st := s.(type) {
		case Match:
			err = checkConds(st.Conds)
		case MatchAny:
			if len(st.Conds) == 0 {
				err = fmt.Errorf("query: empty MatchAny")
			} else {
				err = checkConds(st.Conds)
			}
		case Search:
			for _, f := range st.Fields {
				if err = check("field", f.Field); err != nil {
					break
				}
			}
		case Lookup:
			for _, v := range []string{st.From, st.As, st.ForeignField, st.LocalField} {
				if err = check("lookup identifier", v); err != nil {
					break
				}
			}
		case CountOf:
			for _, v := range []string{st.From, st.ForeignField, st.LocalField, st.As} {
				if err = check("count identifier", v); err != nil {
					break
				}
			}
			if err == nil {
				err = checkConds(st.Where)
			}
		case Exists:
			for _, v := range []string{st.From, st.ForeignField, st.LocalField, st.As} {
				if err = check("exists identifier", v); err != nil {
					break
				}
			}
			if err == nil {
				err = checkConds(st.Where)
			}
		case Project:
			for _, f := range st.Fields {
				if err = check("field", f.Expr); err != nil {
					break
				}
				if err = check("alias", f.OutputName()); err != nil {
					break
				}
			}
		case Group:
			for _, a := range st.Accs {
				if a.Kind == AccSum {
					if err = check("field", a.Field); err != nil {
						break
					}
				}
				if err = check("alias", a.As); err != nil {
					break
				}
			}
		case Sort:
			for _, k := range st.Keys {
				if err = check("sort field", k.Field); err != nil {
					break
				}
			}
		case Page:
			if st.Skip < 0 || st.Limit < 0 {
				err = fmt.Errorf("query: negative window %d/%d", st.Skip, st.Limit)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}
