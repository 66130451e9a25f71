package filter

import (
	"fmt"
	"strings"

	"github.com/okian/roster/internal/domain/model"
)

// Field identifies the player attribute a clause tests.
type Field int

const (
	FieldName Field = iota + 1
	FieldTitle
	FieldRace
	FieldProfession
	FieldExperience
	FieldBirthday
	FieldBanned
	FieldLevel
)

var fieldNames = map[Field]string{
	FieldName:       "name",
	FieldTitle:      "title",
	FieldRace:       "race",
	FieldProfession: "profession",
	FieldExperience: "experience",
	FieldBirthday:   "birthday",
	FieldBanned:     "banned",
	FieldLevel:      "level",
}

func (f Field) String() string {
	if n, ok := fieldNames[f]; ok {
		return n
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Op is the comparison a clause applies.
type Op int

const (
	OpContains Op = iota + 1 // case-insensitive substring, Text holds the lowered needle
	OpEquals                 // exact text equality
	OpIs                     // boolean equality against Flag
	OpBetween                // Lo <= v <= Hi
	OpAtLeast                // v >= Lo
	OpAtMost                 // v <= Hi
)

// Clause is one independent condition of a predicate.
type Clause struct {
	Field Field
	Op    Op
	Text  string
	Lo    int64
	Hi    int64
	Flag  bool
}

// Predicate is the logical AND of its clauses. The zero value matches
// every player.
type Predicate struct {
	Clauses []Clause
}

// Empty reports whether the predicate has no clauses.
func (p Predicate) Empty() bool { return len(p.Clauses) == 0 }

var textFields = map[Field]func(model.Player) string{
	FieldName:       func(p model.Player) string { return p.Name },
	FieldTitle:      func(p model.Player) string { return p.Title },
	FieldRace:       func(p model.Player) string { return string(p.Race) },
	FieldProfession: func(p model.Player) string { return string(p.Profession) },
}

var intFields = map[Field]func(model.Player) int64{
	FieldExperience: func(p model.Player) int64 { return p.Experience },
	FieldBirthday:   func(p model.Player) int64 { return p.BirthdayMillis() },
	FieldLevel:      func(p model.Player) int64 { return int64(p.Level) },
}

// Build converts criteria into a predicate. It reads nothing but c.
func Build(c Criteria) Predicate {
	var clauses []Clause
	if c.Name != nil {
		clauses = append(clauses, Clause{Field: FieldName, Op: OpContains, Text: strings.ToLower(*c.Name)})
	}
	if c.Title != nil {
		clauses = append(clauses, Clause{Field: FieldTitle, Op: OpContains, Text: strings.ToLower(*c.Title)})
	}
	if c.Race != nil {
		clauses = append(clauses, Clause{Field: FieldRace, Op: OpEquals, Text: string(*c.Race)})
	}
	if c.Profession != nil {
		clauses = append(clauses, Clause{Field: FieldProfession, Op: OpEquals, Text: string(*c.Profession)})
	}
	if cl, ok := rangeClause(FieldExperience, c.Experience); ok {
		clauses = append(clauses, cl)
	}
	if cl, ok := rangeClause(FieldBirthday, c.Birthday); ok {
		clauses = append(clauses, cl)
	}
	if c.Banned != nil {
		clauses = append(clauses, Clause{Field: FieldBanned, Op: OpIs, Flag: *c.Banned})
	}
	if cl, ok := rangeClause(FieldLevel, c.Level); ok {
		clauses = append(clauses, cl)
	}
	return Predicate{Clauses: clauses}
}

// rangeClause maps a bound pair to at most one clause. Both bounds set with
// min >= max yields no clause.
func rangeClause(f Field, r Range) (Clause, bool) {
	switch {
	case r.Min != nil && r.Max != nil:
		if *r.Min < *r.Max {
			return Clause{Field: f, Op: OpBetween, Lo: *r.Min, Hi: *r.Max}, true
		}
		return Clause{}, false
	case r.Min != nil:
		return Clause{Field: f, Op: OpAtLeast, Lo: *r.Min}, true
	case r.Max != nil:
		return Clause{Field: f, Op: OpAtMost, Hi: *r.Max}, true
	}
	return Clause{}, false
}

// Match reports whether p satisfies every clause.
func (p Predicate) Match(pl model.Player) bool {
	for _, c := range p.Clauses {
		if !c.Match(pl) {
			return false
		}
	}
	return true
}

// Match evaluates a single clause against pl.
func (c Clause) Match(pl model.Player) bool {
	switch c.Op {
	case OpContains:
		return strings.Contains(strings.ToLower(textFields[c.Field](pl)), c.Text)
	case OpEquals:
		return textFields[c.Field](pl) == c.Text
	case OpIs:
		return pl.Banned == c.Flag
	case OpBetween:
		v := intFields[c.Field](pl)
		return v >= c.Lo && v <= c.Hi
	case OpAtLeast:
		return intFields[c.Field](pl) >= c.Lo
	case OpAtMost:
		return intFields[c.Field](pl) <= c.Hi
	}
	return false
}

func (c Clause) String() string {
	switch c.Op {
	case OpContains:
		return fmt.Sprintf("%s~%q", c.Field, c.Text)
	case OpEquals:
		return fmt.Sprintf("%s=%s", c.Field, c.Text)
	case OpIs:
		return fmt.Sprintf("%s=%t", c.Field, c.Flag)
	case OpBetween:
		return fmt.Sprintf("%s in [%d,%d]", c.Field, c.Lo, c.Hi)
	case OpAtLeast:
		return fmt.Sprintf("%s>=%d", c.Field, c.Lo)
	case OpAtMost:
		return fmt.Sprintf("%s<=%d", c.Field, c.Hi)
	}
	return c.Field.String() + "?"
}

// String renders the predicate for debug logs.
func (p Predicate) String() string {
	if p.Empty() {
		return "*"
	}
	parts := make([]string, len(p.Clauses))
	for i, c := range p.Clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}
