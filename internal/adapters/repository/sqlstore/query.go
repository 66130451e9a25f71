package sqlstore

import (
	"strings"
	"time"

	"github.com/okian/roster/internal/domain/filter"
	"github.com/okian/roster/internal/domain/model"
)

// playerRow mirrors the players table. Birthday is epoch milliseconds.
// NameLower and TitleLower hold Unicode-folded copies for substring search;
// SQLite's LOWER only folds ASCII.
type playerRow struct {
	ID             int64  `db:"id"`
	Name           string `db:"name"`
	NameLower      string `db:"name_lower"`
	Title          string `db:"title"`
	TitleLower     string `db:"title_lower"`
	Race           string `db:"race"`
	Profession     string `db:"profession"`
	Experience     int64  `db:"experience"`
	Level          int    `db:"level"`
	UntilNextLevel int64  `db:"until_next_level"`
	Birthday       int64  `db:"birthday"`
	Banned         bool   `db:"banned"`
}

func fromModel(p model.Player) playerRow {
	return playerRow{
		ID:             p.ID,
		Name:           p.Name,
		NameLower:      strings.ToLower(p.Name),
		Title:          p.Title,
		TitleLower:     strings.ToLower(p.Title),
		Race:           string(p.Race),
		Profession:     string(p.Profession),
		Experience:     p.Experience,
		Level:          p.Level,
		UntilNextLevel: p.UntilNextLevel,
		Birthday:       p.BirthdayMillis(),
		Banned:         p.Banned,
	}
}

func (r playerRow) toModel() model.Player {
	return model.Player{
		ID:             r.ID,
		Name:           r.Name,
		Title:          r.Title,
		Race:           model.Race(r.Race),
		Profession:     model.Profession(r.Profession),
		Experience:     r.Experience,
		Level:          r.Level,
		UntilNextLevel: r.UntilNextLevel,
		Birthday:       time.UnixMilli(r.Birthday),
		Banned:         r.Banned,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// whereClause renders pred with '?' placeholders. The caller rebinds the
// final statement for its driver. An empty predicate renders nothing.
func whereClause(pred filter.Predicate) (string, []any) {
	if pred.Empty() {
		return "", nil
	}
	conds := make([]string, 0, len(pred.Clauses))
	args := make([]any, 0, len(pred.Clauses)+1)
	for _, c := range pred.Clauses {
		col := c.Field.String()
		switch c.Op {
		case filter.OpContains:
			conds = append(conds, col+`_lower LIKE ? ESCAPE '\'`)
			args = append(args, "%"+likeEscaper.Replace(c.Text)+"%")
		case filter.OpEquals:
			conds = append(conds, col+" = ?")
			args = append(args, c.Text)
		case filter.OpIs:
			conds = append(conds, col+" = ?")
			args = append(args, c.Flag)
		case filter.OpBetween:
			conds = append(conds, col+" BETWEEN ? AND ?")
			args = append(args, c.Lo, c.Hi)
		case filter.OpAtLeast:
			conds = append(conds, col+" >= ?")
			args = append(args, c.Lo)
		case filter.OpAtMost:
			conds = append(conds, col+" <= ?")
			args = append(args, c.Hi)
		}
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
