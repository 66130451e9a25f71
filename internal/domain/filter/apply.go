package filter

import (
	"slices"

	"github.com/okian/roster/internal/domain/model"
)

// Apply filters players by q's predicate, sorts by q's order and returns
// q's page. The input slice is not modified.
func Apply(players []model.Player, q Query) []model.Player {
	matched := make([]model.Player, 0, len(players))
	for _, p := range players {
		if q.Predicate.Match(p) {
			matched = append(matched, p)
		}
	}
	slices.SortFunc(matched, Compare(q.Order))
	start, end := q.Page.Window(len(matched))
	return slices.Clone(matched[start:end])
}

// Count returns how many players satisfy pred.
func Count(players []model.Player, pred Predicate) int {
	n := 0
	for _, p := range players {
		if pred.Match(p) {
			n++
		}
	}
	return n
}
