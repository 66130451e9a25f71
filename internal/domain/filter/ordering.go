package filter

import (
	"cmp"

	"github.com/okian/roster/internal/domain/model"
)

type ordering struct {
	column  string
	compare func(a, b model.Player) int
}

// orderings maps each sort key to its column and ascending comparator.
var orderings = map[model.Order]ordering{
	model.OrderID: {"id", func(a, b model.Player) int { return cmp.Compare(a.ID, b.ID) }},
	model.OrderName: {"name", func(a, b model.Player) int { return cmp.Compare(a.Name, b.Name) }},
	model.OrderExperience: {"experience", func(a, b model.Player) int {
		return cmp.Compare(a.Experience, b.Experience)
	}},
	model.OrderBirthday: {"birthday", func(a, b model.Player) int { return a.Birthday.Compare(b.Birthday) }},
	model.OrderLevel:    {"level", func(a, b model.Player) int { return cmp.Compare(a.Level, b.Level) }},
}

func lookup(o model.Order) ordering {
	if ord, ok := orderings[o]; ok {
		return ord
	}
	return orderings[model.OrderID]
}

// Compare returns the ascending comparator for o. Equal keys fall back to
// id so every page is deterministic. Unknown keys sort by id.
func Compare(o model.Order) func(a, b model.Player) int {
	primary := lookup(o).compare
	return func(a, b model.Player) int {
		if c := primary(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}
}

// Column returns the storage column backing o.
func Column(o model.Order) string {
	return lookup(o).column
}
