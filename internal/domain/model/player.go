// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/roster/internal/domain/leveling"
)

// Player is a persisted character record.
type Player struct {
	ID             int64
	Name           string
	Title          string
	Race           Race
	Profession     Profession
	Experience     int64
	Level          int
	UntilNextLevel int64
	Birthday       time.Time
	Banned         bool
}

// SetExperience stores experience and the level fields derived from it.
// It is the only code path that writes Level and UntilNextLevel.
func (p *Player) SetExperience(experience int64) {
	p.Experience = experience
	p.Level, p.UntilNextLevel = leveling.Compute(experience)
}

// BirthdayMillis returns the birthday as epoch milliseconds.
func (p Player) BirthdayMillis() int64 {
	return p.Birthday.UnixMilli()
}

// Payload carries the fields of a create or update request.
// A nil field was not supplied by the caller.
type Payload struct {
	Name       *string
	Title      *string
	Race       *Race
	Profession *Profession
	Birthday   *int64 // epoch milliseconds
	Experience *int64
	Banned     *bool
}

// Apply copies the supplied fields of pl onto p. Leveling is recomputed
// only when experience is supplied.
func (p *Player) Apply(pl Payload) {
	if pl.Name != nil {
		p.Name = *pl.Name
	}
	if pl.Title != nil {
		p.Title = *pl.Title
	}
	if pl.Race != nil {
		p.Race = *pl.Race
	}
	if pl.Profession != nil {
		p.Profession = *pl.Profession
	}
	if pl.Birthday != nil {
		p.Birthday = time.UnixMilli(*pl.Birthday)
	}
	if pl.Banned != nil {
		p.Banned = *pl.Banned
	}
	if pl.Experience != nil {
		p.SetExperience(*pl.Experience)
	}
}
