package model

import (
	"fmt"
	"slices"
	"strings"
)

// Race is the closed set of player races.
type Race string

const (
	RaceHuman  Race = "HUMAN"
	RaceDwarf  Race = "DWARF"
	RaceElf    Race = "ELF"
	RaceGiant  Race = "GIANT"
	RaceOrc    Race = "ORC"
	RaceTroll  Race = "TROLL"
	RaceHobbit Race = "HOBBIT"
)

var races = []Race{RaceHuman, RaceDwarf, RaceElf, RaceGiant, RaceOrc, RaceTroll, RaceHobbit}

// Races lists every known race.
func Races() []Race { return slices.Clone(races) }

// ParseRace resolves a race name case-insensitively.
func ParseRace(s string) (Race, error) {
	r := Race(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range races {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown race %q", s)
}

// Profession is the closed set of player professions.
type Profession string

const (
	ProfessionWarrior  Profession = "WARRIOR"
	ProfessionRogue    Profession = "ROGUE"
	ProfessionSorcerer Profession = "SORCERER"
	ProfessionCleric   Profession = "CLERIC"
	ProfessionPaladin  Profession = "PALADIN"
	ProfessionNazgul   Profession = "NAZGUL"
	ProfessionWarlock  Profession = "WARLOCK"
	ProfessionDruid    Profession = "DRUID"
)

var professions = []Profession{
	ProfessionWarrior, ProfessionRogue, ProfessionSorcerer, ProfessionCleric,
	ProfessionPaladin, ProfessionNazgul, ProfessionWarlock, ProfessionDruid,
}

// Professions lists every known profession.
func Professions() []Profession { return slices.Clone(professions) }

// ParseProfession resolves a profession name case-insensitively.
func ParseProfession(s string) (Profession, error) {
	p := Profession(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range professions {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown profession %q", s)
}

// Order names the single field a result set is sorted by, ascending.
type Order string

const (
	OrderID         Order = "ID"
	OrderName       Order = "NAME"
	OrderExperience Order = "EXPERIENCE"
	OrderBirthday   Order = "BIRTHDAY"
	OrderLevel      Order = "LEVEL"
)

// ParseOrder resolves an ordering key. An empty string yields OrderID.
func ParseOrder(s string) (Order, error) {
	o := Order(strings.ToUpper(strings.TrimSpace(s)))
	switch o {
	case "":
		return OrderID, nil
	case OrderID, OrderName, OrderExperience, OrderBirthday, OrderLevel:
		return o, nil
	}
	return "", fmt.Errorf("unknown order %q", s)
}
