package loadgen

import (
	"time"

	"github.com/okian/roster/internal/domain/model"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumPlayers int           // Number of players to create
	Workers    int           // Number of concurrent workers
	PageSize   int           // Page size used while reading back
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for created players, empty skips saving
	Cleanup    bool          // Delete created players at the end
	Verbose    bool          // Enable verbose logging
}

// Player is the wire form of a player as served by /rest/players.
type Player struct {
	ID             int64  `json:"id,omitempty"`
	Name           string `json:"name"`
	Title          string `json:"title"`
	Race           string `json:"race"`
	Profession     string `json:"profession"`
	Experience     int64  `json:"experience"`
	Level          int    `json:"level,omitempty"`
	UntilNextLevel int64  `json:"untilNextLevel,omitempty"`
	Birthday       int64  `json:"birthday"`
	Banned         bool   `json:"banned"`
}

// Model converts the wire form for local filtering.
func (p Player) Model() model.Player {
	return model.Player{
		ID:             p.ID,
		Name:           p.Name,
		Title:          p.Title,
		Race:           model.Race(p.Race),
		Profession:     model.Profession(p.Profession),
		Experience:     p.Experience,
		Level:          p.Level,
		UntilNextLevel: p.UntilNextLevel,
		Birthday:       time.UnixMilli(p.Birthday),
		Banned:         p.Banned,
	}
}

// Stats holds run statistics.
type Stats struct {
	PlayersGenerated int
	PlayersCreated   int
	PlayersFailed    int
	PlayersDeleted   int
	QueriesChecked   int
	Mismatches       int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
