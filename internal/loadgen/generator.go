package loadgen

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/internal/domain/validation"
	"github.com/okian/roster/pkg/logger"
)

// Constants for generated field ranges.
const (
	runTagLength  = 8
	bannedDivisor = 5
)

var names = []string{
	"Ava", "Bran", "Cedric", "Dara", "Eowyn", "Fenwick", "Gilda", "Hakon",
	"Isolde", "Jorah", "Kael", "Lyra", "Morwen", "Nestor", "Orla", "Perrin",
}

var titles = []string{"Warden", "Seeker", "Outlaw", "Sage", "Herald", "Smith"}

// Birthdays stay well inside the accepted year window in every time zone.
var (
	birthdayMin = time.Date(validation.MinBirthYear+1, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	birthdayMax = time.Date(validation.MaxBirthYear-1, time.December, 31, 0, 0, 0, 0, time.UTC).UnixMilli()
)

// NewRunTag returns a short unique marker that is embedded in every
// generated title so a run can find its own players.
func NewRunTag() string {
	return "run" + strings.ReplaceAll(uuid.NewString(), "-", "")[:runTagLength]
}

// randomInt returns a uniform value in [0, n) using crypto/rand.
func randomInt(n int64) int64 {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0
	}
	return v.Int64()
}

// generatePlayers creates the configured number of random players tagged with tag.
func generatePlayers(ctx context.Context, config *Config, tag string, stats *Stats) ([]Player, error) {
	logger.Get().Info(ctx, "generating players", logger.Int("numPlayers", config.NumPlayers), logger.String("tag", tag))

	races := model.Races()
	professions := model.Professions()
	players := make([]Player, config.NumPlayers)
	for i := range players {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		players[i] = Player{
			Name:       names[randomInt(int64(len(names)))],
			Title:      titles[randomInt(int64(len(titles)))] + " " + tag,
			Race:       string(races[randomInt(int64(len(races)))]),
			Profession: string(professions[randomInt(int64(len(professions)))]),
			Experience: randomInt(validation.MaxExperience + 1),
			Birthday:   birthdayMin + randomInt(birthdayMax-birthdayMin),
			Banned:     randomInt(bannedDivisor) == 0,
		}
	}

	stats.PlayersGenerated = len(players)
	logger.Get().Info(ctx, "generated players successfully", logger.Int("count", len(players)))
	return players, nil
}
