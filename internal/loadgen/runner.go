package loadgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/roster/internal/domain/filter"
	"github.com/okian/roster/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
	logFilePermission   = 0600
)

// ErrNoPlayers reports that no player could be created.
var ErrNoPlayers = errors.New("no players were created")

// Run executes a complete load run: seed, verify, optionally clean up.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.PageSize <= 0 {
		config.PageSize = filter.DefaultPageSize
	}
	tag := NewRunTag()

	logger.Get().Info(ctx, "starting roster load run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("players", config.NumPlayers),
		logger.Int("workers", config.Workers),
		logger.Int("pageSize", config.PageSize),
		logger.String("timeout", config.Timeout.String()),
		logger.String("tag", tag),
		logger.Bool("cleanup", config.Cleanup))

	client := NewHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate players
	players, err := generatePlayers(ctx, config, tag, stats)
	if err != nil {
		return stats, fmt.Errorf("player generation failed: %w", err)
	}

	// Step 3: Create players concurrently
	created := createPlayers(ctx, config, client, players, stats)
	if len(created) == 0 && len(players) > 0 {
		return stats, ErrNoPlayers
	}
	if config.Cleanup {
		defer deletePlayers(context.WithoutCancel(ctx), client, created, stats)
	}

	// Step 4: Verify listing, ordering, paging and counting
	verifyErr := verifyResults(ctx, config, client, tag, created, stats)

	// Step 5: Save created players
	if config.OutputFile != "" {
		if err := savePlayersToFile(ctx, config.OutputFile, created); err != nil {
			logger.Get().Warn(ctx, "failed to save players to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if verifyErr != nil {
		return stats, fmt.Errorf("result verification failed: %w", verifyErr)
	}
	logger.Get().Info(ctx, "load run completed successfully")
	return stats, nil
}

// savePlayersToFile writes the created players as a JSON array.
func savePlayersToFile(ctx context.Context, filename string, players []Player) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(players, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal players: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "players saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(stats *Stats) {
	var successRate, playersPerSecond float64

	if stats.PlayersGenerated > 0 {
		successRate = float64(stats.PlayersCreated) / float64(stats.PlayersGenerated) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		playersPerSecond = float64(stats.PlayersCreated) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("playersGenerated", stats.PlayersGenerated),
		logger.Int("playersCreated", stats.PlayersCreated),
		logger.Int("playersFailed", stats.PlayersFailed),
		logger.Int("queriesChecked", stats.QueriesChecked),
		logger.Int("mismatches", stats.Mismatches),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("playersPerSecond", playersPerSecond))
}
