package loadgen

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/okian/roster/internal/domain/filter"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/pkg/logger"
)

// check is one server query compared against local filtering.
type check struct {
	name     string
	query    url.Values
	criteria filter.Criteria
}

// buildChecks returns one check per order over the run's players plus a few
// filtered variants.
func buildChecks(tag string, players []Player) []check {
	checks := make([]check, 0, 8)
	for _, order := range []model.Order{
		model.OrderID, model.OrderName, model.OrderExperience, model.OrderBirthday, model.OrderLevel,
	} {
		checks = append(checks, check{
			name:     "order " + string(order),
			query:    url.Values{"title": {tag}, "order": {string(order)}},
			criteria: filter.Criteria{Title: &tag, Order: order},
		})
	}
	if len(players) == 0 {
		return checks
	}

	race := model.Race(players[0].Race)
	checks = append(checks, check{
		name:     "race " + string(race),
		query:    url.Values{"title": {tag}, "race": {string(race)}, "order": {string(model.OrderExperience)}},
		criteria: filter.Criteria{Title: &tag, Race: &race, Order: model.OrderExperience},
	})

	banned := false
	checks = append(checks, check{
		name:     "not banned",
		query:    url.Values{"title": {tag}, "banned": {"false"}},
		criteria: filter.Criteria{Title: &tag, Banned: &banned},
	})

	minExp := players[0].Experience
	checks = append(checks, check{
		name: "experience floor",
		query: url.Values{
			"title": {tag}, "minExperience": {strconv.FormatInt(minExp, 10)}, "order": {string(model.OrderLevel)},
		},
		criteria: filter.Criteria{Title: &tag, Experience: filter.SentinelRange(minExp, 0), Order: model.OrderLevel},
	})
	return checks
}

// verifyResults compares every check's paged server result and count with
// what local filtering of the created players yields.
func verifyResults(ctx context.Context, config *Config, client *HTTPClient, tag string, players []Player, stats *Stats) error {
	log := logger.Get()
	log.Info(ctx, "verifying results", logger.Int("players", len(players)))

	local := make([]model.Player, len(players))
	for i, p := range players {
		local[i] = p.Model()
	}

	for _, c := range buildChecks(tag, players) {
		expected := filter.Apply(local, c.criteria.Query())
		got, err := fetchAll(ctx, client, c.query, config.PageSize)
		if err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
		count, err := client.Count(ctx, c.query)
		if err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
		stats.QueriesChecked++

		if mismatch := compareIDs(expected, got); mismatch != "" || count != len(expected) {
			stats.Mismatches++
			log.Warn(ctx, "query mismatch",
				logger.String("check", c.name),
				logger.String("detail", mismatch),
				logger.Int("expectedCount", len(expected)),
				logger.Int("count", count))
			continue
		}
		if config.Verbose {
			log.Info(ctx, "query verified", logger.String("check", c.name), logger.Int("rows", len(got)))
		}
	}

	if stats.Mismatches > 0 {
		return fmt.Errorf("%d of %d queries did not match", stats.Mismatches, stats.QueriesChecked)
	}
	log.Info(ctx, "result verification completed", logger.Int("queries", stats.QueriesChecked))
	return nil
}

// fetchAll walks pages of size pageSize until a short page is returned.
func fetchAll(ctx context.Context, client *HTTPClient, query url.Values, pageSize int) ([]Player, error) {
	var all []Player
	for page := 0; ; page++ {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("pageNumber", strconv.Itoa(page))
		q.Set("pageSize", strconv.Itoa(pageSize))

		batch, err := client.List(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < pageSize {
			return all, nil
		}
	}
}

// compareIDs returns a description of the first difference, or "".
func compareIDs(expected []model.Player, got []Player) string {
	if len(expected) != len(got) {
		return fmt.Sprintf("expected %d rows, got %d", len(expected), len(got))
	}
	for i := range expected {
		if expected[i].ID != got[i].ID {
			return fmt.Sprintf("row %d: expected id %d, got %d", i, expected[i].ID, got[i].ID)
		}
	}
	return ""
}
