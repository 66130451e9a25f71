package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/roster/pkg/logger"
)

// maxErrorBody bounds how much of a failed response is kept for the error.
const maxErrorBody = 512

// HTTPClient wraps http.Client with JSON helpers for the roster API.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client for baseURL with the given timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends a request and decodes a 200 JSON response into out when non-nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

// Health checks GET /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, nil)
}

// Create posts a player and returns the stored record.
func (c *HTTPClient) Create(ctx context.Context, p Player) (Player, error) {
	var out Player
	err := c.do(ctx, http.MethodPost, playersPath, nil, p, &out)
	return out, err
}

// List fetches one page of players matching query.
func (c *HTTPClient) List(ctx context.Context, query url.Values) ([]Player, error) {
	var out []Player
	err := c.do(ctx, http.MethodGet, playersPath, query, nil, &out)
	return out, err
}

// Count fetches the number of players matching query.
func (c *HTTPClient) Count(ctx context.Context, query url.Values) (int, error) {
	var out int
	err := c.do(ctx, http.MethodGet, playersPath+"/count", query, nil, &out)
	return out, err
}

// Delete removes the player with id.
func (c *HTTPClient) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, playersPath+"/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// createPlayers submits players concurrently and returns the stored records.
// Players that fail to be created are left out of the result.
func createPlayers(ctx context.Context, config *Config, client *HTTPClient, players []Player, stats *Stats) []Player {
	log := logger.Get()
	log.Info(ctx, "creating players", logger.Int("count", len(players)), logger.Int("workers", config.Workers))

	created := make([]Player, len(players))
	ok := make([]bool, len(players))

	var (
		succeeded int64
		failed    int64
		lastNanos atomic.Int64
	)

	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range indexChan {
				stored, err := client.Create(ctx, players[index])
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Warn(ctx, "failed to create player", logger.Int("index", index), logger.Error(err))
					}
					continue
				}
				created[index] = stored
				ok[index] = true
				atomic.AddInt64(&succeeded, 1)

				now := time.Now().UnixNano()
				last := lastNanos.Load()
				if now-last >= int64(ProgressInterval) && lastNanos.CompareAndSwap(last, now) {
					log.Info(ctx, "progress",
						logger.Int64("created", atomic.LoadInt64(&succeeded)),
						logger.Int64("failed", atomic.LoadInt64(&failed)),
						logger.Int("total", len(players)))
				}
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := range players {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	result := make([]Player, 0, len(players))
	for i, p := range created {
		if ok[i] {
			result = append(result, p)
		}
	}

	stats.PlayersCreated = int(atomic.LoadInt64(&succeeded))
	stats.PlayersFailed = int(atomic.LoadInt64(&failed))
	log.Info(ctx, "player creation completed",
		logger.Int("created", stats.PlayersCreated),
		logger.Int("failed", stats.PlayersFailed))
	return result
}

// deletePlayers removes previously created players.
func deletePlayers(ctx context.Context, client *HTTPClient, players []Player, stats *Stats) {
	for _, p := range players {
		if err := client.Delete(ctx, p.ID); err != nil {
			logger.Get().Warn(ctx, "failed to delete player", logger.Int64("id", p.ID), logger.Error(err))
			continue
		}
		stats.PlayersDeleted++
	}
	logger.Get().Info(ctx, "cleanup completed", logger.Int("deleted", stats.PlayersDeleted))
}
