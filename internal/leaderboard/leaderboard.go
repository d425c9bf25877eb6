// Package leaderboard mirrors per-game player statistics into Redis sorted
// sets so ranking reads don't touch Postgres. The cache is optional; the
// application runs without it when no Redis address is configured.
package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"

	"scores-keeper/internal/domain"
)

// Cache holds the Redis connection for the stats mirror.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewCache(addr string, dbIndex int, logger *slog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIndex,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &Cache{client: client, logger: logger}, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func winsKey(gameID int64) string {
	return fmt.Sprintf("game:%d:wins", gameID)
}

func pointsKey(gameID int64) string {
	return fmt.Sprintf("game:%d:points", gameID)
}

// Update replaces the game's cached standings with a fresh stats snapshot.
func (c *Cache) Update(ctx context.Context, gameID int64, stats []domain.PlayerStats) error {
	wins := make([]redis.Z, 0, len(stats))
	points := make([]redis.Z, 0, len(stats))
	for _, entry := range stats {
		member := strconv.FormatInt(entry.Player.ID, 10)
		wins = append(wins, redis.Z{Score: float64(entry.GamesWon), Member: member})
		points = append(points, redis.Z{Score: float64(entry.TotalPoints), Member: member})
	}
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, winsKey(gameID), pointsKey(gameID))
	if len(wins) > 0 {
		pipe.ZAdd(ctx, winsKey(gameID), wins...)
		pipe.ZAdd(ctx, pointsKey(gameID), points...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("updating leaderboard for game %d: %w", gameID, err)
	}
	c.logger.Debug("leaderboard updated", "game_id", gameID, "players", len(stats))
	return nil
}

// Entry is one cached standing row.
type Entry struct {
	PlayerID int64   `json:"player_id"`
	Score    float64 `json:"score"`
}

// TopWinners reads the n best players by cached win count.
func (c *Cache) TopWinners(ctx context.Context, gameID int64, n int) ([]Entry, error) {
	rows, err := c.client.ZRevRangeWithScores(ctx, winsKey(gameID), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard for game %d: %w", gameID, err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		member, ok := row.Member.(string)
		if !ok {
			continue
		}
		playerID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{PlayerID: playerID, Score: row.Score})
	}
	return entries, nil
}
