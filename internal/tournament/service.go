package tournament

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "tournaments:"

// Source loads round-tagged events.
type Source interface {
	ListRoundEvents(ctx context.Context, year int) ([]RawIngest, error)
	LatestYear(ctx context.Context) (int, error)
}

// Cache stores detected tournaments per year.
type Cache interface {
	Get(ctx context.Context, year int) ([]Ingest, bool, error)
	Set(ctx context.Context, year int, tournaments []Ingest) error
	Clear(ctx context.Context) error
}

// Service detects tournaments on read and caches the result per year.
type Service struct {
	source Source
	cache  Cache
}

// NewService accepts a nil cache; every call then detects from scratch.
func NewService(source Source, cache Cache) *Service {
	return &Service{source: source, cache: cache}
}

// ResolveYear returns year, or the latest year with events when year is 0.
func (s *Service) ResolveYear(ctx context.Context, year int) (int, error) {
	if year > 0 {
		return year, nil
	}
	return s.source.LatestYear(ctx)
}

// List returns the tournaments of a year. Cache failures fall back to detection.
func (s *Service) List(ctx context.Context, year int) ([]Ingest, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, year)
		if err != nil {
			log.Printf("⚠️ Tournament cache read failed for %d: %v", year, err)
		} else if ok {
			return cached, nil
		}
	}
	return s.detect(ctx, year)
}

// Warm detects and caches one year.
func (s *Service) Warm(ctx context.Context, year int) error {
	_, err := s.detect(ctx, year)
	return err
}

// Invalidate drops every cached year.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx)
}

func (s *Service) detect(ctx context.Context, year int) ([]Ingest, error) {
	events, err := s.source.ListRoundEvents(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("loading round events: %w", err)
	}
	tournaments := Detect(events)
	if tournaments == nil {
		tournaments = []Ingest{}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, year, tournaments); err != nil {
			log.Printf("⚠️ Tournament cache write failed for %d: %v", year, err)
		}
	}
	return tournaments, nil
}

// ===========================
// 🧠 Redis cache

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, year int) ([]Ingest, bool, error) {
	raw, err := c.client.Get(ctx, fmt.Sprintf("%s%d", cacheKeyPrefix, year)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []Ingest
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (c *RedisCache) Set(ctx context.Context, year int, tournaments []Ingest) error {
	raw, err := json.Marshal(tournaments)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, fmt.Sprintf("%s%d", cacheKeyPrefix, year), raw, c.ttl).Err()
}

func (c *RedisCache) Clear(ctx context.Context) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
