package application

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tradewire/tradewire-api/internal/domain/entity"
	"github.com/tradewire/tradewire-api/internal/domain/repository"
	"github.com/tradewire/tradewire-api/pkg/helpers"
)

const (
	newsFeedCacheKey = "news:feed:latest"
	newsFeedLimit    = 50
)

// NewsService serves the ticker feed and ingests headlines from the
// upstream feed. Reads go through a short-lived Redis cache.
type NewsService struct {
	News     repository.NewsRepository
	Redis    *redis.Client
	CacheTTL time.Duration
	HTTP     *http.Client
	Logger   *logrus.Logger
}

func NewNewsService(news repository.NewsRepository, rdb *redis.Client, cacheTTL time.Duration, logger *logrus.Logger) *NewsService {
	return &NewsService{
		News:     news,
		Redis:    rdb,
		CacheTTL: cacheTTL,
		HTTP:     &http.Client{Timeout: 15 * time.Second},
		Logger:   logger,
	}
}

// Latest returns the newest headlines, newest first.
func (s *NewsService) Latest(ctx context.Context) ([]entity.NewsItem, error) {
	if s.Redis != nil {
		var cached []entity.NewsItem
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, newsFeedCacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}
	items, err := s.News.Latest(ctx, newsFeedLimit)
	if err != nil {
		return nil, err
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, newsFeedCacheKey, items, s.CacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("news cache write failed")
		}
	}
	return items, nil
}

// feedItem is one entry in the upstream feed's JSON array.
type feedItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
}

// Ingest pulls the upstream feed and upserts every headline. Items without
// an explicit id are keyed by a hash of title+timestamp so re-runs are
// idempotent.
func (s *NewsService) Ingest(ctx context.Context, feedURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("news feed returned %s", resp.Status)
	}

	var items []feedItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return 0, err
	}

	stored := 0
	for _, it := range items {
		id := it.ID
		if id == "" {
			sum := sha1.Sum([]byte(it.Title + "|" + it.Timestamp))
			id = hex.EncodeToString(sum[:])
		}
		item := entity.NewsItem{ID: id, Title: it.Title, Timestamp: it.Timestamp}
		if err := s.News.Upsert(ctx, &item); err != nil {
			if s.Logger != nil {
				s.Logger.WithError(err).WithField("news_id", id).Warn("news upsert failed")
			}
			continue
		}
		stored++
	}

	// Invalidate the cached feed so the next read sees fresh items.
	if s.Redis != nil {
		_ = helpers.RedisDel(ctx, s.Redis, newsFeedCacheKey)
	}
	return stored, nil
}
