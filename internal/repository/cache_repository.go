package repository

import (
	"context"
	"fmt"
	"time"

	"quizhub-service/internal/models"

	redis_v9 "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const quizCacheKeyPrefix = "quizhub:catalog:quiz:"

// CacheRepository keeps hot quiz definitions in Redis so Submit does not
// re-read the catalog document on every scoring pass.
type CacheRepository struct {
	client *redis_v9.Client
	ttl    time.Duration
}

func NewCacheRepository(client *redis_v9.Client, ttl time.Duration) *CacheRepository {
	return &CacheRepository{client: client, ttl: ttl}
}

func quizCacheKey(quizID string) string {
	return quizCacheKeyPrefix + quizID
}

// SaveQuiz stores the catalog document bson-encoded; the public json
// view strips correctness flags, which the scorer needs intact.
func (c *CacheRepository) SaveQuiz(ctx context.Context, quiz *models.Quiz) error {
	val, err := bson.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("error encoding quiz for cache: %w", err)
	}
	if err := c.client.Set(ctx, quizCacheKey(quiz.ID.Hex()), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("error saving quiz to cache: %w", err)
	}
	return nil
}

func (c *CacheRepository) GetQuiz(ctx context.Context, quizID string) (*models.Quiz, error) {
	raw, err := c.client.Get(ctx, quizCacheKey(quizID)).Bytes()
	if err != nil {
		return nil, err
	}
	var quiz models.Quiz
	if err := bson.Unmarshal(raw, &quiz); err != nil {
		return nil, fmt.Errorf("error decoding cached quiz: %w", err)
	}
	return &quiz, nil
}

func (c *CacheRepository) InvalidateQuiz(ctx context.Context, quizID string) error {
	return c.client.Del(ctx, quizCacheKey(quizID)).Err()
}
