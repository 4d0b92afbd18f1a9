package session

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix           = "brainbolt:"
	progressKeyPrefix   = keyPrefix + "user_state:"
	submissionKeyPrefix = keyPrefix + "idempotency:"
	poolKeyPrefix       = keyPrefix + "question_pool:"
)

// CacheTTLs configures expiry per key family. The idempotency TTL bounds how
// long a client may safely retry a submission.
type CacheTTLs struct {
	Progress     time.Duration // default: 10m
	Idempotency  time.Duration // default: 24h
	QuestionPool time.Duration // default: 1h
}

// DefaultCacheTTLs returns production defaults.
func DefaultCacheTTLs() CacheTTLs {
	return CacheTTLs{
		Progress:     10 * time.Minute,
		Idempotency:  24 * time.Hour,
		QuestionPool: time.Hour,
	}
}

// Cache is the redis-backed implementation of ProgressCache. It is a pure
// read-through/write-through helper: no business logic lives here, and the
// engine treats every error as a miss.
type Cache struct {
	client *redis.Client
	ttls   CacheTTLs
}

var _ ProgressCache = (*Cache)(nil)

// NewCache wraps a redis client with the three session key families.
func NewCache(client *redis.Client, ttls CacheTTLs) *Cache {
	def := DefaultCacheTTLs()
	if ttls.Progress <= 0 {
		ttls.Progress = def.Progress
	}
	if ttls.Idempotency <= 0 {
		ttls.Idempotency = def.Idempotency
	}
	if ttls.QuestionPool <= 0 {
		ttls.QuestionPool = def.QuestionPool
	}
	return &Cache{client: client, ttls: ttls}
}

func progressKey(userID string) string {
	return progressKeyPrefix + userID
}

func submissionKey(userID, idempotencyKey string) string {
	return submissionKeyPrefix + userID + ":" + idempotencyKey
}

func poolKey(difficulty int) string {
	return poolKeyPrefix + strconv.Itoa(difficulty)
}

func (c *Cache) GetProgress(ctx context.Context, userID string) (*UserProgress, error) {
	data, err := c.client.Get(ctx, progressKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var progress UserProgress
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

func (c *Cache) SetProgress(ctx context.Context, userID string, progress *UserProgress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, progressKey(userID), data, c.ttls.Progress).Err()
}

func (c *Cache) InvalidateProgress(ctx context.Context, userID string) error {
	return c.client.Del(ctx, progressKey(userID)).Err()
}

func (c *Cache) GetSubmission(ctx context.Context, userID, idempotencyKey string) (*SubmitResult, error) {
	data, err := c.client.Get(ctx, submissionKey(userID, idempotencyKey)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var result SubmitResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Cache) SetSubmission(ctx context.Context, userID, idempotencyKey string, result SubmitResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, submissionKey(userID, idempotencyKey), data, c.ttls.Idempotency).Err()
}

func (c *Cache) GetQuestionPool(ctx context.Context, difficulty int) ([]string, error) {
	data, err := c.client.Get(ctx, poolKey(difficulty)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *Cache) SetQuestionPool(ctx context.Context, difficulty int, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, poolKey(difficulty), data, c.ttls.QuestionPool).Err()
}

func (c *Cache) InvalidateQuestionPool(ctx context.Context, difficulty int) error {
	return c.client.Del(ctx, poolKey(difficulty)).Err()
}
