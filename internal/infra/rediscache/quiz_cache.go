// Package rediscache wraps a quiz repository with a read-through Redis
// cache. Only FindByID is cached: it sits on the hot submit and detail
// paths, while listings change shape with every filter.
package rediscache

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"classquiz/internal/app"
	"classquiz/internal/domain"
)

// QuizCache decorates an app.QuizRepository. Cached entries are full quiz
// documents as JSON under quiz:{id}; writes invalidate the entry.
type QuizCache struct {
	inner  app.QuizRepository
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group

	// rnd is shared by concurrent cache fills and is not goroutine-safe
	// on its own.
	rndMu sync.Mutex
	rnd   *rand.Rand
}

func New(inner app.QuizRepository, client *redis.Client, ttl time.Duration) *QuizCache {
	return &QuizCache{
		inner:  inner,
		client: client,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) FindByID(ctx context.Context, id string) (domain.Quiz, error) {
	key := c.key(id)
	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var quiz domain.Quiz
		if err := json.Unmarshal(raw, &quiz); err == nil {
			return quiz, nil
		}
		// Unreadable entry; fall through and refill.
		_ = c.client.Del(ctx, key).Err()
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		// Re-check in case another goroutine filled it.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var quiz domain.Quiz
			if err := json.Unmarshal(raw, &quiz); err == nil {
				return quiz, nil
			}
		}

		quiz, err := c.inner.FindByID(ctx, id)
		if err != nil {
			return domain.Quiz{}, err
		}
		if raw, err := json.Marshal(quiz); err == nil {
			// Cache fill is best-effort; a miss just costs another load.
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) Insert(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	return c.inner.Insert(ctx, quiz)
}

func (c *QuizCache) Find(ctx context.Context, filter app.QuizFilter) ([]domain.Quiz, error) {
	return c.inner.Find(ctx, filter)
}

func (c *QuizCache) Replace(ctx context.Context, quiz domain.Quiz) error {
	if err := c.inner.Replace(ctx, quiz); err != nil {
		return err
	}
	_ = c.client.Del(ctx, c.key(quiz.ID)).Err()
	return nil
}

func (c *QuizCache) SetLive(ctx context.Context, id string, live bool, updatedAt time.Time) error {
	if err := c.inner.SetLive(ctx, id, live, updatedAt); err != nil {
		return err
	}
	_ = c.client.Del(ctx, c.key(id)).Err()
	return nil
}

func (c *QuizCache) Delete(ctx context.Context, id string) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	_ = c.client.Del(ctx, c.key(id)).Err()
	return nil
}

func (c *QuizCache) key(id string) string {
	return "quiz:" + id
}

// ttlWithJitter spreads expirations by up to 10%.
func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	jitter := c.rnd.Int63n(jitterMax + 1)
	c.rndMu.Unlock()
	return c.ttl + time.Duration(jitter)
}
