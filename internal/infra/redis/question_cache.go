// Package redis caches the question bank in Redis so multiple instances can
// share one warm copy of the eligible set.
package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"finquiz-service/internal/app"
	"finquiz-service/internal/domain"
)

const eligibleKey = "quiz:questions:eligible"

// QuestionCache stores the eligible question set as a JSON blob with a TTL
// and falls back to the backing bank on cache miss. Admin writes pass
// through and drop the cached key.
type QuestionCache struct {
	client *redis.Client
	bank   app.QuestionBank
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, bank app.QuestionBank, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		bank:   bank,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) FindEligible(ctx context.Context) ([]domain.Question, error) {
	if cached, ok := c.readCache(ctx); ok {
		return cached, nil
	}

	result, err, _ := c.sf.Do(eligibleKey, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if cached, ok := c.readCache(ctx); ok {
			return cached, nil
		}

		questions, err := c.bank.FindEligible(ctx)
		if err != nil {
			return nil, err
		}

		if raw, err := json.Marshal(questions); err == nil {
			// Best-effort: a cache write failure must not fail the read.
			_ = c.client.Set(ctx, eligibleKey, raw, c.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// FindByIDs answers from the cached eligible set where possible and falls
// back to the backing bank for anything not cached.
func (c *QuestionCache) FindByIDs(ctx context.Context, ids []string) ([]domain.Question, error) {
	cached, err := c.FindEligible(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Question, len(cached))
	for _, q := range cached {
		byID[q.ID] = q
	}

	out := make([]domain.Question, 0, len(ids))
	var missing []string
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		rest, err := c.bank.FindByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		out = append(out, rest...)
	}
	return out, nil
}

func (c *QuestionCache) Create(ctx context.Context, q domain.Question) (domain.Question, error) {
	created, err := c.bank.Create(ctx, q)
	if err != nil {
		return domain.Question{}, err
	}
	_ = c.client.Del(ctx, eligibleKey).Err()
	return created, nil
}

func (c *QuestionCache) Delete(ctx context.Context, id string) error {
	if err := c.bank.Delete(ctx, id); err != nil {
		return err
	}
	_ = c.client.Del(ctx, eligibleKey).Err()
	return nil
}

func (c *QuestionCache) readCache(ctx context.Context) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, eligibleKey).Bytes()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

// ttlWithJitter adds up to 10% to spread expirations.
func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
