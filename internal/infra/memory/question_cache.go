package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"finquiz-service/internal/app"
	"finquiz-service/internal/domain"
)

// QuestionCache caches the eligible question set in front of a backing bank
// with a TTL, so session starts don't hammer the store. Admin writes pass
// through and invalidate the cached set. A non-positive ttl caches without
// expiry, the same meaning a zero TTL has on the redis cache.
type QuestionCache struct {
	bank  app.QuestionBank
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu        sync.RWMutex
	cached    []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(bank app.QuestionBank, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		bank:  bank,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) FindEligible(ctx context.Context) ([]domain.Question, error) {
	c.mu.RLock()
	if c.freshLocked(c.clock()) {
		cached := c.cached
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("eligible", func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.freshLocked(now) {
			cached := c.cached
			c.mu.RUnlock()
			return cached, nil
		}
		c.mu.RUnlock()

		questions, err := c.bank.FindEligible(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cached = questions
		if c.ttl > 0 {
			c.expiresAt = now.Add(c.ttlWithJitter())
		} else {
			c.expiresAt = time.Time{}
		}
		c.mu.Unlock()
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
	c.invalidate()
	return created, nil
}

func (c *QuestionCache) Delete(ctx context.Context, id string) error {
	if err := c.bank.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate()
	return nil
}

func (c *QuestionCache) invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()
}

// freshLocked reports whether the cached set is usable. A zero expiry marks a
// set cached without a deadline. Callers must hold c.mu.
func (c *QuestionCache) freshLocked(now time.Time) bool {
	return c.cached != nil && (c.expiresAt.IsZero() || c.expiresAt.After(now))
}

// ttlWithJitter adds up to 10% to spread expirations. Only called with a
// positive ttl.
func (c *QuestionCache) ttlWithJitter() time.Duration {
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
