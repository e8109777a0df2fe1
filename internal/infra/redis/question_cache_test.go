package redis

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"finquiz-service/internal/domain"
	"finquiz-service/internal/infra/memory"
)

type countingBank struct {
	*memory.QuestionRepo
	eligibleCalls atomic.Int64
}

func (b *countingBank) FindEligible(ctx context.Context) ([]domain.Question, error) {
	b.eligibleCalls.Add(1)
	return b.QuestionRepo.FindEligible(ctx)
}

func setup(t *testing.T) (*QuestionCache, *countingBank, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	bank := &countingBank{QuestionRepo: memory.NewQuestionRepo()}
	for _, id := range []string{"q1", "q2", "q3"} {
		_, err := bank.Create(context.Background(), domain.Question{
			ID:           id,
			Prompt:       "prompt " + id,
			Options:      []string{"a", "b", "c", "d"},
			AdminCreated: true,
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return NewQuestionCache(client, bank, time.Minute), bank, mr
}

func TestQuestionCacheFillsRedis(t *testing.T) {
	cache, bank, mr := setup(t)
	ctx := context.Background()

	eligible, err := cache.FindEligible(ctx)
	if err != nil {
		t.Fatalf("find eligible: %v", err)
	}
	if len(eligible) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(eligible))
	}
	if !mr.Exists("quiz:questions:eligible") {
		t.Fatalf("expected cache key to be set")
	}

	if _, err := cache.FindEligible(ctx); err != nil {
		t.Fatalf("cached read: %v", err)
	}
	if calls := bank.eligibleCalls.Load(); calls != 1 {
		t.Fatalf("expected one backing read, got %d", calls)
	}
}

func TestQuestionCacheInvalidatesKeyOnWrite(t *testing.T) {
	cache, _, mr := setup(t)
	ctx := context.Background()

	if _, err := cache.FindEligible(ctx); err != nil {
		t.Fatalf("warm read: %v", err)
	}
	if _, err := cache.Create(ctx, domain.Question{ID: "q4", AdminCreated: true}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if mr.Exists("quiz:questions:eligible") {
		t.Fatalf("expected cache key dropped after create")
	}

	eligible, err := cache.FindEligible(ctx)
	if err != nil {
		t.Fatalf("read after write: %v", err)
	}
	if len(eligible) != 4 {
		t.Fatalf("expected 4 questions after create, got %d", len(eligible))
	}

	if err := cache.Delete(ctx, "q4"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("quiz:questions:eligible") {
		t.Fatalf("expected cache key dropped after delete")
	}
}

func TestQuestionCacheFindByIDsUsesCachedSet(t *testing.T) {
	cache, bank, _ := setup(t)
	ctx := context.Background()

	found, err := cache.FindByIDs(ctx, []string{"q1", "q3", "missing"})
	if err != nil {
		t.Fatalf("find by ids: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(found))
	}
	if calls := bank.eligibleCalls.Load(); calls != 1 {
		t.Fatalf("expected one backing read, got %d", calls)
	}
}
