package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRedisStore struct {
	values map[string]string
	dels   int
}

func newFakeRedisStore() *fakeRedisStore {
	return &fakeRedisStore{values: make(map[string]string)}
}

func (f *fakeRedisStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeRedisStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeRedisStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	f.dels++
	return nil
}

func TestRedisLockAcquireIsExclusive(t *testing.T) {
	store := newFakeRedisStore()
	first, err := NewRedisLock(store, "ls:cron:lock", time.Minute)
	if err != nil {
		t.Fatalf("build lock: %v", err)
	}
	second, err := NewRedisLock(store, "ls:cron:lock", time.Minute)
	if err != nil {
		t.Fatalf("build lock: %v", err)
	}

	ctx := context.Background()
	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if ok, err := second.Acquire(ctx); err != nil || ok {
		t.Fatalf("second acquire should lose: ok=%v err=%v", ok, err)
	}
}

func TestRedisLockReleaseLeavesForeignLeaseAlone(t *testing.T) {
	store := newFakeRedisStore()
	lock, err := NewRedisLock(store, "ls:cron:lock", time.Minute)
	if err != nil {
		t.Fatalf("build lock: %v", err)
	}

	ctx := context.Background()
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatal("acquire failed")
	}

	// the lease expired and another replica took it over
	store.values["ls:cron:lock"] = "someone-else"

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.dels != 0 {
		t.Fatal("release must not delete a lease it no longer owns")
	}
	if store.values["ls:cron:lock"] != "someone-else" {
		t.Fatal("foreign lease was touched")
	}
}

func TestRedisLockReleaseDropsOwnLease(t *testing.T) {
	store := newFakeRedisStore()
	lock, err := NewRedisLock(store, "ls:cron:lock", time.Minute)
	if err != nil {
		t.Fatalf("build lock: %v", err)
	}

	ctx := context.Background()
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatal("acquire failed")
	}
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, held := store.values["ls:cron:lock"]; held {
		t.Fatal("lease still present after release")
	}
	// releasing twice is a no-op
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("second release: %v", err)
	}
}
