package cron

import (
	"context"
	"testing"
	"time"

	pkgredis "github.com/uteshop/uteshop-backend/pkg/redis"
)

type fakeLockStore struct {
	values map[string]string
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{values: make(map[string]string)}
}

func (f *fakeLockStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeLockStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return value, nil
}

func (f *fakeLockStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func TestRedisLockMutualExclusion(t *testing.T) {
	store := newFakeLockStore()
	ctx := context.Background()

	first, err := NewRedisLock(store, "uteshop:lock:cron", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	second, err := NewRedisLock(store, "uteshop:lock:cron", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}

	ok, err := first.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first Acquire = %v, %v", ok, err)
	}

	ok, err = second.Acquire(ctx)
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if ok {
		t.Fatal("second instance must not acquire a held lock")
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}

	ok, err = second.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("Acquire after release = %v, %v", ok, err)
	}
}

func TestRedisLockReleaseRespectsNewOwner(t *testing.T) {
	store := newFakeLockStore()
	ctx := context.Background()

	lock, err := NewRedisLock(store, "uteshop:lock:cron", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	if ok, err := lock.Acquire(ctx); err != nil || !ok {
		t.Fatalf("Acquire = %v, %v", ok, err)
	}

	// simulate TTL expiry plus takeover by another instance
	store.values["uteshop:lock:cron"] = "someone-else"

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if store.values["uteshop:lock:cron"] != "someone-else" {
		t.Error("release must not delete a lock owned by another instance")
	}
}

func TestRedisLockReleaseWithoutAcquire(t *testing.T) {
	lock, err := NewRedisLock(newFakeLockStore(), "uteshop:lock:cron", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("Release on unheld lock: %v", err)
	}
}
