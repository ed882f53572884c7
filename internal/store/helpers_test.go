package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/safar/go-inventory-store/internal/kv"
	"github.com/safar/go-inventory-store/internal/logging"
)

// stepClock returns a strictly increasing time, one second per call.
type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newStepClock() *stepClock {
	return &stepClock{cur: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

func createTestStore(t *testing.T) (*Store, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	s := New(mem, Options{
		Logger: logging.Discard(),
		Clock:  newStepClock().Now,
	})
	return s, mem
}

// flakyKV fails every multi-key or single-key write once armed.
type flakyKV struct {
	kv.Store
	mu   sync.Mutex
	fail bool
}

var errDiskFull = errors.New("disk full")

func (f *flakyKV) arm() {
	f.mu.Lock()
	f.fail = true
	f.mu.Unlock()
}

func (f *flakyKV) armed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	if f.armed() {
		return errDiskFull
	}
	return f.Store.Set(ctx, key, value)
}

func (f *flakyKV) SetMany(ctx context.Context, entries map[string]string) error {
	if f.armed() {
		return errDiskFull
	}
	return f.Store.SetMany(ctx, entries)
}

func mustCreateUser(t *testing.T, s *Store, email, name, password string) string {
	t.Helper()
	user, err := s.Users.Create(context.Background(), email, name, password)
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}
	return user.ID
}
