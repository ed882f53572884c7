// Package store holds the record stores of the inventory: users, products,
// the append-only transaction log, the current session and maintenance
// helpers.
//
// Each collection lives under one key of a kv.Store as a JSON array and is
// read in full on every call; nothing is cached between calls. Writers take a
// per-collection lock around the read-modify-write cycle, and a product
// mutation writes the product collection and its transaction record with a
// single SetMany so the two never diverge.
package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/safar/go-inventory-store/internal/auth"
	"github.com/safar/go-inventory-store/internal/codec"
	"github.com/safar/go-inventory-store/internal/kv"
)

const (
	KeyUsers        = "users"
	KeyProducts     = "products"
	KeyTransactions = "transactions"
	KeyAuthToken    = "auth_token"
	KeyCurrentUser  = "current_user"
)

// AllKeys lists every key the store owns, in lock order.
var AllKeys = []string{KeyUsers, KeyProducts, KeyTransactions, KeyAuthToken, KeyCurrentUser}

type Options struct {
	Logger *slog.Logger
	Hasher auth.Hasher
	Clock  func() time.Time
	NewID  func() string
}

type Store struct {
	kv     kv.Store
	logger *slog.Logger
	hasher auth.Hasher
	now    func() time.Time
	newID  func() string
	locks  *collectionLocks

	Users        *UserStore
	Products     *ProductStore
	Transactions *TransactionStore
	Session      *SessionStore
	Maintenance  *Maintenance
}

func New(backend kv.Store, opts Options) *Store {
	s := &Store{
		kv:     backend,
		logger: opts.Logger,
		hasher: opts.Hasher,
		now:    opts.Clock,
		newID:  opts.NewID,
		locks:  newCollectionLocks(AllKeys...),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.hasher == nil {
		s.hasher = auth.LegacyHasher{}
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = auth.NewID
	}

	s.Users = &UserStore{s: s}
	s.Products = &ProductStore{s: s}
	s.Transactions = &TransactionStore{s: s}
	s.Session = &SessionStore{s: s}
	s.Maintenance = &Maintenance{s: s}
	return s
}

func (s *Store) Close() error {
	return s.kv.Close()
}

// load reads a whole collection. Absent or unreadable values come back as an
// empty slice; storage failures are returned.
func load[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return codec.Decode(s.logger, key, raw, ok, []T{}), nil
}

// collectionLocks serializes writers per collection key within the process.
type collectionLocks struct {
	mus map[string]*sync.Mutex
}

func newCollectionLocks(keys ...string) *collectionLocks {
	l := &collectionLocks{mus: make(map[string]*sync.Mutex, len(keys))}
	for _, k := range keys {
		l.mus[k] = &sync.Mutex{}
	}
	return l
}

// lock acquires the named collection locks in a fixed global order and
// returns the matching unlock.
func (l *collectionLocks) lock(keys ...string) func() {
	ordered := make([]string, 0, len(keys))
	for _, k := range AllKeys {
		if slices.Contains(keys, k) {
			ordered = append(ordered, k)
		}
	}
	for _, k := range ordered {
		l.mus[k].Lock()
	}
	return func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			l.mus[ordered[i]].Unlock()
		}
	}
}
