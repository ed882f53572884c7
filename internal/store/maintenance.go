package store

import (
	"context"
	"fmt"

	"github.com/safar/go-inventory-store/internal/models"
)

type Maintenance struct {
	s *Store
}

type Info struct {
	Users        int `json:"users"`
	Products     int `json:"products"`
	Transactions int `json:"transactions"`
}

// ClearAll removes every collection and the session in one operation.
func (m *Maintenance) ClearAll(ctx context.Context) error {
	unlock := m.s.locks.lock(AllKeys...)
	defer unlock()

	if err := m.s.kv.RemoveMany(ctx, AllKeys...); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	m.s.logger.Warn("storage cleared")
	return nil
}

func (m *Maintenance) Info(ctx context.Context) (Info, error) {
	users, err := load[models.User](ctx, m.s, KeyUsers)
	if err != nil {
		return Info{}, fmt.Errorf("storage info: %w", err)
	}
	products, err := load[models.Product](ctx, m.s, KeyProducts)
	if err != nil {
		return Info{}, fmt.Errorf("storage info: %w", err)
	}
	txs, err := load[models.Transaction](ctx, m.s, KeyTransactions)
	if err != nil {
		return Info{}, fmt.Errorf("storage info: %w", err)
	}

	return Info{
		Users:        len(users),
		Products:     len(products),
		Transactions: len(txs),
	}, nil
}

// Initialize seeds an empty array for each collection key that is absent.
// Existing values, readable or not, are left alone.
func (m *Maintenance) Initialize(ctx context.Context) error {
	unlock := m.s.locks.lock(KeyUsers, KeyProducts, KeyTransactions)
	defer unlock()

	missing := make(map[string]string)
	for _, key := range []string{KeyUsers, KeyProducts, KeyTransactions} {
		_, ok, err := m.s.kv.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("initialize storage: %w", err)
		}
		if !ok {
			missing[key] = "[]"
		}
	}
	if len(missing) == 0 {
		return nil
	}

	if err := m.s.kv.SetMany(ctx, missing); err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	return nil
}
