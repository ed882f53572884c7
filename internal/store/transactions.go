package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/safar/go-inventory-store/internal/models"
)

// TransactionRepository is read-only; records are appended by ProductStore
// alongside the mutation they describe.
type TransactionRepository interface {
	List(ctx context.Context) ([]models.Transaction, error)
	ListByProduct(ctx context.Context, productID string) ([]models.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]models.Transaction, error)
	Count(ctx context.Context) (int, error)
}

type TransactionStore struct {
	s *Store
}

var _ TransactionRepository = (*TransactionStore)(nil)

// List returns every transaction, newest first. Equal timestamps keep their
// insertion order.
func (t *TransactionStore) List(ctx context.Context) ([]models.Transaction, error) {
	return t.list(ctx, nil)
}

func (t *TransactionStore) ListByProduct(ctx context.Context, productID string) ([]models.Transaction, error) {
	return t.list(ctx, func(tx models.Transaction) bool { return tx.ProductID == productID })
}

func (t *TransactionStore) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	return t.list(ctx, func(tx models.Transaction) bool { return tx.UserID == userID })
}

func (t *TransactionStore) Count(ctx context.Context) (int, error) {
	txs, err := t.list(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return len(txs), nil
}

func (t *TransactionStore) list(ctx context.Context, keep func(models.Transaction) bool) ([]models.Transaction, error) {
	txs, err := load[models.Transaction](ctx, t.s, KeyTransactions)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	filtered := txs[:0]
	for _, tx := range txs {
		// Records with an unknown type are skipped on read but stay stored.
		if !tx.Type.Valid() {
			t.s.logger.Warn("skipping transaction with unknown type", "transaction_id", tx.ID, "type", tx.Type)
			continue
		}
		if keep == nil || keep(tx) {
			filtered = append(filtered, tx)
		}
	}
	txs = filtered

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})
	return txs, nil
}
