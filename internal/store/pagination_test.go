package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/safar/go-inventory-store/internal/models"
)

func TestPaginate(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	tests := []struct {
		name      string
		page      int
		pageSize  int
		wantPage  int
		wantLen   int
		wantFirst int
		wantPages int
	}{
		{"first page", 1, 10, 1, 10, 0, 3},
		{"last partial page", 3, 10, 3, 3, 20, 3},
		{"page past end clamps", 9, 10, 3, 3, 20, 3},
		{"page below one clamps", 0, 10, 1, 10, 0, 3},
		{"default size", 2, 0, 2, 10, 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(items, tt.page, tt.pageSize)
			if got.Page != tt.wantPage {
				t.Errorf("Expected page %d, got %d", tt.wantPage, got.Page)
			}
			if len(got.Items) != tt.wantLen {
				t.Errorf("Expected %d items, got %d", tt.wantLen, len(got.Items))
			}
			if len(got.Items) > 0 && got.Items[0] != tt.wantFirst {
				t.Errorf("Expected first item %d, got %d", tt.wantFirst, got.Items[0])
			}
			if got.TotalPages != tt.wantPages {
				t.Errorf("Expected %d pages, got %d", tt.wantPages, got.TotalPages)
			}
			if got.Total != 23 {
				t.Errorf("Expected total 23, got %d", got.Total)
			}
		})
	}
}

func TestPaginateEmpty(t *testing.T) {
	got := Paginate([]int{}, 4, 10)
	if got.Page != 1 || got.TotalPages != 1 || len(got.Items) != 0 {
		t.Errorf("Unexpected empty page: %+v", got)
	}
}

func TestPageTransactionsWalksAll(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	txs := make([]models.Transaction, 25)
	for i := range txs {
		txs[i] = models.Transaction{
			ID:        fmt.Sprintf("t%02d", i),
			Timestamp: base.Add(-time.Duration(i) * time.Minute),
		}
	}

	seen := 0
	cursor := ""
	pages := 0
	for {
		page, err := PageTransactions(txs, cursor, 10)
		if err != nil {
			t.Fatalf("PageTransactions: %v", err)
		}
		for _, tx := range page.Items {
			if tx.ID != txs[seen].ID {
				t.Fatalf("Expected %s, got %s", txs[seen].ID, tx.ID)
			}
			seen++
		}
		pages++
		if !page.HasMore {
			if page.NextCursor != "" {
				t.Error("Last page should have no cursor")
			}
			break
		}
		cursor = page.NextCursor
	}

	if seen != 25 || pages != 3 {
		t.Errorf("Expected 25 items over 3 pages, got %d over %d", seen, pages)
	}
}

func TestPageTransactionsMissingCursorRecord(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	txs := []models.Transaction{
		{ID: "a", Timestamp: base},
		{ID: "c", Timestamp: base.Add(-2 * time.Minute)},
		{ID: "d", Timestamp: base.Add(-3 * time.Minute)},
	}

	cursor := EncodeCursor(TransactionCursor{ID: "b", Timestamp: base.Add(-time.Minute)})
	page, err := PageTransactions(txs, cursor, 10)
	if err != nil {
		t.Fatalf("PageTransactions: %v", err)
	}
	if len(page.Items) != 2 || page.Items[0].ID != "c" {
		t.Errorf("Expected to resume at c, got %+v", page.Items)
	}
}

func TestDecodeCursorInvalid(t *testing.T) {
	if _, err := DecodeCursor("!!!"); err == nil {
		t.Error("Expected error for malformed cursor")
	}
	if _, err := PageTransactions(nil, "!!!", 10); err == nil {
		t.Error("Expected error for malformed cursor")
	}
}
