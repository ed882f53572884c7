package store

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/safar/go-inventory-store/internal/models"
)

// DefaultPageSize matches the history screen of the mobile client.
const DefaultPageSize = 10

type CursorPage[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

type OffsetPage[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// Paginate windows a full collection. page is 1-based; out-of-range pages
// are clamped, and an empty collection still reports one page.
func Paginate[T any](items []T, page, pageSize int) OffsetPage[T] {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	total := len(items)
	totalPages := total / pageSize
	if total%pageSize > 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	return OffsetPage[T]{
		Items:      append([]T{}, items[start:end]...),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

type TransactionCursor struct {
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`
}

func EncodeCursor(cursor TransactionCursor) string {
	data, err := json.Marshal(cursor)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

func DecodeCursor(encoded string) (TransactionCursor, error) {
	var cursor TransactionCursor
	if encoded == "" {
		return cursor, nil
	}

	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return cursor, err
	}

	err = json.Unmarshal(data, &cursor)
	return cursor, err
}

// PageTransactions walks a newest-first list returned by TransactionStore,
// resuming after the record named by cursor.
func PageTransactions(txs []models.Transaction, cursor string, limit int) (*CursorPage[models.Transaction], error) {
	c, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = DefaultPageSize
	}

	start := 0
	if c.ID != "" {
		start = len(txs)
		for i := range txs {
			if txs[i].ID == c.ID {
				start = i + 1
				break
			}
			// The cursor record may be gone; resume at the first older entry.
			if txs[i].Timestamp.Before(c.Timestamp) {
				start = i
				break
			}
		}
	}

	end := min(start+limit, len(txs))
	page := &CursorPage[models.Transaction]{
		Items:   append([]models.Transaction{}, txs[start:end]...),
		HasMore: end < len(txs),
	}
	if page.HasMore && len(page.Items) > 0 {
		last := page.Items[len(page.Items)-1]
		page.NextCursor = EncodeCursor(TransactionCursor{Timestamp: last.Timestamp, ID: last.ID})
	}
	return page, nil
}
