// Package codec converts record collections to and from the text blobs held
// by the key-value adapter.
//
// Decoding never fails: an unreadable blob degrades to the caller's default so
// a corrupted key cannot take the application down. The condition is logged
// at WARN and counted so it stays observable.
package codec

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"github.com/safar/go-inventory-store/internal/database"
)

var corruptReads atomic.Int64

// CorruptReads reports how many decodes fell back to a default since start.
func CorruptReads() int64 {
	return corruptReads.Load()
}

// Decode parses raw as a JSON array of T. When ok is false (key absent) or
// raw cannot be parsed, def is returned.
func Decode[T any](logger *slog.Logger, key, raw string, ok bool, def []T) []T {
	if !ok || raw == "" {
		return def
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		corrupt(logger, key, err)
		return def
	}
	if items == nil {
		return def
	}
	return items
}

// DecodeOne parses a single JSON object. The second result is false when the
// key was absent or unreadable.
func DecodeOne[T any](logger *slog.Logger, key, raw string, ok bool) (T, bool) {
	var item T
	if !ok || raw == "" {
		return item, false
	}
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		corrupt(logger, key, err)
		var zero T
		return zero, false
	}
	return item, true
}

// Encode serializes items as a JSON array. A nil slice encodes as [].
func Encode[T any](key string, items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", database.WriteError(key, err)
	}
	return string(data), nil
}

func EncodeOne[T any](key string, item T) (string, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return "", database.WriteError(key, err)
	}
	return string(data), nil
}

func corrupt(logger *slog.Logger, key string, err error) {
	corruptReads.Add(1)
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("unreadable persisted value, using default",
		slog.String("key", key),
		slog.Any("error", err),
	)
}
