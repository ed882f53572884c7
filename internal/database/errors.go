package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001":
			return ErrorClassSerialization
		case "40P01":
			return ErrorClassDeadlock
		case "55P03", "57014":
			return ErrorClassTransient
		case "23505", "23503", "23502", "23514":
			return ErrorClassPermanent
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return ErrorClassTransient
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrorClassPermanent
	}

	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	class := ClassifyError(err)
	return class == ErrorClassTransient ||
		class == ErrorClassDeadlock ||
		class == ErrorClassSerialization
}

// Storage failures. Backends wrap the driver error so both the sentinel and
// the cause stay reachable through errors.Is / errors.As.
var (
	ErrStorageIO    = errors.New("storage io failure")
	ErrStorageWrite = errors.New("storage write failure")
)

// Domain failures surfaced by the record stores.
var (
	ErrNotFound           = errors.New("not found")
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrProductNotFound    = fmt.Errorf("product %w", ErrNotFound)
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateSKU       = errors.New("sku already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNegativeQuantity   = errors.New("quantity cannot be negative")
	ErrNegativePrice      = errors.New("price cannot be negative")
	ErrZeroAdjustment     = errors.New("quantity adjustment must be non-zero")
	ErrQuantityOverflow   = errors.New("quantity exceeds maximum")
)

// IOError marks err as a storage device failure for op on key.
func IOError(op, key string, err error) error {
	return fmt.Errorf("%s %q: %w: %w", op, key, ErrStorageIO, err)
}

// WriteError marks err as a serialization failure for key.
func WriteError(key string, err error) error {
	return fmt.Errorf("encode %q: %w: %w", key, ErrStorageWrite, err)
}
