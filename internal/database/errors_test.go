package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"nil", nil, ErrorClassPermanent},
		{"serialization", &pq.Error{Code: "40001"}, ErrorClassSerialization},
		{"deadlock", fmt.Errorf("wrapped: %w", &pq.Error{Code: "40P01"}), ErrorClassDeadlock},
		{"lock not available", &pq.Error{Code: "55P03"}, ErrorClassTransient},
		{"unique violation", &pq.Error{Code: "23505"}, ErrorClassPermanent},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, ErrorClassTransient},
		{"sqlite constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, ErrorClassPermanent},
		{"domain", ErrNegativeQuantity, ErrorClassPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestNotFoundIdentity(t *testing.T) {
	if !errors.Is(ErrUserNotFound, ErrNotFound) {
		t.Error("ErrUserNotFound should match ErrNotFound")
	}
	if !errors.Is(ErrProductNotFound, ErrNotFound) {
		t.Error("ErrProductNotFound should match ErrNotFound")
	}
	if errors.Is(ErrProductNotFound, ErrUserNotFound) {
		t.Error("ErrProductNotFound should not match ErrUserNotFound")
	}
}

func TestIOErrorKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := IOError("set", "users", cause)

	if !errors.Is(err, ErrStorageIO) {
		t.Errorf("Expected ErrStorageIO, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Expected cause to be preserved, got %v", err)
	}
	if errors.Is(err, ErrStorageWrite) {
		t.Error("IO error should not match ErrStorageWrite")
	}
}
