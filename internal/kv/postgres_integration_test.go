//go:build integration

package kv

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) (*SQL, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:14-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	postgres, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	host, err := postgres.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := postgres.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	s, err := NewPostgres(ctx, db)
	if err != nil {
		t.Fatalf("Failed to prepare kv table: %v", err)
	}

	cleanup := func() {
		if err := s.Close(); err != nil {
			t.Logf("Failed to close database: %v", err)
		}
		if err := postgres.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return s, cleanup
}

func TestPostgresContract(t *testing.T) {
	s, cleanup := setupPostgres(t)
	defer cleanup()

	runContract(t, s)
}

func TestPostgresConcurrentSetMany(t *testing.T) {
	s, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	concurrency := 10
	var wg sync.WaitGroup
	errs := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.SetMany(ctx, map[string]string{
				"products":     fmt.Sprintf("[%d]", i),
				"transactions": fmt.Sprintf("[%d]", i),
			})
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("SetMany: %v", err)
		}
	}

	products, _, err := s.Get(ctx, "products")
	if err != nil {
		t.Fatalf("Get products: %v", err)
	}
	transactions, _, err := s.Get(ctx, "transactions")
	if err != nil {
		t.Fatalf("Get transactions: %v", err)
	}
	if products != transactions {
		t.Errorf("Expected paired writes, got products=%s transactions=%s", products, transactions)
	}
}
