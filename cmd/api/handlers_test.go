package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/safar/go-inventory-store/internal/kv"
	"github.com/safar/go-inventory-store/internal/logging"
	"github.com/safar/go-inventory-store/internal/models"
	"github.com/safar/go-inventory-store/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := store.New(kv.NewMemory(), store.Options{Logger: logging.Discard()})
	srv := httptest.NewServer(newAPI(s, logging.Discard()).routes())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestInventoryFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/products", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/register", map[string]string{
		"email": "a@x.com", "fullName": "Alice", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	registered := decode[map[string]any](t, resp)
	assert.Len(t, registered["token"], 64)
	assert.NotContains(t, registered["user"], "passwordHash")

	resp = do(t, srv, http.MethodPost, "/products", map[string]string{
		"sku": "SKU1", "name": "Widget", "price": "9.99", "quantity": "10",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	product := decode[models.Product](t, resp)
	assert.Equal(t, "SKU1", product.SKU)
	assert.Equal(t, "9.99", product.Price.String())

	resp = do(t, srv, http.MethodPost, "/products/"+product.ID+"/adjust", map[string]int{"delta": 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 15, decode[models.Product](t, resp).Quantity)

	resp = do(t, srv, http.MethodPost, "/products/"+product.ID+"/adjust", map[string]int{"delta": -20})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/transactions?page=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[store.OffsetPage[models.Transaction]](t, resp)
	require.Len(t, page.Items, 2)
	assert.Equal(t, models.TransactionIncrease, page.Items[0].Type)
	assert.Equal(t, store.DefaultPageSize, page.PageSize)

	resp = do(t, srv, http.MethodGet, "/maintenance/info", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, store.Info{Users: 1, Products: 1, Transactions: 2}, decode[store.Info](t, resp))

	resp = do(t, srv, http.MethodPost, "/products", map[string]string{
		"sku": "sku1", "name": "Again", "price": "1", "quantity": "1",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, srv, http.MethodDelete, "/products/"+product.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, srv, http.MethodGet, "/products/"+product.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLoginOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/register", map[string]string{
		"email": "a@x.com", "fullName": "Alice", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/session", nil)
	assert.Equal(t, false, decode[map[string]any](t, resp)["active"])

	resp = do(t, srv, http.MethodPost, "/login", map[string]string{"email": "a@x.com", "password": "nope12"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/login", map[string]string{"email": "a@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/session", nil)
	assert.Equal(t, true, decode[map[string]any](t, resp)["active"])
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/register", map[string]string{
		"email": "nope", "fullName": "Alice", "password": "secret1",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[map[string]map[string]string](t, resp)
	assert.Equal(t, "Please enter a valid email address", body["errors"]["email"])

	resp = do(t, srv, http.MethodPost, "/register", map[string]string{
		"email": "a@x.com", "fullName": "Alice", "password": "short",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body = decode[map[string]map[string]string](t, resp)
	assert.Equal(t, "Password must be at least 6 characters long", body["errors"]["password"])
}
