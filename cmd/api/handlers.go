package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/safar/go-inventory-store/internal/auth"
	"github.com/safar/go-inventory-store/internal/database"
	"github.com/safar/go-inventory-store/internal/models"
	"github.com/safar/go-inventory-store/internal/store"
	"github.com/safar/go-inventory-store/internal/validation"
	"github.com/shopspring/decimal"
)

type api struct {
	store  *store.Store
	logger *slog.Logger
}

func newAPI(s *store.Store, logger *slog.Logger) *api {
	return &api{store: s, logger: logger}
}

func (a *api) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/register", a.register)
	r.Post("/login", a.login)
	r.Post("/logout", a.logout)
	r.Get("/session", a.session)

	r.Group(func(r chi.Router) {
		r.Use(a.requireSession)

		r.Get("/users", a.listUsers)
		r.Get("/products", a.listProducts)
		r.Post("/products", a.createProduct)
		r.Get("/products/{id}", a.getProduct)
		r.Patch("/products/{id}", a.updateProduct)
		r.Delete("/products/{id}", a.deleteProduct)
		r.Post("/products/{id}/adjust", a.adjustProduct)
		r.Get("/transactions", a.listTransactions)
		r.Get("/maintenance/info", a.storageInfo)
	})

	return r
}

type userView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}

func viewOf(u models.User) userView {
	return userView{ID: u.ID, Email: u.Email, FullName: u.FullName, CreatedAt: u.CreatedAt}
}

type sessionKey struct{}

func currentUser(ctx context.Context) models.User {
	user, _ := ctx.Value(sessionKey{}).(models.User)
	return user
}

func (a *api) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok, err := a.store.Session.CurrentUser(r.Context())
		if err != nil {
			a.fail(w, err)
			return
		}
		if !ok {
			respondError(w, http.StatusUnauthorized, "Not logged in")
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, *user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *api) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		FullName string `json:"fullName"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validation.UserForm(req.Email, req.FullName); !errs.Valid() {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
		return
	}
	if v := auth.ValidatePasswordStrength(req.Password); !v.Valid {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"errors": validation.FormErrors{"password": v.Reason},
		})
		return
	}

	user, token, err := a.store.Register(r.Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		a.fail(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"user": viewOf(*user), "token": token})
}

func (a *api) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := a.store.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": viewOf(*user), "token": token})
}

func (a *api) logout(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Logout(r.Context()); err != nil {
		a.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) session(w http.ResponseWriter, r *http.Request) {
	user, ok, err := a.store.Session.CurrentUser(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	active, err := a.store.Session.IsActive(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}

	resp := map[string]any{"active": active}
	if ok {
		resp["user"] = viewOf(*user)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (a *api) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.store.Users.List(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, viewOf(u))
	}
	respondJSON(w, http.StatusOK, views)
}

func (a *api) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.store.Products.List(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (a *api) createProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SKU      string `json:"sku"`
		Name     string `json:"name"`
		Price    string `json:"price"`
		Quantity string `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validation.ProductForm(req.SKU, req.Name, req.Price, req.Quantity); !errs.Valid() {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
		return
	}
	price, _ := decimal.NewFromString(req.Price)
	quantity, _ := strconv.Atoi(req.Quantity)

	user := currentUser(r.Context())
	product, err := a.store.Products.Create(r.Context(), req.SKU, req.Name, price, quantity, user.ID)
	if err != nil {
		a.fail(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (a *api) getProduct(w http.ResponseWriter, r *http.Request) {
	product, ok, err := a.store.Products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (a *api) updateProduct(w http.ResponseWriter, r *http.Request) {
	var upd models.ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// createdBy is set once at creation.
	upd.CreatedBy = nil

	product, err := a.store.Products.Update(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		a.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (a *api) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) adjustProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user := currentUser(r.Context())
	product, err := a.store.Products.AdjustQuantity(r.Context(), chi.URLParam(r, "id"), req.Delta, user.ID)
	if err != nil {
		a.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (a *api) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		txs []models.Transaction
		err error
	)
	switch {
	case q.Get("product_id") != "":
		txs, err = a.store.Transactions.ListByProduct(r.Context(), q.Get("product_id"))
	case q.Get("user_id") != "":
		txs, err = a.store.Transactions.ListByUser(r.Context(), q.Get("user_id"))
	default:
		txs, err = a.store.Transactions.List(r.Context())
	}
	if err != nil {
		a.fail(w, err)
		return
	}

	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = store.DefaultPageSize
	}

	if q.Has("cursor") {
		page, err := store.PageTransactions(txs, q.Get("cursor"), pageSize)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid cursor")
			return
		}
		respondJSON(w, http.StatusOK, page)
		return
	}

	page, _ := strconv.Atoi(q.Get("page"))
	respondJSON(w, http.StatusOK, store.Paginate(txs, page, pageSize))
}

func (a *api) storageInfo(w http.ResponseWriter, r *http.Request) {
	info, err := a.store.Maintenance.Info(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

// fail maps a store error to its HTTP status. Unexpected errors are logged
// and reported without detail.
func (a *api) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrDuplicateEmail), errors.Is(err, database.ErrDuplicateSKU):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrNegativeQuantity),
		errors.Is(err, database.ErrNegativePrice),
		errors.Is(err, database.ErrZeroAdjustment),
		errors.Is(err, database.ErrQuantityOverflow):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		a.logger.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
