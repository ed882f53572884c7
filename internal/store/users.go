package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/safar/go-inventory-store/internal/auth"
	"github.com/safar/go-inventory-store/internal/codec"
	"github.com/safar/go-inventory-store/internal/database"
	"github.com/safar/go-inventory-store/internal/models"
)

type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, email, fullName, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, bool, error)
	GetByEmail(ctx context.Context, email string) (*models.User, bool, error)
	Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
}

type UserStore struct {
	s *Store

	dummyOnce sync.Once
	dummy     string
}

var _ UserRepository = (*UserStore)(nil)

func (u *UserStore) List(ctx context.Context) ([]models.User, error) {
	users, err := load[models.User](ctx, u.s, KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (u *UserStore) Create(ctx context.Context, email, fullName, password string) (*models.User, error) {
	unlock := u.s.locks.lock(KeyUsers)
	defer unlock()

	users, err := load[models.User](ctx, u.s, KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	email = strings.TrimSpace(email)
	if indexByEmail(users, email, "") >= 0 {
		return nil, database.ErrDuplicateEmail
	}

	hash, err := u.s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	user := models.User{
		ID:           u.s.newID(),
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
		CreatedAt:    u.s.now(),
	}
	users = append(users, user)

	if err := u.save(ctx, users); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	u.s.logger.Info("user created", "user_id", user.ID)
	return &user, nil
}

// Authenticate returns ErrInvalidCredentials for both an unknown email and a
// wrong password.
func (u *UserStore) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	users, err := load[models.User](ctx, u.s, KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	i := indexByEmail(users, strings.TrimSpace(email), "")
	if i < 0 {
		// Burn comparable work so response time does not reveal the miss.
		auth.VerifyPassword(password, u.dummyDigest())
		return nil, database.ErrInvalidCredentials
	}
	if !auth.VerifyPassword(password, users[i].PasswordHash) {
		return nil, database.ErrInvalidCredentials
	}

	user := users[i]
	return &user, nil
}

func (u *UserStore) GetByID(ctx context.Context, id string) (*models.User, bool, error) {
	users, err := load[models.User](ctx, u.s, KeyUsers)
	if err != nil {
		return nil, false, fmt.Errorf("get user: %w", err)
	}
	for i := range users {
		if users[i].ID == id {
			user := users[i]
			return &user, true, nil
		}
	}
	return nil, false, nil
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	users, err := load[models.User](ctx, u.s, KeyUsers)
	if err != nil {
		return nil, false, fmt.Errorf("get user by email: %w", err)
	}
	i := indexByEmail(users, strings.TrimSpace(email), "")
	if i < 0 {
		return nil, false, nil
	}
	user := users[i]
	return &user, true, nil
}

func (u *UserStore) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	unlock := u.s.locks.lock(KeyUsers)
	defer unlock()

	users, err := load[models.User](ctx, u.s, KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	i := -1
	for j := range users {
		if users[j].ID == id {
			i = j
			break
		}
	}
	if i < 0 {
		return nil, database.ErrUserNotFound
	}

	user := users[i]
	if upd.Email != nil {
		email := strings.TrimSpace(*upd.Email)
		if indexByEmail(users, email, id) >= 0 {
			return nil, database.ErrDuplicateEmail
		}
		user.Email = email
	}
	if upd.FullName != nil {
		user.FullName = strings.TrimSpace(*upd.FullName)
	}
	if upd.Password != nil {
		hash, err := u.s.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		user.PasswordHash = hash
	}
	users[i] = user

	if err := u.save(ctx, users); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &user, nil
}

func (u *UserStore) save(ctx context.Context, users []models.User) error {
	raw, err := codec.Encode(KeyUsers, users)
	if err != nil {
		return err
	}
	return u.s.kv.Set(ctx, KeyUsers, raw)
}

// indexByEmail finds a case-insensitive email match, ignoring the user with
// id skipID.
func indexByEmail(users []models.User, email, skipID string) int {
	for i := range users {
		if users[i].ID != skipID && strings.EqualFold(users[i].Email, email) {
			return i
		}
	}
	return -1
}

// dummyDigest is a digest from the configured hasher that no login matches.
// Verifying against it costs the same as verifying a real account.
func (u *UserStore) dummyDigest() string {
	u.dummyOnce.Do(func() {
		digest, err := u.s.hasher.Hash(u.s.newID())
		if err != nil {
			u.s.logger.Warn("dummy digest", "error", err)
		}
		u.dummy = digest
	})
	return u.dummy
}
