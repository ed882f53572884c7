package store

import (
	"context"
	"fmt"

	"github.com/safar/go-inventory-store/internal/auth"
	"github.com/safar/go-inventory-store/internal/codec"
	"github.com/safar/go-inventory-store/internal/models"
)

type SessionRepository interface {
	SaveSession(ctx context.Context, user models.User, token string) error
	CurrentUser(ctx context.Context) (*models.User, bool, error)
	CurrentToken(ctx context.Context) (string, bool, error)
	IsActive(ctx context.Context) (bool, error)
	Clear(ctx context.Context) error
}

// SessionStore keeps the logged-in identity. The user is stored as a copy
// taken at login; later UserStore updates do not reach it until the next
// SaveSession.
type SessionStore struct {
	s *Store
}

var _ SessionRepository = (*SessionStore)(nil)

func (ss *SessionStore) SaveSession(ctx context.Context, user models.User, token string) error {
	raw, err := codec.EncodeOne(KeyCurrentUser, user)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	unlock := ss.s.locks.lock(KeyAuthToken, KeyCurrentUser)
	defer unlock()

	if err := ss.s.kv.SetMany(ctx, map[string]string{
		KeyAuthToken:   token,
		KeyCurrentUser: raw,
	}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (ss *SessionStore) CurrentUser(ctx context.Context) (*models.User, bool, error) {
	raw, ok, err := ss.s.kv.Get(ctx, KeyCurrentUser)
	if err != nil {
		return nil, false, fmt.Errorf("current user: %w", err)
	}
	user, ok := codec.DecodeOne[models.User](ss.s.logger, KeyCurrentUser, raw, ok)
	if !ok {
		return nil, false, nil
	}
	return &user, true, nil
}

func (ss *SessionStore) CurrentToken(ctx context.Context) (string, bool, error) {
	token, ok, err := ss.s.kv.Get(ctx, KeyAuthToken)
	if err != nil {
		return "", false, fmt.Errorf("current token: %w", err)
	}
	if !ok || token == "" {
		return "", false, nil
	}
	return token, true, nil
}

// IsActive reports whether both the token and the user snapshot are present.
func (ss *SessionStore) IsActive(ctx context.Context) (bool, error) {
	_, hasToken, err := ss.CurrentToken(ctx)
	if err != nil || !hasToken {
		return false, err
	}
	_, hasUser, err := ss.CurrentUser(ctx)
	if err != nil {
		return false, err
	}
	return hasUser, nil
}

func (ss *SessionStore) Clear(ctx context.Context) error {
	unlock := ss.s.locks.lock(KeyAuthToken, KeyCurrentUser)
	defer unlock()

	if err := ss.s.kv.RemoveMany(ctx, KeyAuthToken, KeyCurrentUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Login authenticates, mints a session token and saves the session.
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.Users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	return s.startSession(ctx, user)
}

// Register creates the user and logs them in.
func (s *Store) Register(ctx context.Context, email, fullName, password string) (*models.User, string, error) {
	user, err := s.Users.Create(ctx, email, fullName, password)
	if err != nil {
		return nil, "", err
	}
	return s.startSession(ctx, user)
}

func (s *Store) Logout(ctx context.Context) error {
	return s.Session.Clear(ctx)
}

func (s *Store) startSession(ctx context.Context, user *models.User) (*models.User, string, error) {
	token := auth.GenerateSessionToken()
	if err := s.Session.SaveSession(ctx, *user, token); err != nil {
		return nil, "", err
	}
	return user, token, nil
}
