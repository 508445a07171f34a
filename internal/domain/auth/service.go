package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/storyverse/internal/persist"
	"github.com/rpggio/storyverse/internal/repository"
)

// Service tracks the one signed-in user of the session. The user is
// persisted so a restart resumes the session.
type Service struct {
	gw      repository.Gateway
	adapter *persist.Adapter
	logger  *slog.Logger
	now     func() time.Time

	mu   sync.RWMutex
	user *User

	inflight atomic.Int32
}

// NewService creates an auth service hydrated from adapter. gw and adapter may be nil.
func NewService(gw repository.Gateway, adapter *persist.Adapter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Service{gw: gw, adapter: adapter, logger: logger, now: time.Now}
	if adapter != nil {
		s.user = persist.Load[*User](adapter, persist.KeyCurrentUser, nil)
	}
	return s
}

// Login signs in with email and password. The account is synthesized from
// the email; no credential store exists behind the gateway.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(email)
	local, _, ok := strings.Cut(email, "@")
	if !ok || local == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}
	if err := s.call(ctx, "auth.login"); err != nil {
		return User{}, fmt.Errorf("logging in: %w", err)
	}

	user := User{
		ID:          uuid.NewString(),
		Email:       email,
		Username:    local,
		DisplayName: local,
		CreatedAt:   s.now(),
	}
	if err := s.set(&user); err != nil {
		return user, err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, nil
}

// Signup creates an account and signs it in.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (User, error) {
	email := strings.TrimSpace(req.Email)
	if !strings.Contains(email, "@") || req.Password == "" {
		return User{}, ErrInvalidCredentials
	}
	if strings.TrimSpace(req.Username) == "" {
		return User{}, fmt.Errorf("username is required: %w", ErrInvalidInput)
	}
	if err := s.call(ctx, "auth.signup"); err != nil {
		return User{}, fmt.Errorf("signing up: %w", err)
	}

	display := req.DisplayName
	if display == "" {
		display = req.Username
	}
	user := User{
		ID:          uuid.NewString(),
		Email:       email,
		Username:    req.Username,
		DisplayName: display,
		IsCreator:   req.IsCreator,
		CreatedAt:   s.now(),
	}
	if err := s.set(&user); err != nil {
		return user, err
	}
	s.logger.Info("user signed up", "user_id", user.ID)
	return user, nil
}

// Logout clears the current user.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.call(ctx, "auth.logout"); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	return s.set(nil)
}

// UpdateProfile patches the current user's profile.
func (s *Service) UpdateProfile(ctx context.Context, patch Patch) (User, error) {
	if !s.IsAuthenticated() {
		return User{}, ErrNotAuthenticated
	}
	if err := s.call(ctx, "auth.update_profile"); err != nil {
		return User{}, fmt.Errorf("updating profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		// Logged out while the call was in flight.
		return User{}, ErrNotAuthenticated
	}
	user := *s.user
	if patch.DisplayName != nil {
		user.DisplayName = *patch.DisplayName
	}
	if patch.Avatar != nil {
		user.Avatar = *patch.Avatar
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
	if patch.IsCreator != nil {
		user.IsCreator = *patch.IsCreator
	}
	s.user = &user
	return user, s.save()
}

// CurrentUser returns the signed-in user.
func (s *Service) CurrentUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// IsAuthenticated reports whether a user is signed in.
func (s *Service) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// IsLoading reports whether an auth operation is in flight.
func (s *Service) IsLoading() bool {
	return s.inflight.Load() > 0
}

func (s *Service) call(ctx context.Context, op string) error {
	s.inflight.Add(1)
	defer s.inflight.Add(-1)
	if s.gw == nil {
		return ctx.Err()
	}
	return s.gw.Call(ctx, op)
}

func (s *Service) set(user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	return s.save()
}

// save writes the current user through. Callers hold mu.
func (s *Service) save() error {
	if s.adapter == nil {
		return nil
	}
	var err error
	if s.user == nil {
		err = s.adapter.Remove(persist.KeyCurrentUser)
	} else {
		err = s.adapter.Save(persist.KeyCurrentUser, s.user)
	}
	if err != nil {
		s.logger.Error("failed to persist current user", "error", err)
		return fmt.Errorf("persisting user: %w", err)
	}
	return nil
}
