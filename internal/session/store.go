// Package session holds the authenticated-identity state of the client:
// access token, refresh token, and current user. State is hydrated from
// persistent storage at startup, so Authenticated is a valid initial state
// across process restarts.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/joss/flashmart/internal/kvstore"
	"github.com/joss/flashmart/internal/logging"
	"github.com/joss/flashmart/internal/transport"
)

// Store owns the Session. All mutations of the three fields (token,
// refresh token, user) are atomic: persisted in one transaction, applied
// to memory under one lock.
type Store struct {
	kv  *kvstore.Store
	api *transport.Client
	log *logging.Logger

	mu            sync.Mutex
	token         string
	refreshToken  string
	user          *User
	expiredNotice bool
}

func NewStore(kv *kvstore.Store, api *transport.Client) *Store {
	s := &Store{
		kv:  kv,
		api: api,
		log: logging.New("session"),
	}
	s.hydrate()
	return s
}

// hydrate restores the persisted session. Malformed stored data is treated
// as anonymous, never a fatal error.
func (s *Store) hydrate() {
	ctx := context.Background()

	if token, err := s.kv.Get(ctx, transport.KeyToken); err == nil {
		s.token = token
	}
	if refresh, err := s.kv.Get(ctx, transport.KeyRefreshToken); err == nil {
		s.refreshToken = refresh
	}
	s.user = s.loadUser(ctx)
}

func (s *Store) loadUser(ctx context.Context) *User {
	raw, err := s.kv.Get(ctx, transport.KeyUser)
	if err != nil {
		return nil
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.log.Warn("load_user", nil, err)
		return nil
	}
	return &u
}

// IsAuthenticated reports whether a token is held. The user field does not
// participate: it may be cleared independently.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// Token returns the current access token, empty when anonymous.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// CurrentUser returns a copy of the stored user, or nil.
func (s *Store) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// LoginRequest carries login credentials. Well-formedness (non-empty
// email/password) is the caller's responsibility.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest carries registration details.
type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// AuthResult is the normalized outcome of login/register.
type AuthResult struct {
	Token        string
	RefreshToken string
	TokenType    string
	User         User
}

// Login authenticates against the backend. On success the session
// transitions to Authenticated; on failure state is unchanged and the
// error surfaces to the caller unmodified.
func (s *Store) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	raw, err := s.api.Post(ctx, "/auth/login", req)
	if err != nil {
		return nil, err
	}
	return s.applyAuthResponse(ctx, raw, req.Email)
}

// Register creates an account; same contract as Login.
func (s *Store) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	raw, err := s.api.Post(ctx, "/auth/register", req)
	if err != nil {
		return nil, err
	}
	return s.applyAuthResponse(ctx, raw, req.Email)
}

func (s *Store) applyAuthResponse(ctx context.Context, raw json.RawMessage, submittedEmail string) (*AuthResult, error) {
	resp, err := unwrapAuthResponse(raw)
	if err != nil {
		return nil, err
	}

	user := NormalizeUser(resp.User, submittedEmail)
	if err := s.SetAuth(ctx, resp.AccessToken, resp.RefreshToken, &user); err != nil {
		return nil, err
	}

	s.log.Info("authenticated", map[string]interface{}{"user_id": user.ID})
	return &AuthResult{
		Token:        resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		User:         user,
	}, nil
}

// SetAuth atomically persists token(s) and user and applies them to
// memory. A nil user means "keep the last persisted user": supports token
// refresh without re-fetching the profile. An empty refresh token leaves
// the previous one in place.
func (s *Store) SetAuth(ctx context.Context, token, refreshToken string, user *User) error {
	pairs := map[string]string{transport.KeyToken: token}
	if refreshToken != "" {
		pairs[transport.KeyRefreshToken] = refreshToken
	}
	if user != nil {
		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		pairs[transport.KeyUser] = string(data)
	}
	if err := s.kv.SetMany(ctx, pairs); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if refreshToken != "" {
		s.refreshToken = refreshToken
	}
	if user != nil {
		u := *user
		s.user = &u
	} else {
		s.user = s.loadUser(ctx)
	}
	return nil
}

// Logout clears the session from memory and storage. Idempotent: logging
// out while anonymous is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.kv.DeleteMany(ctx, transport.KeyToken, transport.KeyRefreshToken, transport.KeyUser); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.refreshToken = ""
	s.user = nil
	return nil
}

// HandleSessionExpired reacts to the transport's session-expired signal:
// the session becomes Anonymous and a one-shot notice is raised for the
// UI. The transport has already cleared persisted credentials.
func (s *Store) HandleSessionExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.refreshToken = ""
	s.user = nil
	s.expiredNotice = true
}

// ConsumeExpiredNotice returns whether a session-expired notice is
// pending, clearing it so it is shown exactly once.
func (s *Store) ConsumeExpiredNotice() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.expiredNotice
	s.expiredNotice = false
	return pending
}

// ForgotPasswordRequest asks for a password-reset OTP.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// VerifyOTPRequest completes a password reset.
type VerifyOTPRequest struct {
	Email                string `json:"email"`
	OTP                  string `json:"otp"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// ForgotPassword requests a reset OTP; returns the backend's message.
func (s *Store) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (string, error) {
	raw, err := s.api.Post(ctx, "/auth/forgot-password", req)
	if err != nil {
		return "", err
	}
	return decodeMessage(raw)
}

// VerifyOTPResetPassword verifies the OTP and sets the new password.
func (s *Store) VerifyOTPResetPassword(ctx context.Context, req VerifyOTPRequest) (string, error) {
	raw, err := s.api.Post(ctx, "/auth/verify-otp-reset-password", req)
	if err != nil {
		return "", err
	}
	return decodeMessage(raw)
}

func decodeMessage(raw json.RawMessage) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
