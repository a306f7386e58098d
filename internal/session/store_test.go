package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/flashmart/internal/kvstore"
	"github.com/joss/flashmart/internal/transport"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) (*Store, *kvstore.Store, *transport.Client) {
	t.Helper()
	kv, err := kvstore.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api := transport.New(srv.URL, kv, 5*time.Second)
	return NewStore(kv, api), kv, api
}

func authHandler(t *testing.T, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(body))
	}
}

func TestLoginPersistsSession(t *testing.T) {
	s, kv, _ := newTestStore(t, authHandler(t,
		`{"access_token":"tok","refresh_token":"ref","token_type":"bearer","user":{"id":"u1","name":"Ayu","email":"ayu@example.com"}}`))
	ctx := context.Background()

	assert.False(t, s.IsAuthenticated())

	res, err := s.Login(ctx, LoginRequest{Email: "ayu@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, User{ID: "u1", Name: "Ayu", Email: "ayu@example.com"}, res.User)

	assert.True(t, s.IsAuthenticated())
	require.NotNil(t, s.CurrentUser())
	assert.Equal(t, "Ayu", s.CurrentUser().Name)

	// All three fields persisted
	tok, err := kv.Get(ctx, transport.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
	ref, err := kv.Get(ctx, transport.KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "ref", ref)
	rawUser, err := kv.Get(ctx, transport.KeyUser)
	require.NoError(t, err)
	var u User
	require.NoError(t, json.Unmarshal([]byte(rawUser), &u))
	assert.Equal(t, "u1", u.ID)
}

func TestLoginEnvelopedResponse(t *testing.T) {
	s, _, _ := newTestStore(t, authHandler(t,
		`{"data":{"access_token":"tok","token_type":"bearer","user":{"user_id":7,"full_name":"Budi S"}}}`))

	res, err := s.Login(context.Background(), LoginRequest{Email: "budi@example.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, User{ID: "7", Name: "Budi S", Email: "budi@example.com"}, res.User)
}

func TestLoginUserBesideEnvelope(t *testing.T) {
	s, _, _ := newTestStore(t, authHandler(t,
		`{"data":{"access_token":"tok","token_type":"bearer"},"user":{"id":3,"name":"Citra"}}`))

	res, err := s.Login(context.Background(), LoginRequest{Email: "citra@example.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "3", res.User.ID)
	assert.Equal(t, "Citra", res.User.Name)
}

func TestLoginFailureLeavesStateUnchanged(t *testing.T) {
	s, kv, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid credentials"}`))
	})
	ctx := context.Background()

	_, err := s.Login(ctx, LoginRequest{Email: "a@b.com", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", err.Error())

	assert.False(t, s.IsAuthenticated())
	_, err = kv.Get(ctx, transport.KeyToken)
	assert.True(t, kvstore.IsNotFound(err))
}

func TestRegister(t *testing.T) {
	s, _, _ := newTestStore(t, authHandler(t,
		`{"access_token":"tok","token_type":"bearer","user":{"id":"u9","name":"Dewi"}}`))

	res, err := s.Register(context.Background(), RegisterRequest{
		Name: "Dewi", Email: "dewi@example.com", Password: "p", PasswordConfirmation: "p",
	})
	require.NoError(t, err)
	assert.Equal(t, "dewi@example.com", res.User.Email)
	assert.True(t, s.IsAuthenticated())
}

func TestLogoutIdempotent(t *testing.T) {
	s, kv, _ := newTestStore(t, authHandler(t,
		`{"access_token":"tok","token_type":"bearer","user":{"id":"u1"}}`))
	ctx := context.Background()

	_, err := s.Login(ctx, LoginRequest{Email: "a@b.com", Password: "p"})
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.CurrentUser())
	_, err = kv.Get(ctx, transport.KeyToken)
	assert.True(t, kvstore.IsNotFound(err))

	// Logging out again is a no-op with no error
	require.NoError(t, s.Logout(ctx))
}

func TestSetAuthKeepsPersistedUser(t *testing.T) {
	s, kv, _ := newTestStore(t, authHandler(t, `{}`))
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, transport.KeyUser, `{"id":"u1","name":"Ayu","email":"ayu@example.com"}`))

	// Token refresh without a user payload re-reads the stored profile
	require.NoError(t, s.SetAuth(ctx, "new-token", "", nil))

	assert.True(t, s.IsAuthenticated())
	require.NotNil(t, s.CurrentUser())
	assert.Equal(t, "Ayu", s.CurrentUser().Name)
}

func TestHydrationAcrossRestart(t *testing.T) {
	kv, err := kvstore.Open(t.TempDir())
	require.NoError(t, err)
	defer kv.Close()
	ctx := context.Background()

	require.NoError(t, kv.SetMany(ctx, map[string]string{
		transport.KeyToken: "tok",
		transport.KeyUser:  `{"id":"u1","name":"Ayu","email":"a@b.com"}`,
	}))

	api := transport.New("http://unused", kv, time.Second)
	s := NewStore(kv, api)

	// Authenticated is a valid initial state
	assert.True(t, s.IsAuthenticated())
	require.NotNil(t, s.CurrentUser())
	assert.Equal(t, "u1", s.CurrentUser().ID)
}

func TestHydrationMalformedUser(t *testing.T) {
	kv, err := kvstore.Open(t.TempDir())
	require.NoError(t, err)
	defer kv.Close()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, transport.KeyToken, "tok"))
	require.NoError(t, kv.Set(ctx, transport.KeyUser, "{not json"))

	s := NewStore(kv, transport.New("http://unused", kv, time.Second))
	assert.True(t, s.IsAuthenticated())
	assert.Nil(t, s.CurrentUser())
}

func TestExpiredNoticeOneShot(t *testing.T) {
	s, kv, api := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{}`))
	})
	ctx := context.Background()

	api.OnSessionExpired(s.HandleSessionExpired)
	require.NoError(t, kv.Set(ctx, transport.KeyToken, "tok"))
	require.NoError(t, s.SetAuth(ctx, "tok", "", nil))

	_, err := api.Get(ctx, "/products")
	require.Error(t, err)

	assert.False(t, s.IsAuthenticated())
	assert.True(t, s.ConsumeExpiredNotice())
	// Consumed exactly once
	assert.False(t, s.ConsumeExpiredNotice())
}

func TestForgotPassword(t *testing.T) {
	s, _, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/forgot-password", r.URL.Path)
		w.Write([]byte(`{"message":"OTP sent"}`))
	})

	msg, err := s.ForgotPassword(context.Background(), ForgotPasswordRequest{Email: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, "OTP sent", msg)
}

func TestVerifyOTPResetPassword(t *testing.T) {
	s, _, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/verify-otp-reset-password", r.URL.Path)
		w.Write([]byte(`{"message":"password updated"}`))
	})

	msg, err := s.VerifyOTPResetPassword(context.Background(), VerifyOTPRequest{
		Email: "a@b.com", OTP: "123456", Password: "p", PasswordConfirmation: "p",
	})
	require.NoError(t, err)
	assert.Equal(t, "password updated", msg)
}

func TestNormalizeUser(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		fallback string
		want     User
	}{
		{
			"alternate field names",
			`{"user_id":5,"full_name":"A B"}`,
			"a@b.com",
			User{ID: "5", Name: "A B", Email: "a@b.com"},
		},
		{
			"canonical fields win",
			`{"id":"u1","name":" Ayu ","email":" ayu@x.com "}`,
			"other@x.com",
			User{ID: "u1", Name: "Ayu", Email: "ayu@x.com"},
		},
		{
			"missing user object",
			`null`,
			"fb@x.com",
			User{Email: "fb@x.com"},
		},
		{
			"empty email falls back",
			`{"id":1,"name":"N","email":""}`,
			"fb@x.com",
			User{ID: "1", Name: "N", Email: "fb@x.com"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeUser(json.RawMessage(tt.raw), tt.fallback)
			assert.Equal(t, tt.want, got)
		})
	}
}
