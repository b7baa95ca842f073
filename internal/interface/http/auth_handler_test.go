package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewire/tradewire-api/internal/domain/entity"
	"github.com/tradewire/tradewire-api/pkg/helpers"
)

func TestRegisterLoginRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"email":    "alice@example.com",
		"password": "longenough",
		"name":     "Alice",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	ck := sessionCookie(w)
	require.NotNil(t, ck, "register must set a session cookie")
	assert.True(t, ck.HttpOnly)
	assert.Positive(t, ck.MaxAge)

	claims := env.tokens.Verify(ck.Value)
	require.NotNil(t, claims)
	assert.Equal(t, "alice@example.com", claims.Email)

	// A welcome email job lands on the queue.
	assert.Equal(t, 1, env.emails.count())

	// The cookie authenticates subsequent requests.
	w = env.do(t, http.MethodGet, "/api/auth/check", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, true, data["authenticated"])

	// Login with the same credentials issues a fresh session.
	w = env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "alice@example.com",
		"password": "longenough",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, sessionCookie(w))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{"email": "alice@example.com", "password": "longenough", "name": "Alice"}

	w := env.do(t, http.MethodPost, "/api/auth/register", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/register", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "user already exists")
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing email", map[string]any{"password": "longenough", "name": "Alice"}},
		{"bad email", map[string]any{"email": "nope", "password": "longenough", "name": "Alice"}},
		{"short password", map[string]any{"email": "a@b.com", "password": "short", "name": "Alice"}},
		{"missing name", map[string]any{"email": "a@b.com", "password": "longenough"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/auth/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, sessionCookie(w))
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"email": "alice@example.com", "password": "longenough", "name": "Alice",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Wrong password and unknown email must be indistinguishable.
	for _, body := range []map[string]any{
		{"email": "alice@example.com", "password": "wrongpass"},
		{"email": "nobody@example.com", "password": "longenough"},
	} {
		w := env.do(t, http.MethodPost, "/api/auth/login", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid credentials")
		assert.Nil(t, sessionCookie(w))
	}
}

func TestCheckWithoutOrWithBadCookie(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/auth/check", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	bad := &http.Cookie{Name: helpers.SessionCookieName, Value: "garbage"}
	w = env.do(t, http.MethodGet, "/api/auth/check", nil, bad)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserRole(t *testing.T) {
	env := newTestEnv(t)
	env.users.add("bob@example.com", "Bob", entity.RolePremium)
	ck := env.cookieFor(t, "bob@example.com", "Bob")

	w := env.do(t, http.MethodGet, "/api/auth/user-role", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "premium", data["role"])
	assert.Equal(t, "bob@example.com", data["email"])

	// No cookie is 401, a valid token for a deleted account is 404.
	w = env.do(t, http.MethodGet, "/api/auth/user-role", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	env.users.remove("bob@example.com")
	w = env.do(t, http.MethodGet, "/api/auth/user-role", nil, ck)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	ck := sessionCookie(w)
	require.NotNil(t, ck)
	assert.Empty(t, ck.Value)
	assert.True(t, ck.MaxAge < 0 || strings.Contains(w.Header().Get("Set-Cookie"), "Max-Age=0"))
}
