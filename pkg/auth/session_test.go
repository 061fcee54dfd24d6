package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionValues_RejectsNonStrings(t *testing.T) {
	s := sessions.NewSession(nil, AdminSessionName)
	s.Values[sessionUserIDKey] = uuid.New()

	_, err := sessionValues(s)
	assert.Error(t, err)
}

func TestNewSessionStore_CookieOptions(t *testing.T) {
	store := NewSessionStore(nil, securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32), true)

	assert.Equal(t, "/api/admin", store.options.Path)
	assert.True(t, store.options.HttpOnly)
	assert.True(t, store.options.Secure)
	assert.Equal(t, http.SameSiteStrictMode, store.options.SameSite)
	assert.Less(t, store.idle.Seconds(), float64(store.options.MaxAge))
}

// Integration tests, skipped unless REDIS_URL is set.
func TestRedisStoreIntegration(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}
	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	store := NewSessionStore(client, securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32), false)
	admin := Principal{UserID: uuid.New(), Email: "admin@spicyjump.io", Role: RoleAdmin}

	login := func(t *testing.T) *http.Cookie {
		t.Helper()
		w := httptest.NewRecorder()
		require.NoError(t, StartAdminSession(w, httptest.NewRequest(http.MethodPost, "/api/admin/session", nil), store, admin))
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		return cookies[0]
	}
	withCookie := func(c *http.Cookie) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		r.AddCookie(c)
		return r
	}

	t.Run("round trip", func(t *testing.T) {
		c := login(t)
		got, err := AdminFromSession(withCookie(c), store)
		require.NoError(t, err)
		assert.Equal(t, admin, got)
	})

	t.Run("logout deletes the session", func(t *testing.T) {
		c := login(t)
		require.NoError(t, EndAdminSession(httptest.NewRecorder(), withCookie(c), store))

		_, err := AdminFromSession(withCookie(c), store)
		assert.ErrorIs(t, err, errNoAdminSession)
	})

	t.Run("revoke ends every session of the user", func(t *testing.T) {
		first, second := login(t), login(t)
		require.NoError(t, store.RevokeUser(context.Background(), admin.UserID))

		for _, c := range []*http.Cookie{first, second} {
			_, err := AdminFromSession(withCookie(c), store)
			assert.ErrorIs(t, err, errNoAdminSession)
		}
	})
}
