// Package auth authenticates storefront callers.
//
// Shoppers and sellers use bearer tokens (jwt.go). The admin console uses a
// Redis-backed cookie session (this file). Both end in the same Principal in
// the request context.
//
// Session keys should be 32 or 64 bytes for HMAC authentication,
// and 16, 24, or 32 bytes for AES encryption:
//
//	openssl rand -base64 32
package auth

import (
	"context"
	"encoding/base32"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const (
	// AdminSessionName is the cookie name of the admin console session.
	AdminSessionName = "spicyjump_admin_session"

	sessionKeyPrefix     = "admin_session:"
	userSessionsPrefix   = "admin_sessions:user:"
	sessionUserIDKey     = "user_id"
	sessionEmailKey      = "email"
	sessionRoleKey       = "role"
	adminSessionMaxAge   = 8 * 60 * 60
	adminSessionIdleTime = 30 * time.Minute
)

var errNoAdminSession = errors.New("no admin session")

// RedisStore is a sessions.Store for the admin console. Only an encrypted
// session id travels in the cookie; the values live in Redis.
//
// Keys:
//
//	admin_session:<id>             JSON values, TTL slides with each request
//	admin_sessions:user:<user_id>  set of that user's live session ids
//
// The cookie caps a session at 8 hours, and 30 idle minutes end it earlier.
type RedisStore struct {
	client  *redis.Client
	codecs  []securecookie.Codec
	options *sessions.Options
	idle    time.Duration
}

// NewSessionStore creates the admin console session store. secureCookie
// must be true in production. Cookies are HttpOnly, scoped to /api/admin and
// SameSite Strict since the console never needs cross-site navigation.
//
//	store := auth.NewSessionStore(
//	    app.Redis.Client(),
//	    []byte(cfg.SessionAuthKey),
//	    []byte(cfg.SessionEncryptionKey),
//	    cfg.IsProduction(),
//	)
func NewSessionStore(client *redis.Client, authKey, encryptionKey []byte, secureCookie bool) *RedisStore {
	return &RedisStore{
		client: client,
		codecs: securecookie.CodecsFromPairs(authKey, encryptionKey),
		options: &sessions.Options{
			Path:     "/api/admin",
			MaxAge:   adminSessionMaxAge,
			HttpOnly: true,
			Secure:   secureCookie,
			SameSite: http.SameSiteStrictMode,
		},
		idle: adminSessionIdleTime,
	}
}

// Get returns the request's session, cached per request by gorilla.
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the cookie. A missing, tampered or expired
// cookie, or a session Redis no longer holds, yields a fresh session and no
// error.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return session, nil
	}
	values, err := s.load(r.Context(), id)
	if err != nil {
		return session, nil
	}
	session.ID = id
	for k, v := range values {
		session.Values[k] = v
	}
	session.IsNew = false
	return session, nil
}

// Save writes the session to Redis and sets the cookie. A negative MaxAge
// deletes both.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	ctx := r.Context()
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.delete(ctx, session); err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = newSessionID()
	}
	if err := s.save(ctx, session); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

// RevokeUser ends every console session held by userID. The admin service
// calls it when an account leaves ACTIVE.
func (s *RedisStore) RevokeUser(ctx context.Context, userID uuid.UUID) error {
	index := userSessionsPrefix + userID.String()
	ids, err := s.client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("list sessions of %s: %w", userID, err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKeyPrefix+id)
	}
	keys = append(keys, index)
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("revoke sessions of %s: %w", userID, err)
	}
	return nil
}

func newSessionID() string {
	return strings.TrimRight(base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)), "=")
}

// sessionValues keeps only string keys and values. Everything the console
// stores is a string, so anything else is a programming error.
func sessionValues(session *sessions.Session) (map[string]string, error) {
	out := make(map[string]string, len(session.Values))
	for k, v := range session.Values {
		ks, kok := k.(string)
		vs, vok := v.(string)
		if !kok || !vok {
			return nil, fmt.Errorf("session value %v: only strings are stored", k)
		}
		out[ks] = vs
	}
	return out, nil
}

func (s *RedisStore) save(ctx context.Context, session *sessions.Session) error {
	values, err := sessionValues(session)
	if err != nil {
		return err
	}
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode session values: %w", err)
	}
	ttl := min(s.idle, time.Duration(session.Options.MaxAge)*time.Second)
	lifetime := time.Duration(session.Options.MaxAge) * time.Second

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, sessionKeyPrefix+session.ID, data, ttl)
		if uid := values[sessionUserIDKey]; uid != "" {
			p.SAdd(ctx, userSessionsPrefix+uid, session.ID)
			p.Expire(ctx, userSessionsPrefix+uid, lifetime)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// load reads the session and pushes its idle expiry forward.
func (s *RedisStore) load(ctx context.Context, id string) (map[string]string, error) {
	data, err := s.client.GetEx(ctx, sessionKeyPrefix+id, s.idle).Bytes()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return values, nil
}

func (s *RedisStore) delete(ctx context.Context, session *sessions.Session) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, sessionKeyPrefix+session.ID)
		if uid, _ := session.Values[sessionUserIDKey].(string); uid != "" {
			p.SRem(ctx, userSessionsPrefix+uid, session.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// StartAdminSession stores p in a fresh admin session and writes the cookie.
func StartAdminSession(w http.ResponseWriter, r *http.Request, store sessions.Store, p Principal) error {
	session, err := store.Get(r, AdminSessionName)
	if err != nil {
		// A stale or tampered cookie still yields a usable new session.
		session, err = store.New(r, AdminSessionName)
		if err != nil {
			return fmt.Errorf("new admin session: %w", err)
		}
	}
	// A fresh id on every login keeps a planted cookie from being elevated.
	session.ID = ""
	session.IsNew = true
	session.Values[sessionUserIDKey] = p.UserID.String()
	session.Values[sessionEmailKey] = p.Email
	session.Values[sessionRoleKey] = p.Role
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save admin session: %w", err)
	}
	return nil
}

// EndAdminSession deletes the admin session and expires its cookie.
func EndAdminSession(w http.ResponseWriter, r *http.Request, store sessions.Store) error {
	session, err := store.Get(r, AdminSessionName)
	if err != nil {
		return nil
	}
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("delete admin session: %w", err)
	}
	return nil
}

// AdminFromSession returns the admin Principal stored in the request's admin
// session. Sessions that are missing, malformed or not held by an admin fail.
func AdminFromSession(r *http.Request, store sessions.Store) (Principal, error) {
	session, err := store.Get(r, AdminSessionName)
	if err != nil {
		return Principal{}, fmt.Errorf("read admin session: %w", err)
	}
	if session.IsNew {
		return Principal{}, errNoAdminSession
	}

	raw, _ := session.Values[sessionUserIDKey].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return Principal{}, fmt.Errorf("admin session user_id %q: %w", raw, err)
	}
	role, _ := session.Values[sessionRoleKey].(string)
	if role != RoleAdmin {
		return Principal{}, ErrForbidden
	}
	email, _ := session.Values[sessionEmailKey].(string)
	return Principal{UserID: id, Email: email, Role: role}, nil
}
