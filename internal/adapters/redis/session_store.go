// Package redis provides a Redis-backed session store for deployments that
// run more than one replica and need shared sessions. The default in-process
// store remains the reference implementation; this backend must be selected
// explicitly via SESSION_BACKEND=redis.
package redis

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/esdeck/esdeck-api/internal/domain/auth"
	"github.com/esdeck/esdeck-api/internal/ports"
)

const (
	tokenLength   = 32
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// SessionStore keeps sessions in Redis keyed by token. The key TTL tracks the
// session expiry, so Redis handles the memory-hygiene sweep on its own.
type SessionStore struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
	now     func() time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a Redis session store with the default "session:" prefix.
func NewSessionStore(client redis.UniversalClient, timeout time.Duration) *SessionStore {
	return NewSessionStoreWithPrefix(client, timeout, "session:")
}

// NewSessionStoreWithPrefix creates a Redis session store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, timeout time.Duration, prefix string) *SessionStore {
	if timeout <= 0 {
		timeout = time.Hour
	}
	return &SessionStore{
		client:  client,
		prefix:  prefix,
		timeout: timeout,
		now:     time.Now,
	}
}

func (s *SessionStore) Create(ctx context.Context, user domainauth.AuthUser) (domainauth.Session, error) {
	token, err := generateToken()
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("generate session token: %w", err)
	}

	now := s.now()
	sess := domainauth.Session{
		Token:        token,
		UserID:       user.ID,
		Username:     user.Username,
		Roles:        append([]string(nil), user.Groups...),
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.timeout),
		LastActivity: now,
	}

	if err := s.write(ctx, sess); err != nil {
		return domainauth.Session{}, err
	}
	return sess, nil
}

func (s *SessionStore) Validate(ctx context.Context, token string) (domainauth.Session, error) {
	if token == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ports.ErrSessionNotFound
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if unmarshalErr := json.Unmarshal([]byte(data), &sess); unmarshalErr != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", unmarshalErr)
	}

	// The key TTL should have removed expired records already; be defensive in
	// case of clock skew between replicas.
	now := s.now()
	if sess.Expired(now) {
		if deleteErr := s.Invalidate(ctx, token); deleteErr != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", deleteErr)
		}
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	// Sliding renewal: rewrite the record with a fresh deadline and TTL.
	sess.LastActivity = now
	sess.ExpiresAt = now.Add(s.timeout)
	if err := s.write(ctx, sess); err != nil {
		return domainauth.Session{}, err
	}

	return sess, nil
}

func (s *SessionStore) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+token).Err()
}

// CleanupExpired is a no-op for the Redis backend; key TTLs bound memory.
func (s *SessionStore) CleanupExpired(_ context.Context) (int, error) {
	return 0, nil
}

func (s *SessionStore) write(ctx context.Context, sess domainauth.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session is expired")
	}
	if err := s.client.Set(ctx, s.prefix+sess.Token, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func generateToken() (string, error) {
	buf := make([]byte, tokenLength)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}
