package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/mkadlec/theater-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

const tokenNS = "theater:v1:token"

func keyToken(token string) string {
	return fmt.Sprintf("%s:%s", tokenNS, token)
}

func keyUserToken(userID int64) string {
	return fmt.Sprintf("%s:user:%d", tokenNS, userID)
}

// TokenStore keeps opaque bearer tokens in redis. Tokens carry no
// structure of their own; the session they stand for lives server-side,
// so the store decides persistence. Keys are written without TTL.
type TokenStore struct {
	rdb *redis.Client
}

func NewTokenStore(rdb *redis.Client) *TokenStore {
	return &TokenStore{rdb: rdb}
}

// Issue returns the user's existing token when one is already stored, so
// repeated logins reuse the same credential; otherwise it mints a random
// 40-hex-char token and stores both directions of the mapping.
func (s *TokenStore) Issue(ctx context.Context, sess domain.Session) (string, error) {
	const op = "redis.TokenStore.Issue"

	existing, err := s.rdb.Get(ctx, keyUserToken(sess.UserID)).Result()
	if err == nil && existing != "" {
		return existing, nil
	}
	if err != nil && err != redis.Nil {
		return "", fmt.Errorf("%s:%w", op, err)
	}

	token := newToken()

	b, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("%s:%w", op, err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, keyToken(token), b, 0)
	pipe.Set(ctx, keyUserToken(sess.UserID), token, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("%s:%w", op, err)
	}

	return token, nil
}

// Lookup resolves a bearer token to the session it was issued for.
// The second return value is false when the token is unknown.
func (s *TokenStore) Lookup(ctx context.Context, token string) (domain.Session, bool, error) {
	const op = "redis.TokenStore.Lookup"

	var sess domain.Session

	v, err := s.rdb.Get(ctx, keyToken(token)).Result()
	if err == redis.Nil {
		return sess, false, nil
	}
	if err != nil {
		return sess, false, fmt.Errorf("%s:%w", op, err)
	}

	if err := json.Unmarshal([]byte(v), &sess); err != nil {
		return sess, false, fmt.Errorf("%s:%w", op, err)
	}

	return sess, true, nil
}

// Revoke drops a token and its reverse mapping.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	const op = "redis.TokenStore.Revoke"

	sess, ok, err := s.Lookup(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, keyToken(token))
	pipe.Del(ctx, keyUserToken(sess.UserID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func newToken() string {
	b := make([]byte, 20)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
