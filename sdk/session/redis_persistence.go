package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/krancour/mentora/sdk/authx"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const defaultRedisTimeout = 5 * time.Second

// RedisPersistenceOptions encapsulates optional RedisPersistence
// configuration.
type RedisPersistenceOptions struct {
	// Prefix namespaces the two keys. It defaults to "mentora".
	Prefix string
	// Timeout bounds every round trip to Redis. It defaults to five seconds.
	Timeout time.Duration
}

// RedisPersistence keeps the token and User under two keys,
// <prefix>:access_token and <prefix>:user. Writes touching both keys are
// wrapped in a single MULTI/EXEC transaction.
type RedisPersistence struct {
	client   redis.UniversalClient
	tokenKey string
	userKey  string
	timeout  time.Duration
}

// NewRedisPersistence returns a RedisPersistence that uses the provided
// client.
func NewRedisPersistence(
	client redis.UniversalClient,
	opts *RedisPersistenceOptions,
) *RedisPersistence {
	if opts == nil {
		opts = &RedisPersistenceOptions{}
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "mentora"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}
	return &RedisPersistence{
		client:   client,
		tokenKey: fmt.Sprintf("%s:access_token", prefix),
		userKey:  fmt.Sprintf("%s:user", prefix),
		timeout:  timeout,
	}
}

func (r *RedisPersistence) Token() (string, error) {
	ctx, cancel := r.context()
	defer cancel()
	token, err := r.client.Get(ctx, r.tokenKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "error reading key %q", r.tokenKey)
	}
	return token, nil
}

func (r *RedisPersistence) User() (*authx.User, error) {
	ctx, cancel := r.context()
	defer cancel()
	userBytes, err := r.client.Get(ctx, r.userKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error reading key %q", r.userKey)
	}
	user := &authx.User{}
	if err = json.Unmarshal(userBytes, user); err != nil {
		return nil, errors.Wrapf(err, "error parsing user at key %q", r.userKey)
	}
	return user, nil
}

func (r *RedisPersistence) Save(token string, user *authx.User) error {
	if user == nil {
		return errors.New("cannot save a session without a user")
	}
	userBytes, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "error marshaling user")
	}
	ctx, cancel := r.context()
	defer cancel()
	if _, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.tokenKey, token, 0)
		pipe.Set(ctx, r.userKey, userBytes, 0)
		return nil
	}); err != nil {
		return errors.Wrap(err, "error saving session")
	}
	return nil
}

func (r *RedisPersistence) SaveUser(user *authx.User) error {
	if user == nil {
		return errors.New("cannot save a nil user")
	}
	userBytes, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "error marshaling user")
	}
	ctx, cancel := r.context()
	defer cancel()
	if err = r.client.Set(ctx, r.userKey, userBytes, 0).Err(); err != nil {
		return errors.Wrapf(err, "error writing key %q", r.userKey)
	}
	return nil
}

func (r *RedisPersistence) Clear() error {
	ctx, cancel := r.context()
	defer cancel()
	if err := r.client.Del(ctx, r.tokenKey, r.userKey).Err(); err != nil {
		return errors.Wrap(err, "error clearing session")
	}
	return nil
}

func (r *RedisPersistence) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}
