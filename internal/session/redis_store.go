package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "creditguardian:session:"

// RedisStore keeps sessions in Redis as JSON values with a TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func NewRedisStore(opts RedisOptions) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{client: rdb, prefix: prefix}
}

type redisRecord struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (r *RedisStore) key(token string) string {
	return r.prefix + token
}

func (r *RedisStore) Save(ctx context.Context, s Session, ttl time.Duration) error {
	data, err := encodeSession(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(s.Token), data, ttl).Err()
}

func (r *RedisStore) Load(ctx context.Context, token string) (Session, error) {
	val, err := r.client.Get(ctx, r.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	return decodeSession(token, val)
}

func (r *RedisStore) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, r.key(token)).Err()
}

// Ping checks the Redis server is reachable.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func encodeSession(s Session) ([]byte, error) {
	data, err := json.Marshal(redisRecord{UserID: s.UserID, ExpiresAt: s.ExpiresAt.UTC()})
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return data, nil
}

func decodeSession(token string, data []byte) (Session, error) {
	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return Session{Token: token, UserID: rec.UserID, ExpiresAt: rec.ExpiresAt}, nil
}
