package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ErrEmptyCredential is returned by Save when the value is blank.
var ErrEmptyCredential = errors.New("credential must not be empty")

// RedisCredentialRepo keeps the API key as a single string under a fixed key.
type RedisCredentialRepo struct {
	client *redis.Client
	key    string
}

func NewRedisCredentialRepo(client *redis.Client, key string) *RedisCredentialRepo {
	return &RedisCredentialRepo{client: client, key: key}
}

// Load returns the stored key, or "" when none has been saved.
func (r *RedisCredentialRepo) Load(ctx context.Context) (string, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential: %w", err)
	}
	return val, nil
}

func (r *RedisCredentialRepo) Save(ctx context.Context, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrEmptyCredential
	}
	if err := r.client.Set(ctx, r.key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}
