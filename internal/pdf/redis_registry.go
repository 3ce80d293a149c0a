package pdf

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/go-redis/redis/v7"
)

// RedisRegistry shares generated file metadata between several app
// instances. The files themselves must live on a shared PDF_DIR.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisRegistry(client *redis.Client, ttl time.Duration) *RedisRegistry {
	return &RedisRegistry{client: client, ttl: ttl, prefix: "elca:pdf:"}
}

func (r *RedisRegistry) Put(ctx context.Context, f File) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return r.client.WithContext(ctx).Set(r.prefix+f.Key, b, r.ttl).Err()
}

func (r *RedisRegistry) Get(ctx context.Context, key string) (File, error) {
	raw, err := r.client.WithContext(ctx).Get(r.prefix + key).Bytes()
	if err == redis.Nil {
		return File{}, ErrNotFound
	}
	if err != nil {
		return File{}, err
	}

	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return File{}, err
	}
	return f, nil
}

// Delete drops the record and removes its file. Files of records that
// expired in redis are left to the directory sweep.
func (r *RedisRegistry) Delete(ctx context.Context, key string) error {
	f, err := r.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return r.client.WithContext(ctx).Del(r.prefix + key).Err()
}
