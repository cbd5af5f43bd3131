package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	writer *redis.Client
	reader *redis.Client
)

// Init initializes the Redis clients. A separate read endpoint is optional;
// when empty, reads go through the write client.
func Init(writeURL, readURL, password string, maxConns int) error {
	w, err := newClient(writeURL, password, maxConns)
	if err != nil {
		return err
	}
	writer = w
	reader = w

	if readURL != "" && readURL != writeURL {
		r, err := newClient(readURL, password, maxConns)
		if err != nil {
			return err
		}
		reader = r
	}
	return nil
}

func newClient(url, password string, maxConns int) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if password != "" {
		opts.Password = password
	}
	if maxConns > 0 {
		opts.PoolSize = maxConns
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// SetClient sets both Redis clients (used for testing)
func SetClient(c *redis.Client) {
	writer = c
	reader = c
}

// GetClient returns the write client
func GetClient() *redis.Client {
	return writer
}

// Set stores a key-value pair with expiration
func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return writer.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value by key
func Get(ctx context.Context, key string) (string, error) {
	return reader.Get(ctx, key).Result()
}

// Del removes a key
func Del(ctx context.Context, key string) error {
	return writer.Del(ctx, key).Err()
}

// SetNX sets a key only if it does not exist
func SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return writer.SetNX(ctx, key, value, expiration).Result()
}

// Eval runs a Lua script on the write client
func Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	return writer.Eval(ctx, script, keys, args...).Result()
}
