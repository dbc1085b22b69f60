package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect opens and verifies a Redis connection from a redis:// URL. The
// caller treats Redis as optional; a service without it skips the
// cross-instance event fan-out.
func Connect(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
