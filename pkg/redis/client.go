package redis

import (
	"context"
	"time"

	v9 "github.com/redis/go-redis/v9"

	"github.com/lomash27/Auro/pkg/errors"
	"github.com/lomash27/Auro/pkg/logger"
)

type client struct {
	logger  *logger.Logger
	config  *Config
	cmdable *v9.Client
}

// NewClient creates a new Redis client with the provided logger and
// configuration.
func NewClient(log *logger.Logger, config *Config) Client {
	return &client{
		logger: log,
		config: config,
	}
}

func (c *client) Connect(ctx context.Context) error {
	if c.config == nil {
		return errors.NewTracer("redis config is nil")
	}
	if c.config.Addr == "" {
		return errors.NewTracer("redis address is empty")
	}
	if c.config.ConnectTimeout <= 0 {
		return errors.NewTracer("redis connect timeout must be positive")
	}

	c.cmdable = v9.NewClient(&v9.Options{
		Addr:            c.config.Addr,
		Username:        c.config.Username,
		Password:        c.config.Password,
		DB:              c.config.DB,
		MaxRetries:      c.config.MaxRetries,
		MinRetryBackoff: c.config.MinRetryBackoff,
		MaxRetryBackoff: c.config.MaxRetryBackoff,
		DialTimeout:     c.config.ConnectTimeout,
		ReadTimeout:     c.config.ConnectTimeout,
		WriteTimeout:    c.config.ConnectTimeout,
		PoolSize:        c.config.PoolSize,
	})

	if err := c.Ping(ctx); err != nil {
		return errors.NewTracer("redis connect ping failed").Wrap(err)
	}

	c.logger.InfoContext(ctx, "connected to redis", logger.Field{
		Key:   "addr",
		Value: c.config.Addr,
	})
	return nil
}

func (c *client) Disconnect(ctx context.Context) error {
	if c.cmdable == nil {
		return nil
	}
	if err := c.cmdable.Close(); err != nil {
		return errors.NewTracer("redis disconnect failed").Wrap(err)
	}
	return nil
}

func (c *client) Ping(ctx context.Context) error {
	if err := c.cmdable.Ping(ctx).Err(); err != nil {
		return errors.NewTracer("redis ping failed").Wrap(err)
	}
	return nil
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.cmdable.Get(ctx, key).Result()
	if err == v9.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.NewTracer("redis get failed").Wrap(err)
	}
	return val, nil
}

func (c *client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if err := c.cmdable.Set(ctx, key, value, expiration).Err(); err != nil {
		return errors.NewTracer("redis set failed").Wrap(err)
	}
	return nil
}

func (c *client) Del(ctx context.Context, keys ...string) (int64, error) {
	n, err := c.cmdable.Del(ctx, keys...).Result()
	if err != nil {
		return 0, errors.NewTracer("redis del failed").Wrap(err)
	}
	return n, nil
}
