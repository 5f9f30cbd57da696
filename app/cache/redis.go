package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/dto"
	"github.com/vibast-solutions/ms-go-contacts/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "identity:"

// ErrInvalidTTL is returned when an entry would be stored without expiry.
var ErrInvalidTTL = errors.New("cache: ttl must be positive")

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}

	return client, nil
}

// Redis stores user snapshots as JSON with a per-entry expiry.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (c *Redis) Get(ctx context.Context, key string) (*dto.UserSnapshot, bool, error) {
	payload, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	snapshot := &dto.UserSnapshot{}
	if err = json.Unmarshal(payload, snapshot); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Discarding undecodable identity cache entry")
		return nil, false, nil
	}
	if err = snapshot.Validate(); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Discarding invalid identity cache entry")
		return nil, false, nil
	}

	return snapshot, true, nil
}

func (c *Redis) Set(ctx context.Context, key string, snapshot *dto.UserSnapshot, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, keyPrefix+key, payload, ttl).Err()
}

func (c *Redis) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, keyPrefix+key).Err()
}
