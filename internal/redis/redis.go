// Package redis owns the process-wide client behind the search-response
// cache. The bot runs fine without it; when Init fails the caller degrades to
// the in-process cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key this bot writes, so a shared Redis instance
// stays legible.
const KeyPrefix = "ncm:"

const (
	pingTimeout    = 3 * time.Second
	pingAttempts   = 5
	initialBackoff = 200 * time.Millisecond
)

var (
	client *redislib.Client
	once   sync.Once
)

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (cfg Config) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

func Init(cfg Config) (*redislib.Client, error) {
	var initErr error

	once.Do(func() {
		c := redislib.NewClient(&redislib.Options{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
			DB:       cfg.DB,
			// The search cache is small and read-heavy; a handful of
			// connections covers it.
			PoolSize:     4,
			MinIdleConns: 1,
		})

		if initErr = waitForPing(c); initErr != nil {
			_ = c.Close()
			return
		}

		client = c
		log.Printf("Redis connection established (%s db=%d)", cfg.Addr(), cfg.DB)
	})

	if client == nil && initErr == nil {
		return nil, errors.New("redis client not initialized")
	}

	return client, initErr
}

// waitForPing gives a slow-starting Redis a grace period before the bot
// settles for the in-process cache.
func waitForPing(c *redislib.Client) error {
	var err error
	backoff := initialBackoff

	for attempt := 1; attempt <= pingAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		err = c.Ping(ctx).Err()
		cancel()

		if err == nil {
			return nil
		}
		if attempt < pingAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	return err
}

func Client() *redislib.Client {
	return client
}

func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}
