package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration.
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis %s: %w", cfg.Addr, err)
	}

	return client, nil
}

// NewClients connects to each address, for multi-node lock quorums.
// On failure the clients opened so far are closed.
func NewClients(ctx context.Context, cfg Config, addrs []string) ([]redis.UniversalClient, error) {
	clients := make([]redis.UniversalClient, 0, len(addrs))
	for _, addr := range addrs {
		nodeCfg := cfg
		nodeCfg.Addr = addr

		client, err := NewClient(ctx, nodeCfg)
		if err != nil {
			for _, c := range clients {
				_ = c.Close()
			}
			return nil, err
		}
		clients = append(clients, client)
	}

	return clients, nil
}
