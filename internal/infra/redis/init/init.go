package infra_redis_init

import (
	"context"
	"fmt"
	"net"

	"github.com/go-redis/redis"
	"github.com/humanbelnik/lootsplit/internal/config"
	"go.uber.org/zap"
)

// Connect builds a relay client and checks the server answers before handing
// it out.
func Connect(ctx context.Context, cfg config.RedisRelay, logger *zap.Logger) (*redis.Client, error) {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
	})

	if err := client.WithContext(ctx).Ping().Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}

	logger.Info("redis connected", zap.String("addr", addr), zap.String("channel", cfg.Channel))
	return client, nil
}
