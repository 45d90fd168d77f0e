package app

import (
	"context"
	"fmt"
	"net"

	"github.com/humanbelnik/lootsplit/internal/config"
	http_init "github.com/humanbelnik/lootsplit/internal/delivery/http/init"
	http_record "github.com/humanbelnik/lootsplit/internal/delivery/http/record"
	http_room "github.com/humanbelnik/lootsplit/internal/delivery/http/room"
	ws_room "github.com/humanbelnik/lootsplit/internal/delivery/ws/room"
	infra_db_init "github.com/humanbelnik/lootsplit/internal/infra/db/init"
	infra_db_migrate "github.com/humanbelnik/lootsplit/internal/infra/db/migrate"
	infra_db_record "github.com/humanbelnik/lootsplit/internal/infra/db/record"
	infra_db_room "github.com/humanbelnik/lootsplit/internal/infra/db/room"
	infra_redis_init "github.com/humanbelnik/lootsplit/internal/infra/redis/init"
	infra_redis_relay "github.com/humanbelnik/lootsplit/internal/infra/redis/relay"
	"github.com/humanbelnik/lootsplit/internal/logger"
	"github.com/humanbelnik/lootsplit/internal/service/registry"
	usecase_record "github.com/humanbelnik/lootsplit/internal/usecase/record"
	usecase_room "github.com/humanbelnik/lootsplit/internal/usecase/room"
	"go.uber.org/zap"
)

const serviceName = "lootsplit"

// Go runs the service until ctx is cancelled.
func Go(ctx context.Context, cfg *config.Config) error {
	log := logger.Must(cfg.Log.Level, cfg.Log.Format, serviceName)
	defer func() { _ = log.Sync() }()

	dbConn := infra_db_init.MustEstablishConn(cfg.Database)
	defer dbConn.Close()

	if err := infra_db_migrate.Apply(ctx, dbConn); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	roomRepository := infra_db_room.New(dbConn)
	recordRepository := infra_db_record.New(dbConn)

	reg := registry.New(log.Named("registry"))
	roomUC := usecase_room.New(roomRepository, usecase_room.WithLogger(log.Named("rooms")))

	recordOpts := []usecase_record.Option{usecase_record.WithLogger(log.Named("records"))}
	var relay *infra_redis_relay.Driver
	if cfg.Redis.Enabled {
		redisConn, err := infra_redis_init.Connect(ctx, cfg.Redis, log.Named("redis"))
		if err != nil {
			return err
		}
		defer redisConn.Close()

		relay = infra_redis_relay.New(redisConn, cfg.Redis.Channel, log.Named("relay"))
		recordOpts = append(recordOpts, usecase_record.WithRelay(relay))
	}
	recordUC := usecase_record.New(recordRepository, reg, recordOpts...)

	if relay != nil {
		if err := relay.Listen(ctx, recordUC.DeliverRemote); err != nil {
			return fmt.Errorf("listen relay: %w", err)
		}
	}

	hub := ws_room.NewHub(reg, roomUC, recordUC, cfg.Sync.SendBuffer, log.Named("ws"))

	controllerPool := http_init.NewControllerPool(log.Named("http"))
	controllerPool.Add(http_room.New(roomUC, log.Named("http")))
	controllerPool.Add(http_record.New(roomUC, recordUC, log.Named("http")))
	controllerPool.Add(ws_room.NewController(hub))

	controllerPool.Register()
	return controllerPool.RunAll(ctx, net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port))
}

// Migrate applies the schema and returns.
func Migrate(ctx context.Context, cfg *config.Config) error {
	log := logger.Must(cfg.Log.Level, cfg.Log.Format, serviceName)
	defer func() { _ = log.Sync() }()

	dbConn, err := infra_db_init.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := infra_db_migrate.Apply(ctx, dbConn); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Info("schema applied", zap.String("driver", cfg.Database.Driver))
	return nil
}
