// Package container holds the infrastructure clients shared by the router modules.
package container

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pixel-news/config"
	"github.com/oksasatya/pixel-news/internal/infrastructure/postgres"
	"github.com/oksasatya/pixel-news/pkg/helpers"
)

// Container is built once in main. Optional clients (ES, GCS, RabbitMQ) stay nil
// when their backend is not configured or not reachable at startup.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	JWT    *helpers.JWTManager

	GCS      *storage.Client
	ES       *elasticsearch.Client
	Receipts *helpers.RabbitPublisher
}

// Build connects every backend. Postgres and Redis are required.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	pool, err := postgres.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	c.Pool = pool

	c.Redis = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := c.Redis.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}

	c.JWT = helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.AccessTTL)

	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			helpers.LogWarn(logger, "gcs disabled", err, nil)
		} else {
			c.GCS = gcs
		}
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			helpers.LogWarn(logger, "elasticsearch disabled", err, nil)
		} else {
			c.ES = es
		}
	}

	if cfg.RabbitMQURL != "" && cfg.RabbitMQReceiptQueue != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQReceiptQueue)
		if err != nil {
			helpers.LogWarn(logger, "receipt publishing disabled", err, logrus.Fields{"queue": cfg.RabbitMQReceiptQueue})
		} else {
			c.Receipts = pub
		}
	}
	return c, nil
}

func (c *Container) Close() {
	if c.Receipts != nil {
		c.Receipts.Close()
	}
	if c.GCS != nil {
		_ = c.GCS.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}
