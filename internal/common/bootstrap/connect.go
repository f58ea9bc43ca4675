// Package bootstrap dials the backing services both binaries share.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	awsx "scholarship-tracker/internal/common/aws"
	"scholarship-tracker/internal/common/camunda"
	"scholarship-tracker/internal/common/config"
	"scholarship-tracker/internal/common/database"
	"scholarship-tracker/internal/common/storage"
)

// RetryWithBackoff attempts to execute a function with exponential backoff
func RetryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func Postgres(ctx context.Context, cfg config.PostgresConfig, log *zap.Logger) (*database.PostgresClient, error) {
	var pg *database.PostgresClient
	err := RetryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return err
		}
		return nil
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	log.Info("PostgreSQL connected successfully")
	return pg, nil
}

func Redis(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (*database.RedisClient, error) {
	var rdb *database.RedisClient
	err := RetryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		return nil, err
	}
	log.Info("Redis connected successfully")
	return rdb, nil
}

func Elasticsearch(cfg config.ElasticsearchConfig, log *zap.Logger) (*database.ElasticsearchClient, error) {
	var es *database.ElasticsearchClient
	err := RetryWithBackoff(func() error {
		var err error
		es, err = database.NewElasticsearch(cfg)
		if err != nil {
			return err
		}
		return es.Ping()
	}, 15, 2*time.Second, log, "Elasticsearch connection")
	if err != nil {
		return nil, err
	}
	log.Info("Elasticsearch connected successfully")
	return es, nil
}

// Minio connects and creates the document bucket on first start.
func Minio(ctx context.Context, cfg config.MinioConfig, log *zap.Logger) (*storage.MinioStore, error) {
	store, err := storage.NewMinio(cfg)
	if err != nil {
		return nil, err
	}
	err = RetryWithBackoff(func() error {
		return store.EnsureBucket(ctx)
	}, 10, 2*time.Second, log, "MinIO connection")
	if err != nil {
		return nil, err
	}
	log.Info("MinIO connected successfully", zap.String("bucket", cfg.Bucket))
	return store, nil
}

func Zeebe(cfg config.CamundaConfig, log *zap.Logger) (*camunda.Client, error) {
	var client *camunda.Client
	err := RetryWithBackoff(func() error {
		var err error
		client, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.BrokerAddress,
			UsePlaintextConnection: true,
			RequestTimeout:         config.GetDuration(cfg.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		return nil, err
	}
	log.Info("Zeebe client connected successfully", zap.String("gateway", cfg.BrokerAddress))
	return client, nil
}

// Messaging builds the SES and SNS clients for the enabled channels. A
// disabled channel comes back as a nil interface.
func Messaging(ctx context.Context, cfg *config.Config, log *zap.Logger) (awsx.SESService, awsx.SNSService, error) {
	var (
		ses awsx.SESService
		sns awsx.SNSService
	)
	region := cfg.Integrations.AWS.Region

	if cfg.Integrations.AWS.SES.Enabled {
		c, err := awsx.NewSESClient(ctx, region)
		if err != nil {
			return nil, nil, fmt.Errorf("ses client: %w", err)
		}
		ses = c
	}
	if cfg.Integrations.AWS.SNS.Enabled {
		c, err := awsx.NewSNSClient(ctx, region)
		if err != nil {
			return nil, nil, fmt.Errorf("sns client: %w", err)
		}
		sns = c
	}

	log.Info("messaging clients initialized",
		zap.Bool("ses", ses != nil),
		zap.Bool("sns", sns != nil),
		zap.String("region", region),
	)
	return ses, sns, nil
}
