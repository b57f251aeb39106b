// cmd/worker-manager/backends.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cruise-decision-workers/internal/admin"
	"cruise-decision-workers/internal/common/aws"
	"cruise-decision-workers/internal/common/config"
	"cruise-decision-workers/internal/common/database"
	"cruise-decision-workers/internal/decision"
	"cruise-decision-workers/internal/inventory"
)

// backends collects the optional storage clients. Any field may be nil; the
// decision service degrades to empty results or default weights without them.
type backends struct {
	pg    *database.PostgresClient
	redis *database.RedisClient
	es    *database.ElasticsearchClient
	sns   *aws.SNSClient
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
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

// connectBackends opens every configured backend. Postgres is the system of
// record, so a configured but unreachable database is fatal; the cache, the
// search index and SNS only log and stay off.
func connectBackends(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (*backends, error) {
	b := &backends{}

	if cfg.Database.Postgres.Enabled() {
		err := retryWithBackoff(func() error {
			var err error
			b.pg, err = database.NewPostgres(ctx, cfg.Database.Postgres)
			return err
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			return nil, err
		}
		zapLog.Info("PostgreSQL connected successfully")
	} else {
		zapLog.Warn("postgres not configured, inventory and admin stores disabled")
	}

	if cfg.Database.Redis.Enabled() {
		err := retryWithBackoff(func() error {
			var err error
			b.redis, err = database.NewRedis(ctx, cfg.Database.Redis)
			return err
		}, 5, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("redis unavailable, weights cache disabled", zap.Error(err))
			b.redis = nil
		} else {
			zapLog.Info("Redis connected successfully")
		}
	}

	if cfg.Database.Elasticsearch.Enabled() {
		err := retryWithBackoff(func() error {
			var err error
			b.es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return b.es.Ping(ctx)
		}, 5, time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Warn("elasticsearch unavailable, audit index disabled", zap.Error(err))
			b.es = nil
		} else {
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	if cfg.Integrations.AWS.SNS.Enabled {
		client, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Warn("sns unavailable, audit notifications disabled", zap.Error(err))
		} else {
			b.sns = client
			zapLog.Info("SNS audit publisher ready", zap.String("region", client.Region()))
		}
	}

	return b, nil
}

func (b *backends) Close(zapLog *zap.Logger) {
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			zapLog.Error("error closing redis", zap.Error(err))
		}
	}
	if err := b.pg.Close(); err != nil {
		zapLog.Error("error closing postgres", zap.Error(err))
	}
}

func (b *backends) pgDB() *sql.DB {
	if b.pg == nil {
		return nil
	}
	return b.pg.DB
}

// inventoryRepository returns nil when Postgres is absent so the service
// answers with an empty ranking.
func (b *backends) inventoryRepository() inventory.Repository {
	if b.pg == nil {
		return nil
	}
	repo, err := inventory.NewPostgresRepository(b.pg.DB)
	if err != nil {
		return nil
	}
	return repo
}

func (b *backends) weightsCache() redis.Cmdable {
	if b.redis == nil {
		return nil
	}
	return b.redis.Client
}

// auditSinks fans every decision run out to each configured store.
// It returns nil when nothing is configured.
func (b *backends) auditSinks(cfg *config.Config) decision.AuditSink {
	var sinks admin.MultiSink
	if b.pg != nil {
		if store, err := admin.NewPostgresAuditStore(b.pg.DB); err == nil {
			sinks = append(sinks, store)
		}
	}
	if b.es != nil {
		sinks = append(sinks, admin.NewElasticsearchAuditSink(b.es.Client, cfg.Decision.AuditIndex))
	}
	if b.sns != nil {
		sinks = append(sinks, admin.NewSNSAuditSink(b.sns, cfg.Integrations.AWS.SNS.AuditTopicARN))
	}
	if len(sinks) == 0 {
		return nil
	}
	return sinks
}

// auditLister prefers Postgres and falls back to the search index.
func (b *backends) auditLister(cfg *config.Config) admin.AuditLister {
	if b.pg != nil {
		if store, err := admin.NewPostgresAuditStore(b.pg.DB); err == nil {
			return store
		}
	}
	if b.es != nil {
		return admin.NewElasticsearchAuditSink(b.es.Client, cfg.Decision.AuditIndex)
	}
	return nil
}

// weightsFromConfig overlays configured weights onto the built-in defaults.
func weightsFromConfig(wc config.WeightsConfig) decision.Weights {
	w := decision.DefaultWeights()
	if wc.Price != nil {
		w.Price = *wc.Price
	}
	if wc.Cabin != nil {
		w.Cabin = *wc.Cabin
	}
	if wc.Preference != nil {
		w.Preference = *wc.Preference
	}
	if wc.Demand != nil {
		w.Demand = *wc.Demand
	}
	if wc.Risk != nil {
		w.Risk = *wc.Risk
	}
	return w.Sanitized()
}
