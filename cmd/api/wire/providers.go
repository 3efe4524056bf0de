package wire

import (
	"context"
	"fmt"
	"loanportal-server/cmd/config"
	"loanportal-server/internal/fieldcatalog/evaluation"
	"loanportal-server/internal/fieldcatalog/httpapi"
	"loanportal-server/internal/fieldcatalog/persistence"
	"loanportal-server/internal/fieldcatalog/usecases"
	"loanportal-server/internal/infra/async"
	"loanportal-server/internal/infra/authz"
	"loanportal-server/internal/infra/cache"
	"loanportal-server/internal/infra/node"
	"loanportal-server/internal/infra/pubsub"
	"loanportal-server/internal/infra/sql"
	"log/slog"
	"time"
)

const databaseOpenTimeout = 2 * time.Minute

// Readiness names the dependencies /readyz probes.
type Readiness map[string]sql.Pinger

// Application is everything main starts: the HTTP controllers, the
// background workers and the seeder that runs once before serving.
type Application struct {
	FieldDefinitionController *httpapi.FieldDefinitionController
	FieldCatalogController    *httpapi.FieldCatalogController
	WebSocketController       *httpapi.FieldCatalogWebSocketController
	UpdateQueue               *async.ThrottledQueue
	ChangeWorker              *usecases.CatalogChangeWorker
	AuditWorker               *usecases.CatalogAuditWorker
	Seeder                    *usecases.CatalogSeeder
	Readiness                 Readiness
}

func (a *Application) Workers() []async.Worker {
	return []async.Worker{a.UpdateQueue, a.ChangeWorker, a.AuditWorker}
}

func provideAppConfig() config.AppConfig {
	return config.LoadConfig()
}

func provideNode() *node.Node {
	return node.GetNodeInfo()
}

func provideDatabase(cfg config.AppConfig) (*sql.DB, error) {
	if cfg.General.IsLocal() {
		return sql.NewMemoryORM("loanportal")
	}
	return sql.NewPostgreORM(cfg.Postgresql.DSN)
}

func provideReadiness(cfg config.AppConfig, orm *sql.DB, catalogCache cache.Cache) (Readiness, func(), error) {
	readiness := Readiness{"database": orm}
	cleanup := func() {}

	if redisCache, ok := catalogCache.(*cache.RedisCache); ok {
		readiness["redis"] = redisCache
	}

	if !cfg.General.IsLocal() && cfg.Postgresql.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), databaseOpenTimeout)
		defer cancel()

		pool := sql.NewPostgreDatabase(cfg.Postgresql.URL)
		if err := pool.Open(ctx); err != nil {
			return nil, nil, fmt.Errorf("opening postgres pool: %w", err)
		}
		readiness["postgres"] = pool
		cleanup = pool.Close
	}

	return readiness, cleanup, nil
}

func providePubSubFactory(cfg config.AppConfig, n *node.Node) *pubsub.Factory {
	return pubsub.NewFactory(pubsub.FactoryOptions{
		Environment:       cfg.General.Environment,
		KafkaBrokers:      cfg.Kafka.Brokers,
		ConsumerGroup:     n.ConsumerGroup(cfg.Kafka.Group),
		SchemaRegistryURL: cfg.Kafka.SchemaRegistry,
	})
}

func providePublisherFactory(factory *pubsub.Factory) pubsub.PublisherFactory {
	return factory.GetPublisherFactory()
}

func provideConsumerFactory(factory *pubsub.Factory) pubsub.ConsumerFactory {
	return factory.GetConsumerFactory()
}

// provideCache shares snapshots through Redis when an address is set and
// falls back to the in-process ristretto cache otherwise.
func provideCache(cfg config.AppConfig) (cache.Cache, error) {
	if cfg.Redis.Addr == "" {
		return cache.New(cache.DefaultConfig())
	}

	redisConfig := cache.DefaultRedisConfig()
	redisConfig.Addr = cfg.Redis.Addr
	redisConfig.Password = cfg.Redis.Password
	redisConfig.DB = cfg.Redis.DB
	if cfg.Redis.KeyPrefix != "" {
		redisConfig.KeyPrefix = cfg.Redis.KeyPrefix
	}

	redisCache, err := cache.NewRedisCache(redisConfig)
	if err != nil {
		slog.Warn("redis unavailable, using in-process cache", slog.String("error", err.Error()))
		return cache.New(cache.DefaultConfig())
	}
	return redisCache, nil
}

func provideCachedRepository(
	cfg config.AppConfig,
	repository *persistence.SimpleFieldDefinitionRepository,
	catalogCache cache.Cache,
) *persistence.CachedFieldDefinitionRepository {
	return persistence.NewCachedFieldDefinitionRepository(repository, catalogCache, cfg.Cache.TTL)
}

func provideEvaluator() *evaluation.Evaluator {
	return evaluation.NewEvaluator(usecases.LogDiagnostics)
}

func provideUpdateQueue(cfg config.AppConfig) *async.ThrottledQueue {
	return async.NewThrottledQueue(cfg.Catalog.ReorderSpacing, cfg.Catalog.ReorderTimeout)
}

func provideAuthorizer(cfg config.AppConfig) (*authz.Authorizer, error) {
	mode, err := authz.ParseMode(cfg.Authz.Mode)
	if err != nil {
		return nil, err
	}
	return authz.NewAuthorizer(cfg.Authz.ModelPath, cfg.Authz.PolicyPath, mode)
}

func provideWriteAuthorizer(authorizer *authz.Authorizer) *usecases.SimpleWriteAuthorizer {
	return usecases.NewCatalogWriteAuthorizer(authorizer, authz.SubjectFromRole)
}

func provideAuditWorker(cfg config.AppConfig, repository usecases.FieldDefinitionRepository) (*usecases.CatalogAuditWorker, error) {
	return usecases.NewCatalogAuditWorker(cfg.Catalog.AuditSchedule, repository)
}
