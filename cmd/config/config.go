package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvironmentLocal = "local"

	defaultHTTPAddr       = ":3000"
	defaultCacheTTL       = 5 * time.Minute
	defaultReorderSpacing = 250 * time.Millisecond
	defaultReorderTimeout = 15 * time.Second
	defaultAuditSchedule  = "*/15 * * * *"
)

var loadConfigOnce sync.Once
var configInstance AppConfig

// LoadConfig reads config/server.yaml (or /config/server.yaml) once.
// Every key can be overridden by LOANPORTAL_SERVER_<SECTION>_<KEY>.
func LoadConfig() AppConfig {
	loadConfigOnce.Do(func() {
		viper.SetEnvPrefix("loanportal_server")
		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.SetConfigName("server")
		viper.AddConfigPath("config")
		viper.AddConfigPath("/config")
		setDefaults()
		if err := viper.ReadInConfig(); err != nil {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
		configInstance = readConfig()
	})

	return configInstance
}

func setDefaults() {
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.environment", EnvironmentLocal)
	viper.SetDefault("http.addr", defaultHTTPAddr)
	viper.SetDefault("cache.ttl", defaultCacheTTL)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.key_prefix", "loanportal:")
	viper.SetDefault("kafka.group", "loanportal-server")
	viper.SetDefault("catalog.reorder_spacing", defaultReorderSpacing)
	viper.SetDefault("catalog.reorder_timeout", defaultReorderTimeout)
	viper.SetDefault("catalog.audit_schedule", defaultAuditSchedule)
	viper.SetDefault("authz.mode", "enforce")
	viper.SetDefault("authz.model_path", "config/authz_model.conf")
	viper.SetDefault("authz.policy_path", "config/authz_policy.csv")
}

func readConfig() AppConfig {
	return AppConfig{
		General: GeneralConfig{
			LogLevel:    viper.GetString("general.log_level"),
			Environment: viper.GetString("general.environment"),
		},
		HTTP: HTTPConfig{
			Addr:           viper.GetString("http.addr"),
			AllowedOrigins: viper.GetStringSlice("cors.allowed_origins"),
		},
		Postgresql: PostgresqlConfig{
			URL: viper.GetString("database.url"),
			DSN: viper.GetString("database.dsn"),
		},
		Redis: RedisConfig{
			Addr:      viper.GetString("redis.addr"),
			Password:  viper.GetString("redis.password"),
			DB:        viper.GetInt("redis.db"),
			KeyPrefix: viper.GetString("redis.key_prefix"),
		},
		Cache: CacheConfig{
			TTL: viper.GetDuration("cache.ttl"),
		},
		Kafka: KafkaConfig{
			Brokers:        viper.GetStringSlice("kafka.brokers"),
			Group:          viper.GetString("kafka.group"),
			SchemaRegistry: viper.GetString("kafka.schema_registry"),
		},
		Catalog: CatalogConfig{
			ReorderSpacing: viper.GetDuration("catalog.reorder_spacing"),
			ReorderTimeout: viper.GetDuration("catalog.reorder_timeout"),
			SeedFile:       viper.GetString("catalog.seed_file"),
			AuditSchedule:  viper.GetString("catalog.audit_schedule"),
		},
		Authz: AuthzConfig{
			ModelPath:  viper.GetString("authz.model_path"),
			PolicyPath: viper.GetString("authz.policy_path"),
			Mode:       viper.GetString("authz.mode"),
		},
	}
}

type AppConfig struct {
	General    GeneralConfig
	HTTP       HTTPConfig
	Postgresql PostgresqlConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Kafka      KafkaConfig
	Catalog    CatalogConfig
	Authz      AuthzConfig
}

type GeneralConfig struct {
	LogLevel    string
	Environment string
}

func (c GeneralConfig) IsLocal() bool {
	return c.Environment == EnvironmentLocal
}

type HTTPConfig struct {
	Addr           string
	AllowedOrigins []string
}

type PostgresqlConfig struct {
	URL string
	DSN string
}

// RedisConfig selects the shared catalog cache. An empty Addr keeps the
// in-process ristretto cache.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type CacheConfig struct {
	TTL time.Duration
}

type KafkaConfig struct {
	Brokers        []string
	Group          string
	SchemaRegistry string
}

type CatalogConfig struct {
	ReorderSpacing time.Duration
	ReorderTimeout time.Duration
	SeedFile       string
	AuditSchedule  string
}

type AuthzConfig struct {
	ModelPath  string
	PolicyPath string
	Mode       string
}
