package app

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yungbote/sdgraph-backend/internal/clients/redis"
	"github.com/yungbote/sdgraph-backend/internal/data/db"
	"github.com/yungbote/sdgraph-backend/internal/observability"
	"github.com/yungbote/sdgraph-backend/internal/pkg/logger"
	"github.com/yungbote/sdgraph-backend/internal/platform/neo4jdb"
)

// Config is read from an optional config.yaml and overridden by the
// environment. Keys are the environment variable names.
type Config struct {
	LogMode string `mapstructure:"LOG_MODE"`

	HTTPAddr    string   `mapstructure:"HTTP_ADDR"`
	StaticDir   string   `mapstructure:"STATIC_DIR"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	DBDriver         string `mapstructure:"DB_DRIVER"`
	DBDSN            string `mapstructure:"DB_DSN"`
	PostgresHost     string `mapstructure:"POSTGRES_HOST"`
	PostgresPort     string `mapstructure:"POSTGRES_PORT"`
	PostgresUser     string `mapstructure:"POSTGRES_USER"`
	PostgresPassword string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresName     string `mapstructure:"POSTGRES_NAME"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPrefix   string `mapstructure:"REDIS_PREFIX"`

	GraphCacheSize int           `mapstructure:"GRAPH_CACHE_SIZE"`
	GraphCacheTTL  time.Duration `mapstructure:"GRAPH_CACHE_TTL"`

	Neo4jURI      string        `mapstructure:"NEO4J_URI"`
	Neo4jUser     string        `mapstructure:"NEO4J_USER"`
	Neo4jPassword string        `mapstructure:"NEO4J_PASSWORD"`
	Neo4jDatabase string        `mapstructure:"NEO4J_DATABASE"`
	Neo4jTimeout  time.Duration `mapstructure:"NEO4J_TIMEOUT"`

	MetricsEnabled bool   `mapstructure:"METRICS_ENABLED"`
	MetricsAddr    string `mapstructure:"METRICS_ADDR"`

	OtelEnabled     bool    `mapstructure:"OTEL_ENABLED"`
	OtelServiceName string  `mapstructure:"OTEL_SERVICE_NAME"`
	OtelEnvironment string  `mapstructure:"OTEL_ENVIRONMENT"`
	OtelEndpoint    string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `mapstructure:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	OtelSampleRatio float64 `mapstructure:"OTEL_SAMPLE_RATIO"`
}

var configKeys = map[string]any{
	"LOG_MODE":                    "development",
	"HTTP_ADDR":                   ":8000",
	"STATIC_DIR":                  "",
	"CORS_ORIGINS":                []string{},
	"DB_DRIVER":                   db.DriverSQLite,
	"DB_DSN":                      "",
	"POSTGRES_HOST":               "localhost",
	"POSTGRES_PORT":               "5432",
	"POSTGRES_USER":               "postgres",
	"POSTGRES_PASSWORD":           "",
	"POSTGRES_NAME":               "sdgraph",
	"REDIS_ADDR":                  "",
	"REDIS_PASSWORD":              "",
	"REDIS_DB":                    0,
	"REDIS_PREFIX":                "sdgraph:",
	"GRAPH_CACHE_SIZE":            64,
	"GRAPH_CACHE_TTL":             10 * time.Minute,
	"NEO4J_URI":                   "",
	"NEO4J_USER":                  "neo4j",
	"NEO4J_PASSWORD":              "",
	"NEO4J_DATABASE":              "",
	"NEO4J_TIMEOUT":               30 * time.Second,
	"METRICS_ENABLED":             true,
	"METRICS_ADDR":                "",
	"OTEL_ENABLED":                false,
	"OTEL_SERVICE_NAME":           "sdgraph-backend",
	"OTEL_ENVIRONMENT":            "",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "",
	"OTEL_EXPORTER_OTLP_HEADERS":  "",
	"OTEL_EXPORTER_OTLP_INSECURE": false,
	"OTEL_SAMPLE_RATIO":           1.0,
}

// LoadConfig reads config.yaml from configDir (or . and ./config when
// empty). A missing file is not an error.
func LoadConfig(configDir string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	for key, def := range configKeys {
		v.SetDefault(key, def)
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.CORSOrigins = splitList(cfg.CORSOrigins)
	return cfg, nil
}

// splitList accepts both a YAML list and a comma separated env value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c Config) DB() db.Config {
	return db.Config{
		Driver:   c.DBDriver,
		DSN:      c.DBDSN,
		Host:     c.PostgresHost,
		Port:     c.PostgresPort,
		User:     c.PostgresUser,
		Password: c.PostgresPassword,
		Name:     c.PostgresName,
	}
}

func (c Config) Redis() redis.Config {
	return redis.Config{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB, Prefix: c.RedisPrefix}
}

func (c Config) Neo4j() neo4jdb.Config {
	return neo4jdb.Config{
		URI:      c.Neo4jURI,
		User:     c.Neo4jUser,
		Password: c.Neo4jPassword,
		Database: c.Neo4jDatabase,
		Timeout:  c.Neo4jTimeout,
	}
}

func (c Config) Otel() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.OtelEnabled,
		ServiceName: c.OtelServiceName,
		Environment: c.OtelEnvironment,
		Endpoint:    c.OtelEndpoint,
		Headers:     observability.ParseHeaders(c.OtelHeaders),
		Insecure:    c.OtelInsecure,
		SampleRatio: c.OtelSampleRatio,
	}
}

// LogSafe lists the settings worth printing at startup.
func (c Config) LogSafe(log *logger.Logger) {
	log.Info("Config loaded",
		"http_addr", c.HTTPAddr,
		"db_driver", c.DBDriver,
		"db_dsn", c.DBDSN,
		"redis_addr", c.RedisAddr,
		"neo4j_uri", c.Neo4jURI,
		"metrics_enabled", c.MetricsEnabled,
		"otel_enabled", c.OtelEnabled,
	)
}
