package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Gateway      GatewayConfig
	Catalog      CatalogConfig
	Sync         SyncConfig
	Snapshot     SnapshotConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Snapshot.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARTENGINE_APP_ENV" required:"true"`
	Port         string `envconfig:"CARTENGINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CARTENGINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARTENGINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CARTENGINE_DB_DSN"`
	Driver string `envconfig:"CARTENGINE_DB_DRIVER" default:"postgres"`

	// SQLitePath backs the on-device snapshot store when UseSQLite is set.
	SQLitePath string `envconfig:"CARTENGINE_DB_SQLITE_PATH" default:"cart-engine.db"`

	LegacyHost     string `envconfig:"CARTENGINE_DB_HOST"`
	LegacyPort     int    `envconfig:"CARTENGINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARTENGINE_DB_USER"`
	LegacyPassword string `envconfig:"CARTENGINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARTENGINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARTENGINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARTENGINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTENGINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTENGINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTENGINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARTENGINE_REDIS_URL"`
	Address      string        `envconfig:"CARTENGINE_REDIS_ADDR"`
	Password     string        `envconfig:"CARTENGINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTENGINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTENGINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTENGINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTENGINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTENGINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTENGINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"CARTENGINE_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"CARTENGINE_JWT_ISSUER" required:"true"`
}

// GatewayConfig points at the authoritative remote cart service.
type GatewayConfig struct {
	BaseURL string        `envconfig:"CARTENGINE_GATEWAY_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"CARTENGINE_GATEWAY_TIMEOUT" default:"10s"`
}

// CatalogConfig points at the catalog collaborator that serves offer
// definitions and purchase limits.
type CatalogConfig struct {
	BaseURL string        `envconfig:"CARTENGINE_CATALOG_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"CARTENGINE_CATALOG_TIMEOUT" default:"10s"`
}

// SyncConfig tunes the debounced reconciliation loop.
type SyncConfig struct {
	Debounce time.Duration `envconfig:"CARTENGINE_SYNC_DEBOUNCE" default:"300ms"`
	Timeout  time.Duration `envconfig:"CARTENGINE_SYNC_TIMEOUT" default:"15s"`
}

// SnapshotConfig selects the persistence adapter backend and storage key.
type SnapshotConfig struct {
	Backend string `envconfig:"CARTENGINE_SNAPSHOT_BACKEND" default:"db"`
	Key     string `envconfig:"CARTENGINE_SNAPSHOT_KEY" default:"cart_snapshot"`
}

func (s SnapshotConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case SnapshotBackendDB, SnapshotBackendRedis:
		return nil
	}
	return fmt.Errorf("unknown snapshot backend %q (expected %q or %q)", s.Backend, SnapshotBackendDB, SnapshotBackendRedis)
}

// UseRedis reports whether the redis backend was selected.
func (s SnapshotConfig) UseRedis() bool {
	return strings.EqualFold(strings.TrimSpace(s.Backend), SnapshotBackendRedis)
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CARTENGINE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CARTENGINE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
