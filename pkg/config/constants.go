package config

const (
	EnvPrefix = "CARTENGINE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	SnapshotBackendDB    = "db"
	SnapshotBackendRedis = "redis"

	EnvDBDSN  = "CARTENGINE_DB_DSN"
	EnvDBHost = "CARTENGINE_DB_HOST"
	EnvDBUser = "CARTENGINE_DB_USER"
	EnvDBName = "CARTENGINE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
