package config

type StoreConfig interface {
	GetCredentialStoreDriver() string
	GetRedisAddr() string
	GetRedisUsername() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
	GetSQLiteDSN() string
}

type Store struct{}

var _ StoreConfig = Store{}

// GetCredentialStoreDriver is one of memory, file, redis or sqlite
func (Store) GetCredentialStoreDriver() string {
	return GetEnv("CREDENTIAL_STORE", "file")
}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Store) GetRedisUsername() string {
	return GetEnv("REDIS_USERNAME", "")
}

func (Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Store) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

func (Store) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", "storeadmin:credentials:")
}

func (Store) GetSQLiteDSN() string {
	return GetEnv("SQLITE_DSN", "")
}
