package config

type Config interface {
	EnvConfig
	CorsConfig
	ClientConfig
	StoreConfig
	DevServerConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetLogLevel() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Client
	Store
	DevServer
}

func New() Config {
	return mainConfig{}
}
