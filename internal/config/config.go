package config

type Config interface {
	EnvConfig
	SecurityConfig
	StorageConfig
	MailConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Security
	Storage
	Mail
}

func New() Config {
	return mainConfig{}
}
