package config

type StorageConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetPostgresDSN() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Storage) GetRedisDB() int {
	return 0
}

func (Storage) GetPostgresDSN() string {
	return GetEnv("POSTGRES_DSN", "postgres://localhost:5432/penlight?sslmode=disable")
}
