package config

import "os"

type Config struct {
	Port            string
	Env             string
	DBDriver        string
	PostgresConnStr string
	SQLitePath      string
	JWTSecret       string
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		DBDriver:        getEnv("DB_DRIVER", "postgres"),
		PostgresConnStr: getEnv("POSTGRES_CONN_STR", ""),
		SQLitePath:      getEnv("SQLITE_PATH", "slugbase.db"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
