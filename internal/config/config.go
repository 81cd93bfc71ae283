package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Engine   EngineConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	MetricsTTLSecond int
}

// EngineConfig carries the tunable defaults for the costing and
// replenishment engines. All of them can be overridden per request.
type EngineConfig struct {
	ServiceLevel     float64 // target service level for safety stock
	HistoricalDays   int     // demand window for velocity calculation
	ReorderBufferDay int     // buffer days added to recommended order qty
	GraceDays        int     // on-time delivery grace period
	BatchWorkers     int64   // concurrent products in batch ROP runs
	MarginThreshold  float64 // minimum margin (%) for emergency sourcing
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("SERVER_READ_TIMEOUT", 15)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "replenish")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_METRICS_TTL_SECONDS", 300)
	viper.SetDefault("ENGINE_SERVICE_LEVEL", 0.95)
	viper.SetDefault("ENGINE_HISTORICAL_DAYS", 30)
	viper.SetDefault("ENGINE_REORDER_BUFFER_DAYS", 7)
	viper.SetDefault("ENGINE_GRACE_DAYS", 1)
	viper.SetDefault("ENGINE_BATCH_WORKERS", 8)
	viper.SetDefault("ENGINE_MARGIN_THRESHOLD", 20.0)

	viper.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Mode:           viper.GetString("SERVER_MODE"),
			ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Cache: CacheConfig{
			Enabled:          viper.GetBool("CACHE_ENABLED"),
			RedisURL:         viper.GetString("REDIS_URL"),
			RedisHost:        viper.GetString("REDIS_HOST"),
			RedisPort:        viper.GetString("REDIS_PORT"),
			RedisPassword:    viper.GetString("REDIS_PASSWORD"),
			RedisDB:          viper.GetInt("REDIS_DB"),
			MetricsTTLSecond: viper.GetInt("CACHE_METRICS_TTL_SECONDS"),
		},
		Engine: EngineConfig{
			ServiceLevel:     viper.GetFloat64("ENGINE_SERVICE_LEVEL"),
			HistoricalDays:   viper.GetInt("ENGINE_HISTORICAL_DAYS"),
			ReorderBufferDay: viper.GetInt("ENGINE_REORDER_BUFFER_DAYS"),
			GraceDays:        viper.GetInt("ENGINE_GRACE_DAYS"),
			BatchWorkers:     viper.GetInt64("ENGINE_BATCH_WORKERS"),
			MarginThreshold:  viper.GetFloat64("ENGINE_MARGIN_THRESHOLD"),
		},
	}
}
