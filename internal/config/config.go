package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

func init() {
	ServiceConfig = Load()
}

var ServiceConfig *Config

type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	Consul    ConsulConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Upload    UploadConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	ServiceName    string
	ServiceID      string
	ServiceAddress string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

type MongoDBConfig struct {
	URI      string
	Database string
	PoolSize uint64
	Timeout  time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URI      string
	Exchange string
}

type ConsulConfig struct {
	Address string
	Enabled bool
}

type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
}

type RateLimitConfig struct {
	AuthMaxAttempts int
	AuthWindow      time.Duration
}

type UploadConfig struct {
	VideoDir     string
	MaxVideoSize int64
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "9300"),
			Host:           getEnv("HOST", "0.0.0.0"),
			ServiceName:    getEnv("LEARNING_SERVICE_NAME", "learning-service"),
			ServiceID:      getEnv("LEARNING_SERVICE_NAME", "learning-service") + "-" + getEnv("HOSTNAME", "learning"),
			ServiceAddress: getEnv("LEARNING_SERVICE_ADDRESS", "learning-service"),
			ReadTimeout:    getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
			AllowedOrigins: []string{getEnv("FE_ADDR", "http://localhost:3000")},
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "learning_service"),
			PoolSize: getEnvAsUint64("MONGO_POOL_SIZE", 100),
			Timeout:  getEnvAsDuration("MONGO_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URI:      getEnv("RABBITMQ_URI", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "learning.events"),
		},
		Consul: ConsulConfig{
			Address: getEnv("CONSUL_ADDRESS", ""),
			Enabled: getEnv("CONSUL_ADDRESS", "") != "",
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			TokenExpiry: getEnvAsDuration("TOKEN_EXPIRY", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			AuthMaxAttempts: getEnvAsInt("AUTH_RATE_LIMIT", 5),
			AuthWindow:      getEnvAsDuration("AUTH_RATE_WINDOW", time.Minute),
		},
		Upload: UploadConfig{
			VideoDir:     getEnv("VIDEO_UPLOAD_DIR", "uploads/videos"),
			MaxVideoSize: getEnvAsInt64("MAX_VIDEO_SIZE", 100<<20),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("Invalid int for %s, using default %d", key, fallback)
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
		log.Printf("Invalid int64 for %s, using default %d", key, fallback)
	}
	return fallback
}

func getEnvAsUint64(key string, fallback uint64) uint64 {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
			return parsed
		}
		log.Printf("Invalid uint64 for %s, using default %d", key, fallback)
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		log.Printf("Invalid duration for %s, using default %s", key, fallback)
	}
	return fallback
}
