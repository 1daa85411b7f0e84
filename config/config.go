// Package config loads application configuration from the environment and
// an optional .env file, with development defaults for everything except
// secrets.
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Storage  StorageConfig
	ImageGen ImageGenConfig
	Queue    QueueConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

type StorageConfig struct {
	Disk       string // "local" or "s3"
	LocalRoot  string
	LocalURL   string
	S3Bucket   string
	S3Region   string
	S3Key      string
	S3Secret   string
	S3Endpoint string
	S3URL      string
}

type ImageGenConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type QueueConfig struct {
	Driver  string // "memory" or "redis"
	Workers int
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "adforge")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY_MINUTES", 24*60)
	viper.SetDefault("STORAGE_DISK", "local")
	viper.SetDefault("STORAGE_LOCAL_ROOT", "storage")
	viper.SetDefault("STORAGE_LOCAL_URL", "http://localhost:8080/storage")
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("IMAGEGEN_TIMEOUT_SECONDS", 60)
	viper.SetDefault("QUEUE_DRIVER", "memory")
	viper.SetDefault("QUEUE_WORKERS", 4)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Mongo: MongoConfig{
			URI:      viper.GetString("MONGO_URI"),
			Database: viper.GetString("MONGO_DB"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: time.Duration(viper.GetInt("JWT_ACCESS_EXPIRY_MINUTES")) * time.Minute,
		},
		Storage: StorageConfig{
			Disk:       viper.GetString("STORAGE_DISK"),
			LocalRoot:  viper.GetString("STORAGE_LOCAL_ROOT"),
			LocalURL:   viper.GetString("STORAGE_LOCAL_URL"),
			S3Bucket:   viper.GetString("S3_BUCKET"),
			S3Region:   viper.GetString("S3_REGION"),
			S3Key:      viper.GetString("S3_KEY"),
			S3Secret:   viper.GetString("S3_SECRET"),
			S3Endpoint: viper.GetString("S3_ENDPOINT"),
			S3URL:      viper.GetString("S3_URL"),
		},
		ImageGen: ImageGenConfig{
			URL:     viper.GetString("IMAGEGEN_URL"),
			APIKey:  viper.GetString("IMAGEGEN_API_KEY"),
			Timeout: time.Duration(viper.GetInt("IMAGEGEN_TIMEOUT_SECONDS")) * time.Second,
		},
		Queue: QueueConfig{
			Driver:  viper.GetString("QUEUE_DRIVER"),
			Workers: viper.GetInt("QUEUE_WORKERS"),
		},
	}
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}
