package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StorageConfig selects and configures the attachment backend.
type StorageConfig struct {
	// Driver is "local" (default) or "minio".
	Driver     string
	UploadsDir string
	MaxBytes   int64
	// Prune removes replaced or orphaned attachment files after a row change.
	Prune bool
	MinIO MinIOConfig
}

// RabbitMQConfig enables product event publishing when URL is set.
type RabbitMQConfig struct {
	URL   string
	Queue string
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string
	Format string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port             string
	PublicDir        string
	CORSAllowOrigins string
	BodyLimitBytes   int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	Database         DatabaseConfig
	Storage          StorageConfig
	RabbitMQ         RabbitMQConfig
	Log              LogConfig
}

const defaultUploadMaxBytes = 50 << 20

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	maxBytes := getEnvInt64("UPLOAD_MAX_BYTES", defaultUploadMaxBytes)
	return &AppConfig{
		Port:             getEnv("PORT", "3000"),
		PublicDir:        getEnv("PUBLIC_DIR", "public"),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		// two attachments plus form fields
		BodyLimitBytes: getEnvInt("BODY_LIMIT_BYTES", int(2*maxBytes)+(1<<20)),
		ReadTimeout:    time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SEC", 60)) * time.Second,
		WriteTimeout:   time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SEC", 60)) * time.Second,
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", "postgres"),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", "inventario"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
			UploadsDir: getEnv("UPLOADS_DIR", "uploads"),
			MaxBytes:   maxBytes,
			Prune:      getEnvBool("UPLOADS_PRUNE", false),
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", ""),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
		},
		RabbitMQ: RabbitMQConfig{
			URL:   getEnv("RABBITMQ_URL", ""),
			Queue: getEnv("RABBITMQ_QUEUE", "product_events"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil && i > 0 {
			return i
		}
	}
	return def
}
