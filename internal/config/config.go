package config

import (
	"crypto/rsa"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session storage backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Port string

	RemoteAPIURL  string
	RemoteTimeout time.Duration

	SessionBackend   string
	SessionKeyPrefix string
	RedisAddress     string
	RedisPassword    string
	DatabaseURL      string

	RabbitMQURL     string
	StatusQueueName string

	// JWTPublicKey is nil when no key is configured; credentials are then
	// checked for shape and expiry only.
	JWTPublicKey *rsa.PublicKey

	VaccinationLookaheadDays int
	VaccinationStatusSource  string

	LogLevel    string
	LogFormat   string
	CORSOrigins []string
}

func Load() *Config {
	remoteURL := os.Getenv("REMOTE_API_URL")
	if remoteURL == "" {
		panic("REMOTE_API_URL environment variable is required")
	}

	backend := strings.ToLower(getEnv("SESSION_BACKEND", BackendMemory))
	switch backend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		panic("SESSION_BACKEND must be one of memory, redis, postgres; got " + backend)
	}

	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if backend == BackendPostgres && dbURL == "" {
		panic("DB_CONNECTION_STRING environment variable is required for the postgres backend")
	}

	var publicKey *rsa.PublicKey
	if path := os.Getenv("PUBLIC_KEY_PATH"); path != "" {
		key, err := loadPublicKey(path)
		if err != nil {
			panic("Failed to load public key: " + err.Error())
		}
		publicKey = key
	}

	source := strings.ToLower(getEnv("VACCINATION_STATUS_SOURCE", "derived"))
	if source != "derived" && source != "remote" {
		panic("VACCINATION_STATUS_SOURCE must be derived or remote; got " + source)
	}

	return &Config{
		Port:                     getEnv("PORT", "8080"),
		RemoteAPIURL:             strings.TrimRight(remoteURL, "/"),
		RemoteTimeout:            getDuration("REMOTE_TIMEOUT", 10*time.Second),
		SessionBackend:           backend,
		SessionKeyPrefix:         getEnv("SESSION_KEY_PREFIX", "console:session:"),
		RedisAddress:             getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:            os.Getenv("REDIS_PASSWORD"),
		DatabaseURL:              dbURL,
		RabbitMQURL:              os.Getenv("RABBITMQ_URL"),
		StatusQueueName:          getEnv("STATUS_QUEUE_NAME", "status-changes"),
		JWTPublicKey:             publicKey,
		VaccinationLookaheadDays: getInt("VACCINATION_LOOKAHEAD_DAYS", 30),
		VaccinationStatusSource:  source,
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		LogFormat:                getEnv("LOG_FORMAT", "json"),
		CORSOrigins:              splitList(getEnv("CORS_ORIGINS", "*")),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(key + " is not a valid duration: " + err.Error())
	}
	return d
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		panic(key + " must be a positive integer")
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(keyData)
	if err != nil {
		return nil, err
	}
	return publicKey, nil
}
