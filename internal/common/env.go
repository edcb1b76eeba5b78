package common

import (
	"os"
	"strconv"
)

// Config holds all process-level settings, sourced once from the
// environment at startup via InitConf.
type Config struct {
	AppEnv         string // environment (development/production)
	WebhookURL     string // chat webhook endpoint for run notifications
	WebhookSecret  string // shared secret for inbound trigger signatures
	ContainerURL   string // default blob container URL (endpoint + bucket)
	RunnerAddr     string // base URL of the task-runner service
	ServerAddr     string // listen address for the HTTP surface
	DBPath         string // sqlite file backing the run-history store
	LogPath        string // log file path, empty means stderr
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
}

var config Config

func GetConfig() Config {
	return config
}

func InitConf() {
	useSSL, _ := strconv.ParseBool(getEnv("MINIO_USE_SSL", "false"))

	config = Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		WebhookURL:     getEnv("WEBHOOK_URL", ""),
		WebhookSecret:  getEnv("WEBHOOK_SECRET", ""),
		ContainerURL:   getEnv("CONTAINER_URL", ""),
		RunnerAddr:     getEnv("RUNNER_ADDR", "http://localhost:8090"),
		ServerAddr:     getEnv("SERVER_ADDR", ":8080"),
		DBPath:         getEnv("DB_PATH", "./automate.db"),
		LogPath:        getEnv("LOG_PATH", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioUseSSL:    useSSL,
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
