package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the daemon needs to talk to the backend, the
// notification relay and the realtime transport.
type Config struct {
	BackendBaseURL string
	RelayBaseURL   string

	RealtimeURL     string
	RealtimeAPIKey  string
	RealtimeCluster string

	SessionDBPath string

	HTTPTimeout  time.Duration
	PollInterval time.Duration

	OpsPort      int
	AMQPURL      string
	AMQPExchange string
	Environment  string
	DebugRoutes  bool
}

// Load reads configuration from the environment, with an optional .env file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: skipping .env: %v", err)
	}

	return Config{
		BackendBaseURL:  getEnv("BACKEND_BASE_URL", "https://devcrm20.abacasys.com/ords/canwinn/mobile_api"),
		RelayBaseURL:    getEnv("RELAY_BASE_URL", "http://localhost:4000"),
		RealtimeURL:     getEnv("REALTIME_WS_URL", ""),
		RealtimeAPIKey:  getEnv("REALTIME_API_KEY", ""),
		RealtimeCluster: getEnv("REALTIME_CLUSTER", "ap2"),
		SessionDBPath:   getEnv("SESSION_DB_PATH", "session.db"),
		HTTPTimeout:     getDuration("HTTP_TIMEOUT", 10*time.Second),
		PollInterval:    getDuration("PRESENCE_POLL_INTERVAL", 5*time.Second),
		OpsPort:         getInt("OPS_PORT", 8083),
		AMQPURL:         os.Getenv("AMQP_URL"),
		AMQPExchange:    getEnv("AMQP_EXCHANGE", "chat_client_events"),
		Environment:     getEnv("ENVIRONMENT", "dev"),
		DebugRoutes:     os.Getenv("DEBUG_ROUTES") == "true",
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
