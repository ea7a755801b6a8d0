package config // package config loads application configuration from environment variables

import (
	"log"     // log reports configuration errors and halts execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings"
	"time"
)

// Config holds all runtime configuration values of the portal.  Each field
// corresponds to an environment variable.  Required values are enforced by
// must(); the rest fall back to defaults.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	Port            string        // HTTP port to listen on
	BackendBaseURL  string        // root of the BQOMIS REST API, e.g. http://localhost:8080/api
	BackendTimeout  time.Duration // per-request timeout for backend calls
	DBUser          string        // session store username
	DBPass          string        // session store password (optional)
	DBHost          string        // session store host address
	DBPort          string        // session store port number
	DBName          string        // session store database name
	JWTSecret       string        // secret used to sign portal JWTs
	AccessTTLMin    int           // access token time-to-live in minutes
	RefreshTTLDays  int           // refresh token time-to-live in days
	LogLevel        string        // debug, info, warn or error
	AMQPURL         string        // RabbitMQ URL; empty disables booking events
	FinderIdleTTL   time.Duration // idle time after which a user's finder state is dropped
	OTelServiceName string        // service name reported to the trace exporter
}

// Load reads configuration values from environment variables and returns a
// Config.  Missing required variables cause the program to exit with a
// fatal log message.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),
		Port:            must("APP_PORT"),
		BackendBaseURL:  strings.TrimRight(must("BACKEND_BASE_URL"), "/"),
		BackendTimeout:  envDur("BACKEND_TIMEOUT", 15*time.Second),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"), // empty allowed
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		JWTSecret:       must("JWT_SECRET"),
		AccessTTLMin:    mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:  mustInt("REFRESH_TOKEN_TTL_DAYS"),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		AMQPURL:         amqpURL(),
		FinderIdleTTL:   envDur("FINDER_IDLE_TTL", 30*time.Minute),
		OTelServiceName: envStr("OTEL_SERVICE_NAME", "bqomis-portal"),
	}
}

// LoadBackend reads only what a backend client needs.  The devdata CLI
// uses it so it can run without the portal's database settings.
func LoadBackend() (baseURL string, timeout time.Duration) {
	return strings.TrimRight(must("BACKEND_BASE_URL"), "/"), envDur("BACKEND_TIMEOUT", 15*time.Second)
}

// LoadDatabase reads only the session store settings.  The migrate command
// uses it.
func LoadDatabase() (user, pass, host, port, name string) {
	return must("DB_USER"), os.Getenv("DB_PASS"), must("DB_HOST"), must("DB_PORT"), must("DB_NAME")
}

// amqpURL prefers AMQP_URL and accepts RABBITMQ_URL as an alias.
func amqpURL() string {
	if v := os.Getenv("AMQP_URL"); v != "" {
		return v
	}
	return os.Getenv("RABBITMQ_URL")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
