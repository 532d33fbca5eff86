package config // package config loads application configuration from environment variables

import (
	"log"
	"os"

	"github.com/iliyamo/atelier-booking/internal/model"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Per-concern settings (Redis, rate limiting,
// caching, mail, uploads) have their own loaders in this package.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	StoreBackend string // "mysql" or "memory"
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign access tokens
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing
	AMQPURL      string // RabbitMQ URL for booking notifications ("" disables)
	LogDir       string // directory of the booking journal
	Store        StoreConfig
	SeatPolicies model.SeatPolicies
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Database settings
// are only required for the mysql backend.
func Load() Config {
	c := Config{
		Env:          must("APP_ENV"),
		Port:         must("APP_PORT"),
		StoreBackend: envStr("STORE_BACKEND", "mysql"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: envInt("ACCESS_TOKEN_TTL_MIN", 60),
		BcryptCost:   envInt("BCRYPT_COST", 12),
		AMQPURL:      amqpURL(),
		LogDir:       envStr("LOG_DIR", "logs"),
		Store:        LoadStoreConfig(),
		SeatPolicies: LoadSeatPolicies(),
	}
	if c.StoreBackend == "mysql" {
		c.DBUser = must("DB_USER")
		c.DBPass = os.Getenv("DB_PASS")
		c.DBHost = must("DB_HOST")
		c.DBPort = must("DB_PORT")
		c.DBName = must("DB_NAME")
	}
	return c
}

// amqpURL honours RABBITMQ_URL then AMQP_URL.  Notifications are off when
// neither is set.
func amqpURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
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
