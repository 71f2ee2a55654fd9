package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Env holds the non-database runtime configuration.
type Env struct {
	HTTPAddr      string
	NATSURL       string
	OracleURL     string
	OracleTimeout time.Duration
	MetricsAddr   string
	JWTSecret     string
}

// LoadEnv reads the process environment (after loading .env when present).
func LoadEnv() (*Env, error) {
	_ = godotenv.Load()

	env := &Env{
		HTTPAddr:  getEnv("HTTP_ADDR", "0.0.0.0:8080"),
		NATSURL:   getEnv("NATS_URL", "nats://127.0.0.1:4222"),
		OracleURL: getEnv("ORACLE_URL", "http://127.0.0.1:5000"),
		// Empty METRICS_ADDR disables the metrics server.
		MetricsAddr: os.Getenv("METRICS_ADDR"),
		JWTSecret:   getEnv("JWT_SECRET", "supersecret"),
	}

	if v := os.Getenv("ORACLE_TIMEOUT_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("invalid ORACLE_TIMEOUT_MS: %q", v)
		}
		env.OracleTimeout = time.Duration(ms) * time.Millisecond
	} else {
		env.OracleTimeout = 3 * time.Second
	}

	return env, nil
}
