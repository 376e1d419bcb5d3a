// Package config loads FinXray settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string        `validate:"required"`
	DBPath         string        `validate:"required"`
	WebDir         string        `validate:"required"`
	BackendURL     string        `validate:"omitempty,url"`
	BackendTimeout time.Duration `validate:"gt=0"`
	TrialLimit     int           `validate:"gte=1"`
	LogLevel       string        `validate:"oneof=debug info warn error"`
	LogJSON        bool
	OTLPEndpoint   string
	AnthropicKey   string
}

func Default() Config {
	return Config{
		Addr:           ":8090",
		DBPath:         "finxray.db",
		WebDir:         "web",
		BackendTimeout: 60 * time.Second,
		TrialLimit:     3,
		LogLevel:       "info",
		LogJSON:        true,
	}
}

// Load reads an optional .env file and then the process environment.
// Unparseable numbers and booleans fall back to defaults.
func Load() Config {
	_ = godotenv.Load()
	d := Default()
	return Config{
		Addr:           getEnvString("FINXRAY_ADDR", d.Addr),
		DBPath:         getEnvString("FINXRAY_DB_PATH", d.DBPath),
		WebDir:         getEnvString("FINXRAY_WEB_DIR", d.WebDir),
		BackendURL:     getEnvString("FINXRAY_BACKEND_URL", d.BackendURL),
		BackendTimeout: getEnvDuration("FINXRAY_BACKEND_TIMEOUT", d.BackendTimeout),
		TrialLimit:     getEnvInt("FINXRAY_TRIAL_LIMIT", d.TrialLimit),
		LogLevel:       strings.ToLower(getEnvString("FINXRAY_LOG_LEVEL", d.LogLevel)),
		LogJSON:        getEnvBool("FINXRAY_LOG_JSON", d.LogJSON),
		OTLPEndpoint:   getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		AnthropicKey:   getEnvString("ANTHROPIC_API_KEY", ""),
	}
}

var validate = validator.New()

func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func getEnvString(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}
