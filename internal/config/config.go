package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Session   SessionConfig
	Scale     ScaleConfig
	Scanner   ScannerConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

// BackendConfig points at the remote warehouse API this kiosk is a client of.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	StatePath        string
	TokenSkew        time.Duration
	AutoLogoutMargin time.Duration
	WatchdogInterval time.Duration
}

// ScaleConfig selects the weight feed source: a websocket URL, or an MQTT
// broker plus topic. An empty WebsocketURL and Broker means no scale.
type ScaleConfig struct {
	WebsocketURL string
	Broker       string
	Topic        string
	ClientID     string
	DefaultUnit  string
}

type ScannerConfig struct {
	Window time.Duration
}

type RateLimitConfig struct {
	GeneralRPS   float64
	GeneralBurst int
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()

	viper.SetDefault("BACKEND_TIMEOUT_MS", 10000)
	viper.SetDefault("SESSION_TOKEN_SKEW_MS", 5000)
	viper.SetDefault("SESSION_LOGOUT_MARGIN_MS", 2000)
	viper.SetDefault("SESSION_WATCHDOG_INTERVAL_MS", 60000)
	viper.SetDefault("SCANNER_WINDOW_MS", 100)
	viper.SetDefault("SCALE_DEFAULT_UNIT", "kg")

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
		Backend: BackendConfig{
			BaseURL: viper.GetString("BACKEND_URL"),
			Timeout: time.Duration(viper.GetInt("BACKEND_TIMEOUT_MS")) * time.Millisecond,
		},
		Session: SessionConfig{
			StatePath:        viper.GetString("SESSION_STATE_PATH"),
			TokenSkew:        time.Duration(viper.GetInt("SESSION_TOKEN_SKEW_MS")) * time.Millisecond,
			AutoLogoutMargin: time.Duration(viper.GetInt("SESSION_LOGOUT_MARGIN_MS")) * time.Millisecond,
			WatchdogInterval: time.Duration(viper.GetInt("SESSION_WATCHDOG_INTERVAL_MS")) * time.Millisecond,
		},
		Scale: ScaleConfig{
			WebsocketURL: viper.GetString("SCALE_WS_URL"),
			Broker:       viper.GetString("SCALE_MQTT_BROKER"),
			Topic:        viper.GetString("SCALE_MQTT_TOPIC"),
			ClientID:     viper.GetString("SCALE_MQTT_CLIENT_ID"),
			DefaultUnit:  viper.GetString("SCALE_DEFAULT_UNIT"),
		},
		Scanner: ScannerConfig{
			Window: time.Duration(viper.GetInt("SCANNER_WINDOW_MS")) * time.Millisecond,
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
	}

	if config.Session.StatePath == "" {
		config.Session.StatePath = defaultStatePath()
	}

	return config, nil
}

func defaultStatePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(homeDir, ".almacen-front", "session.json")
}
