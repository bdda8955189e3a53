// internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Dataset     DatasetConfig
	Chart       ChartConfig
	WebSocket   WebSocketConfig
	Export      ExportConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatasetConfig holds the location of the trips file
type DatasetConfig struct {
	Path  string
	Sheet string
}

// ChartConfig holds figure geometry and map configuration
type ChartConfig struct {
	Width       int
	Height      int
	MapboxToken string
	MapZoom     float64
	MapOpacity  float64
}

// WebSocketConfig holds keepalive and size limits for callback connections
type WebSocketConfig struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
}

// ExportConfig holds limits for spreadsheet downloads. MaxRows of zero
// means the sheet's own row limit.
type ExportConfig struct {
	MaxRows int
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	pongWait := getEnvAsDuration("WS_PONG_WAIT", 60*time.Second)

	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8050),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Dataset: DatasetConfig{
			Path:  getEnv("DATASET_PATH", "data/uber-raw-data.csv"),
			Sheet: getEnv("DATASET_SHEET", ""),
		},
		Chart: ChartConfig{
			Width:       getEnvAsInt("CHART_WIDTH", 600),
			Height:      getEnvAsInt("CHART_HEIGHT", 400),
			MapboxToken: getEnv("MAPBOX_TOKEN", ""),
			MapZoom:     getEnvAsFloat("MAP_ZOOM", 10),
			MapOpacity:  getEnvAsFloat("MAP_OPACITY", 0.2),
		},
		WebSocket: WebSocketConfig{
			WriteWait:      getEnvAsDuration("WS_WRITE_WAIT", 10*time.Second),
			PongWait:       pongWait,
			PingPeriod:     getEnvAsDuration("WS_PING_PERIOD", pongWait*9/10),
			MaxMessageSize: int64(getEnvAsInt("WS_MAX_MESSAGE_SIZE", 4096)),
		},
		Export: ExportConfig{
			MaxRows: getEnvAsInt("EXPORT_MAX_ROWS", 0),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	var errs []error

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", config.Server.Port))
	}
	if config.Dataset.Path == "" {
		errs = append(errs, errors.New("dataset path must be set"))
	}
	if config.Chart.Width <= 0 || config.Chart.Height <= 0 {
		errs = append(errs, fmt.Errorf("chart size %dx%d must be positive", config.Chart.Width, config.Chart.Height))
	}
	if config.Chart.MapOpacity < 0 || config.Chart.MapOpacity > 1 {
		errs = append(errs, fmt.Errorf("map opacity %v must be in [0, 1]", config.Chart.MapOpacity))
	}
	if config.WebSocket.PingPeriod >= config.WebSocket.PongWait {
		errs = append(errs, errors.New("websocket ping period must be shorter than pong wait"))
	}
	if config.WebSocket.MaxMessageSize <= 0 {
		errs = append(errs, errors.New("websocket max message size must be positive"))
	}
	if config.Export.MaxRows < 0 {
		errs = append(errs, fmt.Errorf("export max rows %d must not be negative", config.Export.MaxRows))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address of the server
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}
