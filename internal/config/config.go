package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"roadmap/internal/logger"
)

// ARCHITECTURAL DISCOVERY: Configuration layer serves as system-wide settings coordinator
// Clean separation between configuration management and business logic
type Config struct {
	Database  *DatabaseConfig  `json:"database"`
	HTTP      *HTTPConfig      `json:"http"`
	WebSocket *WebSocketConfig `json:"websocket"`
	Notes     *NotesConfig     `json:"notes"`
	Session   *SessionConfig   `json:"session"`
	Log       *logger.Config   `json:"log"`
}

// DatabaseConfig locates the sqlite file holding session state
type DatabaseConfig struct {
	Path    string        `json:"path"`
	Timeout time.Duration `json:"timeout"`
}

// HTTPConfig controls the API listener
type HTTPConfig struct {
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	Host         string        `json:"host"`
}

// WebSocketConfig controls the event channel
type WebSocketConfig struct {
	PingInterval    time.Duration `json:"ping_interval"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	BufferSize      int           `json:"buffer_size"`
	EventsPerMinute int           `json:"events_per_minute"`
}

// NotesConfig points at the flat note log
type NotesConfig struct {
	Path string `json:"path"`
}

// SessionConfig controls how long an untouched session survives
type SessionConfig struct {
	IdleTimeout   time.Duration `json:"idle_timeout"`
	SweepSchedule string        `json:"sweep_schedule"` // cron spec, e.g. "@every 1m"
}

// DefaultConfig returns the settings used when nothing else is given.
// The note log keeps the historical name notes.txt in the working directory.
func DefaultConfig() *Config {
	return &Config{
		Database: &DatabaseConfig{
			Path:    "./data/roadmap.db",
			Timeout: 30 * time.Second,
		},
		HTTP: &HTTPConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			Host:         "0.0.0.0",
		},
		WebSocket: &WebSocketConfig{
			PingInterval:    30 * time.Second,
			ReadTimeout:     60 * time.Second,
			WriteTimeout:    10 * time.Second,
			BufferSize:      100,
			EventsPerMinute: 100,
		},
		Notes: &NotesConfig{
			Path: "notes.txt",
		},
		Session: &SessionConfig{
			IdleTimeout:   2 * time.Hour,
			SweepSchedule: "@every 1m",
		},
		Log: &logger.Config{
			Level:   "info",
			Console: true,
		},
	}
}

// Validate rejects configurations that would fail at runtime
func (c *Config) Validate() error {
	if c.Database == nil {
		return fmt.Errorf("database configuration is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.Database.Timeout <= 0 {
		return fmt.Errorf("database timeout must be positive")
	}

	if c.HTTP == nil {
		return fmt.Errorf("HTTP configuration is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP port must be between 1 and 65535")
	}
	if c.HTTP.ReadTimeout <= 0 {
		return fmt.Errorf("HTTP read timeout must be positive")
	}
	if c.HTTP.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP write timeout must be positive")
	}
	if c.HTTP.Host == "" {
		return fmt.Errorf("HTTP host cannot be empty")
	}

	if c.WebSocket == nil {
		return fmt.Errorf("WebSocket configuration is required")
	}
	if c.WebSocket.PingInterval <= 0 {
		return fmt.Errorf("WebSocket ping interval must be positive")
	}
	if c.WebSocket.ReadTimeout <= c.WebSocket.PingInterval {
		return fmt.Errorf("WebSocket read timeout must exceed the ping interval")
	}
	if c.WebSocket.WriteTimeout <= 0 {
		return fmt.Errorf("WebSocket write timeout must be positive")
	}
	if c.WebSocket.BufferSize <= 0 {
		return fmt.Errorf("WebSocket buffer size must be positive")
	}
	if c.WebSocket.EventsPerMinute <= 0 {
		return fmt.Errorf("WebSocket events per minute must be positive")
	}

	if c.Notes == nil || c.Notes.Path == "" {
		return fmt.Errorf("notes path cannot be empty")
	}

	if c.Session == nil {
		return fmt.Errorf("session configuration is required")
	}
	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("session idle timeout must be positive")
	}
	if c.Session.SweepSchedule == "" {
		return fmt.Errorf("session sweep schedule cannot be empty")
	}

	if c.Log == nil {
		return fmt.Errorf("log configuration is required")
	}

	return nil
}

// LoadFromEnv overlays ROADMAP_* environment variables on the defaults.
// Unparseable values are ignored and the default is kept.
func LoadFromEnv() *Config {
	config := DefaultConfig()
	applyEnv(config)
	return config
}

func applyEnv(config *Config) {
	if port := os.Getenv("ROADMAP_HTTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.HTTP.Port = p
		}
	}
	if host := os.Getenv("ROADMAP_HTTP_HOST"); host != "" {
		config.HTTP.Host = host
	}
	envDuration("ROADMAP_HTTP_READ_TIMEOUT", &config.HTTP.ReadTimeout)
	envDuration("ROADMAP_HTTP_WRITE_TIMEOUT", &config.HTTP.WriteTimeout)

	if dbPath := os.Getenv("ROADMAP_DATABASE_PATH"); dbPath != "" {
		config.Database.Path = dbPath
	}
	envDuration("ROADMAP_DATABASE_TIMEOUT", &config.Database.Timeout)

	envDuration("ROADMAP_WEBSOCKET_PING_INTERVAL", &config.WebSocket.PingInterval)
	envDuration("ROADMAP_WEBSOCKET_READ_TIMEOUT", &config.WebSocket.ReadTimeout)
	envDuration("ROADMAP_WEBSOCKET_WRITE_TIMEOUT", &config.WebSocket.WriteTimeout)
	if bufferSize := os.Getenv("ROADMAP_WEBSOCKET_BUFFER_SIZE"); bufferSize != "" {
		if size, err := strconv.Atoi(bufferSize); err == nil {
			config.WebSocket.BufferSize = size
		}
	}
	if rate := os.Getenv("ROADMAP_WEBSOCKET_EVENTS_PER_MINUTE"); rate != "" {
		if n, err := strconv.Atoi(rate); err == nil {
			config.WebSocket.EventsPerMinute = n
		}
	}

	if notes := os.Getenv("ROADMAP_NOTES_PATH"); notes != "" {
		config.Notes.Path = notes
	}

	envDuration("ROADMAP_SESSION_IDLE_TIMEOUT", &config.Session.IdleTimeout)
	if sched := os.Getenv("ROADMAP_SESSION_SWEEP_SCHEDULE"); sched != "" {
		config.Session.SweepSchedule = sched
	}

	if level := os.Getenv("ROADMAP_LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
	if file := os.Getenv("ROADMAP_LOG_FILE"); file != "" {
		config.Log.File = file
	}
	if pretty := os.Getenv("ROADMAP_LOG_PRETTY"); pretty != "" {
		if b, err := strconv.ParseBool(pretty); err == nil {
			config.Log.Pretty = b
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// ConfigFile is the on-disk shape; durations are strings like "30s".
// FUNCTIONAL DISCOVERY: Separate struct for file parsing to handle duration strings
type ConfigFile struct {
	Database *struct {
		Path    string `json:"path" yaml:"path"`
		Timeout string `json:"timeout" yaml:"timeout"`
	} `json:"database" yaml:"database"`
	HTTP *struct {
		Port         int    `json:"port" yaml:"port"`
		Host         string `json:"host" yaml:"host"`
		ReadTimeout  string `json:"read_timeout" yaml:"read_timeout"`
		WriteTimeout string `json:"write_timeout" yaml:"write_timeout"`
	} `json:"http" yaml:"http"`
	WebSocket *struct {
		PingInterval    string `json:"ping_interval" yaml:"ping_interval"`
		ReadTimeout     string `json:"read_timeout" yaml:"read_timeout"`
		WriteTimeout    string `json:"write_timeout" yaml:"write_timeout"`
		BufferSize      int    `json:"buffer_size" yaml:"buffer_size"`
		EventsPerMinute int    `json:"events_per_minute" yaml:"events_per_minute"`
	} `json:"websocket" yaml:"websocket"`
	Notes *struct {
		Path string `json:"path" yaml:"path"`
	} `json:"notes" yaml:"notes"`
	Session *struct {
		IdleTimeout   string `json:"idle_timeout" yaml:"idle_timeout"`
		SweepSchedule string `json:"sweep_schedule" yaml:"sweep_schedule"`
	} `json:"session" yaml:"session"`
	Log *struct {
		Level   string `json:"level" yaml:"level"`
		File    string `json:"file" yaml:"file"`
		Console *bool  `json:"console" yaml:"console"`
		Pretty  *bool  `json:"pretty" yaml:"pretty"`
	} `json:"log" yaml:"log"`
}

// LoadFromFile reads a JSON or YAML file (chosen by extension) over the defaults.
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()
	if err := applyFile(config, path); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return config, nil
}

// LoadConfigWithPrecedence builds the runtime config: file > environment > defaults.
// An empty path skips the file layer.
func LoadConfigWithPrecedence(path string) (*Config, error) {
	config := LoadFromEnv()

	if path != "" {
		if err := applyFile(config, path); err != nil {
			return nil, err
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func applyFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file ConfigFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		err = json.Unmarshal(data, &file)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if f := file.Database; f != nil {
		if f.Path != "" {
			config.Database.Path = f.Path
		}
		if err := parseDuration("database.timeout", f.Timeout, &config.Database.Timeout); err != nil {
			return err
		}
	}

	if f := file.HTTP; f != nil {
		if f.Port > 0 {
			config.HTTP.Port = f.Port
		}
		if f.Host != "" {
			config.HTTP.Host = f.Host
		}
		if err := parseDuration("http.read_timeout", f.ReadTimeout, &config.HTTP.ReadTimeout); err != nil {
			return err
		}
		if err := parseDuration("http.write_timeout", f.WriteTimeout, &config.HTTP.WriteTimeout); err != nil {
			return err
		}
	}

	if f := file.WebSocket; f != nil {
		if f.BufferSize > 0 {
			config.WebSocket.BufferSize = f.BufferSize
		}
		if f.EventsPerMinute > 0 {
			config.WebSocket.EventsPerMinute = f.EventsPerMinute
		}
		if err := parseDuration("websocket.ping_interval", f.PingInterval, &config.WebSocket.PingInterval); err != nil {
			return err
		}
		if err := parseDuration("websocket.read_timeout", f.ReadTimeout, &config.WebSocket.ReadTimeout); err != nil {
			return err
		}
		if err := parseDuration("websocket.write_timeout", f.WriteTimeout, &config.WebSocket.WriteTimeout); err != nil {
			return err
		}
	}

	if f := file.Notes; f != nil && f.Path != "" {
		config.Notes.Path = f.Path
	}

	if f := file.Session; f != nil {
		if err := parseDuration("session.idle_timeout", f.IdleTimeout, &config.Session.IdleTimeout); err != nil {
			return err
		}
		if f.SweepSchedule != "" {
			config.Session.SweepSchedule = f.SweepSchedule
		}
	}

	if f := file.Log; f != nil {
		if f.Level != "" {
			config.Log.Level = f.Level
		}
		if f.File != "" {
			config.Log.File = f.File
		}
		if f.Console != nil {
			config.Log.Console = *f.Console
		}
		if f.Pretty != nil {
			config.Log.Pretty = *f.Pretty
		}
	}

	return nil
}

func parseDuration(field, value string, dst *time.Duration) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid duration for %s: %w", field, err)
	}
	*dst = d
	return nil
}
