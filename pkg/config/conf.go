package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/hedamo/transparency/pkg/question"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600

	minPort = 1
	maxPort = 65535
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config represents app config object.
type Config struct {
	Server    Server    `yaml:"server" json:"server"`
	Inference Inference `yaml:"inference" json:"inference"`
	Log       Log       `yaml:"log" json:"log"`
}

// Server configures the HTTP API.
type Server struct {
	Address        string   `yaml:"address" json:"address"`
	Port           int      `yaml:"port" json:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
	MaxConcurrent  int      `yaml:"max_concurrent" json:"max_concurrent"`
}

// Inference configures question generation. An empty model selects the
// provider default.
type Inference struct {
	Provider    string        `yaml:"provider" json:"provider"`
	URL         string        `yaml:"url" json:"url"`
	Model       string        `yaml:"model" json:"model"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	Concurrency int           `yaml:"concurrency" json:"concurrency"`
}

// Log configures logging.
type Log struct {
	Level string `yaml:"level" json:"level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server: Server{
			Address:        "127.0.0.1",
			Port:           8000,
			AllowedOrigins: []string{"*"},
			MaxConcurrent:  100,
		},
		Inference: Inference{
			Provider:    question.ProviderTemplate,
			URL:         question.DefaultHuggingFaceURL,
			Timeout:     30 * time.Second,
			Concurrency: 3,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port < minPort || c.Server.Port > maxPort {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.MaxConcurrent <= 0 {
		return fmt.Errorf("%w: max_concurrent must be positive", ErrInvalidConfig)
	}
	if !slices.Contains(question.Providers, c.Inference.Provider) {
		return fmt.Errorf("%w: provider %q, expected one of [%s]",
			ErrInvalidConfig, c.Inference.Provider, strings.Join(question.Providers, ", "))
	}
	if c.Inference.Timeout <= 0 {
		return fmt.Errorf("%w: inference timeout must be positive", ErrInvalidConfig)
	}
	if c.Inference.Concurrency <= 0 {
		return fmt.Errorf("%w: inference concurrency must be positive", ErrInvalidConfig)
	}
	return nil
}

// Save writes c into dirPath.
func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", configFileName, err)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one.
// Settings missing from the file keep their default values.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirPath, dirMode); err != nil {
			return nil, fmt.Errorf("failed to create dir %s: %w", dirPath, err)
		}
	}

	path := filepath.Join(dirPath, configFileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating default config", "path", path)
		if err := Save(dirPath, Default()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	j, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening config file %s: %w", path, err)
	}
	defer j.Close()

	b, err := io.ReadAll(j)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file %s: %w", path, err)
	}
	return c, nil
}

// GetOrCreateHomeDir returns the app directory under the user home.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("failed to get user home dir: %w", err)
	}
	slog.Debug("home dir", "path", home)

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, fmt.Errorf("failed to create dir %s: %w", dir, err)
		}
		created = true
	}
	return dir, created, nil
}
