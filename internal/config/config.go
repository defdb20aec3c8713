// internal/config/config.go
//
// This package handles configuration and the .farmcal directory
// structure. Both the TUI client and the bundled service read their
// settings from .farmcal/config.yaml.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// FarmcalDir is the name of the directory created under the user's home
	FarmcalDir = ".farmcal"

	defaultServiceURL = "http://localhost:5004"
	defaultListenAddr = ":5004"
	defaultAIEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	defaultAIModel    = "gemini-2.5-flash"
)

const defaultConfigYAML = `# farmcal configuration
version: 1

# Client settings: where the TUI finds the task service.
client:
  service_url: http://localhost:5004

# Server settings for "farmcal serve".
server:
  listen_addr: ":5004"
  # Leave redis_addr empty to keep tasks in process memory.
  redis_addr: ""

# AI advisor settings. API keys come from FARMCAL_API_KEY_1..3.
ai:
  endpoint: https://generativelanguage.googleapis.com/v1beta
  model: gemini-2.5-flash
`

// ClientConfig holds the TUI side of config.yaml.
type ClientConfig struct {
	ServiceURL string `yaml:"service_url"`
}

// ServerConfig holds the "farmcal serve" side of config.yaml.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	RedisAddr  string `yaml:"redis_addr,omitempty"`
}

// AIConfig points the advisor at its generation endpoint.
type AIConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

// FileConfig models .farmcal/config.yaml.
type FileConfig struct {
	Version int          `yaml:"version"`
	Client  ClientConfig `yaml:"client"`
	Server  ServerConfig `yaml:"server"`
	AI      AIConfig     `yaml:"ai"`
}

// Config holds the runtime configuration for farmcal.
type Config struct {
	// BaseDir is the directory holding config.yaml and logs, normally
	// ~/.farmcal but overridable for tests and alternate profiles.
	BaseDir string

	File FileConfig
}

// DefaultDir resolves the config directory: FARMCAL_HOME if set,
// otherwise .farmcal under the user's home.
func DefaultDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("FARMCAL_HOME")); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home: %w", err)
	}
	return filepath.Join(home, FarmcalDir), nil
}

// InitDir creates the config directory structure and seeds a default
// config.yaml when none exists. Called on every startup.
func InitDir(baseDir string) error {
	dirs := []string{
		baseDir,
		filepath.Join(baseDir, "logs"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return ensureConfigFile(filepath.Join(baseDir, "config.yaml"))
}

// New creates a Config for baseDir, loading config.yaml when present.
func New(baseDir string) (*Config, error) {
	cfg := &Config{
		BaseDir: baseDir,
		File:    defaultFileConfig(),
	}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.BaseDir, "logs")
}

// ConfigPath returns the on-disk location for the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.BaseDir, "config.yaml")
}

// ServiceURL returns the task service base URL the client talks to.
func (c *Config) ServiceURL() string {
	return c.File.Client.ServiceURL
}

// ListenAddr returns the address "farmcal serve" binds to.
func (c *Config) ListenAddr() string {
	return c.File.Server.ListenAddr
}

// RedisAddr returns the redis address, empty for in-memory storage.
func (c *Config) RedisAddr() string {
	return c.File.Server.RedisAddr
}

// AIEndpoint returns the advisor's generation endpoint.
func (c *Config) AIEndpoint() string {
	return c.File.AI.Endpoint
}

// AIModel returns the advisor's model name.
func (c *Config) AIModel() string {
	return c.File.AI.Model
}

// SetServiceURL updates the client's service URL and persists the value
// back to config.yaml.
func (c *Config) SetServiceURL(u string) error {
	u = strings.TrimSpace(u)
	if u == "" {
		return fmt.Errorf("config: service url is required")
	}
	c.File.Client.ServiceURL = u
	return c.save()
}

func (c *Config) load() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed FileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.File = parsed
	return nil
}

func defaultFileConfig() FileConfig {
	return FileConfig{
		Version: 1,
		Client:  ClientConfig{ServiceURL: defaultServiceURL},
		Server:  ServerConfig{ListenAddr: defaultListenAddr},
		AI:      AIConfig{Endpoint: defaultAIEndpoint, Model: defaultAIModel},
	}
}

func (fc *FileConfig) applyDefaults() {
	if fc.Version == 0 {
		fc.Version = 1
	}
	if fc.Client.ServiceURL == "" {
		fc.Client.ServiceURL = defaultServiceURL
	}
	if fc.Server.ListenAddr == "" {
		fc.Server.ListenAddr = defaultListenAddr
	}
	if fc.AI.Endpoint == "" {
		fc.AI.Endpoint = defaultAIEndpoint
	}
	if fc.AI.Model == "" {
		fc.AI.Model = defaultAIModel
	}
}

func (fc *FileConfig) normalize() {
	fc.Client.ServiceURL = strings.TrimRight(strings.TrimSpace(fc.Client.ServiceURL), "/")
	fc.Server.ListenAddr = strings.TrimSpace(fc.Server.ListenAddr)
	fc.Server.RedisAddr = strings.TrimSpace(fc.Server.RedisAddr)
	fc.AI.Endpoint = strings.TrimRight(strings.TrimSpace(fc.AI.Endpoint), "/")
	fc.AI.Model = strings.TrimSpace(fc.AI.Model)
}

func (fc *FileConfig) validate() error {
	if fc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	parsed, err := url.Parse(fc.Client.ServiceURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("client.service_url must be an absolute URL")
	}
	if fc.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}
	if _, err := url.Parse(fc.AI.Endpoint); err != nil {
		return fmt.Errorf("ai.endpoint is not a valid URL: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0644)
}

func (c *Config) save() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.File.applyDefaults()
	c.File.normalize()
	if err := c.File.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.BaseDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure config dir: %w", err)
	}
	data, err := yaml.Marshal(c.File)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("config: write config: %w", err)
	}
	return nil
}
