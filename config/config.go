package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/jaki95/lyrics-relay/internal/browser"
	"github.com/jaki95/lyrics-relay/internal/search"
	"gopkg.in/yaml.v3"
)

const (
	AppName = "lyrics-relay"

	DefaultPort = "12321"

	StorageLocal = "local"
	StorageGCS   = "gcs"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

type Config struct {
	LogLevel  int    `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Server       ServerConfig       `yaml:"server"`
	Search       SearchConfig       `yaml:"search"`
	Notification NotificationConfig `yaml:"notification"`
	Storage      StorageConfig      `yaml:"storage"`
	Browser      BrowserConfig      `yaml:"browser"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type SearchConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
	// Marker is prepended to every query to steer results towards lyrics.
	Marker string `yaml:"marker"`
}

type NotificationConfig struct {
	// RequireAlbum enables the richer protocol variant where album is mandatory.
	RequireAlbum bool `yaml:"require_album"`
}

type StorageConfig struct {
	// Type of storage: "local" or "gcs"
	Type string `yaml:"type"`

	// Local storage options
	ResultFile string `yaml:"result_file"`

	// GCS storage options
	Bucket          string `yaml:"bucket"`
	Object          string `yaml:"object"`
	CredentialsFile string `yaml:"credentials_file"`
}

type BrowserConfig struct {
	// Commands maps a GOOS value to the command opening a URL in the default browser.
	Commands map[string]string `yaml:"commands"`
}

// DefaultPath is where the configuration file is looked up when none is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// DefaultResultFile is the result list location under the user's home.
func DefaultResultFile() string {
	return filepath.Join(xdg.StateHome, AppName, "results.txt")
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadOrDefault loads path, falling back to defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) applyDefaults() {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatText
	}

	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}

	if c.Search.BaseURL == "" {
		c.Search.BaseURL = search.DefaultBaseURL
	}
	if c.Search.UserAgent == "" {
		c.Search.UserAgent = search.DefaultUserAgent
	}
	if c.Search.Marker == "" {
		c.Search.Marker = search.DefaultMarker
	}

	if c.Storage.Type == "" {
		c.Storage.Type = StorageLocal
	}
	if c.Storage.ResultFile == "" {
		c.Storage.ResultFile = DefaultResultFile()
	}
	if c.Storage.Object == "" {
		c.Storage.Object = AppName + "/results.txt"
	}

	if c.Browser.Commands == nil {
		c.Browser.Commands = maps.Clone(browser.DefaultCommands)
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if !ValidPort(c.Server.Port) {
		return fmt.Errorf("invalid server port %q", c.Server.Port)
	}

	switch c.Storage.Type {
	case StorageLocal:
	case StorageGCS:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage type %q requires a bucket", StorageGCS)
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}

	return nil
}

// ValidPort reports whether port is a TCP port number.
func ValidPort(port string) bool {
	n, err := strconv.Atoi(port)
	return err == nil && n > 0 && n <= 65535
}
