// Package config loads qbar's configuration: embedded defaults with an
// optional user YAML file decoded on top.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/qbar/pkg/settings"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// Record source kinds.
const (
	SourceMemory = "memory"
	SourceHTTP   = "http"
)

// Config is the full configuration.
type Config struct {
	App        AppConfig        `yaml:"app"`
	Search     SearchConfig     `yaml:"search"`
	Source     SourceConfig     `yaml:"source"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Server     ServerConfig     `yaml:"server"`
	UI         UIConfig         `yaml:"ui"`
}

// AppConfig holds identity and logging settings.
type AppConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Debug       bool   `yaml:"debug"`
	LogFile     string `yaml:"log_file"`
}

// SearchConfig tunes the live search.
type SearchConfig struct {
	Debounce   time.Duration `yaml:"debounce"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
	MaxResults int           `yaml:"max_results"`
}

// SourceConfig selects and configures the record source.
type SourceConfig struct {
	Kind            string        `yaml:"kind"`
	Dataset         string        `yaml:"dataset"`
	Latency         time.Duration `yaml:"latency"`
	URL             string        `yaml:"url"`
	Timeout         time.Duration `yaml:"timeout"`
	Retries         uint64        `yaml:"retries"`
	BreakerFailures uint32        `yaml:"breaker_failures"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout"`
}

// VocabularyConfig points at a replacement suggestion vocabulary.
type VocabularyConfig struct {
	File string `yaml:"file"`
}

// ServerConfig configures qbar serve.
type ServerConfig struct {
	Addr      string  `yaml:"addr"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second, 0 disables limiting
	Burst     int     `yaml:"burst"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Prompt       string `yaml:"prompt"`
	Placeholder  string `yaml:"placeholder"`
	NoColor      bool   `yaml:"no_color"`
	ShowExamples bool   `yaml:"show_examples"`
}

// DefaultYAML returns the embedded default configuration document.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultConfigYAML...)
}

// Default returns the built-in configuration.
func Default() (Config, error) {
	var cfg Config
	if err := decodeStrict(defaultConfigYAML, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode default config: %w", err)
	}
	return cfg, nil
}

// Load returns the defaults with the file at path decoded on top. Keys absent
// from the file keep their default. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := decodeStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// decodeStrict rejects unknown keys so typos in a config file surface.
func decodeStrict(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

// ResolvePath returns explicit if set, otherwise the first existing of
// $XDG_CONFIG_HOME/qbar/config.yaml and ~/.config/qbar/config.yaml, else "".
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	var candidate string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate == "" {
		return ""
	}
	if _, err := os.Stat(candidate); err != nil {
		return ""
	}
	return candidate
}

// Validate reports every invalid value at once.
func (c Config) Validate() error {
	var errs []error
	if c.Search.Debounce < 0 {
		errs = append(errs, fmt.Errorf("search.debounce must not be negative"))
	}
	if c.Search.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("search.cache_ttl must not be negative"))
	}
	if c.Search.MaxResults < 0 {
		errs = append(errs, fmt.Errorf("search.max_results must not be negative"))
	}
	switch c.Source.Kind {
	case SourceMemory:
		if c.Source.Latency < 0 {
			errs = append(errs, fmt.Errorf("source.latency must not be negative"))
		}
	case SourceHTTP:
		u, err := url.Parse(c.Source.URL)
		if c.Source.URL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("source.url must be an http(s) URL when source.kind is %q", SourceHTTP))
		}
		if c.Source.Timeout < 0 {
			errs = append(errs, fmt.Errorf("source.timeout must not be negative"))
		}
	default:
		errs = append(errs, fmt.Errorf("source.kind must be %q or %q, got %q", SourceMemory, SourceHTTP, c.Source.Kind))
	}
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		errs = append(errs, fmt.Errorf("server.addr: %w", err))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit must not be negative"))
	}
	if c.Server.RateLimit > 0 && c.Server.Burst < 1 {
		errs = append(errs, fmt.Errorf("server.burst must be at least 1 when rate limiting"))
	}
	if strings.ContainsAny(c.UI.Prompt, "\n\r") {
		errs = append(errs, fmt.Errorf("ui.prompt must be a single line"))
	}
	return errors.Join(errs...)
}

// YAML renders the configuration.
func (c Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
