package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Archive locates the archive and describes its naming scheme.
type Archive struct {
	Root            string `toml:"root"`
	DigestAlgorithm string `toml:"digest_algorithm"`
	NameDelimiter   string `toml:"name_delimiter"`
	PagePattern     string `toml:"page_pattern"`
}

// Crop bounds the cropping fan-out.
type Crop struct {
	Workers        int `toml:"workers"`
	TimeoutMinutes int `toml:"timeout_minutes"`
}

// Tools names the external image tools.
type Tools struct {
	Identify            string `toml:"identify"`
	Convert             string `toml:"convert"`
	ProbeTimeoutSeconds int    `toml:"probe_timeout_seconds"`
}

// Cache sizes the in-memory book cache.
type Cache struct {
	Books      int `toml:"books"`
	TTLSeconds int `toml:"ttl_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for rosa.
type Config struct {
	Archive Archive `toml:"archive"`
	Crop    Crop    `toml:"crop"`
	Tools   Tools   `toml:"tools"`
	Cache   Cache   `toml:"cache"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/rosa/config.toml")
}

// Load locates, parses, and validates a configuration file. It returns the
// resolved path and whether a file was found there; a missing file yields
// the defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs("rosa.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	root, err := expandPath(strings.TrimSpace(c.Archive.Root))
	if err != nil {
		return err
	}
	c.Archive.Root = root
	c.Archive.DigestAlgorithm = strings.ToLower(strings.TrimSpace(c.Archive.DigestAlgorithm))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Tools.Identify = strings.TrimSpace(c.Tools.Identify)
	c.Tools.Convert = strings.TrimSpace(c.Tools.Convert)
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	switch c.Archive.DigestAlgorithm {
	case "sha1", "sha256", "blake3":
	default:
		return fmt.Errorf("archive.digest_algorithm must be sha1, sha256 or blake3, got %q", c.Archive.DigestAlgorithm)
	}
	if c.Archive.NameDelimiter == "" {
		return errors.New("archive.name_delimiter must be set")
	}
	if _, err := regexp.Compile(c.Archive.PagePattern); err != nil {
		return fmt.Errorf("archive.page_pattern is invalid: %w", err)
	}
	if c.Crop.Workers <= 0 {
		return errors.New("crop.workers must be positive")
	}
	if c.Crop.TimeoutMinutes <= 0 {
		return errors.New("crop.timeout_minutes must be positive")
	}
	if c.Tools.Identify == "" || c.Tools.Convert == "" {
		return errors.New("tools.identify and tools.convert must be set")
	}
	if c.Tools.ProbeTimeoutSeconds <= 0 {
		return errors.New("tools.probe_timeout_seconds must be positive")
	}
	if c.Cache.Books < 0 || c.Cache.TTLSeconds < 0 {
		return errors.New("cache.books and cache.ttl_seconds must not be negative")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

// CropTimeout returns the bound on a whole crop run.
func (c *Config) CropTimeout() time.Duration {
	return time.Duration(c.Crop.TimeoutMinutes) * time.Minute
}

// ProbeTimeout returns the bound on one image probe.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Tools.ProbeTimeoutSeconds) * time.Second
}

// CacheTTL returns the book cache entry lifetime, 0 for no expiry.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
