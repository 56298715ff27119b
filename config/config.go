// Package config provides configuration management for the contacts
// command-line tool. It supports loading configuration from a YAML file, a
// .env file, environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Default configuration values.
const (
	DefaultInputDir       = "."
	DefaultOutputFile     = "extracted_contacts.json"
	DefaultFilePattern    = "*.pdf.txt"
	DefaultMode           = "heuristic"
	DefaultOnReadError    = "skip"
	DefaultReadRetries    = 2
	DefaultMinTokenLength = 3
	DefaultPersonMatch    = "exact"
	DefaultCompanyKeyword = "first-label"
	DefaultTaggerBackend  = "prose"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "auto"
	DefaultEventsTimeout  = 5 * time.Second
	DefaultOutputFormat   = OutputFormatText
	DefaultConfigDir      = ".contacts"
	DefaultConfigFile     = "config.yaml"
	DefaultEnvFile        = ".env"
	EnvPrefix             = "CONTACTS_"
)

// AttributionConfig tunes the person and company heuristics.
type AttributionConfig struct {
	// PersonMatch is exact (substring of the lowercased line) or compact
	// (non-letters removed from the line first).
	PersonMatch string `yaml:"person_match" validate:"oneof=exact compact"`

	// CompanyKeyword is first-label or registrable (eTLD+1 first label).
	CompanyKeyword string `yaml:"company_keyword" validate:"oneof=first-label registrable"`

	// MinTokenLength is the shortest token allowed to drive a line search.
	MinTokenLength int `yaml:"min_token_length" validate:"gte=1"`
}

// TaggerConfig selects the entity tagger used by the entities mode.
type TaggerConfig struct {
	Backend  string   `yaml:"backend" validate:"oneof=prose rules"`
	ModelDir string   `yaml:"model_dir,omitempty"`
	Places   []string `yaml:"places,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=auto json console"`

	// RevealPII logs extracted addresses and numbers in clear at debug level.
	RevealPII bool `yaml:"reveal_pii,omitempty"`
}

// EventsConfig configures run event publishing. Both sinks are optional.
type EventsConfig struct {
	// File appends events as JSON lines.
	File string `yaml:"file,omitempty"`

	// RedisURL publishes events on Redis pub/sub channels.
	RedisURL string `yaml:"redis_url,omitempty" validate:"omitempty,url"`

	// Timeout bounds the Redis connection check.
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

// Enabled returns true if any sink is configured.
func (e EventsConfig) Enabled() bool {
	return e.File != "" || e.RedisURL != ""
}

// Config holds the CLI configuration settings.
type Config struct {
	// InputDir is the directory walked for documents, or a single file.
	InputDir string `yaml:"input_dir" validate:"required"`

	// OutputFile is where the JSON array of records is written.
	OutputFile string `yaml:"output_file" validate:"required"`

	// FilePattern is matched against file base names.
	FilePattern string `yaml:"file_pattern" validate:"required"`

	// Mode selects the extraction strategy.
	Mode string `yaml:"mode" validate:"oneof=heuristic entities"`

	// OnReadError is skip (log, count, continue) or abort.
	OnReadError string `yaml:"on_read_error" validate:"oneof=skip abort"`

	// ReadRetries is the number of extra read attempts after a failure.
	ReadRetries int `yaml:"read_retries" validate:"gte=0,lte=10"`

	// MaxFileBytes rejects larger documents. Zero means no limit.
	MaxFileBytes int64 `yaml:"max_file_bytes" validate:"gte=0"`

	Attribution AttributionConfig `yaml:"attribution"`
	Tagger      TaggerConfig      `yaml:"tagger"`
	Log         LogConfig         `yaml:"log"`
	Events      EventsConfig      `yaml:"events"`

	// MetricsFile receives Prometheus metrics in the textfile format.
	MetricsFile string `yaml:"metrics_file,omitempty"`

	// OutputFormat specifies the format of command results.
	OutputFormat OutputFormat `yaml:"output_format" validate:"oneof=text json yaml"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		InputDir:    DefaultInputDir,
		OutputFile:  DefaultOutputFile,
		FilePattern: DefaultFilePattern,
		Mode:        DefaultMode,
		OnReadError: DefaultOnReadError,
		ReadRetries: DefaultReadRetries,
		Attribution: AttributionConfig{
			PersonMatch:    DefaultPersonMatch,
			CompanyKeyword: DefaultCompanyKeyword,
			MinTokenLength: DefaultMinTokenLength,
		},
		Tagger: TaggerConfig{
			Backend: DefaultTaggerBackend,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Events: EventsConfig{
			Timeout: DefaultEventsTimeout,
		},
		OutputFormat: DefaultOutputFormat,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $CONTACTS_CONFIG_DIR if set, otherwise ~/.contacts
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the default configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the configuration from the default locations.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom("", DefaultEnvFile)
}

// LoadConfigFrom loads the configuration. Sources are applied in this order,
// later overriding earlier:
// 1. Default values
// 2. Config file (path, or ~/.contacts/config.yaml / $CONTACTS_CONFIG_DIR/config.yaml)
// 3. The .env file at envFile, when it exists
// 4. CONTACTS_* environment variables
//
// An explicit path must exist; the default one is optional. Flags are
// applied by the caller, which validates again afterwards.
func LoadConfigFrom(path, envFile string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return nil, fmt.Errorf("getting config path: %w", err)
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil || explicit {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	dotenv, err := readEnvFile(envFile)
	if err != nil {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	if err := loadFromEnv(cfg, envLookup(dotenv)); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg.Resolve()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto the configuration. Keys missing
// from the file keep their current values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// readEnvFile reads a .env file without touching the process environment.
func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}

// envLookup prefers the real environment over .env values.
func envLookup(dotenv map[string]string) func(string) string {
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}
}

// loadFromEnv overlays CONTACTS_* variables onto the configuration.
func loadFromEnv(cfg *Config, getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}

	str("INPUT_DIR", &cfg.InputDir)
	str("OUTPUT_FILE", &cfg.OutputFile)
	str("FILE_PATTERN", &cfg.FilePattern)
	str("MODE", &cfg.Mode)
	str("ON_READ_ERROR", &cfg.OnReadError)
	str("PERSON_MATCH", &cfg.Attribution.PersonMatch)
	str("COMPANY_KEYWORD", &cfg.Attribution.CompanyKeyword)
	str("TAGGER", &cfg.Tagger.Backend)
	str("TAGGER_MODEL_DIR", &cfg.Tagger.ModelDir)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("METRICS_FILE", &cfg.MetricsFile)
	str("EVENTS_FILE", &cfg.Events.File)
	str("EVENTS_REDIS_URL", &cfg.Events.RedisURL)

	if v := getenv(EnvPrefix + "TAGGER_PLACES"); v != "" {
		cfg.Tagger.Places = splitList(v)
	}

	if v := getenv(EnvPrefix + "OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}

	if v := getenv(EnvPrefix + "READ_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sREAD_RETRIES: %w", EnvPrefix, err)
		}
		cfg.ReadRetries = n
	}

	if v := getenv(EnvPrefix + "MIN_TOKEN_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMIN_TOKEN_LENGTH: %w", EnvPrefix, err)
		}
		cfg.Attribution.MinTokenLength = n
	}

	if v := getenv(EnvPrefix + "MAX_FILE_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_FILE_BYTES: %w", EnvPrefix, err)
		}
		cfg.MaxFileBytes = n
	}

	if v := getenv(EnvPrefix + "EVENTS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sEVENTS_TIMEOUT: %w", EnvPrefix, err)
		}
		cfg.Events.Timeout = d
	}

	if v := getenv(EnvPrefix + "DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}
	if v := getenv(EnvPrefix + "REVEAL_PII"); v == "true" || v == "1" {
		cfg.Log.RevealPII = true
	}

	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Resolve expands ~ in paths. Debug forces the debug log level.
func (c *Config) Resolve() {
	c.InputDir = expandPath(c.InputDir)
	c.OutputFile = expandPath(c.OutputFile)
	c.Tagger.ModelDir = expandPath(c.Tagger.ModelDir)
	c.MetricsFile = expandPath(c.MetricsFile)
	c.Events.File = expandPath(c.Events.File)
	if c.Debug {
		c.Log.Level = "debug"
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report yaml key names so errors match what users write.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
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
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// describe renders one validation failure with its yaml key path.
func describe(fe validator.FieldError) string {
	key := fe.Namespace()
	if i := strings.IndexByte(key, '.'); i >= 0 {
		key = key[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", key)
	case "oneof":
		return fmt.Sprintf("invalid %s: %q (must be one of: %s)", key, fmt.Sprint(fe.Value()),
			strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte", "lte", "gt":
		return fmt.Sprintf("invalid %s: %v (must be %s %s)", key, fe.Value(), fe.Tag(), fe.Param())
	case "url":
		return fmt.Sprintf("invalid %s: not a URL", key)
	default:
		return fmt.Sprintf("invalid %s: failed %s", key, fe.Tag())
	}
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// Redacted returns a copy safe to print: credentials in the Redis URL are
// masked.
func (c *Config) Redacted() *Config {
	out := *c
	out.Tagger.Places = append([]string(nil), c.Tagger.Places...)
	if c.Events.RedisURL != "" {
		if u, err := url.Parse(c.Events.RedisURL); err == nil {
			out.Events.RedisURL = u.Redacted()
		}
	}
	return &out
}

// YAML renders the configuration as YAML.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// SaveConfig writes the configuration to path, or to the default config
// file when path is empty.
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return fmt.Errorf("getting config path: %w", err)
		}
		path = p
	}

	// Ensure config directory exists.
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := cfg.YAML()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path // Return original if home dir lookup fails.
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
