// Package config loads the client configuration from defaults, a YAML file,
// a .env file and QBOT_* environment variables, in that order of precedence.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshua1code/Q-bot-FD/internal/api"
	"github.com/joshua1code/Q-bot-FD/internal/session"
	"github.com/joshua1code/Q-bot-FD/internal/stream"
	"github.com/joshua1code/Q-bot-FD/internal/types"
	"github.com/joshua1code/Q-bot-FD/internal/version"
	"github.com/joshua1code/Q-bot-FD/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// ProductionHost serves the hosted service over https and wss.
	ProductionHost = "qbot.mooo.com"
	// LocalDevHost is used over plain http and ws when QBOT_LOCAL_DEV=true.
	LocalDevHost = "127.0.0.1:8000"

	DefaultStreamPath = "/ws/trade"
)

// Config is the complete client configuration.
type Config struct {
	APIBaseURL string `yaml:"api_base_url" json:"api_base_url" jsonschema:"title=API Base URL,description=Origin of the REST API e.g. https://qbot.mooo.com" validate:"required,url"`
	StreamURL  string `yaml:"stream_url" json:"stream_url" jsonschema:"title=Stream URL,description=Origin of the stream endpoint e.g. wss://qbot.mooo.com" validate:"required,url"`
	StartPath  string `yaml:"start_path" json:"start_path" jsonschema:"title=Start Path,description=Path of the session start call" validate:"required,startswith=/"`
	StreamPath string `yaml:"stream_path" json:"stream_path" jsonschema:"title=Stream Path,description=Path of the stream endpoint" validate:"required,startswith=/"`
	// SessionCookie authenticates against the service like a logged in browser.
	SessionCookie string `yaml:"session_cookie" json:"session_cookie" jsonschema:"title=Session Cookie,description=Value of the session_id cookie"`

	RequestTimeout   time.Duration `yaml:"request_timeout" json:"request_timeout" jsonschema:"title=Request Timeout,description=Timeout of every REST call in nanoseconds" validate:"gt=0"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout" json:"handshake_timeout" jsonschema:"title=Handshake Timeout,description=Timeout of every stream dial in nanoseconds" validate:"gt=0"`
	BackoffUnit      time.Duration `yaml:"backoff_unit" json:"backoff_unit" jsonschema:"title=Backoff Unit,description=First reconnect delay in nanoseconds" validate:"gt=0"`
	BackoffMaxUnits  int           `yaml:"backoff_max_units" json:"backoff_max_units" jsonschema:"title=Backoff Max Units,description=Reconnect delay cap in backoff units,minimum=1" validate:"gte=1"`

	LedgerRetention   int     `yaml:"ledger_retention" json:"ledger_retention" jsonschema:"title=Ledger Retention,description=Number of trades kept in the ledger,minimum=1" validate:"gte=1"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second" jsonschema:"title=Requests Per Second,description=REST throttle; 0 disables it,minimum=0" validate:"gte=0"`
	SubscriberBuffer  int     `yaml:"subscriber_buffer" json:"subscriber_buffer" jsonschema:"title=Subscriber Buffer,description=Capacity of each status subscription,minimum=1" validate:"gte=1"`

	ReportDir string `yaml:"report_dir" json:"report_dir" jsonschema:"title=Report Directory,description=Where session reports are written" validate:"required"`
}

// Default returns the built-in configuration. QBOT_LOCAL_DEV=true switches
// both origins to the local development server.
func Default() Config {
	apiBase, streamBase := "https://"+ProductionHost, "wss://"+ProductionHost
	if isLocalDev() {
		apiBase, streamBase = "http://"+LocalDevHost, "ws://"+LocalDevHost
	}

	return Config{
		APIBaseURL:        apiBase,
		StreamURL:         streamBase,
		StartPath:         api.DefaultStartPath,
		StreamPath:        DefaultStreamPath,
		SessionCookie:     "",
		RequestTimeout:    15 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		BackoffUnit:       stream.DefaultBackoffUnit,
		BackoffMaxUnits:   stream.DefaultBackoffMaxUnits,
		LedgerRetention:   types.DefaultLedgerRetention,
		RequestsPerSecond: 5,
		SubscriberBuffer:  16,
		ReportDir:         "./reports",
	}
}

func isLocalDev() bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv("QBOT_LOCAL_DEV")))

	return err == nil && v
}

// Load builds the configuration. path may be empty to skip the YAML file.
// A .env file in the working directory is read when present.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeConfigLoadFailed, "failed to read .env", err)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeConfigLoadFailed, err, "failed to read config file %s", path)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeConfigLoadFailed, err, "failed to parse config file %s", path)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.APIBaseURL = getEnv("QBOT_API_URL", c.APIBaseURL)
	c.StreamURL = getEnv("QBOT_STREAM_URL", c.StreamURL)
	c.StartPath = getEnv("QBOT_START_PATH", c.StartPath)
	c.StreamPath = getEnv("QBOT_STREAM_PATH", c.StreamPath)
	c.SessionCookie = getEnv("QBOT_SESSION_COOKIE", c.SessionCookie)
	c.ReportDir = getEnv("QBOT_REPORT_DIR", c.ReportDir)

	var err error

	if c.RequestTimeout, err = getEnvDuration("QBOT_REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}

	if c.HandshakeTimeout, err = getEnvDuration("QBOT_HANDSHAKE_TIMEOUT", c.HandshakeTimeout); err != nil {
		return err
	}

	if c.BackoffUnit, err = getEnvDuration("QBOT_BACKOFF_UNIT", c.BackoffUnit); err != nil {
		return err
	}

	if c.BackoffMaxUnits, err = getEnvInt("QBOT_BACKOFF_MAX_UNITS", c.BackoffMaxUnits); err != nil {
		return err
	}

	if c.LedgerRetention, err = getEnvInt("QBOT_LEDGER_RETENTION", c.LedgerRetention); err != nil {
		return err
	}

	if c.SubscriberBuffer, err = getEnvInt("QBOT_SUBSCRIBER_BUFFER", c.SubscriberBuffer); err != nil {
		return err
	}

	if raw := strings.TrimSpace(os.Getenv("QBOT_REQUESTS_PER_SECOND")); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid QBOT_REQUESTS_PER_SECOND %q", raw)
		}

		c.RequestsPerSecond = rps
	}

	return nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if fields := types.ValidateStruct(c); len(fields) > 0 {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration",
			errors.NewValidationError("invalid configuration", fields...))
	}

	return nil
}

// API returns the REST client settings.
func (c Config) API() api.Config {
	return api.Config{
		BaseURL:           c.APIBaseURL,
		StartPath:         c.StartPath,
		SessionCookie:     c.SessionCookie,
		Timeout:           c.RequestTimeout,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}

// Stream returns the stream connection settings.
func (c Config) Stream() stream.Config {
	return stream.Config{
		BaseURL:          c.StreamURL,
		Path:             c.StreamPath,
		SessionCookie:    c.SessionCookie,
		UserAgent:        version.UserAgent(),
		HandshakeTimeout: c.HandshakeTimeout,
		BackoffUnit:      c.BackoffUnit,
		BackoffMaxUnits:  c.BackoffMaxUnits,
		ReadLimit:        0,
	}
}

// Session returns the session runtime settings.
func (c Config) Session() session.Config {
	return session.Config{
		LedgerRetention:  c.LedgerRetention,
		SubscriberBuffer: c.SubscriberBuffer,
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid %s %q", key, raw)
	}

	return v, nil
}

// getEnvDuration accepts Go durations ("500ms") and plain seconds ("2").
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}

	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid %s %q", key, raw)
	}

	return v, nil
}
