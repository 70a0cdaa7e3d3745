package config

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/fiber/internal/errors"
	"github.com/vango-dev/fiber/pkg/fiber"
	"github.com/vango-dev/fiber/pkg/scheduler"
	"github.com/vango-dev/fiber/pkg/telemetry"
)

const (
	// ConfigBaseName is the file name of the configuration, without
	// extension.
	ConfigBaseName = "fiber"

	// DefaultInspectAddr is the default inspector listen address.
	DefaultInspectAddr = "localhost:7070"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "fiber"

	// DefaultFrameInterval is the default length of one time slice.
	DefaultFrameInterval = "5ms"
)

// Extensions lists the supported configuration file extensions in lookup
// order.
var Extensions = []string{".json", ".yaml", ".yml"}

// Config represents the complete fiber.json / fiber.yaml configuration.
type Config struct {
	// Debug enables development warnings and phase logging.
	Debug bool `json:"debug,omitempty" yaml:"debug,omitempty"`

	// MaxRenderRetries is how many times a render that failed with a
	// transient error is retried before waiting for the next update.
	MaxRenderRetries int `json:"maxRenderRetries,omitempty" yaml:"maxRenderRetries,omitempty"`

	// TimeSliceUnits makes the scheduler yield after this many units of
	// work instead of after FrameInterval. Zero keeps time-based slicing.
	TimeSliceUnits int `json:"timeSliceUnits,omitempty" yaml:"timeSliceUnits,omitempty"`

	// FrameInterval is the length of one time slice (e.g., "5ms").
	FrameInterval string `json:"frameInterval,omitempty" yaml:"frameInterval,omitempty"`

	// Inspect contains inspector server configuration.
	Inspect InspectConfig `json:"inspect,omitempty" yaml:"inspect,omitempty"`

	// Telemetry contains metrics and tracing configuration.
	Telemetry TelemetryConfig `json:"telemetry,omitempty" yaml:"telemetry,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// InspectConfig contains inspector server settings.
type InspectConfig struct {
	// Addr is the address the inspector listens on.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// Metrics serves Prometheus metrics on /metrics.
	Metrics bool `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// TelemetryConfig contains metrics and tracing settings.
type TelemetryConfig struct {
	// Namespace is the Prometheus metrics namespace.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`

	// Tracing wraps renders and commits in OpenTelemetry spans.
	Tracing bool `json:"tracing,omitempty" yaml:"tracing,omitempty"`

	// TracerName is the instrumentation name passed to the tracer provider.
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		FrameInterval: DefaultFrameInterval,
		Inspect: InspectConfig{
			Addr:    DefaultInspectAddr,
			Metrics: true,
		},
		Telemetry: TelemetryConfig{
			Namespace:  DefaultNamespace,
			TracerName: telemetry.DefaultTracerName,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// fiber.json, fiber.yaml and fiber.yml in that order and returns the
// defaults when none exists.
func Load(dir string) (*Config, error) {
	for _, ext := range Extensions {
		path := filepath.Join(dir, ConfigBaseName+ext)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return New(), nil
}

// LoadFile reads configuration from the specified file path. The format
// follows the extension.
func LoadFile(path string) (*Config, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("F020").WithSubject("%s", path).Wrap(err)
	}

	cfg := New()
	switch format {
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(cfg); err == io.EOF {
			// An empty YAML file keeps the defaults.
			err = nil
		}
	}
	if err != nil {
		return nil, errors.New("F020").
			WithSubject("%s", path).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func formatOf(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, known := range Extensions {
		if ext == known {
			return ext, nil
		}
	}
	return "", errors.New("F022").WithSubject("%s", path)
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as JSON or YAML
// depending on the extension.
func (c *Config) SaveTo(path string) error {
	data, err := c.Marshal(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("F020").WithSubject("%s", path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Marshal encodes the configuration in the format implied by the
// extension of path.
func (c *Config) Marshal(path string) ([]byte, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	if format == ".json" {
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return nil, errors.New("F020").Wrap(err)
		}
		// Add newline at end of file
		return append(data, '\n'), nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, errors.New("F020").Wrap(err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.New("F020").Wrap(err)
	}
	return buf.Bytes(), nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.FrameInterval == "" {
		c.FrameInterval = DefaultFrameInterval
	}
	if c.Inspect.Addr == "" {
		c.Inspect.Addr = DefaultInspectAddr
	}
	if c.Telemetry.Namespace == "" {
		c.Telemetry.Namespace = DefaultNamespace
	}
	if c.Telemetry.TracerName == "" {
		c.Telemetry.TracerName = telemetry.DefaultTracerName
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxRenderRetries < 0 {
		return errors.New("F021").
			WithSubject("maxRenderRetries").
			WithDetail("maxRenderRetries must not be negative")
	}
	if c.TimeSliceUnits < 0 {
		return errors.New("F021").
			WithSubject("timeSliceUnits").
			WithDetail("timeSliceUnits must not be negative")
	}
	if c.FrameInterval != "" {
		d, err := time.ParseDuration(c.FrameInterval)
		if err != nil || d <= 0 {
			return errors.New("F021").
				WithSubject("frameInterval").
				WithDetail("frameInterval must be a positive duration such as \"5ms\"")
		}
	}
	if strings.ContainsAny(c.Telemetry.Namespace, " -.") {
		return errors.New("F021").
			WithSubject("telemetry.namespace").
			WithDetail("The metrics namespace may only contain letters, digits and underscores")
	}
	return nil
}

// FrameDuration returns FrameInterval as a duration, falling back to the
// scheduler default.
func (c *Config) FrameDuration() time.Duration {
	if d, err := time.ParseDuration(c.FrameInterval); err == nil && d > 0 {
		return d
	}
	return scheduler.FrameInterval
}

// SchedulerOptions converts the scheduling settings.
func (c *Config) SchedulerOptions() []scheduler.Option {
	opts := []scheduler.Option{scheduler.WithFrameInterval(c.FrameDuration())}
	if c.TimeSliceUnits > 0 {
		opts = append(opts, scheduler.WithSliceBudget(c.TimeSliceUnits))
	}
	return opts
}

// ReconcilerOptions converts the engine settings.
func (c *Config) ReconcilerOptions() []fiber.Option {
	return []fiber.Option{
		fiber.WithDebug(c.Debug),
		fiber.WithMaxRenderRetries(c.MaxRenderRetries),
	}
}

// MetricsOptions converts the metrics settings.
func (c *Config) MetricsOptions() []telemetry.MetricsOption {
	return []telemetry.MetricsOption{telemetry.WithNamespace(c.Telemetry.Namespace)}
}

// Tracer returns a tracer from the global provider, or nil when tracing
// is off.
func (c *Config) Tracer() *telemetry.Tracer {
	if !c.Telemetry.Tracing {
		return nil
	}
	return telemetry.NewTracer(c.Telemetry.TracerName)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, ext := range Extensions {
		if _, err := os.Stat(filepath.Join(dir, ConfigBaseName+ext)); err == nil {
			return true
		}
	}
	return false
}
