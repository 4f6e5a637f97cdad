package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/fabriclens/fabriclens/internal/layout"
	"github.com/fabriclens/fabriclens/internal/particles"
	"github.com/fabriclens/fabriclens/internal/view"
)

// Provider modes.
const (
	ProviderModeHTTP = "http"
	ProviderModeFile = "file"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig  `yaml:"app"`
	Provider   ProviderConfig     `yaml:"provider"`
	Canvas     CanvasConfig       `yaml:"canvas"`
	Simulation SimulationConfig   `yaml:"simulation"`
	Minimap    view.MinimapConfig `yaml:"minimap"`
	Particles  ParticlesConfig    `yaml:"particles"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Provider.Validate(); err != nil {
		return err
	}
	if err := c.Canvas.Validate(); err != nil {
		return err
	}
	return c.Particles.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ProviderConfig selects the lineage data provider.
//
// Mode controls where the raw payload comes from:
//   - "http" (default): a running provider service; URL must be set.
//   - "file": a local JSON payload export; File must be set. The file is
//     watched and the graph auto-reloads on change.
type ProviderConfig struct {
	Mode           string `yaml:"mode"`
	URL            string `yaml:"url"`
	File           string `yaml:"file"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the HTTP client timeout.
func (c *ProviderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate validates the provider configuration.
func (c *ProviderConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = ProviderModeHTTP
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(ProviderModeHTTP, ProviderModeFile)),
	); err != nil {
		return err
	}
	if c.Mode == ProviderModeHTTP && c.URL == "" {
		return fmt.Errorf("provider: mode is %q but url is empty", ProviderModeHTTP)
	}
	if c.Mode == ProviderModeFile && c.File == "" {
		return fmt.Errorf("provider: mode is %q but file is empty", ProviderModeFile)
	}
	return nil
}

// CanvasConfig holds the logical rendering surface dimensions.
type CanvasConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Validate validates the canvas configuration.
func (c *CanvasConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Width, validation.Required, validation.Min(100.0)),
		validation.Field(&c.Height, validation.Required, validation.Min(100.0)),
	)
}

// SimulationConfig holds the force solver tuning and tick cadence.
type SimulationConfig struct {
	TickIntervalMS int                `yaml:"tick_interval_ms"`
	Force          layout.ForceConfig `yaml:"force"`
}

// TickInterval returns the solver tick cadence.
func (c *SimulationConfig) TickInterval() time.Duration {
	if c.TickIntervalMS <= 0 {
		return 33 * time.Millisecond
	}
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// ParticlesConfig holds the flow animation cadence in milliseconds.
type ParticlesConfig struct {
	IntervalMS    int `yaml:"interval_ms"`
	MaxPerSpawn   int `yaml:"max_per_spawn"`
	MinDurationMS int `yaml:"min_duration_ms"`
	MaxDurationMS int `yaml:"max_duration_ms"`
}

// Validate validates the particle configuration.
func (c *ParticlesConfig) Validate() error {
	if c.MinDurationMS > c.MaxDurationMS {
		return fmt.Errorf("particles: min_duration_ms %d exceeds max_duration_ms %d", c.MinDurationMS, c.MaxDurationMS)
	}
	return nil
}

// Animator converts to the animator's config.
func (c *ParticlesConfig) Animator() particles.Config {
	return particles.Config{
		Interval:    time.Duration(c.IntervalMS) * time.Millisecond,
		MaxPerSpawn: c.MaxPerSpawn,
		MinDuration: time.Duration(c.MinDurationMS) * time.Millisecond,
		MaxDuration: time.Duration(c.MaxDurationMS) * time.Millisecond,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	pd := particles.DefaultConfig()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Provider: ProviderConfig{
			Mode:           ProviderModeHTTP,
			URL:            "http://127.0.0.1:8000/api",
			TimeoutSeconds: 30,
		},
		Canvas: CanvasConfig{
			Width:  1280,
			Height: 800,
		},
		Simulation: SimulationConfig{
			TickIntervalMS: 33,
			Force:          layout.DefaultForceConfig(),
		},
		Minimap: view.DefaultMinimapConfig(),
		Particles: ParticlesConfig{
			IntervalMS:    int(pd.Interval / time.Millisecond),
			MaxPerSpawn:   pd.MaxPerSpawn,
			MinDurationMS: int(pd.MinDuration / time.Millisecond),
			MaxDurationMS: int(pd.MaxDuration / time.Millisecond),
		},
	}
}
