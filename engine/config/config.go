// Package config loads the viewer configuration from TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/logger"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/buffer"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Config is the full viewer configuration.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Engine   EngineConfig   `toml:"engine"`
	Renderer RendererConfig `toml:"renderer"`
	Shaders  ShaderConfig   `toml:"shaders"`
	Log      LogConfig      `toml:"log"`
}

// WindowConfig describes the platform window.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	VSync  bool   `toml:"vsync"`
}

// EngineConfig describes the engine loop.
type EngineConfig struct {
	// TickRate is the number of fixed logic updates per second.
	TickRate float64 `toml:"tick_rate"`

	// FrameLimit caps the rendered frames per second; 0 means uncapped.
	FrameLimit float64 `toml:"frame_limit"`

	// Profiling logs frame statistics once per second.
	Profiling bool `toml:"profiling"`
}

// RendererConfig describes the render system and the instanced draw path.
type RendererConfig struct {
	Multisampling bool `toml:"multisampling"`

	// Samples is the multisample count used when Multisampling is on: 4, 8 or 16.
	Samples int `toml:"samples"`

	// Instancing allows instanced draws when the context supports them.
	Instancing bool `toml:"instancing"`

	// InstanceStride is the byte size of one instance record; at least 64.
	InstanceStride int `toml:"instance_stride"`

	// InstanceCapacity is the number of instances each shared submesh can draw at once.
	InstanceCapacity int `toml:"instance_capacity"`
}

// ShaderConfig describes where program templates come from.
type ShaderConfig struct {
	// Dir overrides the embedded templates with a directory on disk.
	Dir string `toml:"dir"`

	// Watch reloads the templates in Dir when they change.
	Watch bool `toml:"watch"`

	// CacheSize bounds the number of generated program sources kept.
	CacheSize int `toml:"cache_size"`

	// Debounce collapses bursts of file events.
	Debounce Duration `toml:"debounce"`
}

// LogConfig mirrors logger.Options.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Duration is a time.Duration written as a Go duration string such as "150ms".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("failed to parse duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: a valid configuration
func Default() Config {
	lo := logger.DefaultOptions()
	return Config{
		Window: WindowConfig{
			Title:  "oxy-view",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Engine: EngineConfig{
			TickRate: 60,
		},
		Renderer: RendererConfig{
			Multisampling:    true,
			Samples:          4,
			Instancing:       true,
			InstanceStride:   buffer.MatrixSize,
			InstanceCapacity: 1024,
		},
		Shaders: ShaderConfig{
			CacheSize: 128,
			Debounce:  Duration(100 * time.Millisecond),
		},
		Log: LogConfig{
			Level:      lo.Level,
			MaxSizeMB:  lo.MaxSizeMB,
			MaxBackups: lo.MaxBackups,
			MaxAgeDays: lo.MaxAgeDays,
		},
	}
}

// Parse decodes TOML on top of Default. Unknown keys are rejected.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the decoded, validated configuration
//   - error: error if decoding or validation fails
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("failed to decode config: %s", strict.String())
		}
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses the file at path.
//
// Parameters:
//   - path: the TOML file
//
// Returns:
//   - Config: the decoded, validated configuration
//   - error: error if the file cannot be read or parsed
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate reports every invalid field at once.
//
// Returns:
//   - error: nil, or the joined failures each wrapping ErrInvalid
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d", c.Window.Width, c.Window.Height)
	check(c.Engine.TickRate > 0, "engine.tick_rate %v must be positive", c.Engine.TickRate)
	check(c.Engine.FrameLimit >= 0, "engine.frame_limit %v must not be negative", c.Engine.FrameLimit)
	if c.Renderer.Multisampling {
		s := c.Renderer.Samples
		check(s == 4 || s == 8 || s == 16, "renderer.samples %d must be 4, 8 or 16", s)
	}
	if err := c.Renderer.InstanceLayout().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: renderer.instance_stride: %w", ErrInvalid, err))
	}
	check(c.Renderer.InstanceCapacity > 0, "renderer.instance_capacity %d must be positive", c.Renderer.InstanceCapacity)
	check(c.Shaders.CacheSize > 0, "shaders.cache_size %d must be positive", c.Shaders.CacheSize)
	check(!c.Shaders.Watch || c.Shaders.Dir != "", "shaders.watch requires shaders.dir")
	check(c.Shaders.Debounce >= 0, "shaders.debounce must not be negative")
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: log.level: %w", ErrInvalid, err))
	}
	return errors.Join(errs...)
}

// Marshal encodes the configuration as TOML.
func (c Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

// LoggerOptions converts the [log] section.
func (c Config) LoggerOptions() logger.Options {
	o := logger.DefaultOptions()
	o.Level = c.Log.Level
	o.File = c.Log.File
	o.MaxSizeMB = c.Log.MaxSizeMB
	o.MaxBackups = c.Log.MaxBackups
	o.MaxAgeDays = c.Log.MaxAgeDays
	o.Compress = c.Log.Compress
	return o
}

// InstanceLayout returns the per-instance layout; strides beyond one matrix carry the pass index.
func (r RendererConfig) InstanceLayout() buffer.InstanceLayout {
	return buffer.InstanceLayout{
		Stride:         r.InstanceStride,
		WritePassIndex: r.InstanceStride >= buffer.MatrixSize+4,
	}
}

// SampleCount returns the window sample count, 0 when multisampling is off.
func (r RendererConfig) SampleCount() int {
	if !r.Multisampling {
		return 0
	}
	return r.Samples
}
