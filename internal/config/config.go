// Package config loads runtime settings from defaults, an optional config
// file and MUDRA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/morph"
	"github.com/ayusman/mudra/internal/shape"
)

// EnvPrefix prefixes every environment override, e.g. MUDRA_SERVER_ADDR.
const EnvPrefix = "MUDRA"

// Signal sources.
const (
	SignalCamera = "camera"
	SignalRemote = "remote"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	StaticDir string `mapstructure:"staticDir"`
}

type CameraConfig struct {
	// Source is a device index ("0") or a file/stream URL.
	Source          string  `mapstructure:"source"`
	MotionThreshold float64 `mapstructure:"motionThreshold"`
	Mirror          bool    `mapstructure:"mirror"`
}

type SignalConfig struct {
	// Source is "camera" for local tracking or "remote" when an external
	// assistant posts tension and gestures.
	Source string `mapstructure:"source"`
}

type RenderConfig struct {
	FPS int `mapstructure:"fps"`
}

type ParticlesConfig struct {
	Count int    `mapstructure:"count"`
	Shape string `mapstructure:"shape"`
	Color string `mapstructure:"color"`
	Text  string `mapstructure:"text"`
	// Seed fixes shape generation. Zero seeds from the clock.
	Seed uint64 `mapstructure:"seed"`
}

type FontConfig struct {
	Path string `mapstructure:"path"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type HooksConfig struct {
	Dir     string        `mapstructure:"dir"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TrayConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig           `mapstructure:"server"`
	Camera    CameraConfig           `mapstructure:"camera"`
	Detector  detector.Config        `mapstructure:"detector"`
	Signal    SignalConfig           `mapstructure:"signal"`
	Render    RenderConfig           `mapstructure:"render"`
	Particles ParticlesConfig        `mapstructure:"particles"`
	Font      FontConfig             `mapstructure:"font"`
	Debounce  gesture.DebounceConfig `mapstructure:"debounce"`
	Morph     morph.Tunables         `mapstructure:"morph"`
	Store     StoreConfig            `mapstructure:"store"`
	Hooks     HooksConfig            `mapstructure:"hooks"`
	Log       LogConfig              `mapstructure:"log"`
	Tray      TrayConfig             `mapstructure:"tray"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.staticDir", "web")

	v.SetDefault("camera.source", "0")
	v.SetDefault("camera.motionThreshold", 0.02)
	v.SetDefault("camera.mirror", true)

	det := detector.DefaultConfig()
	v.SetDefault("detector.maxHands", det.MaxHands)
	v.SetDefault("detector.minConfidence", det.MinConfidence)
	v.SetDefault("detector.minTrackingConfidence", det.MinTrackingConf)
	v.SetDefault("detector.scriptPath", "")

	v.SetDefault("signal.source", SignalCamera)
	v.SetDefault("render.fps", 60)

	v.SetDefault("particles.count", 8000)
	v.SetDefault("particles.shape", string(shape.Sphere))
	v.SetDefault("particles.color", "#00FFFF")
	v.SetDefault("particles.text", "MUDRA")
	v.SetDefault("particles.seed", 0)

	v.SetDefault("font.path", "")

	v.SetDefault("debounce.confirm", gesture.DefaultConfirmDelay)
	v.SetDefault("debounce.release", gesture.DefaultReleaseDelay)

	setStructDefaults(v, "morph", morph.DefaultTunables())

	v.SetDefault("store.path", "data/mudra.db")
	v.SetDefault("hooks.dir", "plugins")
	v.SetDefault("hooks.timeout", 5*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("tray.enabled", false)
}

// setStructDefaults registers one default per mapstructure-tagged field so
// every field can be overridden from a file or the environment.
func setStructDefaults(v *viper.Viper, prefix string, s any) {
	rv := reflect.ValueOf(s)
	rt := rv.Type()
	for i := range rt.NumField() {
		tag := rt.Field(i).Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		v.SetDefault(prefix+"."+tag, rv.Field(i).Interface())
	}
}

// Load builds a Config. path may be empty, in which case only defaults and
// the environment apply; a named file that cannot be read is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the rest of the program relies on.
func (c *Config) Validate() error {
	if c.Render.FPS <= 0 {
		return fmt.Errorf("%w: render.fps must be positive", ErrInvalid)
	}
	if c.Particles.Count < 1 {
		return fmt.Errorf("%w: particles.count must be at least 1", ErrInvalid)
	}
	if _, err := shape.ParseKind(c.Particles.Shape); err != nil {
		return fmt.Errorf("%w: particles.shape: %w", ErrInvalid, err)
	}
	if _, err := morph.ParseColor(c.Particles.Color); err != nil {
		return fmt.Errorf("%w: particles.color %q", ErrInvalid, c.Particles.Color)
	}
	switch c.Signal.Source {
	case SignalCamera, SignalRemote:
	default:
		return fmt.Errorf("%w: signal.source must be %q or %q", ErrInvalid, SignalCamera, SignalRemote)
	}
	if c.Detector.MaxHands < 1 {
		return fmt.Errorf("%w: detector.maxHands must be at least 1", ErrInvalid)
	}
	return nil
}
