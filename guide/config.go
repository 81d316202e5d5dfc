package guide

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Engine selection policies. "auto" prefers on-device synthesis on
// darwin-class platforms where cloud audio delivery is unreliable, and
// the neural tier elsewhere.
const (
	PolicyAuto   = "auto"
	PolicyNeural = "neural"
	PolicyCloud  = "cloud"
	PolicyNative = "native"
)

// Cue scheduling strategies.
const (
	StrategyReactive  = "reactive"
	StrategyScheduled = "scheduled"
)

// Config contains all guidance engine configuration options.
type Config struct {
	// Engine selects the preferred synthesis tier policy.
	Engine string `yaml:"engine" env:"WORKOUT_TTS_ENGINE"`
	// Strategy selects reactive per-tick cues or pre-scheduled
	// batch timelines.
	Strategy string `yaml:"strategy" env:"WORKOUT_CUE_STRATEGY"`

	// Audio settings
	SampleRate   int           `yaml:"sample_rate" env:"WORKOUT_SAMPLE_RATE"`
	FadeDuration time.Duration `yaml:"fade_duration" env:"WORKOUT_FADE_DURATION"`

	// Countdown settings
	TickInterval      time.Duration `yaml:"tick_interval" env:"WORKOUT_TICK_INTERVAL"`
	SuppressionWindow time.Duration `yaml:"suppression_window" env:"WORKOUT_SUPPRESSION_WINDOW"`

	// Script settings
	MaxScriptLen int `yaml:"max_script_len" env:"WORKOUT_MAX_SCRIPT_LEN"`

	// Tempo-fit settings
	FitSafety  float64 `yaml:"fit_safety" env:"WORKOUT_FIT_SAFETY"`
	FitMaxRate float64 `yaml:"fit_max_rate" env:"WORKOUT_FIT_MAX_RATE"`

	// Cache settings
	CachePath        string `yaml:"cache_path" env:"WORKOUT_CACHE_PATH"`
	CacheCompression int    `yaml:"cache_compression" env:"WORKOUT_CACHE_COMPRESSION"`

	// Tier-specific configurations
	Neural NeuralConfig `yaml:"neural"`
	Cloud  CloudConfig  `yaml:"cloud"`
	Native NativeConfig `yaml:"native"`
}

// NeuralConfig contains the premium neural voice tier settings. The
// API key is server-held; an empty key disables the tier.
type NeuralConfig struct {
	URL     string        `yaml:"url" env:"WORKOUT_NEURAL_URL"`
	APIKey  string        `yaml:"api_key" env:"WORKOUT_NEURAL_API_KEY"`
	VoiceID string        `yaml:"voice_id" env:"WORKOUT_NEURAL_VOICE_ID"`
	Timeout time.Duration `yaml:"timeout" env:"WORKOUT_NEURAL_TIMEOUT"`
}

// CloudConfig contains the free cloud voice tier settings.
type CloudConfig struct {
	URL               string        `yaml:"url" env:"WORKOUT_CLOUD_URL"`
	Voice             string        `yaml:"voice" env:"WORKOUT_CLOUD_VOICE"`
	Timeout           time.Duration `yaml:"timeout" env:"WORKOUT_CLOUD_TIMEOUT"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"WORKOUT_CLOUD_RPM"`
}

// NativeConfig contains on-device speech synthesis settings.
type NativeConfig struct {
	Binary string  `yaml:"binary" env:"WORKOUT_NATIVE_BINARY"`
	Voice  string  `yaml:"voice" env:"WORKOUT_NATIVE_VOICE"`
	Rate   int     `yaml:"rate" env:"WORKOUT_NATIVE_RATE"`
	Pitch  float64 `yaml:"pitch" env:"WORKOUT_NATIVE_PITCH"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Engine:            PolicyAuto,
		Strategy:          StrategyReactive,
		SampleRate:        SampleRate,
		FadeDuration:      110 * time.Millisecond,
		TickInterval:      16 * time.Millisecond,
		SuppressionWindow: 2400 * time.Millisecond,
		MaxScriptLen:      600,
		FitSafety:         0.85,
		FitMaxRate:        1.35,
		CacheCompression:  3,
		Neural:            NeuralConfig{Timeout: 10 * time.Second},
		Cloud:             CloudConfig{Voice: "Brian", Timeout: 10 * time.Second, RequestsPerMinute: 50},
		Native:            NativeConfig{Pitch: 1.0},
	}
}

// Validate checks the configuration for contradictions.
func (c Config) Validate() error {
	switch c.Engine {
	case PolicyAuto, PolicyNeural, PolicyCloud, PolicyNative:
	default:
		return fmt.Errorf("%w: unknown engine policy %q", ErrInvalidConfig, c.Engine)
	}
	switch c.Strategy {
	case StrategyReactive, StrategyScheduled:
	default:
		return fmt.Errorf("%w: unknown cue strategy %q", ErrInvalidConfig, c.Strategy)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive", ErrInvalidConfig)
	}
	if c.FitSafety <= 0 || c.FitSafety > 1 {
		return fmt.Errorf("%w: fit safety must be in (0, 1]", ErrInvalidConfig)
	}
	if c.FitMaxRate < 1 {
		return fmt.Errorf("%w: fit max rate must be >= 1", ErrInvalidConfig)
	}
	if c.MaxScriptLen <= 0 {
		return fmt.Errorf("%w: max script length must be positive", ErrInvalidConfig)
	}
	return nil
}

// ResolvedEngine maps the "auto" policy to a concrete tier preference
// for the current platform.
func (c Config) ResolvedEngine() string {
	if c.Engine != PolicyAuto {
		return c.Engine
	}
	// Cloud audio delivery is unreliable on Apple platforms; default
	// to the always-available on-device voice there.
	if runtime.GOOS == "darwin" || runtime.GOOS == "ios" {
		return PolicyNative
	}
	if c.Neural.APIKey != "" && c.Neural.URL != "" {
		return PolicyNeural
	}
	return PolicyCloud
}

// LoadConfig builds the configuration from defaults, an optional YAML
// file, and environment variable overrides, in that order.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
