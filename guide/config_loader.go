package guide

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadConfigFromViper loads guidance configuration from Viper,
// layering any keys the user set over the defaults. The CLI reads its
// config file into Viper before calling this.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("guide.engine") {
		cfg.Engine = viper.GetString("guide.engine")
	}
	if viper.IsSet("guide.strategy") {
		cfg.Strategy = viper.GetString("guide.strategy")
	}
	if viper.IsSet("guide.sample_rate") {
		cfg.SampleRate = viper.GetInt("guide.sample_rate")
	}
	if viper.IsSet("guide.fade_duration") {
		cfg.FadeDuration = viper.GetDuration("guide.fade_duration")
	}
	if viper.IsSet("guide.tick_interval") {
		cfg.TickInterval = viper.GetDuration("guide.tick_interval")
	}
	if viper.IsSet("guide.suppression_window") {
		cfg.SuppressionWindow = viper.GetDuration("guide.suppression_window")
	}
	if viper.IsSet("guide.max_script_len") {
		cfg.MaxScriptLen = viper.GetInt("guide.max_script_len")
	}
	if viper.IsSet("guide.fit_safety") {
		cfg.FitSafety = viper.GetFloat64("guide.fit_safety")
	}
	if viper.IsSet("guide.fit_max_rate") {
		cfg.FitMaxRate = viper.GetFloat64("guide.fit_max_rate")
	}
	if viper.IsSet("guide.cache_path") {
		cfg.CachePath = viper.GetString("guide.cache_path")
	}
	if viper.IsSet("guide.cache_compression") {
		cfg.CacheCompression = viper.GetInt("guide.cache_compression")
	}

	if viper.IsSet("guide.neural.url") {
		cfg.Neural.URL = viper.GetString("guide.neural.url")
	}
	if viper.IsSet("guide.neural.api_key") {
		cfg.Neural.APIKey = viper.GetString("guide.neural.api_key")
	}
	if viper.IsSet("guide.neural.voice_id") {
		cfg.Neural.VoiceID = viper.GetString("guide.neural.voice_id")
	}
	if viper.IsSet("guide.neural.timeout") {
		cfg.Neural.Timeout = viper.GetDuration("guide.neural.timeout")
	}

	if viper.IsSet("guide.cloud.url") {
		cfg.Cloud.URL = viper.GetString("guide.cloud.url")
	}
	if viper.IsSet("guide.cloud.voice") {
		cfg.Cloud.Voice = viper.GetString("guide.cloud.voice")
	}
	if viper.IsSet("guide.cloud.timeout") {
		cfg.Cloud.Timeout = viper.GetDuration("guide.cloud.timeout")
	}
	if viper.IsSet("guide.cloud.requests_per_minute") {
		cfg.Cloud.RequestsPerMinute = viper.GetInt("guide.cloud.requests_per_minute")
	}

	if viper.IsSet("guide.native.binary") {
		cfg.Native.Binary = viper.GetString("guide.native.binary")
	}
	if viper.IsSet("guide.native.voice") {
		cfg.Native.Voice = viper.GetString("guide.native.voice")
	}
	if viper.IsSet("guide.native.rate") {
		cfg.Native.Rate = viper.GetInt("guide.native.rate")
	}
	if viper.IsSet("guide.native.pitch") {
		cfg.Native.Pitch = viper.GetFloat64("guide.native.pitch")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid guidance configuration: %w", err)
	}
	return cfg, nil
}
