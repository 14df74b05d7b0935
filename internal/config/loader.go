package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. VTUBER_AUDIO_THRESHOLD.
const EnvPrefix = "VTUBER"

var validLevels = []string{"debug", "info", "warn", "error"}

// New returns a viper instance seeded with Default and bound to path.
// An empty path only searches the working directory for vtuber.yaml.
func New(path string) *viper.Viper {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("vtuber")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from file and environment.
// A missing config file is not an error; defaults apply.
func Load(path string) (*Config, *viper.Viper, error) {
	v := New(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("config: read: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// Watch calls fn with the freshly decoded config every time the file changes.
// Changes that fail to decode or validate are reported through onErr and skipped.
func Watch(v *viper.Viper, fn func(*Config), onErr func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return
		}
		fn(cfg)
	})
	v.WatchConfig()
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", cfg.Window.Width, cfg.Window.Height))
	}
	if cfg.Window.TPS <= 0 {
		errs = append(errs, fmt.Errorf("window.tps %d must be positive", cfg.Window.TPS))
	}
	if cfg.Audio.Threshold <= 0 || cfg.Audio.Threshold > 1 {
		errs = append(errs, fmt.Errorf("audio.threshold %v must be in (0, 1]", cfg.Audio.Threshold))
	}
	if cfg.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d must be positive", cfg.Audio.SampleRate))
	}
	if cfg.Audio.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("audio.queue_size %d must be positive", cfg.Audio.QueueSize))
	}
	if cfg.Effects.GlowDuration <= 0 {
		errs = append(errs, fmt.Errorf("effects.glow_duration %d must be positive", cfg.Effects.GlowDuration))
	}
	if cfg.Effects.Hearts < 0 || cfg.Effects.Sparkles < 0 {
		errs = append(errs, fmt.Errorf("effects particle counts must not be negative (hearts=%d, sparkles=%d)", cfg.Effects.Hearts, cfg.Effects.Sparkles))
	}
	if batch := cfg.Effects.Hearts + cfg.Effects.Sparkles; cfg.Effects.MaxParticles < batch {
		errs = append(errs, fmt.Errorf("effects.max_particles %d is below one burst of %d", cfg.Effects.MaxParticles, batch))
	}
	if cfg.Avatar.DefaultModel == "" {
		errs = append(errs, errors.New("avatar.default_model must be set"))
	}
	if cfg.Avatar.ImageScale <= 0 {
		errs = append(errs, fmt.Errorf("avatar.image_scale %v must be positive", cfg.Avatar.ImageScale))
	}
	if !slices.Contains(validLevels, cfg.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: %s", cfg.Log.Level, strings.Join(validLevels, ", ")))
	}

	return errors.Join(errs...)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("window.title", cfg.Window.Title)
	v.SetDefault("window.width", cfg.Window.Width)
	v.SetDefault("window.height", cfg.Window.Height)
	v.SetDefault("window.tps", cfg.Window.TPS)

	v.SetDefault("audio.sample_rate", cfg.Audio.SampleRate)
	v.SetDefault("audio.channels", cfg.Audio.Channels)
	v.SetDefault("audio.threshold", cfg.Audio.Threshold)
	v.SetDefault("audio.queue_size", cfg.Audio.QueueSize)

	v.SetDefault("speech.enabled", cfg.Speech.Enabled)
	v.SetDefault("speech.model_path", cfg.Speech.ModelPath)
	v.SetDefault("speech.keywords", cfg.Speech.Keywords)
	v.SetDefault("speech.poll_timeout", cfg.Speech.PollTimeout)
	v.SetDefault("speech.backoff", cfg.Speech.Backoff)

	v.SetDefault("effects.glow_duration", cfg.Effects.GlowDuration)
	v.SetDefault("effects.glow_max_alpha", cfg.Effects.GlowMaxAlpha)
	v.SetDefault("effects.hearts", cfg.Effects.Hearts)
	v.SetDefault("effects.sparkles", cfg.Effects.Sparkles)
	v.SetDefault("effects.spawn_radius", cfg.Effects.SpawnRadius)
	v.SetDefault("effects.max_particles", cfg.Effects.MaxParticles)

	v.SetDefault("animation.bounce_speed", cfg.Animation.BounceSpeed)
	v.SetDefault("animation.bounce_height", cfg.Animation.BounceHeight)
	v.SetDefault("animation.breath_speed", cfg.Animation.BreathSpeed)
	v.SetDefault("animation.breath_height", cfg.Animation.BreathHeight)

	v.SetDefault("avatar.models_dir", cfg.Avatar.ModelsDir)
	v.SetDefault("avatar.assets_dir", cfg.Avatar.AssetsDir)
	v.SetDefault("avatar.default_model", cfg.Avatar.DefaultModel)
	v.SetDefault("avatar.image_scale", cfg.Avatar.ImageScale)
	v.SetDefault("avatar.heart_scale", cfg.Avatar.HeartScale)
	v.SetDefault("avatar.sparkle_size", cfg.Avatar.SparkleSize)

	v.SetDefault("ui.splash_duration", cfg.UI.SplashDuration)
	v.SetDefault("ui.font_path", cfg.UI.FontPath)

	v.SetDefault("chat.url", cfg.Chat.URL)
	v.SetDefault("chat.reconnect_delay", cfg.Chat.ReconnectDelay)
	keywords := make([]map[string]any, 0, len(cfg.Chat.Keywords))
	for _, k := range cfg.Chat.Keywords {
		keywords = append(keywords, map[string]any{"keyword": k.Keyword, "model": k.Model})
	}
	v.SetDefault("chat.keywords", keywords)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
}
