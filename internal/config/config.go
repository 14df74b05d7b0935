// Package config provides configuration management for the overlay.
package config

import "time"

// Config holds all application configuration
type Config struct {
	Window    WindowConfig    `mapstructure:"window"`
	Audio     AudioConfig     `mapstructure:"audio"`
	Speech    SpeechConfig    `mapstructure:"speech"`
	Effects   EffectsConfig   `mapstructure:"effects"`
	Animation AnimationConfig `mapstructure:"animation"`
	Avatar    AvatarConfig    `mapstructure:"avatar"`
	UI        UIConfig        `mapstructure:"ui"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Log       LogConfig       `mapstructure:"log"`
}

// WindowConfig configures the window
type WindowConfig struct {
	Title  string `mapstructure:"title"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	TPS    int    `mapstructure:"tps"`
}

// AudioConfig configures microphone capture and the talking threshold
type AudioConfig struct {
	SampleRate int     `mapstructure:"sample_rate"`
	Channels   int     `mapstructure:"channels"`
	Threshold  float64 `mapstructure:"threshold"`  // normalized RMS (0-1)
	QueueSize  int     `mapstructure:"queue_size"` // frames buffered for the recognizer
}

// SpeechConfig configures keyword recognition
type SpeechConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ModelPath   string        `mapstructure:"model_path"`
	Keywords    []string      `mapstructure:"keywords"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
	Backoff     time.Duration `mapstructure:"backoff"`
}

// EffectsConfig tunes the glow and particle burst
type EffectsConfig struct {
	GlowDuration int     `mapstructure:"glow_duration"` // frames
	GlowMaxAlpha float64 `mapstructure:"glow_max_alpha"`
	Hearts       int     `mapstructure:"hearts"`
	Sparkles     int     `mapstructure:"sparkles"`
	SpawnRadius  float64 `mapstructure:"spawn_radius"`
	MaxParticles int     `mapstructure:"max_particles"`
}

// AnimationConfig holds the bounce and breathing curves
type AnimationConfig struct {
	BounceSpeed  float64 `mapstructure:"bounce_speed"`
	BounceHeight float64 `mapstructure:"bounce_height"`
	BreathSpeed  float64 `mapstructure:"breath_speed"`
	BreathHeight float64 `mapstructure:"breath_height"`
}

// AvatarConfig locates models and shared sprites
type AvatarConfig struct {
	ModelsDir    string  `mapstructure:"models_dir"`
	AssetsDir    string  `mapstructure:"assets_dir"`
	DefaultModel string  `mapstructure:"default_model"`
	ImageScale   float64 `mapstructure:"image_scale"`
	HeartScale   float64 `mapstructure:"heart_scale"`
	SparkleSize  int     `mapstructure:"sparkle_size"`
}

// UIConfig configures menu chrome
type UIConfig struct {
	SplashDuration time.Duration `mapstructure:"splash_duration"`
	FontPath       string        `mapstructure:"font_path"`
}

// ChatKeyword maps a chat keyword to the model it switches to
type ChatKeyword struct {
	Keyword string `mapstructure:"keyword"`
	Model   string `mapstructure:"model"`
}

// ChatConfig configures the optional live-chat websocket feed
type ChatConfig struct {
	URL            string        `mapstructure:"url"` // empty disables the listener
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
	Keywords       []ChatKeyword `mapstructure:"keywords"`
}

// LogConfig configures logging output
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Default returns the stock tuning
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Nyamii OBS GreenScreen",
			Width:  800,
			Height: 800,
			TPS:    60,
		},
		Audio: AudioConfig{
			SampleRate: 16000,
			Channels:   1,
			Threshold:  0.01,
			QueueSize:  128,
		},
		Speech: SpeechConfig{
			Enabled:   true,
			ModelPath: "vosk-model-small-en-us-0.15",
			Keywords: []string{
				"love", "heart", "cute", "hug", "adorable", "thank you", "thanks",
				"awesome", "amazing", "wow", "cool", "nice", "boss girl",
			},
			PollTimeout: time.Second,
			Backoff:     time.Second,
		},
		Effects: EffectsConfig{
			GlowDuration: 180,
			GlowMaxAlpha: 150,
			Hearts:       60,
			Sparkles:     30,
			SpawnRadius:  150,
			MaxParticles: 2000,
		},
		Animation: AnimationConfig{
			BounceSpeed:  5,
			BounceHeight: 10,
			BreathSpeed:  1,
			BreathHeight: 5,
		},
		Avatar: AvatarConfig{
			ModelsDir:    "nyamii/models",
			AssetsDir:    "assets",
			DefaultModel: "nyamii",
			ImageScale:   0.8,
			HeartScale:   0.2,
			SparkleSize:  32,
		},
		UI: UIConfig{
			SplashDuration: 2 * time.Second,
			FontPath:       "assets/font.ttf",
		},
		Chat: ChatConfig{
			ReconnectDelay: 5 * time.Second,
			Keywords: []ChatKeyword{
				{Keyword: "bald", Model: "bald"},
				{Keyword: "neko", Model: "neko"},
				{Keyword: "evil", Model: "evil"},
				{Keyword: "human", Model: "human"},
				{Keyword: "eyes", Model: "googly"},
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
