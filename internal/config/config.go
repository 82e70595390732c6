package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults used when config.yaml is absent or a field is unset.
const (
	DefaultTextModel    = "gemini-2.0-flash-exp"
	DefaultResolution   = "1080p"
	DefaultModelTier    = "fast"
	DefaultAspectRatio  = "16:9"
	DefaultFPS          = 24
	DefaultPollInterval = 5
	DefaultMaxWaitSec   = 600
	DefaultVoice        = "Adam"
	DefaultSpeechModel  = "eleven_multilingual_v2"
	DefaultCacheDir     = ".repo-explainer-cache"
)

// VEO model names per speed tier.
const (
	veoModelFast    = "veo-3.1-fast-generate-preview"
	veoModelQuality = "veo-3.1-generate-preview"
)

type Config struct {
	Gemini    GeminiConfig    `yaml:"gemini"`
	Video     VideoConfig     `yaml:"video"`
	Narration NarrationConfig `yaml:"narration"`
	Music     MusicConfig     `yaml:"music"`
	Paths     PathsConfig     `yaml:"paths"`
}

type GeminiConfig struct {
	TextModel string `yaml:"text_model"`
}

type VideoConfig struct {
	Resolution      string `yaml:"resolution"` // 720p | 1080p
	ModelTier       string `yaml:"model_tier"` // fast | quality
	AspectRatio     string `yaml:"aspect_ratio"`
	FPS             int    `yaml:"fps"`
	PollIntervalSec int    `yaml:"poll_interval_sec"`
	MaxWaitSec      int    `yaml:"max_wait_sec"`
}

type NarrationConfig struct {
	Voice string `yaml:"voice"`
	Model string `yaml:"model"`
}

type MusicConfig struct {
	TrackPath string `yaml:"track_path"` // optional local track; silence placeholder if unset
}

type PathsConfig struct {
	CacheDir string `yaml:"cache_dir"`
}

// Load reads config.yaml and fills in defaults. A missing file is not an
// error; every option has a default and credentials come from the
// environment anyway.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Gemini.TextModel == "" {
		c.Gemini.TextModel = DefaultTextModel
	}
	if c.Video.Resolution == "" {
		c.Video.Resolution = DefaultResolution
	}
	if c.Video.ModelTier == "" {
		c.Video.ModelTier = DefaultModelTier
	}
	if c.Video.AspectRatio == "" {
		c.Video.AspectRatio = DefaultAspectRatio
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = DefaultFPS
	}
	if c.Video.PollIntervalSec == 0 {
		c.Video.PollIntervalSec = DefaultPollInterval
	}
	if c.Video.MaxWaitSec == 0 {
		c.Video.MaxWaitSec = DefaultMaxWaitSec
	}
	if c.Narration.Voice == "" {
		c.Narration.Voice = DefaultVoice
	}
	if c.Narration.Model == "" {
		c.Narration.Model = DefaultSpeechModel
	}
	if c.Paths.CacheDir == "" {
		c.Paths.CacheDir = DefaultCacheDir
	}
}

// applyEnvOverrides lets VIDEO_QUALITY and VEO_MODEL override the config
// file. Unrecognized values fall back to the defaults with a warning.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("VIDEO_QUALITY"); v != "" {
		c.Video.Resolution = v
	}
	if v := os.Getenv("VEO_MODEL"); v != "" {
		c.Video.ModelTier = v
	}
	if c.Video.Resolution != "720p" && c.Video.Resolution != "1080p" {
		log.Printf("[config] ⚠️ unrecognized resolution %q — using %s", c.Video.Resolution, DefaultResolution)
		c.Video.Resolution = DefaultResolution
	}
	if c.Video.ModelTier != "fast" && c.Video.ModelTier != "quality" {
		log.Printf("[config] ⚠️ unrecognized model tier %q — using %s", c.Video.ModelTier, DefaultModelTier)
		c.Video.ModelTier = DefaultModelTier
	}
}

// VeoModel maps the configured speed tier to a concrete VEO model name.
func (c *Config) VeoModel() string {
	if c.Video.ModelTier == "quality" {
		return veoModelQuality
	}
	return veoModelFast
}

// Credentials are loaded from the environment (via .env in local dev).
type Credentials struct {
	GeminiAPIKey     string
	ElevenLabsAPIKey string
}

// LoadCredentials validates the API keys the run will need. Preview mode
// only talks to the text model, so the speech key is not required there.
func LoadCredentials(preview bool) (*Credentials, error) {
	creds := &Credentials{
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		ElevenLabsAPIKey: os.Getenv("ELEVENLABS_API_KEY"),
	}
	if creds.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	if !preview && creds.ElevenLabsAPIKey == "" {
		return nil, fmt.Errorf("ELEVENLABS_API_KEY environment variable not set")
	}
	return creds, nil
}
