package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Research      ResearchConfig      `yaml:"research"`
	Script        ScriptConfig        `yaml:"script"`
	Audio         AudioConfig         `yaml:"audio"`
	Transcribe    TranscribeConfig    `yaml:"transcribe"`
	Illustrations IllustrationsConfig `yaml:"illustrations"`
	Screenshot    ScreenshotConfig    `yaml:"screenshot"`
	Video         VideoConfig         `yaml:"video"`
	Upload        UploadConfig        `yaml:"upload"`
	Paths         PathsConfig         `yaml:"paths"`
}

type ResearchConfig struct {
	Query           string   `yaml:"query"`
	LookbackHours   int      `yaml:"lookback_hours"`
	MinLikes        int      `yaml:"min_likes"`
	MinReposts      int      `yaml:"min_reposts"`
	MaxCandidates   int      `yaml:"max_candidates"`
	Subreddits      []string `yaml:"subreddits"`
	MinRedditScore  int      `yaml:"min_reddit_score"`
	MinComments     int      `yaml:"min_comments"`
}

type ScriptConfig struct {
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	TargetSeconds  int     `yaml:"target_seconds"`
}

type AudioConfig struct {
	VoiceID      string  `yaml:"voice_id"`
	Model        string  `yaml:"model"`
	Stability    float64 `yaml:"stability"`
	Similarity   float64 `yaml:"similarity"`
	OutputFormat string  `yaml:"output_format"`
}

type TranscribeConfig struct {
	WhisperModel string `yaml:"whisper_model"`
	Language     string `yaml:"language"`
}

type IllustrationsConfig struct {
	Count       int    `yaml:"count"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Model       string `yaml:"model"`
	Concurrency int    `yaml:"concurrency"`
}

type ScreenshotConfig struct {
	Width  int `yaml:"width"`
	Scale  int `yaml:"scale"`
}

type VideoConfig struct {
	Resolution         string  `yaml:"resolution"`
	FPS                int     `yaml:"fps"`
	Bitrate            string  `yaml:"bitrate"`
	MaxSceneSec        float64 `yaml:"max_scene_sec"`
	PauseThresholdSec  float64 `yaml:"pause_threshold_sec"`
	TrailingBufferSec  float64 `yaml:"trailing_buffer_sec"`
	CrossfadeSec       float64 `yaml:"crossfade_sec"`
	SceneFadeSec       float64 `yaml:"scene_fade_sec"`
	ZoomIntensity      float64 `yaml:"zoom_intensity"`
	TickerScrollSpeed  int     `yaml:"ticker_scroll_speed"`
	AlternationSec     float64 `yaml:"alternation_sec"`
	AlternationFadeSec float64 `yaml:"alternation_fade_sec"`
	MusicVolume        float64 `yaml:"music_volume"`
	CacheWorkers       int     `yaml:"cache_workers"`
	RenderTimeoutMin   int     `yaml:"render_timeout_min"`
	CaptionFontSize    int     `yaml:"caption_font_size"`
	CaptionActiveColor string  `yaml:"caption_active_color"`
	CaptionColor       string  `yaml:"caption_color"`
}

type UploadConfig struct {
	Visibility        string `yaml:"visibility"`
	CategoryID        string `yaml:"category_id"`
	NotifySubscribers bool   `yaml:"notify_subscribers"`
	MadeForKids       bool   `yaml:"made_for_kids"`
	DefaultLanguage   string `yaml:"default_language"`
}

type PathsConfig struct {
	Output          string `yaml:"output"`
	Illustrations   string `yaml:"illustrations"`
	Music           string `yaml:"music"`
	Background      string `yaml:"background"`
	TickerStrip     string `yaml:"ticker_strip"`
	TweetScreenshot string `yaml:"tweet_screenshot"`
	StockChart      string `yaml:"stock_chart"`
	Logs            string `yaml:"logs"`
}

// Load reads config.yaml and applies defaults for unset timing knobs
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	v := &c.Video
	if v.Resolution == "" {
		v.Resolution = "1080x1920"
	}
	if v.FPS == 0 {
		v.FPS = 30
	}
	if v.Bitrate == "" {
		v.Bitrate = "5000k"
	}
	if v.MaxSceneSec == 0 {
		v.MaxSceneSec = 8.0
	}
	if v.PauseThresholdSec == 0 {
		v.PauseThresholdSec = 0.5
	}
	if v.TrailingBufferSec == 0 {
		v.TrailingBufferSec = 1.0
	}
	if v.CrossfadeSec == 0 {
		v.CrossfadeSec = 0.3
	}
	if v.SceneFadeSec == 0 {
		v.SceneFadeSec = 0.5
	}
	if v.ZoomIntensity == 0 {
		v.ZoomIntensity = 0.12
	}
	if v.TickerScrollSpeed == 0 {
		v.TickerScrollSpeed = 100
	}
	if v.AlternationSec == 0 {
		v.AlternationSec = 30.0
	}
	if v.AlternationFadeSec == 0 {
		v.AlternationFadeSec = 1.0
	}
	if v.MusicVolume == 0 {
		v.MusicVolume = 0.22
	}
	if v.CacheWorkers == 0 {
		v.CacheWorkers = 4
	}
	if v.RenderTimeoutMin == 0 {
		v.RenderTimeoutMin = 30
	}
	if v.CaptionFontSize == 0 {
		v.CaptionFontSize = 72
	}
	if v.CaptionActiveColor == "" {
		v.CaptionActiveColor = "#FFD700"
	}
	if v.CaptionColor == "" {
		v.CaptionColor = "#FFFFFF"
	}
	if c.Illustrations.Concurrency == 0 {
		c.Illustrations.Concurrency = 3
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "output/financial_shorts"
	}
}

// FrameSize parses the "WxH" resolution string.
func (v VideoConfig) FrameSize() (int, int, error) {
	parts := strings.SplitN(v.Resolution, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad resolution %q, want WxH", v.Resolution)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad resolution width %q", parts[0])
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad resolution height %q", parts[1])
	}
	return w, h, nil
}
