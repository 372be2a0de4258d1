package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/mgpai22/trimcast/internal/caption"
	"github.com/mgpai22/trimcast/internal/timeline"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output and tool locations.
type Paths struct {
	OutputDir   string `toml:"output_dir"`
	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`
	// fetch a static ffmpeg build when none is installed
	DownloadFFmpeg bool `toml:"download_ffmpeg"`
}

// API keys; the provider environment variables override these.
type Keys struct {
	Gemini    string `toml:"gemini_api_key"`
	OpenAI    string `toml:"openai_api_key"`
	Anthropic string `toml:"anthropic_api_key"`
}

// Transcribe selects the speech-to-text provider.
type Transcribe struct {
	Provider           string `toml:"provider"`
	Model              string `toml:"model"`
	Language           string `toml:"language"`
	TranscriptLanguage string `toml:"transcript_language"`
	ChunkMinutes       int    `toml:"chunk_minutes"`
	Concurrency        int    `toml:"concurrency"`
}

// Edit selects the language model that shortens transcripts.
type Edit struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	Prompt   string `toml:"prompt"`
}

// TTS configures speech for words that have no source audio.
type TTS struct {
	Model        string  `toml:"model"`
	Voice        string  `toml:"voice"`
	Instructions string  `toml:"instructions"`
	Speed        float64 `toml:"speed"`
	Concurrency  int     `toml:"concurrency"`
}

// Timing holds splice padding and pause bounds, in seconds.
type Timing struct {
	PadBefore       float64 `toml:"pad_before"`
	PadAfter        float64 `toml:"pad_after"`
	MergeGap        float64 `toml:"merge_gap"`
	MinPause        float64 `toml:"min_pause"`
	MaxPause        float64 `toml:"max_pause"`
	MinWordDur      float64 `toml:"min_word_dur"`
	TransitionPause float64 `toml:"hybrid_transition_pause"`
	TTSWordGap      float64 `toml:"tts_word_gap"`
}

// Captions holds the per-line and per-page budgets.
type Captions struct {
	RenderedMaxChars int `toml:"rendered_max_chars"`
	RenderedMaxLines int `toml:"rendered_max_lines"`
	TextMaxChars     int `toml:"text_max_chars"`
	TextMaxLines     int `toml:"text_max_lines"`
}

// Clips bounds clip selection.
type Clips struct {
	Count     int `toml:"count"`
	MinWords  int `toml:"min_words"`
	MaxWords  int `toml:"max_words"`
	MaxRanges int `toml:"max_ranges"`
}

// Video configures the caption video.
type Video struct {
	Enabled    bool   `toml:"enabled"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	FrameRate  int    `toml:"frame_rate"`
	Background string `toml:"background"`
	FontName   string `toml:"font_name"`
	FontSize   int    `toml:"font_size"`
}

// Audio configures input preparation.
type Audio struct {
	Enhance    bool    `toml:"enhance"`
	MaxSeconds float64 `toml:"max_input_seconds"`
}

// Config encapsulates all configuration values for trimcast.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Keys       Keys       `toml:"keys"`
	Transcribe Transcribe `toml:"transcribe"`
	Edit       Edit       `toml:"edit"`
	TTS        TTS        `toml:"tts"`
	Timing     Timing     `toml:"timing"`
	Captions   Captions   `toml:"captions"`
	Clips      Clips      `toml:"clips"`
	Video      Video      `toml:"video"`
	Audio      Audio      `toml:"audio"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// SampleConfig returns an annotated config file with the defaults.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has paths expanded and API keys resolved from the environment.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file not found: %s", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(defaultProjectConfig)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// ChunkOptions returns the splice settings for the timeline.
func (c *Config) ChunkOptions() timeline.ChunkOptions {
	return timeline.ChunkOptions{
		PadBefore:  c.Timing.PadBefore,
		PadAfter:   c.Timing.PadAfter,
		MinWordDur: c.Timing.MinWordDur,
		MergeGap:   c.Timing.MergeGap,
		MinPause:   c.Timing.MinPause,
		MaxPause:   c.Timing.MaxPause,
	}
}

// RenderedCaptions is the layout for captions of rendered audio.
func (c *Config) RenderedCaptions() caption.Options {
	return caption.Options{
		MaxCharsPerLine: c.Captions.RenderedMaxChars,
		MaxLinesPerPage: c.Captions.RenderedMaxLines,
	}
}

// TextCaptions is the layout for captions built from plain text.
func (c *Config) TextCaptions() caption.Options {
	return caption.Options{
		MaxCharsPerLine: c.Captions.TextMaxChars,
		MaxLinesPerPage: c.Captions.TextMaxLines,
	}
}

// APIKey returns the key configured for a provider name.
func (c *Config) APIKey(provider string) string {
	switch strings.ToLower(provider) {
	case "gemini":
		return c.Keys.Gemini
	case "openai":
		return c.Keys.OpenAI
	case "anthropic":
		return c.Keys.Anthropic
	}
	return ""
}

// EnvKey names the environment variable holding a provider's API key.
func EnvKey(provider string) string {
	return strings.ToUpper(provider) + "_API_KEY"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
