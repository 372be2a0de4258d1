package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeKeys()
	c.normalizeProviders()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.FFmpegPath, err = expandPath(strings.TrimSpace(c.Paths.FFmpegPath)); err != nil {
		return fmt.Errorf("paths.ffmpeg_path: %w", err)
	}
	if c.Paths.FFprobePath, err = expandPath(strings.TrimSpace(c.Paths.FFprobePath)); err != nil {
		return fmt.Errorf("paths.ffprobe_path: %w", err)
	}
	return nil
}

// environment keys win over the file
func (c *Config) normalizeKeys() {
	for _, k := range []struct {
		env string
		dst *string
	}{
		{EnvKey("gemini"), &c.Keys.Gemini},
		{EnvKey("openai"), &c.Keys.OpenAI},
		{EnvKey("anthropic"), &c.Keys.Anthropic},
	} {
		if value, ok := os.LookupEnv(k.env); ok && strings.TrimSpace(value) != "" {
			*k.dst = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeProviders() {
	c.Transcribe.Provider = strings.ToLower(strings.TrimSpace(c.Transcribe.Provider))
	if c.Transcribe.Provider == "" {
		c.Transcribe.Provider = defaultTranscribeProvider
	}
	c.Transcribe.Model = strings.TrimSpace(c.Transcribe.Model)
	c.Edit.Provider = strings.ToLower(strings.TrimSpace(c.Edit.Provider))
	if c.Edit.Provider == "" {
		c.Edit.Provider = defaultEditProvider
	}
	c.Edit.Model = strings.TrimSpace(c.Edit.Model)
	c.TTS.Voice = strings.TrimSpace(c.TTS.Voice)
	if c.TTS.Voice == "" {
		c.TTS.Voice = defaultTTSVoice
	}
	if strings.TrimSpace(c.TTS.Model) == "" {
		c.TTS.Model = defaultTTSModel
	}
}
