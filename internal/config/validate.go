package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateTiming(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateClips(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProviders() error {
	switch c.Transcribe.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("transcribe.provider must be openai or gemini, got %q", c.Transcribe.Provider)
	}
	switch c.Edit.Provider {
	case "gemini", "openai", "anthropic":
	default:
		return fmt.Errorf("edit.provider must be gemini, openai, or anthropic, got %q", c.Edit.Provider)
	}
	if c.Transcribe.ChunkMinutes < 1 {
		return errors.New("transcribe.chunk_minutes must be at least 1")
	}
	if c.Transcribe.Concurrency < 1 {
		return errors.New("transcribe.concurrency must be at least 1")
	}
	if c.TTS.Concurrency < 1 {
		return errors.New("tts.concurrency must be at least 1")
	}
	if c.TTS.Speed <= 0 {
		return errors.New("tts.speed must be positive")
	}
	return nil
}

func (c *Config) validateTiming() error {
	if err := c.ChunkOptions().Validate(); err != nil {
		return fmt.Errorf("timing: %w", err)
	}
	if c.Timing.TransitionPause < 0 {
		return errors.New("timing.hybrid_transition_pause must be >= 0")
	}
	if c.Timing.TTSWordGap < 0 {
		return errors.New("timing.tts_word_gap must be >= 0")
	}
	return nil
}

func (c *Config) validateCaptions() error {
	if c.Captions.RenderedMaxChars < 1 || c.Captions.RenderedMaxLines < 1 {
		return errors.New("captions.rendered_max_chars and captions.rendered_max_lines must be at least 1")
	}
	if c.Captions.TextMaxChars < 1 || c.Captions.TextMaxLines < 1 {
		return errors.New("captions.text_max_chars and captions.text_max_lines must be at least 1")
	}
	return nil
}

func (c *Config) validateClips() error {
	if c.Clips.Count < 1 {
		return errors.New("clips.count must be >= 1")
	}
	if c.Clips.MinWords < 1 || c.Clips.MaxWords < 1 {
		return errors.New("clips.min_words and clips.max_words must be >= 1")
	}
	if c.Clips.MinWords > c.Clips.MaxWords {
		return errors.New("clips.min_words must be <= clips.max_words")
	}
	if c.Clips.MaxRanges < 1 {
		return errors.New("clips.max_ranges must be >= 1")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if !c.Video.Enabled {
		return nil
	}
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		return errors.New("video.width and video.height must be positive")
	}
	if c.Video.FrameRate <= 0 {
		return errors.New("video.frame_rate must be positive")
	}
	if c.Video.FontSize <= 0 {
		return errors.New("video.font_size must be positive")
	}
	return nil
}
