package config

const (
	defaultConfigPath             = "~/.config/trimcast/config.toml"
	defaultProjectConfig          = "trimcast.toml"
	defaultOutputDir              = "out"
	defaultTranscribeProvider     = "openai"
	defaultTranscribeChunkMinutes = 10
	defaultTranscribeConcurrency  = 3
	defaultEditProvider           = "gemini"
	defaultTTSModel               = "gpt-4o-mini-tts"
	defaultTTSVoice               = "alloy"
	defaultTTSSpeed               = 1.0
	defaultTTSConcurrency         = 4
	defaultPadBefore              = 0.04
	defaultPadAfter               = 0.06
	defaultMergeGap               = 0.09
	defaultMinPause               = 0.05
	defaultMaxPause               = 0.16
	defaultMinWordDur             = 0.04
	defaultTransitionPause        = 0.08
	defaultTTSWordGap             = 0.03
	defaultRenderedMaxChars       = 30
	defaultRenderedMaxLines       = 4
	defaultTextMaxChars           = 52
	defaultTextMaxLines           = 5
	defaultClipCount              = 3
	defaultClipMinWords           = 120
	defaultClipMaxWords           = 420
	defaultClipMaxRanges          = 8
	defaultVideoWidth             = 1920
	defaultVideoHeight            = 1080
	defaultVideoFrameRate         = 30
	defaultVideoBackground        = "black"
	defaultVideoFontName          = "Georgia"
	defaultVideoFontSize          = 78
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
		},
		Transcribe: Transcribe{
			Provider:           defaultTranscribeProvider,
			ChunkMinutes:       defaultTranscribeChunkMinutes,
			Concurrency:        defaultTranscribeConcurrency,
			TranscriptLanguage: "native",
		},
		Edit: Edit{
			Provider: defaultEditProvider,
		},
		TTS: TTS{
			Model:       defaultTTSModel,
			Voice:       defaultTTSVoice,
			Speed:       defaultTTSSpeed,
			Concurrency: defaultTTSConcurrency,
		},
		Timing: Timing{
			PadBefore:       defaultPadBefore,
			PadAfter:        defaultPadAfter,
			MergeGap:        defaultMergeGap,
			MinPause:        defaultMinPause,
			MaxPause:        defaultMaxPause,
			MinWordDur:      defaultMinWordDur,
			TransitionPause: defaultTransitionPause,
			TTSWordGap:      defaultTTSWordGap,
		},
		Captions: Captions{
			RenderedMaxChars: defaultRenderedMaxChars,
			RenderedMaxLines: defaultRenderedMaxLines,
			TextMaxChars:     defaultTextMaxChars,
			TextMaxLines:     defaultTextMaxLines,
		},
		Clips: Clips{
			Count:     defaultClipCount,
			MinWords:  defaultClipMinWords,
			MaxWords:  defaultClipMaxWords,
			MaxRanges: defaultClipMaxRanges,
		},
		Video: Video{
			Enabled:    true,
			Width:      defaultVideoWidth,
			Height:     defaultVideoHeight,
			FrameRate:  defaultVideoFrameRate,
			Background: defaultVideoBackground,
			FontName:   defaultVideoFontName,
			FontSize:   defaultVideoFontSize,
		},
		Audio: Audio{
			Enhance: true,
		},
	}
}
