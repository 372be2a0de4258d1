package pipeline

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/trimcast/internal/align"
	"github.com/mgpai22/trimcast/internal/config"
	"github.com/mgpai22/trimcast/internal/timeline"
)

// artifact file names
const (
	transcriptPlainFile   = "transcript_plain.txt"
	transcriptWordsFile   = "transcript_words.json"
	minimalEditFile       = "edited_transcript_minimal_edit.txt"
	deletionOnlyFile      = "edited_transcript_deletion_only.txt"
	deleteRangesFile      = "delete_ranges.json"
	assemblyRunsFile      = "assembly_runs.json"
	editedTimedWordsFile  = "edited_timed_words.json"
	selectedClipsFile     = "selected_clips.json"
	enhancedAudioFile     = "enhanced_audio.wav"
	condensedBaseName     = "01_Condensed"
	ttsPreviewLimit       = 100
	sourceIndexPreviewLen = 200
)

// subtitle timing provenance reported in manifests
const (
	timingSourceWords  = "source_word_timestamps"
	timingSourceHybrid = "source_word_timestamps_plus_measured_tts"
)

// per-run entry of assembly_runs.json
type RunSummary struct {
	RunIndex        int                    `json:"run_index"`
	Kind            align.RunKind          `json:"kind"`
	EditedWordCount int                    `json:"edited_word_count"`
	SourceWordCount int                    `json:"source_word_count,omitempty"`
	AudioFile       string                 `json:"audio_file"`
	DurationSeconds float64                `json:"duration_seconds"`
	Chunks          []timeline.SourceChunk `json:"chunks,omitempty"`
	Text            string                 `json:"text,omitempty"`
	WordAudioCount  int                    `json:"word_audio_count,omitempty"`
}

// contents of assembly_runs.json
type AssemblySummary struct {
	Metrics                 align.Metrics `json:"alignment_metrics"`
	TransitionPause         float64       `json:"hybrid_transition_pause"`
	TTSWordGap              float64       `json:"tts_word_gap"`
	RunCount                int           `json:"run_count"`
	TTSRunCount             int           `json:"tts_run_count"`
	TTSInsertedWordCount    int           `json:"tts_inserted_word_count"`
	TTSInsertedWordsPreview []string      `json:"tts_inserted_words_preview"`
	Runs                    []RunSummary  `json:"runs"`
}

func newAssemblySummary(metrics align.Metrics, cfg *config.Config, runCount int, runs []RunSummary, ttsWords []string) AssemblySummary {
	s := AssemblySummary{
		Metrics:                 metrics,
		TransitionPause:         cfg.Timing.TransitionPause,
		TTSWordGap:              cfg.Timing.TTSWordGap,
		RunCount:                runCount,
		TTSInsertedWordCount:    len(ttsWords),
		TTSInsertedWordsPreview: ttsWords[:min(len(ttsWords), ttsPreviewLimit)],
		Runs:                    runs,
	}
	if s.TTSInsertedWordsPreview == nil {
		s.TTSInsertedWordsPreview = []string{}
	}
	for _, r := range runs {
		if r.Kind == align.Synthesized {
			s.TTSRunCount++
		}
	}
	return s
}

// one entry of selected_clips.json
type SelectedClip struct {
	ClipNum           int           `json:"clip_num"`
	Title             string        `json:"title"`
	Rationale         string        `json:"rationale"`
	WordRanges        []align.Range `json:"word_ranges"`
	SelectedWordCount int           `json:"selected_word_count"`
}

// contents of selected_clips.json
type SelectedClips struct {
	Mode               string         `json:"mode"`
	ClipCountRequested int            `json:"clip_count_requested"`
	ClipCountReturned  int            `json:"clip_count_returned"`
	ClipMinWords       int            `json:"clip_min_words"`
	ClipMaxWords       int            `json:"clip_max_words"`
	ClipMaxRanges      int            `json:"clip_max_ranges"`
	Clips              []SelectedClip `json:"clips"`
}

// per-clip selection.json
type ClipSelectionArtifact struct {
	SelectedClip
	SourceIndicesPreview []int `json:"source_word_indices_preview"`
}

// rendered clip as reported in the manifest
type ClipSummary struct {
	ClipNum           int           `json:"clip_num"`
	Title             string        `json:"title"`
	Rationale         string        `json:"rationale"`
	WordRanges        []align.Range `json:"word_ranges"`
	RangeCount        int           `json:"range_count"`
	SelectedWordCount int           `json:"selected_word_count"`
	SourceSpan        float64       `json:"source_span_seconds"`
	SourceStart       float64       `json:"source_start_seconds"`
	SourceEnd         float64       `json:"source_end_seconds"`
	OutputDuration    float64       `json:"output_duration_seconds"`
	ChunkCount        int           `json:"chunk_count"`
	AudioFile         string        `json:"audio_file"`
	SubtitleFile      string        `json:"subtitle_file"`
	VideoFile         string        `json:"video_file,omitempty"`
	ArtifactsDir      string        `json:"artifacts_dir"`
}

type Outputs struct {
	AudioFile            string        `json:"audio_file,omitempty"`
	SubtitleFile         string        `json:"subtitle_file,omitempty"`
	VideoFile            string        `json:"video_file,omitempty"`
	FinalDurationSeconds float64       `json:"final_duration_seconds,omitempty"`
	SubtitleTimingSource string        `json:"subtitle_timing_source,omitempty"`
	Clips                []ClipSummary `json:"clips,omitempty"`
}

type TimingControls struct {
	PadBefore       float64 `json:"pad_before"`
	PadAfter        float64 `json:"pad_after"`
	MergeGap        float64 `json:"merge_gap"`
	MinPause        float64 `json:"min_pause"`
	MaxPause        float64 `json:"max_pause"`
	MinWordDur      float64 `json:"min_word_dur"`
	TransitionPause float64 `json:"hybrid_transition_pause"`
	TTSWordGap      float64 `json:"tts_word_gap"`
}

func timingControls(cfg *config.Config) TimingControls {
	return TimingControls{
		PadBefore:       cfg.Timing.PadBefore,
		PadAfter:        cfg.Timing.PadAfter,
		MergeGap:        cfg.Timing.MergeGap,
		MinPause:        cfg.Timing.MinPause,
		MaxPause:        cfg.Timing.MaxPause,
		MinWordDur:      cfg.Timing.MinWordDur,
		TransitionPause: cfg.Timing.TransitionPause,
		TTSWordGap:      cfg.Timing.TTSWordGap,
	}
}

// manifest.json, written last
type Manifest struct {
	RunID                string         `json:"run_id"`
	Workflow             string         `json:"workflow"`
	CreatedAt            time.Time      `json:"created_at"`
	InputAudio           string         `json:"input_audio"`
	EnhancedAudio        string         `json:"enhanced_audio"`
	MaxInputSeconds      float64        `json:"max_input_seconds"`
	Resumed              bool           `json:"resumed"`
	TranscriptPlainFile  string         `json:"transcript_plain_file"`
	TranscriptWordsFile  string         `json:"transcript_words_file"`
	EditedTranscriptFile string         `json:"edited_transcript_file,omitempty"`
	AssemblyRunsFile     string         `json:"assembly_runs_file,omitempty"`
	EditedTimedWordsFile string         `json:"edited_timed_words_file,omitempty"`
	SelectedClipsFile    string         `json:"selected_clips_file,omitempty"`
	Outputs              Outputs        `json:"outputs"`
	TimingControls       TimingControls `json:"timing_controls"`
	AlignmentMetrics     *align.Metrics `json:"alignment_metrics,omitempty"`
	TTSVoice             string         `json:"tts_voice,omitempty"`
	TTSInsertedWordCount int            `json:"tts_inserted_word_count"`
	OriginalAudioOnly    bool           `json:"original_audio_only_mode"`
}

// LoadManifest reads a manifest written by a previous run.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	if err := readJSON(path, &m); err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	return &m, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeText(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(path, []byte(strings.TrimSpace(text)+"\n"), 0644)
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
