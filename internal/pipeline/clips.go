package pipeline

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"github.com/mgpai22/trimcast/internal/align"
	"github.com/mgpai22/trimcast/internal/edit"
	"github.com/mgpai22/trimcast/internal/lexeme"
	"github.com/mgpai22/trimcast/internal/timeline"
)

const clipsWorkflow = "clips"

// Clips asks the editor for standalone clips and renders each one from
// source audio only.
func (p *Pipeline) Clips(ctx context.Context, inputPath string, opts RunOptions) (*Manifest, error) {
	if err := p.cfg.ChunkOptions().Validate(); err != nil {
		return nil, err
	}
	if err := p.requireEditor(); err != nil {
		return nil, err
	}

	s, err := p.begin(ctx, inputPath, opts)
	if err != nil {
		return nil, err
	}
	defer s.close(p.logger)

	clipOpts := edit.ClipOptions{
		Count:     p.cfg.Clips.Count,
		MinWords:  p.cfg.Clips.MinWords,
		MaxWords:  p.cfg.Clips.MaxWords,
		MaxRanges: p.cfg.Clips.MaxRanges,
	}
	p.logger.Infow("Selecting clips",
		"count", clipOpts.Count,
		"min_words", clipOpts.MinWords,
		"max_words", clipOpts.MaxWords,
	)
	selections, err := p.editor.SelectClips(ctx, s.words, clipOpts)
	if err != nil {
		return nil, err
	}

	selectedPath := s.layout.Artifact(selectedClipsFile)
	if err := writeJSON(selectedPath, selectedClips(selections, clipOpts)); err != nil {
		return nil, fmt.Errorf("failed to write clip selection: %w", err)
	}

	summaries := make([]ClipSummary, 0, len(selections))
	for i, clip := range selections {
		summary, err := p.renderClip(ctx, s, i+1, clip)
		if err != nil {
			return nil, fmt.Errorf("clip %d (%q): %w", i+1, clip.Title, err)
		}
		summaries = append(summaries, summary)
		p.logger.Infow("Clip rendered",
			"clip", summary.ClipNum,
			"title", summary.Title,
			"duration_seconds", summary.OutputDuration,
		)
	}

	manifest := p.baseManifest(s, clipsWorkflow)
	manifest.SelectedClipsFile = selectedPath
	manifest.Outputs = Outputs{Clips: summaries, SubtitleTimingSource: timingSourceWords}
	manifest.OriginalAudioOnly = true
	if err := writeJSON(s.layout.Manifest(), manifest); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	return manifest, nil
}

func selectedClips(selections []edit.ClipSelection, opts edit.ClipOptions) SelectedClips {
	out := SelectedClips{
		Mode:               "select_clips_word_ranges",
		ClipCountRequested: opts.Count,
		ClipCountReturned:  len(selections),
		ClipMinWords:       opts.MinWords,
		ClipMaxWords:       opts.MaxWords,
		ClipMaxRanges:      opts.MaxRanges,
		Clips:              make([]SelectedClip, len(selections)),
	}
	for i, c := range selections {
		out.Clips[i] = SelectedClip{
			ClipNum:           i + 1,
			Title:             c.Title,
			Rationale:         c.Rationale,
			WordRanges:        c.Ranges,
			SelectedWordCount: align.SelectedCount(c.Ranges),
		}
	}
	return out
}

// renderClip cuts one clip from its keep ranges and writes its audio,
// captions, video and artifacts.
func (p *Pipeline) renderClip(ctx context.Context, s *session, num int, clip edit.ClipSelection) (ClipSummary, error) {
	a, err := align.FromRanges(s.words, clip.Ranges, align.KeepRanges)
	if err != nil {
		return ClipSummary{}, err
	}
	indices := a.Indices()
	kept := timeline.KeptWords(s.words, indices)

	plan, err := timeline.PlanRun(num-1, kept, s.sourceDuration, p.cfg.ChunkOptions())
	if err != nil {
		return ClipSummary{}, err
	}

	base := clipBaseName(num, clip.Title)
	finalAudio := filepath.Join(s.layout.Clips, base+".wav")
	finalSRT := filepath.Join(s.layout.Clips, base+".srt")
	finalVideo := filepath.Join(s.layout.Videos, base+".mp4")
	artifactsDir := s.layout.Artifact(fmt.Sprintf("clip_%02d", num))
	rawPath := filepath.Join(s.tempDir, fmt.Sprintf("clip_%02d_raw.wav", num))

	if err := p.media.Splice(ctx, s.enhanced, rawPath, plan.Chunks, plan.Pauses); err != nil {
		return ClipSummary{}, err
	}
	if err := p.media.Standardize(ctx, rawPath, finalAudio, false); err != nil {
		return ClipSummary{}, err
	}
	finalDur, err := p.media.Duration(ctx, finalAudio)
	if err != nil {
		return ClipSummary{}, err
	}

	selection := SelectedClip{
		ClipNum:           num,
		Title:             clip.Title,
		Rationale:         clip.Rationale,
		WordRanges:        clip.Ranges,
		SelectedWordCount: len(indices),
	}
	if err := lexeme.WriteTimedText(filepath.Join(artifactsDir, "timed_words.json"), plan.Timed); err != nil {
		return ClipSummary{}, err
	}
	artifact := ClipSelectionArtifact{
		SelectedClip:         selection,
		SourceIndicesPreview: indices[:min(len(indices), sourceIndexPreviewLen)],
	}
	if err := writeJSON(filepath.Join(artifactsDir, "selection.json"), artifact); err != nil {
		return ClipSummary{}, err
	}
	if err := writeText(filepath.Join(artifactsDir, "selected_transcript.txt"), lexeme.JoinText(kept)); err != nil {
		return ClipSummary{}, err
	}

	sub, err := p.writeCaptions(plan.Timed, finalDur, finalSRT)
	if err != nil {
		return ClipSummary{}, err
	}
	videoPath, err := p.renderVideo(ctx, sub, finalAudio, finalVideo, finalDur)
	if err != nil {
		return ClipSummary{}, err
	}

	start, end := sourceSpan(kept)
	return ClipSummary{
		ClipNum:           num,
		Title:             clip.Title,
		Rationale:         clip.Rationale,
		WordRanges:        clip.Ranges,
		RangeCount:        len(clip.Ranges),
		SelectedWordCount: len(indices),
		SourceSpan:        round3(math.Max(0, end-start)),
		SourceStart:       round3(start),
		SourceEnd:         round3(end),
		OutputDuration:    round3(finalDur),
		ChunkCount:        len(plan.Chunks),
		AudioFile:         finalAudio,
		SubtitleFile:      finalSRT,
		VideoFile:         videoPath,
		ArtifactsDir:      artifactsDir,
	}, nil
}

// earliest start and latest end over words
func sourceSpan(words []lexeme.TimedWord) (float64, float64) {
	if len(words) == 0 {
		return 0, 0
	}
	start, end := words[0].Start, words[0].End
	for _, w := range words[1:] {
		start = math.Min(start, w.Start)
		end = math.Max(end, w.End)
	}
	return start, end
}
