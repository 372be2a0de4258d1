package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/trimcast/internal/align"
	"github.com/mgpai22/trimcast/internal/lexeme"
	"github.com/mgpai22/trimcast/internal/synth"
	"github.com/mgpai22/trimcast/internal/timeline"
)

// how the transcript is edited and aligned
type Mode string

const (
	// free minimal edit, global alignment, unmatched words synthesized
	ModeHybrid Mode = "hybrid"
	// deletion-only text edit, strict alignment, never synthesizes
	ModeStrict Mode = "strict"
	// delete index ranges chosen by the editor
	ModeRanges Mode = "ranges"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeHybrid, ModeStrict, ModeRanges:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q: use hybrid, strict, or ranges", s)
}

// OriginalOnly reports whether the mode guarantees source audio only.
func (m Mode) OriginalOnly() bool {
	return m != ModeHybrid
}

func (m Mode) workflow() string {
	return "condense_" + string(m)
}

// Condense shortens the input into one audio file with captions and a
// caption video.
func (p *Pipeline) Condense(ctx context.Context, inputPath string, mode Mode, opts RunOptions) (*Manifest, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if err := p.cfg.ChunkOptions().Validate(); err != nil {
		return nil, err
	}

	s, err := p.begin(ctx, inputPath, opts)
	if err != nil {
		return nil, err
	}
	defer s.close(p.logger)

	alignment, editedPath, err := p.alignEdit(ctx, s, mode, opts.Resume)
	if err != nil {
		return nil, err
	}
	p.logger.Infow("Alignment complete",
		"method", alignment.Metrics.Method,
		"matched", alignment.Metrics.MatchedWordCount,
		"tts", alignment.Metrics.TTSWordCount,
		"match_ratio", alignment.Metrics.MatchRatio,
		"compression_ratio", alignment.Metrics.CompressionRatio,
	)

	runs, err := alignment.Runs()
	if err != nil {
		return nil, err
	}
	unmatched := len(alignment.Unmatched())
	if mode.OriginalOnly() && unmatched > 0 {
		return nil, fmt.Errorf("%s mode found %d unmatched words, which would require synthesis", mode, unmatched)
	}

	asm, err := p.assemble(ctx, s, runs)
	if err != nil {
		return nil, err
	}

	finalAudio := filepath.Join(s.layout.Clips, condensedBaseName+".wav")
	finalSRT := filepath.Join(s.layout.Clips, condensedBaseName+".srt")
	finalVideo := filepath.Join(s.layout.Videos, condensedBaseName+".mp4")

	if err := p.media.Concat(ctx, asm.files, finalAudio); err != nil {
		return nil, fmt.Errorf("failed to join audio: %w", err)
	}
	finalDur, err := p.media.Duration(ctx, finalAudio)
	if err != nil {
		return nil, fmt.Errorf("failed to get output duration: %w", err)
	}
	if drift := finalDur - asm.duration; drift > 0.05 || drift < -0.05 {
		p.logger.Debugw("Output length differs from plan",
			"planned_seconds", round3(asm.duration),
			"measured_seconds", round3(finalDur),
		)
	}

	timedPath := s.layout.Artifact(editedTimedWordsFile)
	if err := lexeme.WriteTimedText(timedPath, asm.words); err != nil {
		return nil, fmt.Errorf("failed to write output word timings: %w", err)
	}

	sub, err := p.writeCaptions(asm.words, finalDur, finalSRT)
	if err != nil {
		return nil, err
	}
	videoPath, err := p.renderVideo(ctx, sub, finalAudio, finalVideo, finalDur)
	if err != nil {
		return nil, err
	}

	summary := newAssemblySummary(alignment.Metrics, p.cfg, len(runs), asm.summaries, asm.ttsWords)
	runsPath := s.layout.Artifact(assemblyRunsFile)
	if err := writeJSON(runsPath, summary); err != nil {
		return nil, fmt.Errorf("failed to write run summary: %w", err)
	}

	timingSource := timingSourceWords
	if len(asm.ttsWords) > 0 {
		timingSource = timingSourceHybrid
	}
	metrics := alignment.Metrics
	manifest := p.baseManifest(s, mode.workflow())
	manifest.EditedTranscriptFile = editedPath
	manifest.AssemblyRunsFile = runsPath
	manifest.EditedTimedWordsFile = timedPath
	manifest.Outputs = Outputs{
		AudioFile:            finalAudio,
		SubtitleFile:         finalSRT,
		VideoFile:            videoPath,
		FinalDurationSeconds: round3(finalDur),
		SubtitleTimingSource: timingSource,
	}
	manifest.AlignmentMetrics = &metrics
	manifest.TTSInsertedWordCount = len(asm.ttsWords)
	manifest.OriginalAudioOnly = mode.OriginalOnly()
	if len(asm.ttsWords) > 0 && p.synth != nil {
		manifest.TTSVoice = p.synth.Voice()
	}
	if err := writeJSON(s.layout.Manifest(), manifest); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	p.logger.Infow("Condense complete",
		"audio", finalAudio,
		"duration_seconds", round3(finalDur),
		"runs", len(runs),
		"tts_words", len(asm.ttsWords),
	)
	return manifest, nil
}

// alignEdit obtains the edit for the mode (from artifacts on resume) and
// aligns it onto the source words. It returns the alignment and the edited
// transcript artifact path.
func (p *Pipeline) alignEdit(ctx context.Context, s *session, mode Mode, resume bool) (align.Alignment, string, error) {
	if mode == ModeRanges {
		return p.alignDeleteRanges(ctx, s, resume)
	}

	editedPath := s.layout.Artifact(minimalEditFile)
	candidates := []string{editedPath, s.layout.Artifact(deletionOnlyFile)}
	if mode == ModeStrict {
		editedPath = s.layout.Artifact(deletionOnlyFile)
		candidates = []string{editedPath}
	}

	var edited string
	if resume {
		for _, c := range candidates {
			if text, err := readText(c); err == nil && text != "" {
				edited = text
				p.logger.Infow("Resuming from edited transcript", "path", c)
				break
			}
		}
	}
	if edited == "" {
		if err := p.requireEditor(); err != nil {
			return align.Alignment{}, "", err
		}
		p.logger.Infow("Editing transcript", "mode", mode, "words", len(s.words))
		var err error
		if mode == ModeStrict {
			edited, err = p.editor.StrictDeleteEdit(ctx, s.plain)
		} else {
			edited, err = p.editor.MinimalEdit(ctx, s.plain)
		}
		if err != nil {
			return align.Alignment{}, "", err
		}
	}
	if err := writeText(editedPath, edited); err != nil {
		return align.Alignment{}, "", fmt.Errorf("failed to write edited transcript: %w", err)
	}

	tokens := lexeme.Tokenize(edited)
	if len(tokens) == 0 {
		return align.Alignment{}, "", errors.New("edited transcript has no words")
	}

	if mode == ModeStrict {
		a, err := align.Strict(s.words, tokens)
		return a, editedPath, err
	}
	return align.Global(s.words, tokens), editedPath, nil
}

type rangesArtifact struct {
	DeleteRanges []align.Range `json:"delete_ranges"`
}

func (p *Pipeline) alignDeleteRanges(ctx context.Context, s *session, resume bool) (align.Alignment, string, error) {
	rangesPath := s.layout.Artifact(deleteRangesFile)

	var ranges []align.Range
	loaded := false
	if resume && fileExists(rangesPath) {
		var stored rangesArtifact
		if err := readJSON(rangesPath, &stored); err != nil {
			return align.Alignment{}, "", err
		}
		merged, err := align.MergeRanges(stored.DeleteRanges, len(s.words), "delete index range")
		if err != nil {
			return align.Alignment{}, "", err
		}
		ranges, loaded = merged, true
		p.logger.Infow("Resuming from delete ranges", "ranges", len(ranges))
	}
	if !loaded {
		if err := p.requireEditor(); err != nil {
			return align.Alignment{}, "", err
		}
		p.logger.Infow("Selecting words to delete", "words", len(s.words))
		var err error
		if ranges, err = p.editor.DeleteRanges(ctx, s.words); err != nil {
			return align.Alignment{}, "", err
		}
		if ranges == nil {
			ranges = []align.Range{}
		}
		if err := writeJSON(rangesPath, rangesArtifact{DeleteRanges: ranges}); err != nil {
			return align.Alignment{}, "", fmt.Errorf("failed to write delete ranges: %w", err)
		}
	}

	a, err := align.FromRanges(s.words, ranges, align.DeleteRanges)
	if err != nil {
		return align.Alignment{}, "", err
	}
	editedPath := s.layout.Artifact(deletionOnlyFile)
	kept := timeline.KeptWords(s.words, a.Indices())
	if err := writeText(editedPath, lexeme.JoinText(kept)); err != nil {
		return align.Alignment{}, "", fmt.Errorf("failed to write edited transcript: %w", err)
	}
	return a, editedPath, nil
}

// rendered audio for all runs, ready to join
type assembly struct {
	files     []string
	words     []lexeme.TimedText
	duration  float64
	summaries []RunSummary
	ttsWords  []string
}

// assemble renders every run to a working-format piece, separated by
// transition pauses, and places the edited words on the output timeline.
func (p *Pipeline) assemble(ctx context.Context, s *session, runs []align.Run) (*assembly, error) {
	runDir := filepath.Join(s.tempDir, "runs")
	chunkOpts := p.cfg.ChunkOptions()
	transition := p.cfg.Timing.TransitionPause

	jobs := synthesisJobs(runDir, runs)
	if len(jobs) > 0 {
		if p.synth == nil {
			return nil, fmt.Errorf("%d edited words have no source audio and no synthesizer is configured", len(jobs))
		}
		p.logger.Infow("Synthesizing unmatched words",
			"words", len(jobs),
			"voice", p.synth.Voice(),
		)
		if err := synth.SynthesizeAll(ctx, p.synth, jobs, p.cfg.TTS.Concurrency); err != nil {
			return nil, err
		}
	}

	var (
		asm       assembly
		pieces    []timeline.Piece
		pausePath string
		gapPath   string
		jobIndex  int
	)
	for i, run := range runs {
		piecePath := filepath.Join(runDir, fmt.Sprintf("run_%03d_%s.wav", i, run.Kind))

		var piece timeline.Piece
		var summary RunSummary
		var err error
		if run.Kind == align.Original {
			piece, summary, err = p.renderOriginalRun(ctx, s, i, run, piecePath, chunkOpts)
		} else {
			n := run.Len()
			piece, summary, err = p.renderSynthesizedRun(ctx, i, run, jobs[jobIndex:jobIndex+n], piecePath, &gapPath, runDir)
			jobIndex += n
			for _, tok := range run.Edited {
				asm.ttsWords = append(asm.ttsWords, tok.Text)
			}
		}
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, piece)
		asm.files = append(asm.files, piecePath)
		asm.summaries = append(asm.summaries, summary)

		if i < len(runs)-1 && transition > 0 {
			if pausePath == "" {
				pausePath = filepath.Join(runDir, "transition_pause.wav")
				if err := p.media.Silence(ctx, pausePath, transition); err != nil {
					return nil, err
				}
			}
			asm.files = append(asm.files, pausePath)
		}
		p.logger.Debugw("Run rendered",
			"run", i,
			"kind", run.Kind,
			"words", run.Len(),
			"duration_seconds", round3(piece.Duration),
		)
	}
	if len(asm.files) == 0 {
		return nil, errors.New("assembly produced no audio pieces")
	}

	asm.words, asm.duration = timeline.Stitch(pieces, transition)
	return &asm, nil
}

// one job per synthesized word, in run order
func synthesisJobs(runDir string, runs []align.Run) []synth.Job {
	var jobs []synth.Job
	for i, run := range runs {
		if run.Kind != align.Synthesized {
			continue
		}
		for w, tok := range run.Edited {
			jobs = append(jobs, synth.Job{
				Text: tok.Text,
				Path: filepath.Join(runDir, fmt.Sprintf("run_%03d_tts_word_%03d_raw.wav", i, w)),
			})
		}
	}
	return jobs
}

func (p *Pipeline) renderOriginalRun(
	ctx context.Context,
	s *session,
	index int,
	run align.Run,
	piecePath string,
	opts timeline.ChunkOptions,
) (timeline.Piece, RunSummary, error) {
	kept := timeline.KeptWords(s.words, run.SourceIndices)
	plan, err := timeline.PlanRun(index, kept, s.sourceDuration, opts)
	if err != nil {
		return timeline.Piece{}, RunSummary{}, err
	}

	rawPath := strings.TrimSuffix(piecePath, ".wav") + "_raw.wav"
	if err := p.media.Splice(ctx, s.enhanced, rawPath, plan.Chunks, plan.Pauses); err != nil {
		return timeline.Piece{}, RunSummary{}, err
	}
	if err := p.media.Standardize(ctx, rawPath, piecePath, false); err != nil {
		return timeline.Piece{}, RunSummary{}, err
	}
	dur, err := p.media.Duration(ctx, piecePath)
	if err != nil {
		return timeline.Piece{}, RunSummary{}, err
	}

	piece := timeline.Piece{
		Kind:     align.Original,
		Duration: dur,
		Words:    timeline.Relabel(plan.Timed, run.Edited, dur),
	}
	summary := RunSummary{
		RunIndex:        index,
		Kind:            align.Original,
		EditedWordCount: run.Len(),
		SourceWordCount: len(run.SourceIndices),
		AudioFile:       piecePath,
		DurationSeconds: round3(dur),
		Chunks:          plan.Chunks,
	}
	return piece, summary, nil
}

func (p *Pipeline) renderSynthesizedRun(
	ctx context.Context,
	index int,
	run align.Run,
	jobs []synth.Job,
	piecePath string,
	gapPath *string,
	runDir string,
) (timeline.Piece, RunSummary, error) {
	gap := p.cfg.Timing.TTSWordGap

	var (
		files     []string
		durations []float64
	)
	for w, job := range jobs {
		norm := strings.TrimSuffix(job.Path, "_raw.wav") + ".wav"
		if err := p.media.Standardize(ctx, job.Path, norm, true); err != nil {
			return timeline.Piece{}, RunSummary{}, err
		}
		d, err := p.media.Duration(ctx, norm)
		if err != nil {
			return timeline.Piece{}, RunSummary{}, err
		}
		files = append(files, norm)
		durations = append(durations, d)

		if w < len(jobs)-1 && gap > 0 {
			if *gapPath == "" {
				*gapPath = filepath.Join(runDir, "tts_word_gap.wav")
				if err := p.media.Silence(ctx, *gapPath, gap); err != nil {
					return timeline.Piece{}, RunSummary{}, err
				}
			}
			files = append(files, *gapPath)
		}
	}

	if err := p.media.Concat(ctx, files, piecePath); err != nil {
		return timeline.Piece{}, RunSummary{}, err
	}
	dur, err := p.media.Duration(ctx, piecePath)
	if err != nil {
		return timeline.Piece{}, RunSummary{}, err
	}

	words, _ := timeline.LayoutSynthesized(run.Edited, durations, gap)
	texts := make([]string, len(run.Edited))
	for i, tok := range run.Edited {
		texts[i] = tok.Text
	}
	piece := timeline.Piece{Kind: align.Synthesized, Duration: dur, Words: words}
	summary := RunSummary{
		RunIndex:        index,
		Kind:            align.Synthesized,
		EditedWordCount: run.Len(),
		AudioFile:       piecePath,
		DurationSeconds: round3(dur),
		Text:            strings.Join(texts, " "),
		WordAudioCount:  len(jobs),
	}
	return piece, summary, nil
}
