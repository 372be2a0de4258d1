package synth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// writes the text itself as the "audio"
type fakeSynthesizer struct {
	fail     string
	inFlight atomic.Int32
	peak     atomic.Int32
	mu       sync.Mutex
	seen     []string
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text, path string) error {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.seen = append(f.seen, text)
	f.mu.Unlock()

	if text == f.fail {
		return errors.New("voice unavailable")
	}
	return os.WriteFile(path, []byte(text), 0644)
}

func (f *fakeSynthesizer) Voice() string { return "fake" }

func TestSynthesizeAllWritesEveryJob(t *testing.T) {
	dir := t.TempDir()
	texts := []string{"alpha", "beta", "gamma", "delta", "epsilon"}

	jobs := make([]Job, len(texts))
	for i, text := range texts {
		jobs[i] = Job{Text: text, Path: filepath.Join(dir, text+".wav")}
	}

	fs := &fakeSynthesizer{}
	if err := SynthesizeAll(context.Background(), fs, jobs, 2); err != nil {
		t.Fatalf("SynthesizeAll() error = %v", err)
	}

	for _, job := range jobs {
		data, err := os.ReadFile(job.Path)
		if err != nil {
			t.Fatalf("missing output for %q: %v", job.Text, err)
		}
		if string(data) != job.Text {
			t.Errorf("got %q in %s, want %q", data, job.Path, job.Text)
		}
	}
	if peak := fs.peak.Load(); peak > 2 {
		t.Errorf("got %d concurrent calls, want at most 2", peak)
	}
}

func TestSynthesizeAllFailure(t *testing.T) {
	dir := t.TempDir()
	jobs := []Job{
		{Text: "one", Path: filepath.Join(dir, "1.wav")},
		{Text: "two", Path: filepath.Join(dir, "2.wav")},
		{Text: "three", Path: filepath.Join(dir, "3.wav")},
	}

	err := SynthesizeAll(context.Background(), &fakeSynthesizer{fail: "two"}, jobs, 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "job 1") || !strings.Contains(err.Error(), "voice unavailable") {
		t.Errorf("got %v", err)
	}
	if _, err := os.Stat(jobs[2].Path); !os.IsNotExist(err) {
		t.Error("job after failure should not run")
	}
}

func TestSynthesizeAllEmpty(t *testing.T) {
	if err := SynthesizeAll(context.Background(), &fakeSynthesizer{}, nil, 4); err != nil {
		t.Errorf("got %v, want nil", err)
	}
}

func TestWriteBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "word.wav")
	if err := writeBody(strings.NewReader("RIFF"), path); err != nil {
		t.Fatalf("writeBody() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "RIFF" {
		t.Errorf("got %q, %v", data, err)
	}

	empty := filepath.Join(t.TempDir(), "empty.wav")
	if err := writeBody(strings.NewReader(""), empty); err == nil {
		t.Error("expected error for empty body")
	}
	if _, err := os.Stat(empty); !os.IsNotExist(err) {
		t.Error("empty body should leave no file")
	}
}

func TestNewOpenAISynthesizerDefaults(t *testing.T) {
	if _, err := NewOpenAISynthesizer("", Options{}); err == nil {
		t.Error("expected error for missing API key")
	}

	s, err := NewOpenAISynthesizer("fake-key", Options{Voice: "nova"})
	if err != nil {
		t.Fatalf("NewOpenAISynthesizer() error = %v", err)
	}
	if got := s.Voice(); got != "gpt-4o-mini-tts/nova" {
		t.Errorf("got voice %q", got)
	}
	p := s.params("hello")
	if p.Input != "hello" || string(p.Voice) != "nova" {
		t.Errorf("got params %+v", p)
	}
}
