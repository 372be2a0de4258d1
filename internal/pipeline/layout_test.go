package pipeline

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Big Idea!", "Big_Idea"},
		{"  spaced   out  ", "spaced_out"},
		{"keep-dots.and_underscores", "keep-dots.and_underscores"},
		{"???", ""},
		{"Ünïcode talk", "ncode_talk"},
		{strings.Repeat("a", 100), strings.Repeat("a", 80)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClipBaseName(t *testing.T) {
	if got := clipBaseName(3, "The Hook"); got != "03_The_Hook" {
		t.Errorf("got %q, want 03_The_Hook", got)
	}
	if got := clipBaseName(12, "!!"); got != "12_Clip_12" {
		t.Errorf("got %q, want 12_Clip_12", got)
	}
}

func TestNewLayout(t *testing.T) {
	l := NewLayout("/out", "/media/My Talk (final).mp4")
	if l.Root != filepath.Join("/out", "My_Talk_final") {
		t.Errorf("root: got %q", l.Root)
	}
	if l.Artifact("x.json") != filepath.Join("/out", "My_Talk_final", "artifacts", "x.json") {
		t.Errorf("artifact path: got %q", l.Artifact("x.json"))
	}
	if l.Manifest() != filepath.Join("/out", "My_Talk_final", "manifest.json") {
		t.Errorf("manifest path: got %q", l.Manifest())
	}
	if NewLayout("/out", "/media/!!!.wav").Root != filepath.Join("/out", "input") {
		t.Errorf("empty stem should fall back to input")
	}
}

func TestLayoutLockIsExclusive(t *testing.T) {
	l := NewLayout(t.TempDir(), "talk.wav")
	if err := l.Create(); err != nil {
		t.Fatal(err)
	}

	release, err := l.Lock()
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if _, err := l.Lock(); !errors.Is(err, ErrLocked) {
		t.Fatalf("second lock: got %v, want ErrLocked", err)
	}
	if err := release(); err != nil {
		t.Fatalf("release: %v", err)
	}

	again, err := l.Lock()
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	_ = again()
}
