package ffmpeg

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestParseFilterList(t *testing.T) {
	output := `Filters:
  T.. = Timeline support
  .S. = Slice threading
  ..C = Command support
  A = Audio input/output
 ... abench            A->A       Benchmark part of a filtergraph.
 TSC afftdn            A->A       Denoise audio samples using FFT.
 ... loudnorm          A->A       EBU R128 loudness normalization
 ... anullsrc          |->A       Null audio source, return empty audio frames.
 ... concat            N->N       Concatenate audio and video streams.
`
	filters := parseFilterList(output)

	for _, name := range []string{"afftdn", "loudnorm", "anullsrc", "concat", "abench"} {
		if !filters[name] {
			t.Errorf("expected filter %q", name)
		}
	}
	for _, name := range []string{"Timeline", "=", "subtitles", "Filters:"} {
		if filters[name] {
			t.Errorf("unexpected filter %q", name)
		}
	}
}

func TestHasFilter(t *testing.T) {
	tc := NewToolchain(BinaryPaths{FFmpeg: "ffmpeg", FFprobe: "ffprobe"}, FilterDenoise)
	if !tc.HasFilter(FilterDenoise) {
		t.Error("expected denoise filter")
	}
	if tc.HasFilter(FilterSubtitles) {
		t.Error("unexpected subtitles filter")
	}

	var missing *Toolchain
	if missing.HasFilter(FilterDenoise) {
		t.Error("nil toolchain should report no filters")
	}
}

func TestLocateExplicitPaths(t *testing.T) {
	paths, err := Locate(t.Context(), LocateOptions{FFmpegPath: "/opt/ff/ffmpeg", FFprobePath: "/opt/ff/ffprobe"})
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if paths.FFmpeg != "/opt/ff/ffmpeg" || paths.FFprobe != "/opt/ff/ffprobe" {
		t.Errorf("unexpected paths: %+v", paths)
	}
}

func TestLocateEnvironment(t *testing.T) {
	t.Setenv("TRIMCAST_FFMPEG_PATH", "/env/ffmpeg")
	t.Setenv("TRIMCAST_FFPROBE_PATH", "/env/ffprobe")

	paths, err := Locate(t.Context(), LocateOptions{})
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if paths.FFmpeg != "/env/ffmpeg" || paths.FFprobe != "/env/ffprobe" {
		t.Errorf("unexpected paths: %+v", paths)
	}
}

func TestAssetForPlatform(t *testing.T) {
	if name, err := assetForPlatform("linux", "amd64"); err != nil || name != "ffmpeg-6.1-linux-64.zip" {
		t.Errorf("linux/amd64: got %q, %v", name, err)
	}
	if _, err := assetForPlatform("plan9", "386"); err == nil {
		t.Error("expected error for unsupported platform")
	}
}

func TestExtractArchive(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "bundle.zip")

	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	zw := zip.NewWriter(f)
	for _, name := range []string{"bin/ffmpeg", "bin/ffprobe", "README"} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
		if _, err := w.Write([]byte("binary")); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finish archive: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close archive: %v", err)
	}

	installDir := filepath.Join(dir, "install")
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		t.Fatalf("failed to create install dir: %v", err)
	}
	if err := extractArchive(archivePath, installDir); err != nil {
		t.Fatalf("extractArchive failed: %v", err)
	}
	for _, name := range []string{"ffmpeg", "ffprobe"} {
		if !fileExists(filepath.Join(installDir, name+executableSuffix())) {
			t.Errorf("%s not extracted", name)
		}
	}
	if fileExists(filepath.Join(installDir, "README")) {
		t.Error("unexpected file extracted")
	}
}
