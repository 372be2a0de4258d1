package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gofrs/flock"
)

const maxFilenameLen = 80

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._ -]+`)
	filenameSpaces      = regexp.MustCompile(`\s+`)
)

// SanitizeFilename keeps letters, digits, dot, underscore, hyphen and
// spaces, turns whitespace runs into underscores and caps the length.
func SanitizeFilename(name string) string {
	s := unsafeFilenameChars.ReplaceAllString(name, "")
	s = filenameSpaces.ReplaceAllString(strings.TrimSpace(s), "_")
	if len(s) > maxFilenameLen {
		s = s[:maxFilenameLen]
	}
	return strings.Trim(s, "_")
}

// directory tree of one input's outputs
type Layout struct {
	Root      string
	Artifacts string
	Clips     string
	Videos    string
}

// NewLayout places outputs for inputPath under outputDir/<stem>.
func NewLayout(outputDir, inputPath string) Layout {
	base := filepath.Base(inputPath)
	stem := SanitizeFilename(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "input"
	}
	root := filepath.Join(outputDir, stem)
	return Layout{
		Root:      root,
		Artifacts: filepath.Join(root, "artifacts"),
		Clips:     filepath.Join(root, "clips"),
		Videos:    filepath.Join(root, "videos"),
	}
}

// Create makes every directory of the layout.
func (l Layout) Create() error {
	for _, dir := range []string{l.Root, l.Artifacts, l.Clips, l.Videos} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Artifact returns the path of a named file in the artifacts directory.
func (l Layout) Artifact(name string) string {
	return filepath.Join(l.Artifacts, name)
}

// Manifest returns the manifest path.
func (l Layout) Manifest() string {
	return filepath.Join(l.Root, "manifest.json")
}

// ErrLocked is returned when another run holds the output directory.
var ErrLocked = errors.New("output directory is in use by another trimcast run")

// Lock takes an exclusive lock on the layout root. The returned function
// releases it.
func (l Layout) Lock() (func() error, error) {
	lock := flock.New(filepath.Join(l.Root, ".trimcast.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, l.Root)
	}
	return lock.Unlock, nil
}

// clip output names derived from a title
func clipBaseName(num int, title string) string {
	safe := SanitizeFilename(title)
	if safe == "" {
		safe = fmt.Sprintf("Clip_%02d", num)
	}
	return fmt.Sprintf("%02d_%s", num, safe)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
