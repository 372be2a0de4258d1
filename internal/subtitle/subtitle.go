// Package subtitle reads and writes caption tracks.
package subtitle

import (
	"math"
	"time"
)

// represents single subtitle entry
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// represents complete subtitle track
type Subtitle struct {
	Entries []Entry
	Format  string
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// interface for writing subtitles to files
type Writer interface {
	Write(subtitle *Subtitle, path string) error
}

// Seconds converts a time in seconds to a duration rounded to the nearest
// millisecond.
func Seconds(s float64) time.Duration {
	if s < 0 {
		s = 0
	}
	return time.Duration(math.Round(s*1000)) * time.Millisecond
}
