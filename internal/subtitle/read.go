package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// HH:MM:SS,mmm or HH:MM:SS.mmm, hours optional for VTT
var cueTimingRegex = regexp.MustCompile(
	`(?:(\d{1,2}):)?(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(?:(\d{1,2}):)?(\d{2}):(\d{2})[,.](\d{3})`,
)

// Read parses an SRT or VTT file into a subtitle track.
func Read(path string) (*Subtitle, error) {
	format := GetFormatFromExtension(path)
	if format == FormatASS {
		return nil, fmt.Errorf("reading %s subtitles is not supported", format)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	var (
		entries   []Entry
		current   *Entry
		textLines []string
		lineNum   int
	)

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			entries = append(entries, *current)
		}
		current = nil
		textLines = nil
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if format == FormatVTT && current == nil {
			if strings.HasPrefix(trimmed, "WEBVTT") {
				continue
			}
			// NOTE and STYLE blocks run until the next blank line
			if strings.HasPrefix(trimmed, "NOTE") || strings.HasPrefix(trimmed, "STYLE") {
				for scanner.Scan() {
					lineNum++
					if strings.TrimSpace(scanner.Text()) == "" {
						break
					}
				}
				continue
			}
		}

		if trimmed == "" {
			flush()
			continue
		}

		if m := cueTimingRegex.FindStringSubmatch(line); m != nil {
			flush()
			start, err := cueTimestamp(m[1:5])
			if err != nil {
				return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
			}
			end, err := cueTimestamp(m[5:9])
			if err != nil {
				return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
			}
			current = &Entry{Index: len(entries) + 1, StartTime: start, EndTime: end}
			continue
		}

		if current != nil {
			textLines = append(textLines, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading subtitle file: %w", err)
	}

	return &Subtitle{Entries: entries, Format: string(format)}, nil
}

// parses hours, minutes, seconds, millis; hours may be empty
func cueTimestamp(parts []string) (time.Duration, error) {
	var fields [4]int
	for i, p := range parts {
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, err
		}
		fields[i] = v
	}

	return time.Duration(fields[0])*time.Hour +
		time.Duration(fields[1])*time.Minute +
		time.Duration(fields[2])*time.Second +
		time.Duration(fields[3])*time.Millisecond, nil
}
