package subtitles

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FormatTimestamp renders seconds as an SRT time code, HH:MM:SS,mmm.
// Milliseconds round half-up and carry into the seconds field, so 59.9995
// becomes "00:01:00,000". Hours are not clamped to two digits.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))
	millis := totalMillis % 1000
	totalSeconds := totalMillis / 1000
	secs := totalSeconds % 60
	mins := (totalSeconds / 60) % 60
	hours := totalSeconds / 3600
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, mins, secs, millis)
}

// ParseTimestamp is the inverse of FormatTimestamp. It accepts a period in
// place of the comma since some producers emit the VTT style.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// Render serializes cues to SRT: 1-based index, time range, text, blocks
// separated by a blank line, no trailing newline.
func Render(cues []Cue) string {
	blocks := make([]string, 0, len(cues))
	for i, cue := range cues {
		blocks = append(blocks, fmt.Sprintf("%d\n%s --> %s\n%s",
			i+1, FormatTimestamp(cue.Start), FormatTimestamp(cue.End()), cue.Text))
	}
	return strings.Join(blocks, "\n\n")
}

// WriteFile renders cues and writes them atomically: the content lands in a
// temp file in the target directory and is renamed into place, so readers
// never observe a partial subtitle.
func WriteFile(path string, cues []Cue) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".srt-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp subtitle: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(Render(cues)); err != nil {
		tmp.Close()
		return fmt.Errorf("write subtitle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close subtitle: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename subtitle into place: %w", err)
	}
	return nil
}

// ParseFile reads an SRT file back into cues. Index lines are ignored; cue
// order follows file order. Used by the translation path, which rewrites an
// existing subtitle in another language.
func ParseFile(path string) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read subtitle: %w", err)
	}
	content := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
	if content == "" {
		return nil, nil
	}

	var cues []Cue
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}
		// First line is the index when numeric; the time range follows.
		timeLine := lines[0]
		textStart := 1
		if !strings.Contains(timeLine, "-->") && len(lines) >= 2 {
			timeLine = lines[1]
			textStart = 2
		}
		parts := strings.Split(timeLine, "-->")
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed time range %q", timeLine)
		}
		start, err := ParseTimestamp(parts[0])
		if err != nil {
			return nil, err
		}
		end, err := ParseTimestamp(parts[1])
		if err != nil {
			return nil, err
		}
		cues = append(cues, Cue{
			Start:    start,
			Duration: end - start,
			Text:     strings.Join(lines[textStart:], "\n"),
		})
	}
	return cues, nil
}

// SiblingPath returns the .srt path next to a media file, replacing the
// media extension.
func SiblingPath(mediaPath string) string {
	ext := filepath.Ext(mediaPath)
	return strings.TrimSuffix(mediaPath, ext) + ".srt"
}

// TranslatedSiblingPath returns the conventional name for a translated
// subtitle: the language tag slots in before the .srt extension.
func TranslatedSiblingPath(subtitlePath, lang string) string {
	if lang == "" {
		return subtitlePath
	}
	base := strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath))
	return base + "." + lang + ".srt"
}

// HasSibling reports whether a subtitle already exists beside the media
// file.
func HasSibling(mediaPath string) bool {
	_, err := os.Stat(SiblingPath(mediaPath))
	return err == nil
}
