package subtitles

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{3661.234, "01:01:01,234"},
		{59.9995, "00:01:00,000"},
		{0.0004, "00:00:00,000"},
		{360000.5, "100:00:00,500"},
	}
	for _, tc := range cases {
		if got := FormatTimestamp(tc.seconds); got != tc.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestParseTimestampRoundTrip(t *testing.T) {
	for _, seconds := range []float64{0, 1.5, 59.999, 3661.234, 7322.001} {
		got, err := ParseTimestamp(FormatTimestamp(seconds))
		if err != nil {
			t.Fatalf("ParseTimestamp: %v", err)
		}
		if diff := got - seconds; diff > 0.0005 || diff < -0.0005 {
			t.Errorf("round trip %v -> %v", seconds, got)
		}
	}
}

func TestRender(t *testing.T) {
	cues := []Cue{
		{Start: 0, Duration: 2, Text: "Hello."},
		{Start: 2.5, Duration: 1.5, Text: "World."},
	}
	got := Render(cues)
	want := "1\n00:00:00,000 --> 00:00:02,000\nHello.\n\n2\n00:00:02,500 --> 00:00:04,000\nWorld."
	if got != want {
		t.Errorf("Render mismatch:\ngot:  %q\nwant: %q", got, want)
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("rendered output must not end with a newline")
	}
}

func TestWriteFileAndParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movie.srt")
	cues := []Cue{
		{Start: 1, Duration: 2, Text: "first line"},
		{Start: 4, Duration: 3, Text: "second line"},
	}
	if err := WriteFile(path, cues); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d cues", len(got))
	}
	if got[0].Text != "first line" || got[1].Text != "second line" {
		t.Errorf("texts = %q, %q", got[0].Text, got[1].Text)
	}
	if got[1].Start != 4 || got[1].Duration != 3 {
		t.Errorf("cue timing = %+v", got[1])
	}

	// No stray temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestParseFileMultilineText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "multi.srt")
	content := "1\n00:00:00,000 --> 00:00:02,000\nline one\nline two\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(got) != 1 || got[0].Text != "line one\nline two" {
		t.Errorf("cues = %+v", got)
	}
}

func TestSiblingPath(t *testing.T) {
	if got := SiblingPath("/media/show.mkv"); got != "/media/show.srt" {
		t.Errorf("SiblingPath = %q", got)
	}
	if got := SiblingPath("/media/audio.mp3"); got != "/media/audio.srt" {
		t.Errorf("SiblingPath = %q", got)
	}
}

func TestTranslatedSiblingPath(t *testing.T) {
	if got := TranslatedSiblingPath("/media/show.srt", "de"); got != "/media/show.de.srt" {
		t.Errorf("TranslatedSiblingPath = %q", got)
	}
	if got := TranslatedSiblingPath("/media/show.srt", ""); got != "/media/show.srt" {
		t.Errorf("TranslatedSiblingPath empty lang = %q", got)
	}
}

func TestHasSibling(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "clip.mp4")
	if HasSibling(media) {
		t.Fatal("no sibling yet")
	}
	if err := os.WriteFile(filepath.Join(dir, "clip.srt"), []byte("1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !HasSibling(media) {
		t.Fatal("sibling exists")
	}
}
