package asr

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"substream/internal/vad"
)

func TestWriteWAV(t *testing.T) {
	var buf bytes.Buffer
	samples := []float32{0, 0.5, -0.5, 1.0}
	if err := writeWAV(&buf, 16000, samples); err != nil {
		t.Fatalf("writeWAV: %v", err)
	}
	data := buf.Bytes()
	if len(data) != 44+len(samples)*2 {
		t.Fatalf("length = %d", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Error("bad RIFF header")
	}
	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != 16000 {
		t.Errorf("sample rate = %d", rate)
	}
	if ch := binary.LittleEndian.Uint16(data[22:24]); ch != 1 {
		t.Errorf("channels = %d", ch)
	}
	// 1.0 clips to int16 max.
	last := int16(binary.LittleEndian.Uint16(data[len(data)-2:]))
	if last != 32767 {
		t.Errorf("clipped sample = %d", last)
	}
}

func TestCommandRecognizerModelArgs(t *testing.T) {
	cases := []struct {
		variant Variant
		want    []string
	}{
		{VariantSenseVoice, []string{"--sense-voice-model="}},
		{VariantNemoCTC, []string{"--nemo-ctc-model="}},
		{VariantTransducer, []string{"--encoder=", "--decoder=", "--joiner="}},
	}
	for _, tc := range cases {
		rec := NewCommandRecognizer("rec", ModelConfig{Variant: tc.variant, Dir: "/models"})
		joined := strings.Join(rec.modelArgs(), " ")
		if !strings.Contains(joined, "--tokens=/models/tokens.txt") {
			t.Errorf("%s: missing tokens flag: %s", tc.variant, joined)
		}
		for _, flag := range tc.want {
			if !strings.Contains(joined, flag) {
				t.Errorf("%s: missing %s in %s", tc.variant, flag, joined)
			}
		}
	}
}

func TestCommandRecognizerLanguageFlag(t *testing.T) {
	rec := NewCommandRecognizer("rec", ModelConfig{Variant: VariantSenseVoice, Dir: "/m", Language: "zh"})
	if !strings.Contains(strings.Join(rec.modelArgs(), " "), "--language=zh") {
		t.Error("explicit language should be forwarded")
	}
	rec = NewCommandRecognizer("rec", ModelConfig{Variant: VariantSenseVoice, Dir: "/m", Language: "auto"})
	if strings.Contains(strings.Join(rec.modelArgs(), " "), "--language") {
		t.Error("auto language must not be forwarded")
	}
}

func TestCommandStreamDecode(t *testing.T) {
	restore := runRecognizer
	defer func() { runRecognizer = restore }()

	var gotBinary string
	var gotArgs []string
	runRecognizer = func(binary string, args ...string) ([]byte, error) {
		gotBinary = binary
		gotArgs = args
		return []byte("Elapsed seconds: 0.12\nhello from the tool\n"), nil
	}

	rec := NewCommandRecognizer("rec-bin", ModelConfig{Variant: VariantSenseVoice, Dir: "/m"})
	text, err := Transcribe(rec, 16000, vad.Region{Samples: make([]float32, 512)})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello from the tool" {
		t.Errorf("text = %q", text)
	}
	if gotBinary != "rec-bin" {
		t.Errorf("binary = %q", gotBinary)
	}
	if len(gotArgs) == 0 || !strings.HasSuffix(gotArgs[len(gotArgs)-1], "region.wav") {
		t.Errorf("last arg should be the wav path: %v", gotArgs)
	}
}

func TestParseTranscript(t *testing.T) {
	cases := map[string]string{
		"hello":                          "hello",
		"-- timing 0.5s\nactual text\n":  "actual text",
		"text first\n-- trailing note":   "text first",
		"":                               "",
		"\n\n":                           "",
	}
	for in, want := range cases {
		if got := parseTranscript([]byte(in)); got != want {
			t.Errorf("parseTranscript(%q) = %q, want %q", in, got, want)
		}
	}
}
