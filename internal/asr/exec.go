package asr

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"substream/internal/services"
)

// runRecognizer is swapped out by tests.
var runRecognizer = func(binary string, args ...string) ([]byte, error) {
	return exec.CommandContext(context.Background(), binary, args...).Output()
}

// CommandRecognizer drives an external recognition executable. Each stream
// buffers one region's samples, writes them as a temp WAV, and invokes the
// tool once; the transcript is read from standard output.
type CommandRecognizer struct {
	binary string
	cfg    ModelConfig
}

// NewCommandRecognizer wires the external tool for one model layout.
func NewCommandRecognizer(binary string, cfg ModelConfig) *CommandRecognizer {
	return &CommandRecognizer{binary: binary, cfg: cfg}
}

// NewStream starts a fresh single-use stream.
func (r *CommandRecognizer) NewStream() (Stream, error) {
	return &commandStream{rec: r}, nil
}

// Close is a no-op; the tool holds no persistent state between regions.
func (r *CommandRecognizer) Close() error { return nil }

// modelArgs maps the variant onto the tool's flag spelling.
func (r *CommandRecognizer) modelArgs() []string {
	args := []string{"--tokens=" + r.cfg.TokensPath()}
	paths := r.cfg.ModelPaths()
	switch r.cfg.Variant {
	case VariantTransducer:
		args = append(args,
			"--encoder="+paths[0],
			"--decoder="+paths[1],
			"--joiner="+paths[2])
	case VariantNemoCTC:
		args = append(args, "--nemo-ctc-model="+paths[0])
	default:
		args = append(args, "--sense-voice-model="+paths[0])
	}
	if lang := strings.TrimSpace(r.cfg.Language); lang != "" && lang != "auto" {
		args = append(args, "--language="+lang)
	}
	return args
}

type commandStream struct {
	rec        *CommandRecognizer
	sampleRate int
	samples    []float32
	text       string
	closed     bool
}

func (s *commandStream) AcceptWaveform(sampleRate int, samples []float32) error {
	s.sampleRate = sampleRate
	s.samples = append(s.samples, samples...)
	return nil
}

func (s *commandStream) Decode() error {
	dir, err := os.MkdirTemp("", "substream-region-*")
	if err != nil {
		return services.Wrap(services.ErrFileSystem, "asr", "decode region",
			"create temp dir", err)
	}
	defer os.RemoveAll(dir)

	wavPath := filepath.Join(dir, "region.wav")
	f, err := os.Create(wavPath)
	if err != nil {
		return services.Wrap(services.ErrFileSystem, "asr", "decode region",
			"create temp wav", err)
	}
	w := bufio.NewWriter(f)
	if err := writeWAV(w, s.sampleRate, s.samples); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return services.Wrap(services.ErrFileSystem, "asr", "decode region",
			"flush temp wav", err)
	}
	if err := f.Close(); err != nil {
		return services.Wrap(services.ErrFileSystem, "asr", "decode region",
			"close temp wav", err)
	}

	args := append(s.rec.modelArgs(), wavPath)
	out, err := runRecognizer(s.rec.binary, args...)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "asr", "decode region",
			fmt.Sprintf("run %s", s.rec.binary), err)
	}
	s.text = parseTranscript(out)
	return nil
}

func (s *commandStream) Text() (string, error) { return s.text, nil }

func (s *commandStream) Close() error {
	s.samples = nil
	s.closed = true
	return nil
}

// parseTranscript keeps the last non-empty, non-diagnostic line of tool
// output; the tools print timing diagnostics before the transcript.
func parseTranscript(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		return line
	}
	return ""
}

// RegisterCommandBackends installs the external-tool builder for every
// supported variant.
func RegisterCommandBackends(binary string) {
	for _, variant := range []Variant{VariantSenseVoice, VariantNemoCTC, VariantTransducer} {
		v := variant
		Register(v, func(cfg ModelConfig) (Recognizer, error) {
			cfg.Variant = v
			return NewCommandRecognizer(binary, cfg), nil
		})
	}
}
