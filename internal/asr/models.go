package asr

import (
	"fmt"
	"os"
	"path/filepath"

	"substream/internal/services"
)

// Variant identifies a supported recognition model family.
type Variant string

const (
	VariantSenseVoice Variant = "sense_voice"
	VariantNemoCTC    Variant = "nemo_ctc"
	VariantTransducer Variant = "transducer"
)

// ModelConfig resolves to the on-disk artifacts one variant needs.
type ModelConfig struct {
	Variant  Variant
	Dir      string
	Language string
}

// ModelPaths lists the artifact files a variant expects under the model
// directory. Transducer models ship as three networks; the others are a
// single exported graph.
func (c ModelConfig) ModelPaths() []string {
	switch c.Variant {
	case VariantTransducer:
		return []string{
			filepath.Join(c.Dir, "encoder.onnx"),
			filepath.Join(c.Dir, "decoder.onnx"),
			filepath.Join(c.Dir, "joiner.onnx"),
		}
	default:
		return []string{filepath.Join(c.Dir, "model.onnx")}
	}
}

// TokensPath is the vocabulary file shared by every variant.
func (c ModelConfig) TokensPath() string {
	return filepath.Join(c.Dir, "tokens.txt")
}

// Validate checks the variant is known and every artifact exists.
func (c ModelConfig) Validate() error {
	switch c.Variant {
	case VariantSenseVoice, VariantNemoCTC, VariantTransducer:
	default:
		return services.Wrap(services.ErrConfiguration, "asr", "validate model",
			fmt.Sprintf("unknown model variant %q", c.Variant), nil)
	}
	for _, path := range append(c.ModelPaths(), c.TokensPath()) {
		if _, err := os.Stat(path); err != nil {
			return services.Wrap(services.ErrConfiguration, "asr", "validate model",
				fmt.Sprintf("model artifact missing: %s", path), err)
		}
	}
	return nil
}

// Builder constructs a Recognizer for one variant. Backends register
// themselves at init time so the daemon links only what it ships with.
type Builder func(ModelConfig) (Recognizer, error)

var builders = map[Variant]Builder{}

// Register installs the builder for a variant, replacing any previous one.
func Register(variant Variant, builder Builder) {
	builders[variant] = builder
}

// NewRecognizer validates the model layout and dispatches to the registered
// backend for the variant.
func NewRecognizer(cfg ModelConfig) (Recognizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	builder, ok := builders[cfg.Variant]
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "asr", "create recognizer",
			fmt.Sprintf("no backend registered for variant %q", cfg.Variant), nil)
	}
	return builder(cfg)
}
