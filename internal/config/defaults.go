package config

// Default returns the built-in configuration used when no file is present.
// Path fields stay unexpanded here; Load normalizes them.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   "~/.local/state/substream",
			CacheDir: "~/.cache/substream",
		},
		Models: Models{
			Dir:        "~/.local/share/substream/models",
			Variant:    "sense_voice",
			Language:   "auto",
			Recognizer: "sherpa-onnx-offline",
		},
		Audio: Audio{
			SampleRate:    16000,
			WindowSamples: 512,
			BufferSeconds: 30,
		},
		Merge: Merge{
			MaxPauseSeconds:    0.5,
			MaxDurationSeconds: 15.0,
		},
		Translation: Translation{
			Enabled:        false,
			Endpoint:       "https://translate.googleapis.com/translate_a/single",
			SourceLanguage: "auto",
			TargetLanguage: "en",
			ChunkBytes:     1000,
			RequestDelayMS: 1200,
			TimeoutSeconds: 30,
		},
		Workflow: Workflow{
			GracePeriodSeconds: 3,
			EventBuffer:        500,
		},
		Logging: Logging{
			Format: "auto",
			Level:  "info",
		},
	}
}
