package config

import (
	"fmt"
	"strings"
)

var knownVariants = map[string]struct{}{
	"sense_voice": {},
	"nemo_ctc":    {},
	"transducer":  {},
}

// Validate checks structural constraints on the configuration. Model file
// existence is deliberately not checked here; that happens when the
// recognizer is built so a daemon can start before models are downloaded.
func (c *Config) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.WindowSamples <= 0 {
		return fmt.Errorf("audio.window_samples must be positive, got %d", c.Audio.WindowSamples)
	}
	if c.Audio.BufferSeconds <= 0 {
		return fmt.Errorf("audio.buffer_seconds must be positive, got %d", c.Audio.BufferSeconds)
	}
	if c.Audio.WindowSamples > c.Audio.SampleRate*c.Audio.BufferSeconds {
		return fmt.Errorf("audio.window_samples %d exceeds ring capacity %d",
			c.Audio.WindowSamples, c.Audio.SampleRate*c.Audio.BufferSeconds)
	}
	if c.Merge.MaxPauseSeconds < 0 {
		return fmt.Errorf("merge.max_pause_seconds must not be negative, got %g", c.Merge.MaxPauseSeconds)
	}
	if c.Merge.MaxDurationSeconds <= 0 {
		return fmt.Errorf("merge.max_duration_seconds must be positive, got %g", c.Merge.MaxDurationSeconds)
	}
	if _, ok := knownVariants[c.Models.Variant]; !ok {
		return fmt.Errorf("models.variant %q is not one of sense_voice, nemo_ctc, transducer", c.Models.Variant)
	}
	if strings.TrimSpace(c.Models.Recognizer) == "" {
		return fmt.Errorf("models.recognizer executable is required")
	}
	if c.Translation.Enabled {
		if strings.TrimSpace(c.Translation.Endpoint) == "" {
			return fmt.Errorf("translation.endpoint is required when translation is enabled")
		}
		if strings.TrimSpace(c.Translation.TargetLanguage) == "" {
			return fmt.Errorf("translation.target_language is required when translation is enabled")
		}
	}
	if c.Translation.ChunkBytes <= 0 {
		return fmt.Errorf("translation.chunk_bytes must be positive, got %d", c.Translation.ChunkBytes)
	}
	if c.Translation.RequestDelayMS < 0 {
		return fmt.Errorf("translation.request_delay_ms must not be negative, got %d", c.Translation.RequestDelayMS)
	}
	if c.Workflow.GracePeriodSeconds <= 0 {
		return fmt.Errorf("workflow.grace_period_seconds must be positive, got %d", c.Workflow.GracePeriodSeconds)
	}
	if c.Workflow.EventBuffer <= 0 {
		return fmt.Errorf("workflow.event_buffer must be positive, got %d", c.Workflow.EventBuffer)
	}
	return nil
}
