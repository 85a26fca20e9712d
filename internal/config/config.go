package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and socket configuration.
type Paths struct {
	OutputDir  string `toml:"output_dir"`
	WatchDir   string `toml:"watch_dir"`
	LogDir     string `toml:"log_dir"`
	CacheDir   string `toml:"cache_dir"`
	SocketPath string `toml:"socket_path"`
}

// Models contains recognition model selection.
type Models struct {
	Dir        string `toml:"dir"`
	Variant    string `toml:"variant"`
	Language   string `toml:"language"`
	Recognizer string `toml:"recognizer"`
}

// Audio contains decode and windowing parameters.
type Audio struct {
	SampleRate    int `toml:"sample_rate"`
	WindowSamples int `toml:"window_samples"`
	BufferSeconds int `toml:"buffer_seconds"`
}

// Merge contains cue merge thresholds.
type Merge struct {
	MaxPauseSeconds    float64 `toml:"max_pause_seconds"`
	MaxDurationSeconds float64 `toml:"max_duration_seconds"`
}

// Translation contains the external translation endpoint settings.
type Translation struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	SourceLanguage string `toml:"source_language"`
	TargetLanguage string `toml:"target_language"`
	ChunkBytes     int    `toml:"chunk_bytes"`
	RequestDelayMS int    `toml:"request_delay_ms"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	CachePath      string `toml:"cache_path"`
}

// Workflow contains supervisor timing settings.
type Workflow struct {
	GracePeriodSeconds int `toml:"grace_period_seconds"`
	EventBuffer        int `toml:"event_buffer"`
}

// Logging contains log output settings.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for substream.
//
// Sections by subsystem:
//   - Paths: output, watch, log, and cache directories plus the IPC socket
//   - Models: recognition model variant and location
//   - Audio: sample rate, detector window size, ring capacity
//   - Merge: cue merge thresholds
//   - Translation: endpoint, languages, pacing, and cache
//   - Workflow: cancellation grace period and event history bound
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Models      Models      `toml:"models"`
	Audio       Audio       `toml:"audio"`
	Merge       Merge       `toml:"merge"`
	Translation Translation `toml:"translation"`
	Workflow    Workflow    `toml:"workflow"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/substream/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was actually found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("substream.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// normalize expands and absolutizes path fields and fills derived defaults.
func (c *Config) normalize() error {
	var err error
	for _, field := range []*string{
		&c.Paths.OutputDir,
		&c.Paths.WatchDir,
		&c.Paths.LogDir,
		&c.Paths.CacheDir,
		&c.Paths.SocketPath,
		&c.Models.Dir,
		&c.Translation.CachePath,
	} {
		if strings.TrimSpace(*field) == "" {
			*field = ""
			continue
		}
		if *field, err = expandPath(*field); err != nil {
			return err
		}
	}
	if c.Translation.CachePath == "" && c.Paths.CacheDir != "" {
		c.Translation.CachePath = filepath.Join(c.Paths.CacheDir, "translations.json")
	}
	if c.Paths.SocketPath == "" && c.Paths.LogDir != "" {
		c.Paths.SocketPath = filepath.Join(c.Paths.LogDir, "substreamd.sock")
	}
	c.Models.Variant = strings.ToLower(strings.TrimSpace(c.Models.Variant))
	c.Models.Language = strings.TrimSpace(c.Models.Language)
	c.Models.Recognizer = strings.TrimSpace(c.Models.Recognizer)
	c.Translation.SourceLanguage = strings.TrimSpace(c.Translation.SourceLanguage)
	c.Translation.TargetLanguage = strings.TrimSpace(c.Translation.TargetLanguage)
	return nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.CacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		// Best-effort so config load survives offline storage.
		_ = os.MkdirAll(c.Paths.OutputDir, 0o755)
	}
	return nil
}

// FFmpegBinary returns the decode transcoder executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the duration probe executable name.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// LogPath returns the daemon log file path, or empty when logging to a file
// is not configured.
func (c *Config) LogPath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "substream.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
