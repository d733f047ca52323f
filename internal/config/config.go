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

// Paths contains the directory layout recoder reads from and writes to.
type Paths struct {
	InputDir   string `toml:"input_dir"`
	EncodedDir string `toml:"encoded_dir"`
	ArchiveDir string `toml:"archive_dir"`
	StateDir   string `toml:"state_dir"`
	LogDir     string `toml:"log_dir"`
}

// Encoding contains the ffmpeg codec settings applied to every file.
type Encoding struct {
	VideoCodec    string   `toml:"video_codec"`
	AudioCodec    string   `toml:"audio_codec"`
	SubtitleCodec string   `toml:"subtitle_codec"`
	CRF           int      `toml:"crf"`
	Preset        string   `toml:"preset"`
	Extensions    []string `toml:"extensions"`
	HDR           bool     `toml:"hdr"`
	MinFreeGiB    int      `toml:"min_free_gib"`
}

// Audio contains the audio track selection policy.
type Audio struct {
	Languages             []string `toml:"languages"`
	FirstPerLanguage      bool     `toml:"first_per_language"`
	PreferHighestChannels bool     `toml:"prefer_highest_channels"`
}

// Subtitles contains the subtitle track selection policy.
type Subtitles struct {
	Languages        []string `toml:"languages"`
	FirstPerLanguage bool     `toml:"first_per_language"`
}

// Archive controls where originals go after a successful encode.
type Archive struct {
	DateSubdir bool `toml:"date_subdir"`
}

// Tools names the external binaries.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Metrics contains the optional Prometheus textfile export.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Watch contains settings for the directory watcher.
type Watch struct {
	DebounceSeconds int `toml:"debounce_seconds"`
}

// Config encapsulates all configuration values for recoder.
//
// Configuration sections by subsystem:
//   - Paths: input, encoded output, archive, state and log directories
//   - Encoding: codecs, quality, preset, accepted extensions, HDR passthrough
//   - Audio / Subtitles: language selection policies
//   - Archive: date subdirectory layout for originals
//   - Tools: ffmpeg/ffprobe binaries
//   - Logging: log format and level
//   - Metrics: Prometheus textfile path
//   - Watch: debounce interval for watch mode
type Config struct {
	Paths     Paths     `toml:"paths"`
	Encoding  Encoding  `toml:"encoding"`
	Audio     Audio     `toml:"audio"`
	Subtitles Subtitles `toml:"subtitles"`
	Archive   Archive   `toml:"archive"`
	Tools     Tools     `toml:"tools"`
	Logging   Logging   `toml:"logging"`
	Metrics   Metrics   `toml:"metrics"`
	Watch     Watch     `toml:"watch"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/recoder/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
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

	defaultPath, err := expandPath("~/.config/recoder/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("recoder.toml")
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

// EnsureDirectories creates the directories recoder writes to. The input
// directory is never created; a missing input tree is a configuration error
// surfaced by preflight.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.EncodedDir, c.Paths.ArchiveDir, c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the location of the run history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the location of the single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "recoder.lock")
}

// FFmpegBinary returns the ffmpeg executable used for encoding.
func (c *Config) FFmpegBinary() string {
	if strings.TrimSpace(c.Tools.FFmpeg) == "" {
		return "ffmpeg"
	}
	return c.Tools.FFmpeg
}

// FFprobeBinary returns the ffprobe executable used for media inspection.
func (c *Config) FFprobeBinary() string {
	if strings.TrimSpace(c.Tools.FFprobe) == "" {
		return "ffprobe"
	}
	return c.Tools.FFprobe
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

// Encode renders the configuration as TOML.
func (c *Config) Encode() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}
