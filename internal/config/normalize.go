package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"recoder/internal/language"
)

func (c *Config) normalize() error {
	c.applyEnvFallbacks()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeEncoding(); err != nil {
		return err
	}
	c.Audio.Languages = language.NormalizeList(c.Audio.Languages)
	c.Subtitles.Languages = language.NormalizeList(c.Subtitles.Languages)
	c.normalizeLogging()
	if c.Watch.DebounceSeconds <= 0 {
		c.Watch.DebounceSeconds = defaultDebounceSeconds
	}
	return nil
}

// applyEnvFallbacks fills unset values from the legacy INPUT_DIR/VCODEC style
// environment variables. Values from the config file win.
func (c *Config) applyEnvFallbacks() {
	defaults := Default()
	override := func(target *string, fallback string, keys ...string) {
		if strings.TrimSpace(*target) != "" && *target != fallback {
			return
		}
		for _, key := range keys {
			if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
				*target = strings.TrimSpace(value)
				return
			}
		}
	}
	override(&c.Paths.InputDir, defaults.Paths.InputDir, "RECODER_INPUT_DIR", "INPUT_DIR", "input_dir")
	override(&c.Paths.EncodedDir, defaults.Paths.EncodedDir, "RECODER_ENCODED_DIR", "ENCODED_DIR", "encoded_dir")
	override(&c.Paths.ArchiveDir, defaults.Paths.ArchiveDir, "RECODER_ARCHIVE_DIR", "ARCHIVE_DIR", "archive_dir")
	override(&c.Encoding.VideoCodec, defaults.Encoding.VideoCodec, "VCODEC")
	override(&c.Encoding.AudioCodec, defaults.Encoding.AudioCodec, "ACODEC")
	override(&c.Encoding.SubtitleCodec, defaults.Encoding.SubtitleCodec, "SCODEC")
	override(&c.Encoding.Preset, defaults.Encoding.Preset, "PRESET")
	if c.Encoding.CRF == defaults.Encoding.CRF {
		if value, ok := os.LookupEnv("CRF"); ok {
			if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				c.Encoding.CRF = parsed
			}
		}
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InputDir, err = expandPath(strings.TrimSpace(c.Paths.InputDir)); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if c.Paths.EncodedDir, err = expandPath(strings.TrimSpace(c.Paths.EncodedDir)); err != nil {
		return fmt.Errorf("paths.encoded_dir: %w", err)
	}
	if c.Paths.ArchiveDir, err = expandPath(strings.TrimSpace(c.Paths.ArchiveDir)); err != nil {
		return fmt.Errorf("paths.archive_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Metrics.Textfile) != "" {
		if c.Metrics.Textfile, err = expandPath(strings.TrimSpace(c.Metrics.Textfile)); err != nil {
			return fmt.Errorf("metrics.textfile: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeEncoding() error {
	c.Encoding.VideoCodec = strings.TrimSpace(c.Encoding.VideoCodec)
	c.Encoding.AudioCodec = strings.TrimSpace(c.Encoding.AudioCodec)
	c.Encoding.SubtitleCodec = strings.TrimSpace(c.Encoding.SubtitleCodec)
	c.Encoding.Preset = strings.TrimSpace(c.Encoding.Preset)
	if c.Encoding.Preset == "" {
		c.Encoding.Preset = defaultPreset
	}

	exts := make([]string, 0, len(c.Encoding.Extensions))
	seen := make(map[string]struct{}, len(c.Encoding.Extensions))
	for _, ext := range c.Encoding.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = append(exts, defaultExtensions...)
	}
	c.Encoding.Extensions = exts

	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
