package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}

func (c *Config) validatePaths() error {
	required := []struct {
		key   string
		value string
	}{
		{"paths.input_dir", c.Paths.InputDir},
		{"paths.encoded_dir", c.Paths.EncodedDir},
		{"paths.archive_dir", c.Paths.ArchiveDir},
	}
	for _, entry := range required {
		if strings.TrimSpace(entry.value) == "" {
			return fmt.Errorf("%s must be set", entry.key)
		}
	}
	input := filepath.Clean(c.Paths.InputDir)
	if filepath.Clean(c.Paths.EncodedDir) == input {
		return errors.New("paths.encoded_dir must differ from paths.input_dir")
	}
	if filepath.Clean(c.Paths.ArchiveDir) == input {
		return errors.New("paths.archive_dir must differ from paths.input_dir")
	}
	if filepath.Clean(c.Paths.ArchiveDir) == filepath.Clean(c.Paths.EncodedDir) {
		return errors.New("paths.archive_dir must differ from paths.encoded_dir")
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if c.Encoding.VideoCodec == "" {
		return errors.New("encoding.video_codec must be set")
	}
	if c.Encoding.AudioCodec == "" {
		return errors.New("encoding.audio_codec must be set")
	}
	if c.Encoding.SubtitleCodec == "" {
		return errors.New("encoding.subtitle_codec must be set")
	}
	if c.Encoding.CRF < 0 || c.Encoding.CRF > maxCRF {
		return fmt.Errorf("encoding.crf must be between 0 and %d", maxCRF)
	}
	if c.Encoding.MinFreeGiB < 0 {
		return errors.New("encoding.min_free_gib must be >= 0")
	}
	return nil
}
