package config

const (
	defaultInputDir        = "~/media/incoming"
	defaultEncodedDir      = "~/media/encoded"
	defaultArchiveDir      = "~/media/archive"
	defaultStateDir        = "~/.local/share/recoder"
	defaultLogDir          = "~/.local/share/recoder/logs"
	defaultVideoCodec      = "libx265"
	defaultAudioCodec      = "aac"
	defaultSubtitleCodec   = "copy"
	defaultCRF             = 20
	defaultPreset          = "fast"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultRetentionDays   = 30
	defaultDebounceSeconds = 30
	maxCRF                 = 51
)

var (
	defaultExtensions        = []string{".mkv"}
	defaultAudioLanguages    = []string{"eng", "jpn"}
	defaultSubtitleLanguages = []string{"eng"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:   defaultInputDir,
			EncodedDir: defaultEncodedDir,
			ArchiveDir: defaultArchiveDir,
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
		},
		Encoding: Encoding{
			VideoCodec:    defaultVideoCodec,
			AudioCodec:    defaultAudioCodec,
			SubtitleCodec: defaultSubtitleCodec,
			CRF:           defaultCRF,
			Preset:        defaultPreset,
			Extensions:    append([]string(nil), defaultExtensions...),
			HDR:           true,
		},
		Audio: Audio{
			Languages: append([]string(nil), defaultAudioLanguages...),
		},
		Subtitles: Subtitles{
			Languages: append([]string(nil), defaultSubtitleLanguages...),
		},
		Archive: Archive{
			DateSubdir: true,
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultRetentionDays,
		},
		Watch: Watch{
			DebounceSeconds: defaultDebounceSeconds,
		},
	}
}
