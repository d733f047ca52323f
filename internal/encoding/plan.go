package encoding

import (
	"strconv"
	"strings"

	"recoder/internal/config"
	"recoder/internal/media/hdr"
	"recoder/internal/media/streams"
	"recoder/internal/media/tracks"
	"recoder/internal/services"
)

// Selector picks one input stream, or every video stream when Whole is set.
// A whole video selector skips attached pictures, so cover art is neither
// mapped nor re-encoded with the video settings.
type Selector struct {
	Kind    streams.Kind
	Ordinal int
	Whole   bool
}

// Spec renders the selector as an ffmpeg stream specifier.
func (s Selector) Spec() string {
	if s.Whole && s.Kind == streams.KindVideo {
		return "0:V"
	}
	prefix := "0:" + kindLetter(s.Kind)
	if s.Whole {
		return prefix
	}
	return prefix + ":" + strconv.Itoa(s.Ordinal)
}

func kindLetter(kind streams.Kind) string {
	switch kind {
	case streams.KindAudio:
		return "a"
	case streams.KindSubtitle:
		return "s"
	default:
		return "v"
	}
}

// Plan fully determines one ffmpeg invocation.
type Plan struct {
	Selectors        []Selector
	VideoCodec       string
	AudioCodec       string
	SubtitleCodec    string
	CRF              int
	Preset           string
	HDR              *hdr.Params
	AudioFallback    bool
	SubtitleFallback bool
	HDRSkipped       error
}

// MapSpecs renders the selectors in order.
func (p Plan) MapSpecs() []string {
	specs := make([]string, 0, len(p.Selectors))
	for _, selector := range p.Selectors {
		specs = append(specs, selector.Spec())
	}
	return specs
}

// Count returns the number of selectors of the given kind.
func (p Plan) Count(kind streams.Kind) int {
	count := 0
	for _, selector := range p.Selectors {
		if selector.Kind == kind {
			count++
		}
	}
	return count
}

// Args renders the ffmpeg arguments that read input and write output.
// ffmpeg is told never to overwrite output.
func (p Plan) Args(input, output string) []string {
	args := []string{"-n", "-i", input}
	for _, spec := range p.MapSpecs() {
		args = append(args, "-map", spec)
	}
	args = append(args,
		"-c:v", p.VideoCodec,
		"-crf", strconv.Itoa(p.CRF),
		"-preset", p.Preset,
	)
	if p.HDR != nil {
		args = append(args, p.HDR.Args()...)
	}
	args = append(args,
		"-c:a", p.AudioCodec,
		"-c:s", p.SubtitleCodec,
		output,
	)
	return args
}

// Command renders a copy-pasteable shell command for display.
func (p Plan) Command(binary, input, output string) string {
	parts := []string{shellQuote(binary)}
	for _, arg := range p.Args(input, output) {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}

func shellQuote(value string) string {
	if value == "" {
		return "''"
	}
	if strings.ContainsAny(value, " \t\n'\"\\$`!*?()[]{};&|<>#~") {
		return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
	}
	return value
}

// Options configures a Builder.
type Options struct {
	VideoCodec     string
	AudioCodec     string
	SubtitleCodec  string
	CRF            int
	Preset         string
	AudioPolicy    tracks.Policy
	SubtitlePolicy tracks.Policy
	HDR            bool
}

// OptionsFromConfig maps configuration onto builder options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		VideoCodec:    cfg.Encoding.VideoCodec,
		AudioCodec:    cfg.Encoding.AudioCodec,
		SubtitleCodec: cfg.Encoding.SubtitleCodec,
		CRF:           cfg.Encoding.CRF,
		Preset:        cfg.Encoding.Preset,
		AudioPolicy: tracks.Policy{
			Languages:             cfg.Audio.Languages,
			FirstPerLanguage:      cfg.Audio.FirstPerLanguage,
			PreferHighestChannels: cfg.Audio.PreferHighestChannels,
		},
		SubtitlePolicy: tracks.Policy{
			Languages:        cfg.Subtitles.Languages,
			FirstPerLanguage: cfg.Subtitles.FirstPerLanguage,
		},
		HDR: cfg.Encoding.HDR,
	}
}

// Builder turns a stream catalog into a Plan. It performs no I/O.
type Builder struct {
	opts Options
}

// NewBuilder normalizes the selection policies once.
func NewBuilder(opts Options) *Builder {
	opts.AudioPolicy = opts.AudioPolicy.Normalize()
	opts.SubtitlePolicy = opts.SubtitlePolicy.Normalize()
	opts.SubtitlePolicy.PreferHighestChannels = false
	return &Builder{opts: opts}
}

// Options returns the normalized options.
func (b *Builder) Options() Options {
	return b.opts
}

// Build selects the streams to keep and attaches HDR parameters when the
// source is HDR and its metadata is complete. meta may be nil.
func (b *Builder) Build(catalog streams.Catalog, meta *hdr.Metadata) Plan {
	plan := Plan{
		VideoCodec:    b.opts.VideoCodec,
		AudioCodec:    b.opts.AudioCodec,
		SubtitleCodec: b.opts.SubtitleCodec,
		CRF:           b.opts.CRF,
		Preset:        b.opts.Preset,
	}

	if catalog.HasVideo() {
		plan.Selectors = append(plan.Selectors, Selector{Kind: streams.KindVideo, Whole: true})
	}

	audio := tracks.Select(catalog.Audio, b.opts.AudioPolicy)
	plan.AudioFallback = audio.FellBack
	for _, ordinal := range audio.Ordinals {
		plan.Selectors = append(plan.Selectors, Selector{Kind: streams.KindAudio, Ordinal: ordinal})
	}

	subtitles := tracks.Select(catalog.Subtitle, b.opts.SubtitlePolicy)
	plan.SubtitleFallback = subtitles.FellBack
	for _, ordinal := range subtitles.Ordinals {
		plan.Selectors = append(plan.Selectors, Selector{Kind: streams.KindSubtitle, Ordinal: ordinal})
	}

	if b.opts.HDR && hdr.Classify(catalog.Video) {
		if meta == nil {
			plan.HDRSkipped = services.Wrap(services.ErrIncompleteHDR, "planning", "hdr metadata", "first frame metadata unavailable", nil)
		} else if params, err := hdr.FormatParams(*meta); err != nil {
			plan.HDRSkipped = err
		} else {
			plan.HDR = &params
		}
	}
	return plan
}

// NeedsHDRMetadata reports whether Build would use frame metadata for catalog.
func (b *Builder) NeedsHDRMetadata(catalog streams.Catalog) bool {
	return b.opts.HDR && hdr.Classify(catalog.Video)
}
