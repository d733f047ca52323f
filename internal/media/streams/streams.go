package streams

import (
	"strconv"
	"strings"

	"recoder/internal/language"
	"recoder/internal/media/ffprobe"
	"recoder/internal/services"
)

// Kind is the stream category that owns an ordinal sequence.
type Kind string

const (
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindSubtitle Kind = "subtitle"
)

// Record is one classified stream. Ordinal is the position among streams of
// the same Kind in probe order; absent metadata is the zero value.
type Record struct {
	Ordinal     int
	Kind        Kind
	Language    string
	Channels    int
	ColorSpace  string
	Index       int
	Codec       string
	Title       string
	AttachedPic bool
}

// Catalog holds the classified streams of one container.
type Catalog struct {
	Video    *Record
	Audio    []Record
	Subtitle []Record
}

// HasVideo reports whether a primary video stream was found.
func (c Catalog) HasVideo() bool {
	return c.Video != nil
}

// Records returns every record in map order: video, audio, subtitle.
func (c Catalog) Records() []Record {
	records := make([]Record, 0, 1+len(c.Audio)+len(c.Subtitle))
	if c.Video != nil {
		records = append(records, *c.Video)
	}
	records = append(records, c.Audio...)
	return append(records, c.Subtitle...)
}

// Parse decodes raw ffprobe -show_streams JSON into a catalog.
func Parse(data []byte) (Catalog, error) {
	result, err := ffprobe.Parse(data)
	if err != nil {
		return Catalog{}, services.Wrap(services.ErrProbe, "planning", "parse streams", "ffprobe output is not valid JSON", err)
	}
	return Partition(result.Streams), nil
}

// Partition assigns per-kind ordinals in first-seen order. The primary video
// is the first video stream that is not embedded cover art; cover art still
// consumes a video ordinal. Data and attachment streams are ignored.
func Partition(raw []ffprobe.Stream) Catalog {
	var catalog Catalog
	var videoOrdinal, audioOrdinal, subtitleOrdinal int
	for _, stream := range raw {
		switch strings.ToLower(strings.TrimSpace(stream.CodecType)) {
		case "video":
			record := newRecord(stream, KindVideo, videoOrdinal)
			record.AttachedPic = stream.AttachedPic()
			videoOrdinal++
			if catalog.Video == nil && !record.AttachedPic {
				catalog.Video = &record
			}
		case "audio":
			record := newRecord(stream, KindAudio, audioOrdinal)
			record.Channels = channelCount(stream)
			catalog.Audio = append(catalog.Audio, record)
			audioOrdinal++
		case "subtitle":
			catalog.Subtitle = append(catalog.Subtitle, newRecord(stream, KindSubtitle, subtitleOrdinal))
			subtitleOrdinal++
		}
	}
	return catalog
}

func newRecord(stream ffprobe.Stream, kind Kind, ordinal int) Record {
	return Record{
		Ordinal:    ordinal,
		Kind:       kind,
		Language:   language.ExtractFromTags(stream.Tags),
		ColorSpace: strings.TrimSpace(stream.ColorSpace),
		Index:      stream.Index,
		Codec:      strings.TrimSpace(stream.CodecName),
		Title:      stream.Tag("title", "TITLE", "handler_name", "HANDLER_NAME"),
	}
}

// channelCount prefers the reported channel count and falls back to the
// channel layout name.
func channelCount(stream ffprobe.Stream) int {
	if stream.Channels > 0 {
		return stream.Channels
	}
	layout := strings.ToLower(strings.TrimSpace(stream.ChannelLayout))
	switch {
	case layout == "":
		return 0
	case layout == "mono":
		return 1
	case layout == "stereo":
		return 2
	case strings.HasPrefix(layout, "7.1"):
		return 8
	case strings.HasPrefix(layout, "6.1"):
		return 7
	case strings.HasPrefix(layout, "5.1"):
		return 6
	case strings.HasPrefix(layout, "5.0"):
		return 5
	case strings.HasPrefix(layout, "4.0"):
		return 4
	case strings.HasPrefix(layout, "2.1"):
		return 3
	}
	if strings.Contains(layout, ".") {
		total := 0
		for _, part := range strings.Split(layout, ".") {
			part = strings.Trim(part, "abcdefghijklmnopqrstuvwxyz ()")
			if n, err := strconv.Atoi(part); err == nil {
				total += n
			}
		}
		return total
	}
	return 0
}

// Summary renders a short human-readable description of a record.
func (r Record) Summary() string {
	parts := []string{string(r.Kind) + " #" + strconv.Itoa(r.Ordinal)}
	if r.Codec != "" {
		parts = append(parts, r.Codec)
	}
	if r.Language != "" {
		parts = append(parts, r.Language)
	} else {
		parts = append(parts, "lang=absent")
	}
	if r.Channels > 0 {
		parts = append(parts, strconv.Itoa(r.Channels)+"ch")
	}
	if r.ColorSpace != "" {
		parts = append(parts, r.ColorSpace)
	}
	if r.Title != "" {
		parts = append(parts, strconv.Quote(r.Title))
	}
	return strings.Join(parts, " ")
}
