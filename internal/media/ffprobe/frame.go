package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Side data type names reported by ffprobe for HDR10 metadata.
const (
	SideDataMasteringDisplay = "Mastering display metadata"
	SideDataContentLight     = "Content light level metadata"
)

// Frame is the subset of ffprobe -show_frames output used for HDR inspection.
type Frame struct {
	MediaType      string     `json:"media_type"`
	PixFmt         string     `json:"pix_fmt"`
	ColorSpace     string     `json:"color_space"`
	ColorPrimaries string     `json:"color_primaries"`
	ColorTransfer  string     `json:"color_transfer"`
	SideData       []SideData `json:"side_data_list"`
}

// SideData holds one side data block. Only the fields of the mastering display
// and content light level blocks are decoded.
type SideData struct {
	Type         string   `json:"side_data_type"`
	RedX         Rational `json:"red_x"`
	RedY         Rational `json:"red_y"`
	GreenX       Rational `json:"green_x"`
	GreenY       Rational `json:"green_y"`
	BlueX        Rational `json:"blue_x"`
	BlueY        Rational `json:"blue_y"`
	WhitePointX  Rational `json:"white_point_x"`
	WhitePointY  Rational `json:"white_point_y"`
	MinLuminance Rational `json:"min_luminance"`
	MaxLuminance Rational `json:"max_luminance"`
	MaxContent   int      `json:"max_content"`
	MaxAverage   int      `json:"max_average"`
}

// Find returns the first side data block of the given type.
func (f Frame) Find(sideDataType string) (SideData, bool) {
	for _, block := range f.SideData {
		if strings.EqualFold(strings.TrimSpace(block.Type), sideDataType) {
			return block, true
		}
	}
	return SideData{}, false
}

// Rational is an ffprobe fraction such as "35400/50000". A bare number
// decodes with a denominator of 1. The zero value means absent.
type Rational struct {
	Num int64
	Den int64
}

// Valid reports whether the rational carries a usable value.
func (r Rational) Valid() bool {
	return r.Den > 0
}

// Scale expresses the value in units of 1/den, rounding to nearest. A
// matching denominator returns the numerator verbatim.
func (r Rational) Scale(den int64) int64 {
	if !r.Valid() || den <= 0 {
		return 0
	}
	if r.Den == den {
		return r.Num
	}
	scaled := r.Num * den
	if scaled >= 0 {
		return (scaled + r.Den/2) / r.Den
	}
	return (scaled - r.Den/2) / r.Den
}

func (r Rational) String() string {
	if !r.Valid() {
		return ""
	}
	return strconv.FormatInt(r.Num, 10) + "/" + strconv.FormatInt(r.Den, 10)
}

// UnmarshalJSON accepts "n/d" strings, numeric strings, and JSON numbers.
func (r *Rational) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Rational{}
		return nil
	}
	var text string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
	} else {
		text = string(data)
	}
	parsed, err := ParseRational(text)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRational parses "n/d" or an integer.
func ParseRational(text string) (Rational, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Rational{}, nil
	}
	numText, denText, hasDen := strings.Cut(text, "/")
	num, err := strconv.ParseInt(strings.TrimSpace(numText), 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("parse rational %q: %w", text, err)
	}
	den := int64(1)
	if hasDen {
		den, err = strconv.ParseInt(strings.TrimSpace(denText), 10, 64)
		if err != nil {
			return Rational{}, fmt.Errorf("parse rational %q: %w", text, err)
		}
		if den <= 0 {
			return Rational{}, fmt.Errorf("parse rational %q: non-positive denominator", text)
		}
	}
	return Rational{Num: num, Den: den}, nil
}

type framesEnvelope struct {
	Frames []Frame `json:"frames"`
}

// ParseFrames decodes an ffprobe -show_frames JSON document and returns the
// first frame.
func ParseFrames(data []byte) (Frame, error) {
	var envelope framesEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Frame{}, fmt.Errorf("ffprobe frame parse: %w", err)
	}
	if len(envelope.Frames) == 0 {
		return Frame{}, errors.New("ffprobe frame parse: no frames reported")
	}
	return envelope.Frames[0], nil
}

// FirstFrame reads the first decoded frame of the primary video stream,
// including its side data.
func FirstFrame(ctx context.Context, binary string, path string) (Frame, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Frame{}, errors.New("ffprobe frame: empty path")
	}
	output, err := run(ctx, binary,
		"-v", "error", "-hide_banner",
		"-select_streams", "V:0",
		"-read_intervals", "%+#1",
		"-show_frames",
		"-show_entries", "frame=media_type,pix_fmt,color_space,color_primaries,color_transfer,side_data_list",
		"-of", "json", "--", path,
	)
	if err != nil {
		return Frame{}, fmt.Errorf("ffprobe frame: %w", err)
	}
	return ParseFrames(output)
}

// Client binds the ffprobe binary for repeated inspections.
type Client struct {
	Binary string
}

// Streams returns every stream ffprobe reports for path, in probe order.
func (c Client) Streams(ctx context.Context, path string) ([]Stream, error) {
	result, err := Inspect(ctx, c.Binary, path)
	if err != nil {
		return nil, err
	}
	return result.Streams, nil
}

// FirstFrame returns the first frame of the primary video stream.
func (c Client) FirstFrame(ctx context.Context, path string) (Frame, error) {
	return FirstFrame(ctx, c.Binary, path)
}
