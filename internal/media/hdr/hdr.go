package hdr

import (
	"fmt"
	"strings"

	"recoder/internal/media/ffprobe"
	"recoder/internal/media/streams"
	"recoder/internal/services"
)

// PixFmt is the pixel format emitted for every HDR encode.
const PixFmt = "yuv420p10le"

// ColorSpaceBT2020NCL is the ffprobe color_space value that marks HDR sources.
const ColorSpaceBT2020NCL = "bt2020nc"

const (
	chromaticityDen = 50000
	luminanceDen    = 10000
)

// ErrIncomplete reports metadata that lacks primaries, transfer or matrix.
var ErrIncomplete = fmt.Errorf("%w: colour primaries, transfer and matrix are required", services.ErrIncompleteHDR)

// Point is a CIE 1931 chromaticity coordinate.
type Point struct {
	X ffprobe.Rational
	Y ffprobe.Rational
}

// MasteringDisplay is SMPTE ST 2086 mastering display colour volume.
type MasteringDisplay struct {
	Red          Point
	Green        Point
	Blue         Point
	WhitePoint   Point
	MinLuminance ffprobe.Rational
	MaxLuminance ffprobe.Rational
}

// ContentLight is CTA-861.3 content light level information.
type ContentLight struct {
	MaxCLL  int
	MaxFALL int
}

// Metadata is the HDR10 signalling read from the first video frame.
type Metadata struct {
	Primaries        string
	Transfer         string
	Matrix           string
	MasteringDisplay *MasteringDisplay
	ContentLight     *ContentLight
}

// Params is the encoder parameter set for an HDR encode.
type Params struct {
	X265Params string
	PixFmt     string
}

// Args renders the params as ffmpeg arguments.
func (p Params) Args() []string {
	return []string{"-x265-params", p.X265Params, "-pix_fmt", p.PixFmt}
}

// Classify reports whether the video stream is BT.2020 non-constant luminance.
func Classify(video *streams.Record) bool {
	if video == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(video.ColorSpace), ColorSpaceBT2020NCL)
}

// Extract reads colour properties and HDR10 side data from a frame. Missing
// side data blocks leave the corresponding fields nil.
func Extract(frame ffprobe.Frame) Metadata {
	meta := Metadata{
		Primaries: strings.TrimSpace(frame.ColorPrimaries),
		Transfer:  strings.TrimSpace(frame.ColorTransfer),
		Matrix:    strings.TrimSpace(frame.ColorSpace),
	}
	if block, ok := frame.Find(ffprobe.SideDataMasteringDisplay); ok {
		meta.MasteringDisplay = &MasteringDisplay{
			Red:          Point{X: block.RedX, Y: block.RedY},
			Green:        Point{X: block.GreenX, Y: block.GreenY},
			Blue:         Point{X: block.BlueX, Y: block.BlueY},
			WhitePoint:   Point{X: block.WhitePointX, Y: block.WhitePointY},
			MinLuminance: block.MinLuminance,
			MaxLuminance: block.MaxLuminance,
		}
	}
	if block, ok := frame.Find(ffprobe.SideDataContentLight); ok {
		meta.ContentLight = &ContentLight{MaxCLL: block.MaxContent, MaxFALL: block.MaxAverage}
	}
	return meta
}

// Complete reports whether the colour description is fully known.
func (m Metadata) Complete() bool {
	return m.Primaries != "" && m.Transfer != "" && m.Matrix != ""
}

// FormatParams renders metadata in x265-params grammar. A mastering display
// block with any unset coordinate or luminance is omitted rather than emitted
// with zeros.
func FormatParams(meta Metadata) (Params, error) {
	if !meta.Complete() {
		return Params{}, ErrIncomplete
	}
	parts := []string{
		"hdr-opt=1",
		"repeat-headers=1",
		"colorprim=" + meta.Primaries,
		"transfer=" + meta.Transfer,
		"colormatrix=" + meta.Matrix,
	}
	if md := meta.MasteringDisplay; md != nil && md.valid() {
		parts = append(parts, "master-display="+md.format())
	}
	if cl := meta.ContentLight; cl != nil && (cl.MaxCLL > 0 || cl.MaxFALL > 0) {
		parts = append(parts, fmt.Sprintf("max-cll=%d,%d", cl.MaxCLL, cl.MaxFALL))
	}
	return Params{X265Params: strings.Join(parts, ":"), PixFmt: PixFmt}, nil
}

func (md MasteringDisplay) valid() bool {
	for _, r := range []ffprobe.Rational{
		md.Red.X, md.Red.Y, md.Green.X, md.Green.Y, md.Blue.X, md.Blue.Y,
		md.WhitePoint.X, md.WhitePoint.Y, md.MinLuminance, md.MaxLuminance,
	} {
		if !r.Valid() {
			return false
		}
	}
	return true
}

func (md MasteringDisplay) format() string {
	point := func(label string, p Point) string {
		return fmt.Sprintf("%s(%d,%d)", label, p.X.Scale(chromaticityDen), p.Y.Scale(chromaticityDen))
	}
	return point("G", md.Green) + point("B", md.Blue) + point("R", md.Red) + point("WP", md.WhitePoint) +
		fmt.Sprintf("L(%d,%d)", md.MaxLuminance.Scale(luminanceDen), md.MinLuminance.Scale(luminanceDen))
}
