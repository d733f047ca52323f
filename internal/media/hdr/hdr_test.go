package hdr

import (
	"errors"
	"slices"
	"testing"

	"recoder/internal/media/ffprobe"
	"recoder/internal/media/streams"
	"recoder/internal/services"
)

func rational(t *testing.T, text string) ffprobe.Rational {
	t.Helper()
	r, err := ffprobe.ParseRational(text)
	if err != nil {
		t.Fatalf("ParseRational(%q): %v", text, err)
	}
	return r
}

func hdrFrame(t *testing.T) ffprobe.Frame {
	return ffprobe.Frame{
		ColorSpace:     "bt2020nc",
		ColorPrimaries: "bt2020",
		ColorTransfer:  "smpte2084",
		SideData: []ffprobe.SideData{
			{
				Type:         ffprobe.SideDataMasteringDisplay,
				RedX:         rational(t, "35400/50000"),
				RedY:         rational(t, "14600/50000"),
				GreenX:       rational(t, "8500/50000"),
				GreenY:       rational(t, "39850/50000"),
				BlueX:        rational(t, "6550/50000"),
				BlueY:        rational(t, "2300/50000"),
				WhitePointX:  rational(t, "15635/50000"),
				WhitePointY:  rational(t, "16450/50000"),
				MinLuminance: rational(t, "50/10000"),
				MaxLuminance: rational(t, "10000000/10000"),
			},
			{Type: ffprobe.SideDataContentLight, MaxContent: 1000, MaxAverage: 400},
		},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		video *streams.Record
		want  bool
	}{
		{"nil video", nil, false},
		{"absent colour space", &streams.Record{}, false},
		{"bt709", &streams.Record{ColorSpace: "bt709"}, false},
		{"bt2020 constant luminance", &streams.Record{ColorSpace: "bt2020c"}, false},
		{"bt2020nc", &streams.Record{ColorSpace: "bt2020nc"}, true},
		{"case and whitespace", &streams.Record{ColorSpace: " BT2020NC "}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.video); got != tt.want {
				t.Fatalf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractAndFormatFullMetadata(t *testing.T) {
	meta := Extract(hdrFrame(t))
	if meta.MasteringDisplay == nil || meta.ContentLight == nil {
		t.Fatalf("expected side data blocks, got %+v", meta)
	}
	params, err := FormatParams(meta)
	if err != nil {
		t.Fatalf("FormatParams: %v", err)
	}
	want := "hdr-opt=1:repeat-headers=1:colorprim=bt2020:transfer=smpte2084:colormatrix=bt2020nc" +
		":master-display=G(8500,39850)B(6550,2300)R(35400,14600)WP(15635,16450)L(10000000,50)" +
		":max-cll=1000,400"
	if params.X265Params != want {
		t.Fatalf("unexpected params:\n got %s\nwant %s", params.X265Params, want)
	}
	if params.PixFmt != "yuv420p10le" {
		t.Fatalf("unexpected pix fmt %q", params.PixFmt)
	}
	if !slices.Equal(params.Args(), []string{"-x265-params", want, "-pix_fmt", "yuv420p10le"}) {
		t.Fatalf("unexpected args %v", params.Args())
	}
}

func TestFormatRescalesOtherDenominators(t *testing.T) {
	meta := Metadata{
		Primaries: "bt2020", Transfer: "smpte2084", Matrix: "bt2020nc",
		MasteringDisplay: &MasteringDisplay{
			Red:          Point{X: rational(t, "708/1000"), Y: rational(t, "292/1000")},
			Green:        Point{X: rational(t, "170/1000"), Y: rational(t, "797/1000")},
			Blue:         Point{X: rational(t, "131/1000"), Y: rational(t, "46/1000")},
			WhitePoint:   Point{X: rational(t, "3127/10000"), Y: rational(t, "3290/10000")},
			MinLuminance: rational(t, "1/1000"),
			MaxLuminance: rational(t, "4000"),
		},
	}
	params, err := FormatParams(meta)
	if err != nil {
		t.Fatalf("FormatParams: %v", err)
	}
	want := "hdr-opt=1:repeat-headers=1:colorprim=bt2020:transfer=smpte2084:colormatrix=bt2020nc" +
		":master-display=G(8500,39850)B(6550,2300)R(35400,14600)WP(15635,16450)L(40000000,10)"
	if params.X265Params != want {
		t.Fatalf("unexpected params:\n got %s\nwant %s", params.X265Params, want)
	}
}

func TestFormatWithoutSideData(t *testing.T) {
	frame := hdrFrame(t)
	frame.SideData = nil
	meta := Extract(frame)
	if meta.MasteringDisplay != nil || meta.ContentLight != nil {
		t.Fatalf("expected no side data, got %+v", meta)
	}
	params, err := FormatParams(meta)
	if err != nil {
		t.Fatalf("FormatParams: %v", err)
	}
	if params.X265Params != "hdr-opt=1:repeat-headers=1:colorprim=bt2020:transfer=smpte2084:colormatrix=bt2020nc" {
		t.Fatalf("unexpected params %q", params.X265Params)
	}
}

func TestFormatOmitsPartialMasteringDisplay(t *testing.T) {
	meta := Extract(hdrFrame(t))
	meta.MasteringDisplay.WhitePoint.Y = ffprobe.Rational{}
	params, err := FormatParams(meta)
	if err != nil {
		t.Fatalf("FormatParams: %v", err)
	}
	if want := "hdr-opt=1:repeat-headers=1:colorprim=bt2020:transfer=smpte2084:colormatrix=bt2020nc:max-cll=1000,400"; params.X265Params != want {
		t.Fatalf("unexpected params %q", params.X265Params)
	}
}

func TestFormatIncompleteMetadata(t *testing.T) {
	for _, meta := range []Metadata{
		{},
		{Primaries: "bt2020", Transfer: "smpte2084"},
		{Primaries: "bt2020", Matrix: "bt2020nc"},
		{Transfer: "smpte2084", Matrix: "bt2020nc"},
	} {
		_, err := FormatParams(meta)
		if !errors.Is(err, ErrIncomplete) {
			t.Fatalf("expected ErrIncomplete for %+v, got %v", meta, err)
		}
		if !errors.Is(err, services.ErrIncompleteHDR) {
			t.Fatalf("expected services marker for %+v", meta)
		}
	}
}
