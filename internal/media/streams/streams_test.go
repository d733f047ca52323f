package streams

import (
	"errors"
	"slices"
	"testing"

	"recoder/internal/media/ffprobe"
	"recoder/internal/services"
)

func TestPartitionAssignsContiguousOrdinalsPerKind(t *testing.T) {
	raw := []ffprobe.Stream{
		{Index: 0, CodecType: "video", CodecName: "h264"},
		{Index: 1, CodecType: "audio", Tags: map[string]string{"language": "eng"}, Channels: 6},
		{Index: 2, CodecType: "subtitle", Tags: map[string]string{"language": "eng"}},
		{Index: 3, CodecType: "audio", Tags: map[string]string{"language": "jpn"}, Channels: 2},
		{Index: 4, CodecType: "data"},
		{Index: 5, CodecType: "subtitle", Tags: map[string]string{"language": "fre"}},
		{Index: 6, CodecType: "audio"},
		{Index: 7, CodecType: "attachment"},
	}
	catalog := Partition(raw)

	if !catalog.HasVideo() || catalog.Video.Ordinal != 0 || catalog.Video.Index != 0 {
		t.Fatalf("unexpected video: %+v", catalog.Video)
	}
	if len(catalog.Audio) != 3 || len(catalog.Subtitle) != 2 {
		t.Fatalf("unexpected counts: audio=%d subtitle=%d", len(catalog.Audio), len(catalog.Subtitle))
	}
	for i, record := range catalog.Audio {
		if record.Ordinal != i || record.Kind != KindAudio {
			t.Fatalf("audio %d has ordinal %d kind %s", i, record.Ordinal, record.Kind)
		}
	}
	for i, record := range catalog.Subtitle {
		if record.Ordinal != i || record.Kind != KindSubtitle {
			t.Fatalf("subtitle %d has ordinal %d kind %s", i, record.Ordinal, record.Kind)
		}
	}
	if catalog.Audio[1].Index != 3 || catalog.Audio[1].Language != "jpn" {
		t.Fatalf("unexpected second audio: %+v", catalog.Audio[1])
	}
	if catalog.Subtitle[1].Language != "fra" {
		t.Fatalf("expected normalized subtitle language, got %q", catalog.Subtitle[1].Language)
	}
	if catalog.Audio[2].Language != "" || catalog.Audio[2].Channels != 0 {
		t.Fatalf("expected absent metadata, got %+v", catalog.Audio[2])
	}
}

func TestPartitionSkipsCoverArtForPrimaryVideo(t *testing.T) {
	raw := []ffprobe.Stream{
		{Index: 0, CodecType: "video", CodecName: "mjpeg", Disposition: map[string]int{"attached_pic": 1}},
		{Index: 1, CodecType: "video", CodecName: "hevc", ColorSpace: "bt2020nc"},
	}
	catalog := Partition(raw)
	if catalog.Video == nil {
		t.Fatal("expected primary video")
	}
	if catalog.Video.Index != 1 || catalog.Video.Ordinal != 1 {
		t.Fatalf("expected second video stream with ordinal 1, got %+v", catalog.Video)
	}
	if catalog.Video.ColorSpace != "bt2020nc" {
		t.Fatalf("unexpected color space %q", catalog.Video.ColorSpace)
	}
}

func TestPartitionEmpty(t *testing.T) {
	catalog := Partition(nil)
	if catalog.HasVideo() || len(catalog.Audio) != 0 || len(catalog.Subtitle) != 0 {
		t.Fatalf("expected empty catalog, got %+v", catalog)
	}
}

func TestPartitionDerivesChannelsFromLayout(t *testing.T) {
	tests := []struct {
		layout string
		want   int
	}{
		{"5.1(side)", 6},
		{"7.1", 8},
		{"stereo", 2},
		{"mono", 1},
		{"", 0},
		{"quad", 0},
	}
	for _, tt := range tests {
		catalog := Partition([]ffprobe.Stream{{CodecType: "audio", ChannelLayout: tt.layout}})
		if got := catalog.Audio[0].Channels; got != tt.want {
			t.Fatalf("layout %q: got %d channels, want %d", tt.layout, got, tt.want)
		}
	}
}

func TestParseMissingFieldsBecomeAbsent(t *testing.T) {
	data := []byte(`{"streams":[
		{"index":0,"codec_type":"video"},
		{"index":1,"codec_type":"audio"},
		{"index":2,"codec_type":"subtitle","tags":{"title":"Signs"}}
	]}`)
	catalog, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if catalog.Video.ColorSpace != "" {
		t.Fatalf("expected absent color space, got %q", catalog.Video.ColorSpace)
	}
	if catalog.Audio[0].Language != "" || catalog.Audio[0].Channels != 0 {
		t.Fatalf("expected absent audio metadata, got %+v", catalog.Audio[0])
	}
	if catalog.Subtitle[0].Title != "Signs" {
		t.Fatalf("expected title, got %q", catalog.Subtitle[0].Title)
	}
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`not json`))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrProbe) {
		t.Fatalf("expected ErrProbe, got %v", err)
	}
}

func TestRecordSummary(t *testing.T) {
	record := Record{Ordinal: 1, Kind: KindAudio, Codec: "dts", Language: "eng", Channels: 6, Title: "Main"}
	if got := record.Summary(); got != `audio #1 dts eng 6ch "Main"` {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestCatalogRecordsInMapOrder(t *testing.T) {
	catalog := Partition([]ffprobe.Stream{
		{Index: 0, CodecType: "subtitle"},
		{Index: 1, CodecType: "audio"},
		{Index: 2, CodecType: "video"},
		{Index: 3, CodecType: "audio"},
	})
	var kinds []Kind
	for _, record := range catalog.Records() {
		kinds = append(kinds, record.Kind)
	}
	want := []Kind{KindVideo, KindAudio, KindAudio, KindSubtitle}
	if !slices.Equal(kinds, want) {
		t.Fatalf("Records kinds = %v, want %v", kinds, want)
	}
}
