package transcoder

import (
	"context"
	"math"
	"testing"

	"clipmerge/internal/testsupport/fakeengine"
)

const sampleProbe = `{
  "streams": [
    {"codec_type": "video", "codec_name": "h264", "width": 640, "height": 360, "avg_frame_rate": "30/1", "r_frame_rate": "30/1"},
    {"codec_type": "audio", "codec_name": "aac"}
  ],
  "format": {"duration": "4.033000"}
}`

func TestParseProbe(t *testing.T) {
	info, err := parseProbe([]byte(sampleProbe))
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}

	if info.Width != 640 || info.Height != 360 {
		t.Errorf("Expected 640x360, got %dx%d", info.Width, info.Height)
	}
	if info.FrameRate != 30 {
		t.Errorf("Expected FrameRate=30, got %f", info.FrameRate)
	}
	if info.VideoCodec != "h264" || info.AudioCodec != "aac" {
		t.Errorf("Unexpected codecs %s/%s", info.VideoCodec, info.AudioCodec)
	}
	if math.Abs(info.Duration-4.033) > 0.0001 {
		t.Errorf("Expected Duration=4.033, got %f", info.Duration)
	}
}

func TestParseProbeInvalid(t *testing.T) {
	if _, err := parseProbe([]byte("not json")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 30000.0 / 1001.0},
		{"25", 25},
		{"0/0", 0},
		{"", 0},
		{"abc/1", 0},
	}

	for _, tt := range tests {
		if got := parseRate(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("parseRate(%q) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestProbeWithFakeEngine(t *testing.T) {
	dir := t.TempDir()
	ffprobe := fakeengine.WriteProbe(t, dir, sampleProbe)
	r := New(Config{FFprobePath: ffprobe})

	info, err := r.Probe(context.Background(), "/any/file.mp4")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if info.Width != 640 {
		t.Errorf("Expected Width=640, got %d", info.Width)
	}
}

func TestTailBufferKeepsLastBytes(t *testing.T) {
	b := newTailBuffer(8)
	b.Write([]byte("0123456789"))
	b.Write([]byte("ab"))

	if got := b.String(); got != "456789ab" {
		t.Errorf("tailBuffer = %q, want %q", got, "456789ab")
	}
}
