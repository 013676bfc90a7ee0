package mediatypes

import "testing"

func TestGetFileType(t *testing.T) {
	tests := []struct {
		ext  string
		want FileType
	}{
		{".mp4", FileTypeVideo},
		{".mov", FileTypeVideo},
		{".webm", FileTypeVideo},
		{".jpg", FileTypeImage},
		{".webp", FileTypeImage},
		{".mp3", FileTypeAudio},
		{".flac", FileTypeAudio},
		{".txt", FileTypeOther},
		{"", FileTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := GetFileType(tt.ext); got != tt.want {
				t.Errorf("GetFileType(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestGetMimeType(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".mp4", "video/mp4"},
		{".png", "image/png"},
		{".mp3", "audio/mpeg"},
		{".xyz", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := GetMimeType(tt.ext); got != tt.want {
			t.Errorf("GetMimeType(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestExt(t *testing.T) {
	tests := map[string]string{
		"Clip.MP4":          ".mp4",
		"holiday.final.MoV": ".mov",
		"noext":             "",
		"dir.d/file":        "",
	}
	for in, want := range tests {
		if got := Ext(in); got != want {
			t.Errorf("Ext(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStagedExtension(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"clip.mp4", ".mp4"},
		{"CLIP.MKV", ".mkv"},
		{"../../etc/passwd", ".bin"},
		{"notes.txt", ".bin"},
		{"", ".bin"},
	}

	for _, tt := range tests {
		if got := StagedExtension(tt.name); got != tt.want {
			t.Errorf("StagedExtension(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestMimeTypesCoverExtensions(t *testing.T) {
	for _, set := range []map[string]bool{ImageExtensions, VideoExtensions, AudioExtensions} {
		for ext := range set {
			if _, ok := MimeTypes[ext]; !ok {
				t.Errorf("Missing MIME type for %s", ext)
			}
		}
	}
}
