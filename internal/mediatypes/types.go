package mediatypes

import (
	"path/filepath"
	"strings"
)

// FileType represents the type of a media file.
type FileType string

const (
	// FileTypeImage represents an image file.
	FileTypeImage FileType = "image"
	// FileTypeVideo represents a video file.
	FileTypeVideo FileType = "video"
	// FileTypeAudio represents an audio file.
	FileTypeAudio FileType = "audio"
	// FileTypeOther represents an unknown or unsupported file type.
	FileTypeOther FileType = "other"
)

// ImageExtensions maps file extensions to whether they are decodable image formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".ts":   true,
}

// AudioExtensions maps file extensions to whether they are supported audio formats.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".ogg":  true,
	".oga":  true,
	".aac":  true,
	".m4a":  true,
	".flac": true,
	".opus": true,
	".wma":  true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",

	// Videos
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",

	// Audio
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".aac":  "audio/aac",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
	".opus": "audio/opus",
	".wma":  "audio/x-ms-wma",
}

// Ext returns the lowercase extension of name including the leading dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// GetFileType returns the FileType for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".mp4").
// Returns FileTypeOther if the extension is not recognized.
func GetFileType(ext string) FileType {
	if VideoExtensions[ext] {
		return FileTypeVideo
	}
	if ImageExtensions[ext] {
		return FileTypeImage
	}
	if AudioExtensions[ext] {
		return FileTypeAudio
	}
	return FileTypeOther
}

// GetMimeType returns the MIME type for a given file extension.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// StagedExtension returns the extension a staged copy of an upload named
// originalName should carry: its own extension when it is a known video
// container, ".bin" otherwise. The engine probes content, so the extension
// is only a hint for humans inspecting the scratch directory.
func StagedExtension(originalName string) string {
	ext := Ext(originalName)
	if VideoExtensions[ext] {
		return ext
	}
	return ".bin"
}
