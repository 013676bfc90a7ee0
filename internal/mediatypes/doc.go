// Package mediatypes provides extension and MIME tables for the video, image
// and audio files the service accepts.
//
// It has no dependencies beyond the standard library so that any package can
// import it without creating cycles.
//
//	ext := mediatypes.Ext(header.Filename)
//	if mediatypes.GetFileType(ext) == mediatypes.FileTypeVideo {
//	    // accepted merge input
//	}
//
// StagedExtension picks the extension of a staged upload; client filenames
// never contribute anything else to a path.
package mediatypes
