// Package gallra reads and writes photo culling metadata for folders on local disk.
package gallra

import (
	"path/filepath"
	"strings"
)

// Config holds configuration for gallra.
type Config struct {
	// StateDir holds the application state file.
	StateDir string
	// ExifTool reads EXIF through an exiftool process instead of in-process parsing.
	ExifTool bool
}

var supportedExts = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"webp": true,
	"heic": true,
	"heif": true,
	"tiff": true,
	"tif":  true,
	"gif":  true,
	"bmp":  true,
	"avif": true,
}

// IsImage reports whether name carries a supported image extension.
func IsImage(name string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return supportedExts[strings.ToLower(ext)]
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
