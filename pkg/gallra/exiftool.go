package gallra

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/barasher/go-exiftool"
	"k8s.io/klog/v2"
)

var numberRe = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)

// ExifToolExtractor reads EXIF through a long-running exiftool process.
// It reaches formats the native parser cannot, such as HEIC and camera RAW.
type ExifToolExtractor struct {
	mu sync.Mutex
	et *exiftool.Exiftool
}

// NewExifToolExtractor starts exiftool.
func NewExifToolExtractor() (*ExifToolExtractor, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("exiftool: %w", err)
	}
	return &ExifToolExtractor{et: et}, nil
}

// Close stops exiftool.
func (e *ExifToolExtractor) Close() error {
	return e.et.Close()
}

// Extract reads the EXIF of the file at path.
func (e *ExifToolExtractor) Extract(path string) (*ExifRecord, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}

	e.mu.Lock()
	fis := e.et.ExtractMetadata(path)
	e.mu.Unlock()

	fi := fis[0]
	if fi.Err != nil {
		klog.V(1).Infof("no metadata in %s: %v", path, fi.Err)
		return &ExifRecord{}, nil
	}

	for k, v := range fi.Fields {
		klog.V(2).Infof("%q=%v", k, v)
	}

	r := &ExifRecord{}

	if ds, err := fi.GetString("DateTimeOriginal"); err == nil {
		r.DateTaken = ptr(formatDate(ds))
	} else if ds, err := fi.GetString("ModifyDate"); err == nil {
		r.DateTaken = ptr(formatDate(ds))
	}

	r.CameraMake = toolString(fi, "Make")
	r.CameraModel = toolString(fi, "Model")
	r.ISO = toolInt(fi, "ISO")

	if v, err := fi.GetFloat("FNumber"); err == nil {
		r.Aperture = ptr(FormatAperture(v))
	}

	if s, err := fi.GetString("ExposureTime"); err == nil {
		if v, ok := parseExposure(s); ok {
			r.ShutterSpeed = ptr(FormatExposure(v))
		}
	}

	if s, err := fi.GetString("FocalLength"); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), " mm"), 64); err == nil {
			r.FocalLength = ptr(FormatFocalLength(v))
		}
	}

	r.GPSLat = toolGPS(fi, "GPSLatitude", "GPSLatitudeRef")
	r.GPSLon = toolGPS(fi, "GPSLongitude", "GPSLongitudeRef")
	r.Width = toolInt(fi, "ExifImageWidth")
	r.Height = toolInt(fi, "ExifImageHeight")

	return r, nil
}

func toolString(fi exiftool.FileMetadata, k string) *string {
	s, err := fi.GetString(k)
	if err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func toolInt(fi exiftool.FileMetadata, k string) *int {
	v, err := fi.GetInt(k)
	if err != nil {
		return nil
	}
	return ptr(int(v))
}

// parseExposure accepts "1/250" or "2".
func parseExposure(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if n, d, ok := strings.Cut(s, "/"); ok {
		nv, err1 := strconv.ParseFloat(n, 64)
		dv, err2 := strconv.ParseFloat(d, 64)
		if err1 != nil || err2 != nil || dv == 0 {
			return 0, false
		}
		return nv / dv, true
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// toolGPS parses exiftool's `40 deg 26' 46.00"` notation.
func toolGPS(fi exiftool.FileMetadata, coord string, ref string) *float64 {
	cs, err := fi.GetString(coord)
	if err != nil {
		return nil
	}
	rs, err := fi.GetString(ref)
	if err != nil {
		return nil
	}

	parts := numberRe.FindAllString(cs, -1)
	if len(parts) < 3 {
		return nil
	}

	var dms [3]float64
	for i := range dms {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return nil
		}
		dms[i] = v
	}
	return ptr(DMSToDecimal(dms[0], dms[1], dms[2], rs))
}
