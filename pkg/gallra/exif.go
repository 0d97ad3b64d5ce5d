package gallra

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"k8s.io/klog/v2"
)

var exifDate = "2006:01:02 15:04:05"

// DisplayDate is the layout used for ExifRecord.DateTaken.
var DisplayDate = "2006-01-02 15:04:05"

// Extractor reads an ExifRecord from an image file.
// A file without EXIF yields an empty record, not an error.
type Extractor interface {
	Extract(path string) (*ExifRecord, error)
	Close() error
}

// NewExtractor returns the Extractor selected by c.
func NewExtractor(c *Config) (Extractor, error) {
	if c != nil && c.ExifTool {
		return NewExifToolExtractor()
	}
	return NativeExtractor{}, nil
}

// NativeExtractor parses EXIF in-process. It understands JPEG and TIFF containers.
type NativeExtractor struct{}

// Close is a no-op.
func (NativeExtractor) Close() error { return nil }

// Extract reads the EXIF of the file at path.
func (NativeExtractor) Extract(path string) (*ExifRecord, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	tb, err := locateTIFF(f)
	if errors.Is(err, errNoContainer) {
		klog.V(1).Infof("no EXIF in %s", path)
		return &ExifRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if err := checkTIFF(tb); err != nil {
		klog.Warningf("malformed EXIF in %s: %v", path, err)
		return &ExifRecord{}, nil
	}

	x, err := exif.Decode(bytes.NewReader(tb))
	if x == nil {
		klog.V(1).Infof("no EXIF in %s: %v", path, err)
		return &ExifRecord{}, nil
	}
	if err != nil {
		klog.V(1).Infof("partial EXIF in %s: %v", path, err)
	}

	return recordFromExif(x), nil
}

func checkFile(path string) error {
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	if fi.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalid, path)
	}
	return nil
}

func recordFromExif(x *exif.Exif) *ExifRecord {
	r := &ExifRecord{}

	r.DateTaken = dateField(x, exif.DateTimeOriginal)
	if r.DateTaken == nil {
		r.DateTaken = dateField(x, exif.DateTime)
	}

	r.CameraMake = stringField(x, exif.Make)
	r.CameraModel = stringField(x, exif.Model)
	r.ISO = intField(x, exif.ISOSpeedRatings)
	r.Aperture = numberField(x, exif.FNumber, FormatAperture)
	r.ShutterSpeed = numberField(x, exif.ExposureTime, FormatExposure)
	r.FocalLength = numberField(x, exif.FocalLength, FormatFocalLength)
	r.GPSLat = gpsField(x, exif.GPSLatitude, exif.GPSLatitudeRef)
	r.GPSLon = gpsField(x, exif.GPSLongitude, exif.GPSLongitudeRef)
	r.Width = intField(x, exif.PixelXDimension)
	r.Height = intField(x, exif.PixelYDimension)

	return r
}

func stringField(x *exif.Exif, name exif.FieldName) *string {
	t, err := x.Get(name)
	if err != nil {
		return nil
	}
	s, err := t.StringVal()
	if err != nil {
		klog.V(1).Infof("%s is not a string: %v", name, err)
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func dateField(x *exif.Exif, name exif.FieldName) *string {
	s := stringField(x, name)
	if s == nil {
		return nil
	}
	return ptr(formatDate(*s))
}

// formatDate renders an EXIF timestamp for display, passing through anything unparseable.
func formatDate(s string) string {
	t, err := time.Parse(exifDate, s)
	if err != nil {
		return s
	}
	return t.Format(DisplayDate)
}

// intField reads the first value of a SHORT or LONG tag.
func intField(x *exif.Exif, name exif.FieldName) *int {
	t, err := x.Get(name)
	if err != nil || t.Count == 0 {
		return nil
	}
	if t.Type != tiff.DTShort && t.Type != tiff.DTLong {
		return nil
	}
	v, err := t.Int(0)
	if err != nil {
		return nil
	}
	return &v
}

// number reads the first value of a numeric tag as a float.
func number(t *tiff.Tag) (float64, bool) {
	if t.Count == 0 {
		return 0, false
	}
	switch t.Format() {
	case tiff.RatVal:
		n, d, err := t.Rat2(0)
		if err != nil || d == 0 {
			return 0, false
		}
		return float64(n) / float64(d), true
	case tiff.IntVal:
		v, err := t.Int64(0)
		return float64(v), err == nil
	case tiff.FloatVal:
		v, err := t.Float(0)
		return v, err == nil
	}
	return 0, false
}

func numberField(x *exif.Exif, name exif.FieldName, format func(float64) string) *string {
	t, err := x.Get(name)
	if err != nil {
		return nil
	}
	v, ok := number(t)
	if !ok {
		return nil
	}
	return ptr(format(v))
}

// gpsField converts a degrees/minutes/seconds triple plus its hemisphere reference.
func gpsField(x *exif.Exif, coord exif.FieldName, ref exif.FieldName) *float64 {
	ct, err := x.Get(coord)
	if err != nil {
		return nil
	}
	rt, err := x.Get(ref)
	if err != nil {
		return nil
	}
	if ct.Format() != tiff.RatVal || ct.Count < 3 {
		return nil
	}

	var dms [3]float64
	for i := range dms {
		n, d, err := ct.Rat2(i)
		if err != nil || d == 0 {
			return nil
		}
		dms[i] = float64(n) / float64(d)
	}

	hemi, err := rt.StringVal()
	if err != nil {
		hemi = rt.String()
	}

	return ptr(DMSToDecimal(dms[0], dms[1], dms[2], hemi))
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

// FormatAperture renders an f-number, e.g. "f/2.8".
func FormatAperture(v float64) string {
	return "f/" + trimFloat(v)
}

// FormatExposure renders an exposure time in seconds, e.g. "1/250 s" or "2 s".
func FormatExposure(v float64) string {
	if v <= 0 || v >= 1 {
		return trimFloat(v) + " s"
	}
	return fmt.Sprintf("1/%d s", int64(math.Round(1/v)))
}

// FormatFocalLength renders a focal length, e.g. "50 mm".
func FormatFocalLength(v float64) string {
	return trimFloat(v) + " mm"
}

func ptr[T any](v T) *T {
	return &v
}
