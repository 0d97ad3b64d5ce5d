package gallra

import (
	"errors"
	"math"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/barasher/go-exiftool"
)

func TestParseExposure(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1/250", 0.004, true},
		{" 2 ", 2, true},
		{"0.5", 0.5, true},
		{"1/0", 0, false},
		{"fast", 0, false},
	}
	for _, tc := range tests {
		got, ok := parseExposure(tc.in)
		if ok != tc.ok || math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("parseExposure(%q) = %v, %v, want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestToolFields(t *testing.T) {
	fi := exiftool.FileMetadata{Fields: map[string]interface{}{
		"Make":            "  ",
		"Model":           "X100V",
		"ISO":             float64(400),
		"GPSLatitude":     `40 deg 26' 46.00"`,
		"GPSLatitudeRef":  "South",
		"GPSLongitude":    `79 deg 58'`,
		"GPSLongitudeRef": "West",
	}}

	if got := toolString(fi, "Make"); got != nil {
		t.Errorf("toolString(Make) = %q, want nil", *got)
	}
	if got := toolString(fi, "Model"); got == nil || *got != "X100V" {
		t.Errorf("toolString(Model) = %v, want X100V", got)
	}
	if got := toolInt(fi, "ISO"); got == nil || *got != 400 {
		t.Errorf("toolInt(ISO) = %v, want 400", got)
	}
	if got := toolInt(fi, "Missing"); got != nil {
		t.Errorf("toolInt(Missing) = %d, want nil", *got)
	}
	if got := toolGPS(fi, "GPSLatitude", "GPSLatitudeRef"); got == nil || math.Abs(*got+40.446111) > 1e-6 {
		t.Errorf("toolGPS(lat) = %v, want -40.446111", got)
	}
	if got := toolGPS(fi, "GPSLongitude", "GPSLongitudeRef"); got != nil {
		t.Errorf("toolGPS(lon) = %f, want nil for incomplete value", *got)
	}
}

func TestExifToolExtractor(t *testing.T) {
	if _, err := exec.LookPath("exiftool"); err != nil {
		t.Skip("exiftool not installed")
	}

	e, err := NewExifToolExtractor()
	if err != nil {
		t.Fatalf("NewExifToolExtractor() = %v", err)
	}
	defer e.Close()

	dir := t.TempDir()
	if _, err := e.Extract(filepath.Join(dir, "missing.jpg")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Extract(missing) = %v, want ErrNotFound", err)
	}

	p := filepath.Join(dir, "plain.jpg")
	touch(t, dir, "plain.jpg", 16, base)
	r, err := e.Extract(p)
	if err != nil {
		t.Fatalf("Extract(plain) = %v", err)
	}
	if r.CameraMake != nil || r.GPSLat != nil {
		t.Errorf("Extract(plain) = %+v, want no camera or GPS", r)
	}
}
