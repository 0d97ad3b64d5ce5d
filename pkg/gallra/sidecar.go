package gallra

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/otiai10/copy"
	"k8s.io/klog/v2"
)

// SidecarName is the per-folder metadata file.
var SidecarName = ".photo_meta.json"

const (
	sidecarVersion = 1
	maxRating      = 5
)

// PhotoTag is the user annotation for a single photo.
type PhotoTag struct {
	Rating   int    `json:"rating"`
	Label    string `json:"label"`
	Flagged  bool   `json:"flagged"`
	Rejected bool   `json:"rejected"`
}

// FolderSidecar is the contents of a folder's sidecar, keyed by bare filename.
type FolderSidecar struct {
	Version int                 `json:"version"`
	Photos  map[string]PhotoTag `json:"photos"`
}

// NewFolderSidecar returns an empty sidecar.
func NewFolderSidecar() *FolderSidecar {
	return &FolderSidecar{Version: sidecarVersion, Photos: map[string]PhotoTag{}}
}

// SidecarPath returns the location of the sidecar for folder.
func SidecarPath(folder string) string {
	return filepath.Join(folder, SidecarName)
}

// DecodeSidecar decodes a sidecar document, applying defaults for missing fields.
func DecodeSidecar(bs []byte) (*FolderSidecar, error) {
	sc := &FolderSidecar{Version: sidecarVersion}
	if err := json.Unmarshal(bs, sc); err != nil {
		return nil, err
	}
	if sc.Photos == nil {
		sc.Photos = map[string]PhotoTag{}
	}
	return sc, nil
}

func encodeSidecar(sc *FolderSidecar) ([]byte, error) {
	out := *sc
	if out.Photos == nil {
		out.Photos = map[string]PhotoTag{}
	}
	return json.MarshalIndent(out, "", "  ")
}

// LoadSidecar loads the sidecar for folder, returning an empty one if it is missing, unreadable, or corrupt.
func LoadSidecar(folder string) *FolderSidecar {
	p := SidecarPath(folder)
	bs, err := os.ReadFile(p)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			klog.Warningf("unable to read %s, using defaults: %v", p, err)
		}
		return NewFolderSidecar()
	}

	sc, err := DecodeSidecar(bs)
	if err != nil {
		klog.Warningf("corrupt sidecar %s, using defaults: %v", p, err)
		return NewFolderSidecar()
	}
	return sc
}

// LoadSidecarStrict loads the sidecar for folder. A missing sidecar is empty; a malformed one returns a *ParseError.
func LoadSidecarStrict(folder string) (*FolderSidecar, error) {
	p := SidecarPath(folder)
	bs, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return NewFolderSidecar(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	sc, err := DecodeSidecar(bs)
	if err != nil {
		return nil, &ParseError{Path: p, Err: err}
	}
	return sc, nil
}

// ValidateSidecar checks that keys are bare filenames and ratings are within 0-5.
func ValidateSidecar(sc *FolderSidecar) error {
	if sc == nil {
		return fmt.Errorf("%w: nil sidecar", ErrInvalid)
	}
	for name, t := range sc.Photos {
		if err := checkName(name); err != nil {
			return fmt.Errorf("photo key %q: %w", name, err)
		}
		if t.Rating < 0 || t.Rating > maxRating {
			return fmt.Errorf("%w: rating %d for %q is outside 0-%d", ErrInvalid, t.Rating, name, maxRating)
		}
	}
	return nil
}

// SaveSidecar atomically writes sc as the sidecar for folder.
func SaveSidecar(folder string, sc *FolderSidecar) error {
	if err := ValidateSidecar(sc); err != nil {
		return err
	}
	return writeSidecar(folder, sc)
}

func writeSidecar(folder string, sc *FolderSidecar) error {
	bs, err := encodeSidecar(sc)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	p := SidecarPath(folder)
	preserveCorrupt(p)

	klog.V(1).Infof("saving %d photo tags to %s", len(sc.Photos), p)
	if err := WriteFile(p, bs, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

// preserveCorrupt copies an unparseable sidecar aside before it is overwritten.
func preserveCorrupt(p string) {
	bs, err := os.ReadFile(p)
	if err != nil {
		return
	}
	if _, err := DecodeSidecar(bs); err == nil {
		return
	}

	bak := p + ".bak"
	klog.Warningf("%s is corrupt, preserving it as %s", p, bak)
	if err := copy.Copy(p, bak); err != nil {
		klog.Errorf("unable to preserve %s: %v", p, err)
	}
}

// RekeySidecar moves the tag for oldName to newName. It is a no-op if oldName has no tag.
func RekeySidecar(folder string, oldName string, newName string) error {
	return retag(folder, oldName, newName, false)
}

// CopyTag duplicates the tag for oldName under newName, keeping the original.
// It is a no-op if oldName has no tag.
func CopyTag(folder string, oldName string, newName string) error {
	return retag(folder, oldName, newName, true)
}

func retag(folder string, oldName string, newName string, keep bool) error {
	if err := checkName(newName); err != nil {
		return err
	}

	sc := LoadSidecar(folder)
	t, ok := sc.Photos[oldName]
	if !ok {
		klog.V(1).Infof("no tag for %q in %s, nothing to rekey", oldName, folder)
		return nil
	}

	if !keep {
		delete(sc.Photos, oldName)
	}
	sc.Photos[newName] = t
	return writeSidecar(folder, sc)
}

// DropTag removes the tag for name. It is a no-op if name has no tag.
func DropTag(folder string, name string) error {
	sc := LoadSidecar(folder)
	if _, ok := sc.Photos[name]; !ok {
		return nil
	}
	delete(sc.Photos, name)
	return writeSidecar(folder, sc)
}

// checkName rejects anything that is not a bare filename.
func checkName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q is not a filename", ErrInvalid, name)
	case strings.ContainsAny(name, `/\`), filepath.Base(name) != name:
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalid, name)
	}
	return nil
}
