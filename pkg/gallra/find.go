package gallra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// readDir returns the immediate children of dir in name order.
func readDir(dir string) (godirwalk.Dirents, error) {
	des, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}
	sort.Sort(des)
	return des, nil
}

// Scan lists the photos directly inside folder, merged with the folder's sidecar, newest first.
// Photos with equal modification times are ordered by filename.
func Scan(folder string) (*FolderScanResult, error) {
	sc := LoadSidecar(folder)

	des, err := readDir(folder)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", folder, err)
	}

	photos := []PhotoEntry{}
	for _, de := range des {
		name := de.Name()
		if !de.IsRegular() || !IsImage(name) {
			continue
		}

		path := filepath.Join(folder, name)
		e := PhotoEntry{Path: path, Filename: name}

		fi, err := os.Stat(path)
		if err != nil {
			klog.Warningf("stat failure for %s: %v", path, err)
		} else {
			e.Size = fi.Size()
			e.Modified = fi.ModTime().UnixMilli()
		}

		t := sc.Photos[name]
		e.Rating = t.Rating
		e.Label = t.Label
		e.Flagged = t.Flagged
		e.Rejected = t.Rejected

		klog.V(2).Infof("found %+v", e)
		photos = append(photos, e)
	}

	sort.SliceStable(photos, func(i, j int) bool {
		return photos[i].Modified > photos[j].Modified
	})

	klog.V(1).Infof("scanned %s: %d photos, %d tagged", folder, len(photos), len(sc.Photos))
	return &FolderScanResult{Photos: photos, FolderPath: folder}, nil
}
