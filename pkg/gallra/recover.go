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

// RemoveOrphans deletes staging files that an interrupted WriteFile left next to target.
func RemoveOrphans(target string, dryRun bool) ([]string, error) {
	dir := filepath.Dir(target)
	base := filepath.Base(target)

	des, err := readDir(dir)
	if err != nil {
		return nil, fmt.Errorf("orphans in %s: %w", dir, err)
	}

	removed := []string{}
	for _, de := range des {
		if !de.IsRegular() || !isTempFor(de.Name(), base) {
			continue
		}
		p := filepath.Join(dir, de.Name())
		klog.Infof("removing orphaned %s (dry-run=%v)", p, dryRun)
		if !dryRun {
			if err := os.Remove(p); err != nil {
				return removed, fmt.Errorf("remove: %w", err)
			}
		}
		removed = append(removed, p)
	}
	return removed, nil
}

// Dangling returns sidecar keys in folder that have no matching file, sorted.
func Dangling(folder string) ([]string, error) {
	sc, err := LoadSidecarStrict(folder)
	if err != nil {
		return nil, err
	}

	names := []string{}
	for name := range sc.Photos {
		_, err := os.Lstat(filepath.Join(folder, name))
		if errors.Is(err, fs.ErrNotExist) {
			names = append(names, name)
		} else if err != nil {
			klog.Warningf("unable to check %s: %v", name, err)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Prune removes the given keys from folder's sidecar.
func Prune(folder string, names []string) error {
	if len(names) == 0 {
		return nil
	}

	sc, err := LoadSidecarStrict(folder)
	if err != nil {
		return err
	}
	for _, n := range names {
		delete(sc.Photos, n)
	}
	klog.Infof("pruning %d tags from %s", len(names), SidecarPath(folder))
	return writeSidecar(folder, sc)
}

// SweepReport summarizes a Sweep.
type SweepReport struct {
	Folders  int
	Removed  []string
	Dangling map[string][]string
	Corrupt  []string
}

// Sweep walks root recursively, removing orphaned sidecar staging files and
// collecting dangling keys. With prune, dangling keys are dropped from their sidecars.
func Sweep(root string, dryRun bool, prune bool) (*SweepReport, error) {
	rep := &SweepReport{Dangling: map[string][]string{}}

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsDir() {
				return nil
			}
			if path != root && hidden(filepath.Base(path)) {
				return godirwalk.SkipThis
			}
			rep.Folders++

			rm, err := RemoveOrphans(SidecarPath(path), dryRun)
			rep.Removed = append(rep.Removed, rm...)
			if err != nil {
				return err
			}

			names, err := Dangling(path)
			var pe *ParseError
			if errors.As(err, &pe) {
				klog.Warningf("skipping corrupt sidecar: %v", err)
				rep.Corrupt = append(rep.Corrupt, pe.Path)
				return nil
			}
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return nil
			}

			rep.Dangling[path] = names
			if prune && !dryRun {
				return Prune(path, names)
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			klog.Warningf("skipping %s: %v", path, err)
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		return rep, fmt.Errorf("walk %s: %w", root, err)
	}
	return rep, nil
}
