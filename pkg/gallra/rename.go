package gallra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"
)

// Rename renames a photo within folder and moves its tag to the new name.
//
// The tag is first copied to newName, then the file is renamed, then the
// oldName key is dropped. If interrupted, the sidecar holds the tag under both
// names and whichever name has no file is reported by Dangling, so pruning it
// keeps the tag of the surviving file.
func Rename(folder string, oldName string, newName string) error {
	for _, n := range []string{oldName, newName} {
		if err := checkName(n); err != nil {
			return err
		}
		if n == SidecarName {
			return fmt.Errorf("%w: %q is reserved", ErrInvalid, n)
		}
	}

	oldPath := filepath.Join(folder, oldName)
	newPath := filepath.Join(folder, newName)

	if _, err := os.Lstat(oldPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, oldName)
		}
		return fmt.Errorf("stat: %w", err)
	}

	if _, err := os.Lstat(newPath); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, newName)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat: %w", err)
	}

	prev := LoadSidecar(folder)
	_, tagged := prev.Photos[oldName]
	if tagged {
		if err := CopyTag(folder, oldName, newName); err != nil {
			return fmt.Errorf("copy tag: %w", err)
		}
	}

	klog.Infof("renaming %s -> %s in %s", oldName, newName, folder)
	if err := os.Rename(oldPath, newPath); err != nil {
		if tagged {
			if rerr := writeSidecar(folder, prev); rerr != nil {
				klog.Errorf("unable to restore sidecar in %s: %v", folder, rerr)
			}
		}
		return fmt.Errorf("rename: %w", err)
	}

	if tagged {
		if err := DropTag(folder, oldName); err != nil {
			klog.Warningf("%s renamed, but its old tag remains in %s: %v", newName, folder, err)
		}
	}
	return nil
}
