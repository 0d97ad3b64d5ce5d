package gallra

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

const tmpSuffix = ".tmp"

// tempPath returns a unique sibling of path for staging a write.
func tempPath(path string) string {
	return fmt.Sprintf("%s.%s%s", path, uuid.NewString(), tmpSuffix)
}

// isTempFor reports whether name is a staging file left behind for target.
func isTempFor(name string, target string) bool {
	if !strings.HasPrefix(name, target+".") || !strings.HasSuffix(name, tmpSuffix) {
		return false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, target+"."), tmpSuffix)
	_, err := uuid.Parse(id)
	return err == nil
}

// WriteFile atomically replaces path with data: readers see either the old or the new content.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	tmp := tempPath(path)
	klog.V(2).Infof("staging %d bytes for %s in %s", len(data), path, filepath.Base(tmp))

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		discard(tmp)
		return fmt.Errorf("write temp: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		discard(tmp)
		return fmt.Errorf("sync temp: %w", err)
	}

	if err := f.Close(); err != nil {
		discard(tmp)
		return fmt.Errorf("close temp: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		discard(tmp)
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

func discard(tmp string) {
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		klog.Warningf("unable to remove %s: %v", tmp, err)
	}
}
