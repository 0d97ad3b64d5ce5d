package gallra

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// ListSubfolders lists the visible directories directly inside folder, sorted case-insensitively.
func ListSubfolders(folder string) ([]FolderNode, error) {
	des, err := readDir(folder)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}

	nodes := []FolderNode{}
	for _, de := range des {
		name := de.Name()
		if !de.IsDir() || hidden(name) {
			continue
		}
		path := filepath.Join(folder, name)
		nodes = append(nodes, FolderNode{
			Name:        name,
			Path:        path,
			HasChildren: hasChildren(path),
		})
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		return strings.ToLower(nodes[i].Name) < strings.ToLower(nodes[j].Name)
	})
	return nodes, nil
}

// hasChildren reports whether dir holds a visible subdirectory or a photo.
// Unreadable directories are reported as empty.
func hasChildren(dir string) bool {
	des, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		klog.V(1).Infof("unable to probe %s: %v", dir, err)
		return false
	}

	for _, de := range des {
		name := de.Name()
		if de.IsDir() {
			if !hidden(name) {
				return true
			}
			continue
		}
		if IsImage(name) {
			return true
		}
	}
	return false
}
