package gallra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
}

func TestListSubfolders(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "Zebra", "apple", ".hidden/inner", "Mango/.git", "kiwi/nested")
	touch(t, root, "Zebra/photo.JPG", 1, base)
	touch(t, root, "apple/readme.txt", 1, base)
	touch(t, root, "top.jpg", 1, base)

	got, err := ListSubfolders(root)
	if err != nil {
		t.Fatalf("ListSubfolders() = %v", err)
	}

	want := []FolderNode{
		{Name: "apple", Path: filepath.Join(root, "apple"), HasChildren: false},
		{Name: "kiwi", Path: filepath.Join(root, "kiwi"), HasChildren: true},
		{Name: "Mango", Path: filepath.Join(root, "Mango"), HasChildren: false},
		{Name: "Zebra", Path: filepath.Join(root, "Zebra"), HasChildren: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListSubfolders() mismatch (-want +got):\n%s", diff)
	}
}

func TestListSubfoldersOrder(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "Zebra", "apple", ".hidden")

	got, err := ListSubfolders(root)
	if err != nil {
		t.Fatalf("ListSubfolders() = %v", err)
	}

	names := []string{}
	for _, n := range got {
		names = append(names, n.Name)
	}
	if diff := cmp.Diff([]string{"apple", "Zebra"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestListSubfoldersMissing(t *testing.T) {
	_, err := ListSubfolders(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ListSubfolders() = %v, want ErrNotFound", err)
	}
}

func TestHasChildrenUnreadable(t *testing.T) {
	if hasChildren(filepath.Join(t.TempDir(), "nope")) {
		t.Errorf("hasChildren() of a missing directory = true")
	}
}
