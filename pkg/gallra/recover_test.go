package gallra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRemoveOrphans(t *testing.T) {
	dir := t.TempDir()
	target := SidecarPath(dir)
	orphan := tempPath(target)
	touch(t, dir, filepath.Base(orphan), 4, base)
	touch(t, dir, "keep.jpg.tmp", 1, base)
	touch(t, dir, "a.jpg", 1, base)

	got, err := RemoveOrphans(target, true)
	if err != nil {
		t.Fatalf("RemoveOrphans(dry-run) = %v", err)
	}
	if diff := cmp.Diff([]string{orphan}, got); diff != "" {
		t.Errorf("dry-run mismatch (-want +got):\n%s", diff)
	}
	if !exists(t, orphan) {
		t.Fatalf("dry-run removed %s", orphan)
	}

	if _, err := RemoveOrphans(target, false); err != nil {
		t.Fatalf("RemoveOrphans() = %v", err)
	}
	if exists(t, orphan) {
		t.Errorf("%s still exists", orphan)
	}
	if !exists(t, filepath.Join(dir, "keep.jpg.tmp")) {
		t.Errorf("unrelated .tmp file removed")
	}
}

func TestDanglingAndPrune(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "here.jpg", 1, base)
	sc := &FolderSidecar{Version: 1, Photos: map[string]PhotoTag{
		"here.jpg":  {Rating: 1},
		"gone1.jpg": {Rating: 2},
		"gone2.jpg": {Rating: 3},
	}}
	if err := SaveSidecar(dir, sc); err != nil {
		t.Fatalf("SaveSidecar() = %v", err)
	}

	got, err := Dangling(dir)
	if err != nil {
		t.Fatalf("Dangling() = %v", err)
	}
	if diff := cmp.Diff([]string{"gone1.jpg", "gone2.jpg"}, got); diff != "" {
		t.Errorf("Dangling() mismatch (-want +got):\n%s", diff)
	}

	if err := Prune(dir, got); err != nil {
		t.Fatalf("Prune() = %v", err)
	}
	after, err := LoadSidecarStrict(dir)
	if err != nil {
		t.Fatalf("LoadSidecarStrict() = %v", err)
	}
	if diff := cmp.Diff(map[string]PhotoTag{"here.jpg": {Rating: 1}}, after.Photos); diff != "" {
		t.Errorf("after prune (-want +got):\n%s", diff)
	}
}

func TestSweep(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "2024/june", ".trash")

	june := filepath.Join(root, "2024", "june")
	touch(t, june, "a.jpg", 1, base)
	if err := SaveSidecar(june, &FolderSidecar{Version: 1, Photos: map[string]PhotoTag{
		"a.jpg":    {Rating: 5},
		"lost.jpg": {Rating: 1},
	}}); err != nil {
		t.Fatalf("SaveSidecar() = %v", err)
	}

	orphan := tempPath(SidecarPath(root))
	touch(t, root, filepath.Base(orphan), 1, base)

	hiddenOrphan := tempPath(SidecarPath(filepath.Join(root, ".trash")))
	touch(t, root, filepath.Join(".trash", filepath.Base(hiddenOrphan)), 1, base)

	corrupt := filepath.Join(root, "2024")
	putSidecar(t, corrupt, "{")

	rep, err := Sweep(root, false, true)
	if err != nil {
		t.Fatalf("Sweep() = %v", err)
	}

	want := &SweepReport{
		Folders:  3,
		Removed:  []string{orphan},
		Dangling: map[string][]string{june: {"lost.jpg"}},
		Corrupt:  []string{SidecarPath(corrupt)},
	}
	if diff := cmp.Diff(want, rep); diff != "" {
		t.Errorf("Sweep() mismatch (-want +got):\n%s", diff)
	}

	if exists(t, orphan) {
		t.Errorf("orphan %s survived", orphan)
	}
	if !exists(t, hiddenOrphan) {
		t.Errorf("hidden folder was swept")
	}

	sc, err := LoadSidecarStrict(june)
	if err != nil {
		t.Fatalf("LoadSidecarStrict() = %v", err)
	}
	if _, ok := sc.Photos["lost.jpg"]; ok {
		t.Errorf("dangling tag was not pruned")
	}

	bs, err := os.ReadFile(SidecarPath(corrupt))
	if err != nil || string(bs) != "{" {
		t.Errorf("corrupt sidecar changed: %q, %v", bs, err)
	}
}
