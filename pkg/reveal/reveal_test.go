package reveal

import (
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestRevealMissing(t *testing.T) {
	c := &Command{Name: "true"}
	err := c.Reveal(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Reveal() = %v, want ErrNotFound", err)
	}
}

func TestRevealStartsLauncher(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true is not available")
	}
	c := &Command{Name: "true"}
	if err := c.Reveal(t.TempDir()); err != nil {
		t.Fatalf("Reveal() = %v", err)
	}
}

func TestRevealBadLauncher(t *testing.T) {
	c := &Command{Name: "gallra-no-such-launcher"}
	if err := c.Reveal(t.TempDir()); err == nil {
		t.Fatalf("Reveal() succeeded with a missing launcher")
	}
}
