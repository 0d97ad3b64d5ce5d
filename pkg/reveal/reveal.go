// Package reveal shows a path in the platform's file manager.
package reveal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"

	"k8s.io/klog/v2"
)

// Revealer shows a file or folder to the user.
type Revealer interface {
	Reveal(path string) error
}

// ErrNotFound is returned when the path to reveal does not exist.
var ErrNotFound = errors.New("not found")

// Command reveals a path by launching Name with the path as its last argument.
type Command struct {
	Name string
	Args []string
}

// New returns the Revealer for the running platform.
func New() Revealer {
	return &Command{Name: launcher, Args: launcherArgs}
}

// Reveal starts the launcher without waiting for it to exit.
func (c *Command) Reveal(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("stat: %w", err)
	}

	args := append(append([]string{}, c.Args...), path)
	cmd := exec.Command(c.Name, args...)
	klog.Infof("revealing %s: %s", path, cmd)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.Name, err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			klog.Warningf("%s exited: %v", c.Name, err)
		}
	}()
	return nil
}
