package gallra

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"k8s.io/klog/v2"
)

// StateFile is the application state file name within Config.StateDir.
var StateFile = "data.json"

// AppState is the application-wide list of workspaces.
type AppState struct {
	Workspaces      []string `json:"workspaces"`
	ActiveWorkspace *string  `json:"active_workspace"`
}

// AddWorkspace appends path if absent, activating it when nothing is active.
func (s *AppState) AddWorkspace(path string) {
	if !slices.Contains(s.Workspaces, path) {
		s.Workspaces = append(s.Workspaces, path)
	}
	if s.ActiveWorkspace == nil {
		s.ActiveWorkspace = ptr(path)
	}
}

// RemoveWorkspace drops path. If it was active, the first remaining workspace becomes active.
func (s *AppState) RemoveWorkspace(path string) {
	s.Workspaces = slices.DeleteFunc(s.Workspaces, func(w string) bool { return w == path })
	if s.ActiveWorkspace == nil || *s.ActiveWorkspace != path {
		return
	}
	s.ActiveWorkspace = nil
	if len(s.Workspaces) > 0 {
		s.ActiveWorkspace = ptr(s.Workspaces[0])
	}
}

// StatePath returns the application state file location for c.
func StatePath(c *Config) string {
	return filepath.Join(c.StateDir, StateFile)
}

// DefaultStateDir returns the per-user directory for application state.
func DefaultStateDir() (string, error) {
	d, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(d, "gallra"), nil
}

// LoadAppState loads the application state. A missing file yields an empty state.
func LoadAppState(c *Config) (*AppState, error) {
	p := StatePath(c)
	bs, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		klog.V(1).Infof("%s does not exist, starting fresh", p)
		return &AppState{Workspaces: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	s := &AppState{}
	if err := json.Unmarshal(bs, s); err != nil {
		return nil, &ParseError{Path: p, Err: err}
	}
	if s.Workspaces == nil {
		s.Workspaces = []string{}
	}
	return s, nil
}

// SaveAppState atomically writes the application state, creating Config.StateDir if needed.
func SaveAppState(c *Config, s *AppState) error {
	if s == nil {
		return fmt.Errorf("%w: nil state", ErrInvalid)
	}

	out := *s
	if out.Workspaces == nil {
		out.Workspaces = []string{}
	}

	bs, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	if err := os.MkdirAll(c.StateDir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	p := StatePath(c)
	klog.V(1).Infof("saving %d workspaces to %s", len(out.Workspaces), p)
	if err := WriteFile(p, bs, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}
