//go:build !darwin && !windows

package reveal

var (
	launcher     = "xdg-open"
	launcherArgs = []string{}
)
