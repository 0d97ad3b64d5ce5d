package reveal

var (
	launcher     = "open"
	launcherArgs = []string{"-R"}
)
