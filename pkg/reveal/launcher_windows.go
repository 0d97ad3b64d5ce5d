package reveal

var (
	launcher     = "explorer"
	launcherArgs = []string{}
)
