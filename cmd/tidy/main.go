// tidy recovers photo folders after interrupted writes and renames
package main

import (
	"errors"
	"flag"

	"k8s.io/klog/v2"

	"github.com/tstromberg/gallra/pkg/gallra"
)

var (
	dryRun   = flag.Bool("n", false, "dry-run mode, don't change anything")
	prune    = flag.Bool("prune", false, "drop tags for photos that no longer exist")
	stateDir = flag.String("state-dir", "", "Location of application state (default: user config dir)")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	c := &gallra.Config{StateDir: *stateDir}
	if c.StateDir == "" {
		d, err := gallra.DefaultStateDir()
		if err != nil {
			klog.Exitf("state dir: %v", err)
		}
		c.StateDir = d
	}

	if _, err := gallra.RemoveOrphans(gallra.StatePath(c), *dryRun); err != nil && !errors.Is(err, gallra.ErrNotFound) {
		klog.Warningf("state dir: %v", err)
	}

	dirs := flag.Args()
	if len(dirs) == 0 {
		st, err := gallra.LoadAppState(c)
		if err != nil {
			klog.Exitf("load state: %v", err)
		}
		dirs = st.Workspaces
	}

	if len(dirs) == 0 {
		klog.Infof("no workspaces to tidy")
		return
	}

	for _, d := range dirs {
		rep, err := gallra.Sweep(d, *dryRun, *prune)
		if err != nil {
			klog.Errorf("sweep %s: %v", d, err)
			continue
		}

		klog.Infof("%s: %d folders, %d orphaned temp files, %d folders with dangling tags, %d corrupt sidecars",
			d, rep.Folders, len(rep.Removed), len(rep.Dangling), len(rep.Corrupt))
		for f, names := range rep.Dangling {
			klog.Infof("%s: dangling tags %v (pruned=%v)", f, names, *prune && !*dryRun)
		}
	}
}
