// gallra serves photo culling metadata for folders on local disk.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
	"k8s.io/klog/v2"

	"github.com/tstromberg/gallra/pkg/gallra"
	"github.com/tstromberg/gallra/pkg/manage"
	"github.com/tstromberg/gallra/pkg/reveal"
)

var (
	stateDir    = flag.String("state-dir", "", "Location of application state (default: user config dir)")
	useExiftool = flag.Bool("exiftool", false, "read EXIF with exiftool instead of the built-in parser")
	listen      = flag.Bool("listen", false, "serve operations via HTTP")
	addr        = flag.String("addr", "localhost:12801", "host:port to bind to in listen mode")
	rotateFile  = flag.String("log-rotate-file", "", "write logs to this file, rotating it by size")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `usage: %s [flags] <command> [args]

commands:
  scan <dir>                 list photos in dir merged with their tags
  meta <dir>                 print the sidecar for dir
  save-meta <dir>            replace the sidecar for dir with JSON from stdin
  folders <dir>              list subfolders of dir
  exif <file>                print EXIF for file
  rename <dir> <old> <new>   rename a photo and move its tags
  state                      print application state
  save-state                 replace application state with JSON from stdin
  workspace add|remove <dir> edit the workspace list
  reveal <path>              show path in the file manager
  call <op>                  run a raw operation with a JSON request from stdin

flags:
`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage
	flag.Parse()
	defer klog.Flush()

	if *rotateFile != "" {
		lj := &lumberjack.Logger{
			Filename:   *rotateFile,
			MaxSize:    128,
			MaxBackups: 5,
			MaxAge:     16,
		}
		defer lj.Close()
		if err := flag.Set("logtostderr", "false"); err != nil {
			klog.Exitf("logtostderr: %v", err)
		}
		klog.SetOutput(lj)
	}

	c := &gallra.Config{StateDir: *stateDir, ExifTool: *useExiftool}
	if c.StateDir == "" {
		d, err := gallra.DefaultStateDir()
		if err != nil {
			klog.Exitf("state dir: %v", err)
		}
		c.StateDir = d
	}

	ex, err := gallra.NewExtractor(c)
	if err != nil {
		klog.Exitf("extractor: %v", err)
	}
	defer func() {
		if err := ex.Close(); err != nil {
			klog.Errorf("close extractor: %v", err)
		}
	}()

	s := manage.New(c, ex, reveal.New())

	if *listen {
		serve(s, *addr)
		return
	}

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	if flag.Arg(0) == "workspace" {
		if err := workspace(c, flag.Args()[1:]); err != nil {
			klog.Exitf("workspace: %v", err)
		}
		return
	}

	name, body, err := request(flag.Args())
	if err != nil {
		klog.Exitf("%v", err)
	}

	out, err := s.Dispatch(name, body)
	if err != nil {
		kind := manage.Kind(err)
		emit(manage.ErrorResponse{Error: err.Error(), Kind: kind})
		klog.Exitf("%s failed (%s): %v", name, kind, err)
	}
	emit(out)
}

// request translates command-line arguments into an operation and its JSON request.
func request(args []string) (string, []byte, error) {
	cmd, rest := args[0], args[1:]
	want := map[string]int{
		"scan": 1, "meta": 1, "save-meta": 1, "folders": 1, "exif": 1,
		"rename": 3, "state": 0, "save-state": 0, "reveal": 1, "call": 1,
	}
	n, ok := want[cmd]
	if !ok {
		return "", nil, fmt.Errorf("unknown command %q", cmd)
	}
	if len(rest) != n {
		return "", nil, fmt.Errorf("%s takes %d argument(s), got %d", cmd, n, len(rest))
	}

	switch cmd {
	case "scan":
		return op("scan_folder", map[string]string{"folder_path": rest[0]})
	case "meta":
		return op("load_folder_meta", map[string]string{"folder_path": rest[0]})
	case "folders":
		return op("list_subfolders", map[string]string{"folder_path": rest[0]})
	case "exif":
		return op("get_exif_data", map[string]string{"path": rest[0]})
	case "reveal":
		return op("reveal_in_finder", map[string]string{"path": rest[0]})
	case "rename":
		return op("rename_photo", map[string]string{"folder_path": rest[0], "old_name": rest[1], "new_name": rest[2]})
	case "state":
		return "load_data", nil, nil
	}

	in, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", nil, fmt.Errorf("read stdin: %w", err)
	}

	switch cmd {
	case "save-meta":
		return op("save_folder_meta", map[string]any{"folder_path": rest[0], "meta": json.RawMessage(in)})
	case "save-state":
		return op("save_data", map[string]any{"data": json.RawMessage(in)})
	default:
		return rest[0], in, nil
	}
}

func op(name string, req any) (string, []byte, error) {
	bs, err := json.Marshal(req)
	if err != nil {
		return "", nil, fmt.Errorf("encode request: %w", err)
	}
	return name, bs, nil
}

func workspace(c *gallra.Config, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: workspace add|remove <dir>")
	}

	st, err := gallra.LoadAppState(c)
	if err != nil {
		return err
	}

	switch args[0] {
	case "add":
		st.AddWorkspace(args[1])
	case "remove":
		st.RemoveWorkspace(args[1])
	default:
		return fmt.Errorf("unknown workspace action %q", args[0])
	}

	if err := gallra.SaveAppState(c, st); err != nil {
		return err
	}
	emit(st)
	return nil
}

func emit(v any) {
	bs, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		klog.Exitf("encode: %v", err)
	}
	fmt.Println(string(bs))
}

// serve serves operations via HTTP
func serve(s *manage.Server, addr string) {
	klog.Infof("Listening on %s...", addr)
	err := http.ListenAndServe(addr, s.Mux())
	if err != nil {
		klog.Exitf("listen failed: %v", err)
	}
}
