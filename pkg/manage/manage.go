// Package manage routes named operations from a client to gallra.
package manage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/tstromberg/gallra/pkg/gallra"
	"github.com/tstromberg/gallra/pkg/reveal"
	"k8s.io/klog/v2"
)

// maxBody bounds request bodies; sidecars for very large folders still fit.
const maxBody = 32 << 20

// Server dispatches operations for the photo browser.
type Server struct {
	c       *gallra.Config
	ex      gallra.Extractor
	rv      reveal.Revealer
	maxBody int64
}

type op func(s *Server, body []byte) (any, error)

var ops = map[string]op{
	"scan_folder":      scanFolder,
	"load_folder_meta": loadFolderMeta,
	"save_folder_meta": saveFolderMeta,
	"list_subfolders":  listSubfolders,
	"get_exif_data":    getExifData,
	"rename_photo":     renamePhoto,
	"load_data":        loadData,
	"save_data":        saveData,
	"reveal_in_finder": revealInFinder,
}

// New creates a new server.
func New(c *gallra.Config, ex gallra.Extractor, rv reveal.Revealer) *Server {
	return &Server{
		c:       c,
		ex:      ex,
		rv:      rv,
		maxBody: maxBody,
	}
}

// Ops lists the operation names the server understands.
func Ops() []string {
	names := make([]string, 0, len(ops))
	for n := range ops {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the named operation with a JSON request body.
func (s *Server) Dispatch(name string, body []byte) (any, error) {
	o, ok := ops[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown operation %q", gallra.ErrInvalid, name)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	}
	klog.V(1).Infof("dispatch %s: %d bytes", name, len(body))
	return o(s, body)
}

// ErrorResponse is the body returned for a failed operation.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Kind classifies an error from any operation.
func Kind(err error) string {
	if errors.Is(err, reveal.ErrNotFound) {
		return gallra.KindNotFound
	}
	return gallra.Kind(err)
}

func status(kind string) int {
	switch kind {
	case gallra.KindNotFound:
		return http.StatusNotFound
	case gallra.KindAlreadyExists:
		return http.StatusConflict
	case gallra.KindInvalid:
		return http.StatusBadRequest
	case gallra.KindParse:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// OpHandler serves POST /api/{op}.
func (s *Server) OpHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "use POST", Kind: gallra.KindInvalid})
			return
		}

		name := strings.TrimPrefix(r.URL.Path, "/api/")
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				msg := fmt.Sprintf("request body exceeds %d bytes", mbe.Limit)
				writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: msg, Kind: gallra.KindInvalid})
				return
			}
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: gallra.KindIO})
			return
		}

		out, err := s.Dispatch(name, body)
		if err != nil {
			kind := Kind(err)
			klog.Errorf("%s failed (%s): %v", name, kind, err)
			writeJSON(w, status(kind), ErrorResponse{Error: err.Error(), Kind: kind})
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// Mux returns a handler serving every operation under /api/.
func (s *Server) Mux() *http.ServeMux {
	m := http.NewServeMux()
	m.Handle("/api/", s.OpHandler())
	return m
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		klog.Errorf("encode response: %v", err)
	}
}
