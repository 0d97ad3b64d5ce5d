package manage

import (
	"encoding/json"
	"fmt"

	"github.com/tstromberg/gallra/pkg/gallra"
)

type folderRequest struct {
	FolderPath string `json:"folder_path"`
}

type pathRequest struct {
	Path string `json:"path"`
}

type saveMetaRequest struct {
	FolderPath string          `json:"folder_path"`
	Meta       json.RawMessage `json:"meta"`
}

type renameRequest struct {
	FolderPath string `json:"folder_path"`
	OldName    string `json:"old_name"`
	NewName    string `json:"new_name"`
}

type saveDataRequest struct {
	Data *gallra.AppState `json:"data"`
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: request: %v", gallra.ErrInvalid, err)
	}
	return nil
}

func required(name string, v string) error {
	if v == "" {
		return fmt.Errorf("%w: %s is required", gallra.ErrInvalid, name)
	}
	return nil
}

func folder(body []byte) (string, error) {
	var req folderRequest
	if err := decode(body, &req); err != nil {
		return "", err
	}
	return req.FolderPath, required("folder_path", req.FolderPath)
}

func scanFolder(_ *Server, body []byte) (any, error) {
	f, err := folder(body)
	if err != nil {
		return nil, err
	}
	return gallra.Scan(f)
}

func loadFolderMeta(_ *Server, body []byte) (any, error) {
	f, err := folder(body)
	if err != nil {
		return nil, err
	}
	return gallra.LoadSidecarStrict(f)
}

func saveFolderMeta(_ *Server, body []byte) (any, error) {
	var req saveMetaRequest
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	if err := required("folder_path", req.FolderPath); err != nil {
		return nil, err
	}
	if len(req.Meta) == 0 {
		return nil, fmt.Errorf("%w: meta is required", gallra.ErrInvalid)
	}

	sc, err := gallra.DecodeSidecar(req.Meta)
	if err != nil {
		return nil, fmt.Errorf("%w: meta: %v", gallra.ErrInvalid, err)
	}
	return struct{}{}, gallra.SaveSidecar(req.FolderPath, sc)
}

func listSubfolders(_ *Server, body []byte) (any, error) {
	f, err := folder(body)
	if err != nil {
		return nil, err
	}
	return gallra.ListSubfolders(f)
}

func getExifData(s *Server, body []byte) (any, error) {
	var req pathRequest
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	if err := required("path", req.Path); err != nil {
		return nil, err
	}
	return s.ex.Extract(req.Path)
}

func renamePhoto(_ *Server, body []byte) (any, error) {
	var req renameRequest
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	if err := required("folder_path", req.FolderPath); err != nil {
		return nil, err
	}
	return struct{}{}, gallra.Rename(req.FolderPath, req.OldName, req.NewName)
}

func loadData(s *Server, _ []byte) (any, error) {
	return gallra.LoadAppState(s.c)
}

func saveData(s *Server, body []byte) (any, error) {
	var req saveDataRequest
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	if req.Data == nil {
		return nil, fmt.Errorf("%w: data is required", gallra.ErrInvalid)
	}
	return struct{}{}, gallra.SaveAppState(s.c, req.Data)
}

func revealInFinder(s *Server, body []byte) (any, error) {
	var req pathRequest
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	if err := required("path", req.Path); err != nil {
		return nil, err
	}
	return struct{}{}, s.rv.Reveal(req.Path)
}
