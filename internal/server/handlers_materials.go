package server

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/config"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

func (s *Server) watchDisabled(w http.ResponseWriter) bool {
	if s.svc.Watcher == nil {
		respondJSON(w, http.StatusNotImplemented, errorBody{Error: "material watching not enabled"})
		return true
	}
	return false
}

func (s *Server) handleMaterialDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watchDisabled(w) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"directories": s.svc.Watcher.Directories()})
}

type directoryRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleMaterialDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watchDisabled(w) {
		return
	}
	var req directoryRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := required("path", req.Path); err != nil {
		s.respondError(w, r, err)
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, r, &models.ValidationError{Field: "path", Message: "invalid path"})
		return
	}
	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.respondError(w, r, models.ErrNotFound)
		return
	case err != nil:
		s.respondError(w, r, err)
		return
	case !info.IsDir():
		s.respondError(w, r, &models.ValidationError{Field: "path", Message: "is not a directory"})
		return
	}

	syncExisting := true
	if req.Sync != nil {
		syncExisting = *req.Sync
	}
	s.logger.Debug("add material directory", zap.String("path", abs), zap.Bool("sync_existing", syncExisting))
	if err := s.svc.Watcher.AddDirectory(abs, syncExisting); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.persistDirectories()
	respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "watching"})
}

func (s *Server) handleMaterialDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watchDisabled(w) {
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var req directoryRequest
		if err := decode(r, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
		path = req.Path
	}
	if err := required("path", path); err != nil {
		s.respondError(w, r, err)
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, r, &models.ValidationError{Field: "path", Message: "invalid path"})
		return
	}
	if err := s.svc.Watcher.RemoveDirectory(abs); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.persistDirectories()
	respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

// persistDirectories writes the current directory list to the config file, if any.
func (s *Server) persistDirectories() {
	if s.svc.ConfigPath == "" || s.svc.Config == nil {
		return
	}
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.svc.Config.Materials.Directories = s.svc.Watcher.Directories()
	if err := config.Save(s.svc.ConfigPath, s.svc.Config); err != nil {
		s.logger.Warn("failed to persist material directories", zap.Error(err))
	}
}
