package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/handiism/signage-viewer/internal/config"
	ioutils "github.com/handiism/signage-viewer/internal/io"
)

const (
	// ArchiveDirName is the subfolder of the media folder holding archived files.
	ArchiveDirName = "archived"

	maxUploadMemory = 32 << 20
)

// FilenameRequest is the body of delete and archive requests.
type FilenameRequest struct {
	Filename string `json:"filename"`
}

// Server serves the admin routes.
type Server struct {
	mediaDir   string
	archiveDir string
	configPath string
	logger     *slog.Logger

	// mu serializes read-modify-write cycles on the config file.
	mu sync.Mutex
}

// New creates a Server and makes sure the media and archive folders exist.
func New(mediaDir, configPath string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	archiveDir := filepath.Join(mediaDir, ArchiveDirName)
	if err := ioutils.EnsureDir(archiveDir); err != nil {
		return nil, fmt.Errorf("create archive folder: %w", err)
	}
	return &Server{
		mediaDir:   mediaDir,
		archiveDir: archiveDir,
		configPath: configPath,
		logger:     logger,
	}, nil
}

// Handler returns the router with all admin routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.Health).Methods(http.MethodGet)

	r.HandleFunc("/media", s.ListMedia).Methods(http.MethodGet)
	r.HandleFunc("/media/{filename}", s.ServeMedia).Methods(http.MethodGet)
	r.HandleFunc("/upload", s.Upload).Methods(http.MethodPost)
	r.HandleFunc("/delete", s.Delete).Methods(http.MethodPost)
	r.HandleFunc("/archive", s.Archive).Methods(http.MethodPost)

	r.HandleFunc("/config", s.GetConfig).Methods(http.MethodGet)
	r.HandleFunc("/config", s.UpdateConfig).Methods(http.MethodPost)

	r.HandleFunc("/nightmode", s.GetNightMode).Methods(http.MethodGet)
	r.HandleFunc("/nightmode/toggle", s.ToggleNightMode).Methods(http.MethodPost)
	r.HandleFunc("/blackscreen", s.GetBlackScreen).Methods(http.MethodGet)
	r.HandleFunc("/blackscreen/toggle", s.ToggleBlackScreen).Methods(http.MethodPost)

	return r
}

// Health reports that the server is up.
// GET /health
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListMedia returns the sorted names of the files in the media folder.
// GET /media
func (s *Server) ListMedia(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.mediaDir)
	if err != nil {
		s.fail(w, "list media", err)
		return
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	writeJSON(w, http.StatusOK, names)
}

// ServeMedia sends one media file.
// GET /media/{filename}
func (s *Server) ServeMedia(w http.ResponseWriter, r *http.Request) {
	name := ioutils.SanitizeFileName(mux.Vars(r)["filename"])
	if name == "" {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.mediaDir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

// Upload stores every file of the multipart field "file".
// POST /upload
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	for _, header := range r.MultipartForm.File["file"] {
		name := ioutils.SanitizeFileName(header.Filename)
		if name == "" {
			continue
		}

		src, err := header.Open()
		if err != nil {
			s.fail(w, "open upload", err)
			return
		}
		n, err := ioutils.SaveFile(r.Context(), filepath.Join(s.mediaDir, name), src)
		src.Close()
		if err != nil {
			s.fail(w, "save upload", err)
			return
		}
		s.logger.Info("media uploaded", "file", name, "bytes", n)
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a media file.
// POST /delete
func (s *Server) Delete(w http.ResponseWriter, r *http.Request) {
	name, ok := s.decodeFilename(w, r)
	if !ok {
		return
	}

	err := os.Remove(filepath.Join(s.mediaDir, name))
	if errors.Is(err, os.ErrNotExist) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.fail(w, "delete media", err)
		return
	}

	s.logger.Info("media deleted", "file", name)
	writeText(w, http.StatusOK, "Deleted")
}

// Archive moves a media file into the archive folder.
// POST /archive
func (s *Server) Archive(w http.ResponseWriter, r *http.Request) {
	name, ok := s.decodeFilename(w, r)
	if !ok {
		return
	}

	src := filepath.Join(s.mediaDir, name)
	if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if err := os.Rename(src, filepath.Join(s.archiveDir, name)); err != nil {
		s.fail(w, "archive media", err)
		return
	}

	s.logger.Info("media archived", "file", name)
	writeText(w, http.StatusOK, "Archived")
}

// GetConfig returns the effective configuration record.
// GET /config
func (s *Server) GetConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	settings := s.loadSettings()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, settings)
}

// UpdateConfig merges the posted keys into the configuration record.
// POST /config
func (s *Server) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	patch := map[string]json.RawMessage{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.loadSettings()
	if err := settings.Merge(patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := settings.Save(s.configPath); err != nil {
		s.fail(w, "save config", err)
		return
	}

	s.logger.Info("config updated", "keys", len(patch))
	writeText(w, http.StatusOK, "Updated")
}

// GetNightMode reports whether automatic night mode is enabled.
// GET /nightmode
func (s *Server) GetNightMode(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	settings := s.loadSettings()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]bool{config.KeyApplyAutoNightMode: settings.ApplyAutoNightMode})
}

// ToggleNightMode flips automatic night mode.
// POST /nightmode/toggle
func (s *Server) ToggleNightMode(w http.ResponseWriter, r *http.Request) {
	s.toggle(w, config.KeyApplyAutoNightMode, func(c *config.Settings) *bool { return &c.ApplyAutoNightMode })
}

// GetBlackScreen reports whether the black screen is on.
// GET /blackscreen
func (s *Server) GetBlackScreen(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	settings := s.loadSettings()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]bool{config.KeyBlackScreen: settings.BlackScreen})
}

// ToggleBlackScreen flips the black screen.
// POST /blackscreen/toggle
func (s *Server) ToggleBlackScreen(w http.ResponseWriter, r *http.Request) {
	s.toggle(w, config.KeyBlackScreen, func(c *config.Settings) *bool { return &c.BlackScreen })
}

func (s *Server) toggle(w http.ResponseWriter, key string, field func(*config.Settings) *bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.loadSettings()
	v := field(settings)
	*v = !*v
	if err := settings.Save(s.configPath); err != nil {
		s.fail(w, "save config", err)
		return
	}

	s.logger.Info("config toggled", "key", key, "value", *v)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", key: *v})
}

// loadSettings reads the record; an unreadable record counts as defaults.
// The caller must hold mu.
func (s *Server) loadSettings() *config.Settings {
	settings, err := config.Load(s.configPath)
	if err != nil {
		s.logger.Warn("config unreadable, using defaults", "path", s.configPath, "error", err)
	}
	return settings
}

func (s *Server) decodeFilename(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req FilenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return "", false
	}
	name := ioutils.SanitizeFileName(req.Filename)
	if name == "" {
		http.Error(w, "filename is required", http.StatusBadRequest)
		return "", false
	}
	return name, true
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, "error", err)
	http.Error(w, "Internal error", http.StatusInternalServerError)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}
