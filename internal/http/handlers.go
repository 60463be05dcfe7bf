package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mikezucc/spendingtracker/internal/chart"
	"github.com/mikezucc/spendingtracker/internal/core"
	"github.com/mikezucc/spendingtracker/internal/csvparse"
	applog "github.com/mikezucc/spendingtracker/internal/log"
)

// maxUploadBytes caps a single upload request. Bank exports are small;
// anything bigger is a mistake, not a statement.
const maxUploadBytes = 10 << 20

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	logger := applog.FromContext(r.Context())
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := struct {
		Count int
	}{
		Count: s.store.Len(),
	}
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		logger.ErrorContext(r.Context(), "Index template execution failed", applog.FieldError, err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleChartData returns the projected payload for the requested view
// combination, e.g. /chart-data?views=cumulative,weekly.
func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	views := chart.ParseViews(r.URL.Query().Get("views"))
	payload := s.getPayload(r.Context(), views)
	writeJSON(w, http.StatusOK, payload)
}

type uploadResult struct {
	FilesAccepted int `json:"files_accepted"`
	FilesSkipped  int `json:"files_skipped"`
	Rows          int `json:"rows"`
	Added         int `json:"added"`
}

// handleUpload ingests one or more dropped files. Only names ending in
// .csv (any case) are read; everything else is skipped without error so
// a sloppy multi-file drop still works.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	logger := applog.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.WarnContext(r.Context(), "Upload form parse failed", applog.FieldError, err)
		http.Error(w, "invalid multipart request", http.StatusBadRequest)
		return
	}

	var result uploadResult
	var rows []core.RawRow
	for _, header := range r.MultipartForm.File["files"] {
		if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
			logger.DebugContext(r.Context(), "Skipping non-CSV upload", applog.FieldFile, header.Filename)
			result.FilesSkipped++
			continue
		}

		f, err := header.Open()
		if err != nil {
			logger.WarnContext(r.Context(), "Failed opening uploaded file", applog.FieldError, err, applog.FieldFile, header.Filename)
			result.FilesSkipped++
			continue
		}
		fileRows, err := csvparse.Parse(f)
		f.Close()
		if err != nil {
			logger.WarnContext(r.Context(), "Failed parsing uploaded CSV", applog.FieldError, err, applog.FieldFile, header.Filename)
			result.FilesSkipped++
			continue
		}
		rows = append(rows, fileRows...)
		result.FilesAccepted++
	}
	result.Rows = len(rows)

	if len(rows) > 0 {
		added, err := s.store.Ingest(r.Context(), rows)
		if err != nil {
			logger.ErrorContext(r.Context(), "Ingest failed", applog.FieldError, err, applog.FieldRows, len(rows))
			http.Error(w, "failed to store transactions", http.StatusInternalServerError)
			return
		}
		result.Added = added
		s.invalidateProjections()
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := s.store.Clear(r.Context()); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Clear failed", applog.FieldError, err)
		http.Error(w, "failed to clear transactions", http.StatusInternalServerError)
		return
	}
	s.invalidateProjections()
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, s.store.List())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
