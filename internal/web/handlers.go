package web

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/QuizImport/internal/core"
	"github.com/JonMunkholm/QuizImport/internal/logging"
	mw "github.com/JonMunkholm/QuizImport/internal/web/middleware"
	"github.com/JonMunkholm/QuizImport/internal/web/templates"
)

const (
	// multipartMemory is how much of a form is held in memory before
	// spilling to temp files.
	multipartMemory = 8 << 20

	// multipartOverhead covers boundaries and the small text fields that
	// travel with the file.
	multipartOverhead = 1 << 20

	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

var (
	errNoFile             = errors.New("no file provided")
	errHistoryUnavailable = errors.New("import history is not available")
)

// uploadSource is the multipart file of one request.
type uploadSource struct {
	name  string
	file  multipart.File
	limit int64

	mu    sync.Mutex
	reset bool
}

func (u *uploadSource) Name() string { return u.name }

func (u *uploadSource) Read(ctx context.Context) ([]byte, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.reset {
		return nil, fmt.Errorf("upload %q has been reset", u.name)
	}
	return core.ReadLimited(ctx, u.file, u.limit)
}

// Reset closes the upload; the browser clears its own file input.
func (u *uploadSource) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.reset {
		u.reset = true
		u.file.Close()
	}
}

// importResponse is the JSON body of the import endpoints.
type importResponse struct {
	*core.ImportResult
	Alert *core.Alert       `json:"alert,omitempty"`
	Error *core.UserMessage `json:"error,omitempty"`
}

type importFunc func(ctx context.Context, req core.ImportRequest) (*core.ImportResult, error)

// handleImport validates an uploaded question file and commits it when
// every row passes.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	s.serveImport(w, r, s.service.Import)
}

// handlePreview validates an uploaded question file without saving it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	s.serveImport(w, r, s.service.Preview)
}

func (s *Server) serveImport(w http.ResponseWriter, r *http.Request, run importFunc) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.respondError(w, r, &core.ErrTooLarge{Limit: maxSize}, http.StatusRequestEntityTooLarge)
			return
		}
		s.respondError(w, r, fmt.Errorf("invalid form: %w", err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	src := &uploadSource{name: header.Filename, file: file, limit: maxSize}
	defer src.Reset()

	ctx, alerts := withAlerts(r.Context())
	ctx = core.ContextWithOrigin(ctx, core.Origin{
		IPAddress: mw.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	result, err := run(ctx, core.ImportRequest{
		Source:  src,
		Session: r.FormValue("session"),
		Target:  strings.TrimSpace(r.FormValue("target")),
	})
	if result == nil && err == nil {
		s.respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}

	resp := importResponse{ImportResult: result, Alert: alerts.last()}
	status := http.StatusOK
	if err != nil {
		status = importStatus(err)
		msg := core.MapError(err)
		resp.Error = &msg
		logging.FromContext(r.Context()).Info("import not committed",
			"file", header.Filename,
			"kind", core.KindOf(err),
			"status", status,
		)
	}

	if isHTMX(r) {
		// HTMX only swaps 2xx responses; the fragment carries the failure.
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = templates.ImportResult(result, resp.Alert).Render(r.Context(), w)
		return
	}
	writeJSONStatus(w, status, resp)
}

type formatInfo struct {
	Format     core.Format     `json:"format"`
	Kind       core.ImportKind `json:"kind"`
	Label      string          `json:"label"`
	Extensions []string        `json:"extensions"`
}

// handleFormats lists the importable formats.
func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	defs := s.service.Formats()
	out := make([]formatInfo, 0, len(defs))
	for _, def := range defs {
		out = append(out, formatInfo{
			Format:     def.Format,
			Kind:       def.Kind,
			Label:      def.Label,
			Extensions: def.Extensions,
		})
	}
	writeJSON(w, out)
}

// handleTemplate returns an example file. The path names either a format
// ("delimited-text") or an extension ("csv").
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "format")
	ext := name
	if def, ok := core.Get(core.Format(name)); ok && len(def.Extensions) > 0 {
		ext = def.Extensions[0]
	}

	tf, err := core.Template(ext)
	if err != nil {
		status := http.StatusInternalServerError
		if core.KindOf(err) == core.KindUnsupportedFormat {
			status = http.StatusNotFound
		}
		s.respondError(w, r, err, status)
		return
	}

	w.Header().Set("Content-Type", tf.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, tf.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(tf.Data)))
	w.Write(tf.Data)
}

// handleListImports returns the most recent committed imports.
func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, r, errHistoryUnavailable, http.StatusServiceUnavailable)
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.respondError(w, r, fmt.Errorf("invalid limit %q", v), http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	imports, err := s.history.ListImports(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, imports)
}

// handleImportQuestions returns the questions saved by one import.
func (s *Server) handleImportQuestions(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, r, errHistoryUnavailable, http.StatusServiceUnavailable)
		return
	}

	id := chi.URLParam(r, "importID")
	if _, err := uuid.Parse(id); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid import id %q", id), http.StatusBadRequest)
		return
	}

	questions, err := s.history.ImportQuestions(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if len(questions) == 0 {
		s.respondError(w, r, fmt.Errorf("import %s not found", id), http.StatusNotFound)
		return
	}
	writeJSON(w, questions)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleReady reports the import limiter and, when configured, the store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"imports": s.service.LimiterStatus(),
	}
	if s.history != nil {
		if err := s.history.Ping(r.Context()); err != nil {
			logging.FromContext(r.Context()).Warn("readiness: store unreachable", "error", err)
			resp["status"] = "unavailable"
			writeJSONStatus(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, resp)
}
