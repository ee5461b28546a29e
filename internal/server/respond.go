package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-formflow/internal/store"
	"github.com/goliatone/go-formflow/pkg/schema"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Issues []schema.Issue    `json:"issues,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: message})
}

// respondStoreError maps store failures onto HTTP statuses and logs the
// unexpected ones.
func (s *Server) respondStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.respondError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrSlugTaken):
		s.respondError(w, r, http.StatusConflict, "slug already in use")
	default:
		s.log.WithError(err).WithField("op", op).Error("store operation failed")
		s.respondError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// respondIntegrityError surfaces a template document's structural issues.
func (s *Server) respondIntegrityError(w http.ResponseWriter, r *http.Request, err error) {
	var integrity *schema.IntegrityError
	if errors.As(err, &integrity) {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, errorResponse{Error: "invalid template document", Issues: integrity.Issues})
		return
	}
	s.respondError(w, r, http.StatusBadRequest, "malformed template document")
}

// requestLogger emits one structured line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		entry := s.log.WithFields(logrus.Fields{
			"http_method": r.Method,
			"uri":         r.URL.RequestURI(),
			"status_code": ww.status,
			"latency_ms":  time.Since(start).Milliseconds(),
			"client_ip":   r.RemoteAddr,
			"user_agent":  r.UserAgent(),
		})
		switch {
		case ww.status >= 500:
			entry.Error("request failed")
		case ww.status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request completed")
		}
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
