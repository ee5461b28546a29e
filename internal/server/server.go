// Package server exposes the engine over HTTP: the public respondent
// endpoints (load a published template by slug, accept a submission) and the
// authoring CRUD surface whose payloads are the template documents
// themselves. Auth is a deployment concern layered outside this router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-formflow/internal/store"
)

// Option customises the server.
type Option func(*Server)

// WithLogger injects a configured logrus logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// Server wires handlers around a store.
type Server struct {
	templates   store.Templates
	submissions store.Submissions
	log         *logrus.Logger
	validate    *validator.Validate
}

// New constructs a server over the given store.
func New(templates store.Templates, submissions store.Submissions, options ...Option) *Server {
	s := &Server{
		templates:   templates,
		submissions: submissions,
		log:         logrus.StandardLogger(),
		validate:    validator.New(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Router assembles the HTTP surface.
func (s *Server) Router() http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.RealIP, middleware.Recoverer, s.requestLogger)

	root.Get("/forms/{slug}", s.getPublishedForm)
	root.Post("/forms/{slug}/submit", s.submitForm)

	root.Route("/api/templates", func(r chi.Router) {
		r.Post("/", s.createTemplate)
		r.Get("/", s.listTemplates)
		r.Get("/{id}", s.getTemplate)
		r.Put("/{id}", s.updateTemplate)
		r.Delete("/{id}", s.deleteTemplate)
		r.Post("/{id}/publish", s.publishTemplate)
		r.Post("/{id}/unpublish", s.unpublishTemplate)
		r.Get("/{id}/submissions", s.listSubmissions)
		r.Get("/{id}/submissions/export", s.exportSubmissions)
		r.Delete("/{id}/submissions/{submissionID}", s.deleteSubmission)
	})

	return root
}
