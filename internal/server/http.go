package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/mj1618/a11y-audit/internal/output"
	auditmiddleware "github.com/mj1618/a11y-audit/internal/server/middleware"
)

// maxBodyBytes bounds request documents.
const maxBodyBytes = 8 << 20

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Service         *Service
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	h := &handler{svc: config.Service}

	router := chi.NewRouter()

	router.Use(auditmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", h.Health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/rules", h.ListRules)
		r.Post("/audit", h.Audit)
		r.Post("/contrast", h.Contrast)
	})

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: timeout,
	}
}

// Handler exposes the router, mainly for tests.
func (w *WebAPI) Handler() http.Handler { return w.router }

// Start serves until the listener fails or SIGINT/SIGTERM arrives, then
// shuts down gracefully.
func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}
		return err
	}
}

type handler struct {
	svc *Service
}

func (h *handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) ListRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.svc.Rules())
}

// Audit accepts either a JSON AuditRequest or a raw text/html body with
// profiles, scope, locale and context as query parameters. ?format selects
// json (default), yaml, markdown or html.
func (h *handler) Audit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	format := output.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		parsed, err := output.ParseFormat(f)
		if err != nil || parsed == output.FormatText {
			writeError(w, r, http.StatusBadRequest, "unsupported format: "+f)
			return
		}
		format = parsed
	}

	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req AuditRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/html") {
		data, err := io.ReadAll(body)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		q := r.URL.Query()
		req = AuditRequest{
			HTML:    string(data),
			Scope:   q.Get("scope"),
			Locale:  q.Get("locale"),
			Context: q.Get("context"),
		}
		if p := q.Get("profiles"); p != "" {
			req.Profiles = strings.Split(p, ",")
		}
	} else if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.svc.Audit(ctx, req)
	if err != nil {
		if errors.Is(err, ErrBadRequest) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error().Err(err).Msg("audit failed")
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	if format == output.FormatJSON {
		writeJSON(w, r, http.StatusOK, resp)
		return
	}
	switch format {
	case output.FormatHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	case output.FormatMarkdown:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "application/yaml")
	}
	if err := output.Write(w, format, false, resp.Reports); err != nil {
		logger.Error().Err(err).Msg("failed to encode reports")
	}
}

func (h *handler) Contrast(w http.ResponseWriter, r *http.Request) {
	var req ContrastRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	res, err := h.svc.Contrast(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}
