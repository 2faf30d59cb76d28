package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/cards"
	"github.com/alnah/go-md2card/internal/logger"
	"github.com/alnah/go-md2card/internal/vault"
)

const shutdownTimeout = 10 * time.Second

// Server serves the live card preview and the card commands over HTTP.
type Server struct {
	svc     *cards.Service
	tracker *cards.Tracker
	broker  *Broker
	log     logger.Logger
	router  chi.Router
}

// NewServer builds the router. The broker is shared with the notifier the
// service was created with (see Notifier).
func NewServer(svc *cards.Service, tracker *cards.Tracker, broker *Broker, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{svc: svc, tracker: tracker, broker: broker, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/card.html", s.handleCardHTML)
	r.Get("/card.png", s.handleCardPNG)
	r.Get("/events", broker.ServeHTTP)
	r.Post("/active", s.handleActive)
	r.Post("/commands/{name}", s.handleCommand)

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Notifier publishes notices as SSE events.
func Notifier(b *Broker) cards.Notifier {
	return cards.NotifierFunc(func(n cards.Notice) {
		b.Publish(Event{Type: EventNotice, Data: n})
	})
}

// Refresh tells clients that rel changed if it is the note being shown.
func (s *Server) Refresh(rel string) {
	if rel == "" || rel != s.current("") {
		return
	}
	s.broker.Publish(Event{Type: EventCardUpdated, Data: map[string]string{"path": rel}})
}

// Run serves on addr and watches the vault until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return Watch(gCtx, s.svc.Vault().Root(), s.log, s.Refresh)
	})

	g.Go(func() error {
		s.log.Info("preview server listening", "url", "http://"+addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("preview server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.log.Info("shutting down preview server")

		// Event streams never finish on their own.
		s.broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error("preview server shutdown failed", "error", err)
		}
		return nil
	})

	return g.Wait()
}

// current returns the note to show: the explicit one, else the active
// note, else the last active note.
func (s *Server) current(explicit string) string {
	if explicit != "" {
		return vault.Join(explicit)
	}
	ac := s.tracker.Context()
	if strings.EqualFold(path.Ext(ac.Active), ".md") {
		return ac.Active
	}
	return ac.Fallback
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, htmlOnly bool) (*md2card.RenderResult, bool) {
	docPath := s.current(r.URL.Query().Get("note"))
	if docPath == "" {
		writeJSON(w, http.StatusNotFound, errorBody(cards.ErrNoActiveDocument.Error()))
		return nil, false
	}
	res, err := s.svc.Preview(r.Context(), docPath, htmlOnly)
	if err != nil {
		logger.FromContext(r.Context()).Warn("preview failed", "note", docPath, "error", err)
		writeJSON(w, statusFor(err), errorBody(err.Error()))
		return nil, false
	}
	return res, true
}

func (s *Server) handleCardHTML(w http.ResponseWriter, r *http.Request) {
	res, ok := s.render(w, r, true)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(res.HTML)
}

func (s *Server) handleCardPNG(w http.ResponseWriter, r *http.Request) {
	res, ok := s.render(w, r, false)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(res.PNG)
}

type activeRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	s.tracker.SetActive(req.Path)
	ac := s.tracker.Context()
	s.broker.Publish(Event{Type: EventActive, Data: ac})
	writeJSON(w, http.StatusOK, ac)
}

type commandResponse struct {
	cards.Result
	Error string `json:"error,omitempty"`
}

type progressEvent struct {
	Index int    `json:"index"`
	Total int    `json:"total"`
	Note  string `json:"note"`
	Asset string `json:"asset,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	res, err := s.svc.Run(r.Context(), name, s.tracker.Context(), func(p cards.Progress) {
		ev := progressEvent{Index: p.Index, Total: p.Total, Note: p.Note, Asset: p.Asset}
		if p.Err != nil {
			ev.Error = p.Err.Error()
		}
		s.broker.Publish(Event{Type: EventProgress, Data: ev})
	})
	if err != nil {
		writeJSON(w, statusFor(err), commandResponse{Result: res, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{Result: res})
}

// statusFor maps action errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, cards.ErrUnknownCommand), errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, cards.ErrNoActiveDocument), errors.Is(err, vault.ErrOutsideVault),
		errors.Is(err, vault.ErrAbsolutePath):
		return http.StatusBadRequest
	case errors.Is(err, cards.ErrBatchLocked):
		return http.StatusConflict
	case errors.Is(err, cards.ErrNoSink):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		log := s.log.With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(logger.ContextWithLogger(r.Context(), log)))
		log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}
