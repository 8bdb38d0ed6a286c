// Package server exposes edit sessions over HTTP. Pages are plain HTML forms:
// every row control is a submit button naming its own node, so the editor
// works without scripts.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formrows/internal/config"
	"github.com/goliatone/go-formrows/internal/logger"
	"github.com/goliatone/go-formrows/pkg/dispatch"
	"github.com/goliatone/go-formrows/pkg/dom"
	"github.com/goliatone/go-formrows/pkg/layout"
	"github.com/goliatone/go-formrows/pkg/render"
	"github.com/goliatone/go-formrows/pkg/renderers/vanilla"
	"github.com/goliatone/go-formrows/pkg/session"
	"github.com/goliatone/go-formrows/pkg/theme"
)

const (
	// ThemePath toggles the theme preference cookie.
	ThemePath = "/theme"
	// RedirectField names the form value the theme toggle returns to.
	RedirectField = "redirect"
)

// HandlerConfig wires the handler's collaborators.
type HandlerConfig struct {
	Sessions *session.Manager
	// Selector resolves the theme palettes; nil uses theme.DefaultSelector.
	Selector  gotheme.ThemeSelector
	ThemeName string
	// SystemDark is assumed when the request carries no preference cookie.
	SystemDark   bool
	CookieMaxAge time.Duration
	Logger       *logger.Logger
}

type handler struct {
	sessions   *session.Manager
	light      *gotheme.RendererConfig
	dark       *gotheme.RendererConfig
	systemDark bool
	maxAge     time.Duration
	log        *logger.Logger
}

// NewHandler constructs the HTTP handler for the edit pages.
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("server: session manager is required")
	}
	selector := cfg.Selector
	if selector == nil {
		selector = theme.DefaultSelector()
	}
	light, dark, err := theme.ResolveAll(selector, cfg.ThemeName)
	if err != nil {
		return nil, fmt.Errorf("server: resolve theme: %w", err)
	}

	h := &handler{
		sessions:   cfg.Sessions,
		light:      light,
		dark:       dark,
		systemDark: cfg.SystemDark,
		maxAge:     cfg.CookieMaxAge,
		log:        cfg.Logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", assetHandler()))
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("GET /forms/{form}", h.newSession)
	mux.HandleFunc("GET /sessions/{id}", h.page)
	mux.HandleFunc("POST /sessions/{id}", h.interact)
	mux.HandleFunc("GET /sessions/{id}/rows", h.rows)
	mux.HandleFunc("POST "+ThemePath, h.toggleTheme)

	return withRequestLog(cfg.Logger, mux), nil
}

func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	ids := h.sessions.Catalog().List()
	if len(ids) == 0 {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/forms/"+url.PathEscape(ids[0]), http.StatusSeeOther)
}

func (h *handler) newSession(w http.ResponseWriter, r *http.Request) {
	formID := r.PathValue("form")
	editor, err := h.sessions.Create(r.Context(), formID, h.optionsFor)
	if errors.Is(err, layout.ErrUnknownForm) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, err, "create session")
		return
	}
	h.sessionLog(editor.ID()).Zerolog().Info().Str("form", formID).Msg("session created")
	http.Redirect(w, r, sessionPath(editor.ID()), http.StatusSeeOther)
}

func (h *handler) optionsFor(id string) render.RenderOptions {
	return render.RenderOptions{
		Action:            sessionPath(id),
		Method:            http.MethodPost,
		ThemeToggleAction: ThemePath,
		Theme:             h.light,
		DarkTheme:         h.dark,
	}
}

func (h *handler) page(w http.ResponseWriter, r *http.Request) {
	editor, ok := h.editor(w, r)
	if !ok {
		return
	}
	mode, err := h.themeState(w, r).Init(r.Context(), h.systemDark)
	if err != nil {
		h.fail(w, err, "read theme preference")
		return
	}
	markup, err := editor.HTML(mode)
	if err != nil {
		h.fail(w, err, "render session")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(markup)
}

func (h *handler) interact(w http.ResponseWriter, r *http.Request) {
	editor, ok := h.editor(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}

	values := r.PostForm
	target := values.Get(session.TargetField)
	values.Del(session.TargetField)

	log := h.sessionLog(editor.ID())
	result, err := editor.Interact(values, target)
	if errors.Is(err, session.ErrStaleRevision) {
		// replayed or outdated page: show the current document instead
		log.Warn("stale submission ignored")
		http.Redirect(w, r, sessionPath(editor.ID()), http.StatusSeeOther)
		return
	}
	if errors.Is(err, dom.ErrInvalidPath) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.fail(w, err, "interact")
		return
	}
	if target == "" {
		log.Debug("values synced")
	} else {
		log.Zerolog().Debug().
			Str("op", string(result.Op)).
			Bool("applied", result.Applied).
			Str("reason", string(result.Reason)).
			Str("container", result.Container).
			Msg("row operation")
	}
	http.Redirect(w, r, sessionPath(editor.ID()), http.StatusSeeOther)
}

func (h *handler) rows(w http.ResponseWriter, r *http.Request) {
	editor, ok := h.editor(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(editor.Snapshot()); err != nil {
		h.log.Error(err, "encode rows")
	}
}

func (h *handler) toggleTheme(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}
	state := h.themeState(w, r)
	if _, err := state.Init(r.Context(), h.systemDark); err != nil {
		h.fail(w, err, "read theme preference")
		return
	}
	mode, err := state.Toggle(r.Context())
	if err != nil {
		h.fail(w, err, "toggle theme")
		return
	}
	h.log.Zerolog().Debug().Str("mode", string(mode)).Msg("theme toggled")
	http.Redirect(w, r, redirectTarget(r), http.StatusSeeOther)
}

func (h *handler) themeState(w http.ResponseWriter, r *http.Request) *theme.State {
	store := theme.NewCookieStore(w, r)
	if h.maxAge > 0 {
		store.MaxAge = h.maxAge
	}
	return theme.NewState(store)
}

func (h *handler) editor(w http.ResponseWriter, r *http.Request) (*session.Editor, bool) {
	editor, err := h.sessions.Get(r.PathValue("id"))
	if errors.Is(err, session.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		h.fail(w, err, "load session")
		return nil, false
	}
	return editor, true
}

func (h *handler) sessionLog(id string) *logger.Logger {
	return h.log.WithFields(map[string]any{"session": id})
}

func (h *handler) fail(w http.ResponseWriter, err error, msg string) {
	h.log.Error(err, msg)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// redirectTarget returns the local path the theme toggle should go back to:
// the posted redirect value, else the same-host referer, else the root.
func redirectTarget(r *http.Request) string {
	if target := r.PostForm.Get(RedirectField); isLocalPath(target) {
		return target
	}
	if referer, err := url.Parse(r.Referer()); err == nil && referer.Host == r.Host && isLocalPath(referer.Path) {
		return referer.RequestURI()
	}
	return "/"
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, `\`)
}

func sessionPath(id string) string {
	return "/sessions/" + url.PathEscape(id)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func assetHandler() http.Handler {
	return http.FileServer(http.FS(vanilla.AssetsFS()))
}

// EventLogger returns a session hook writing every dispatched click at
// debug level.
func EventLogger(log *logger.Logger) session.EventHook {
	return func(sessionID string, event dispatch.Event) {
		log.WithFields(map[string]any{"session": sessionID}).Zerolog().Debug().
			Str("marker", event.Marker).
			Str("op", string(event.Result.Op)).
			Bool("applied", event.Result.Applied).
			Str("reason", string(event.Result.Reason)).
			Int("position", event.Result.Position).
			Msg("click")
	}
}

// Server runs the handler with the configured timeouts.
type Server struct {
	cfg     config.ServerConfig
	handler http.Handler
	log     *logger.Logger
}

// New binds a handler to the server settings.
func New(cfg config.ServerConfig, handler http.Handler, log *logger.Logger) *Server {
	return &Server{cfg: cfg, handler: handler, log: log}
}

// ListenAndServe serves until ctx is cancelled, then shuts down within the
// configured grace period.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Zerolog().Info().Str("addr", s.cfg.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: listen on %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	grace := s.cfg.ShutdownTimeout
	if grace <= 0 {
		grace = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	s.log.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withRequestLog(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Zerolog().Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
