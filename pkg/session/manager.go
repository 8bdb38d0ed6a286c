package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formrows/pkg/dispatch"
	"github.com/goliatone/go-formrows/pkg/layout"
	"github.com/goliatone/go-formrows/pkg/render"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session: not found")

// EventHook observes every dispatched click of every session.
type EventHook func(sessionID string, event dispatch.Event)

// Option configures a Manager.
type Option func(*Manager)

// WithTTL expires editors idle for longer than ttl. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl >= 0 {
			m.ttl = ttl
		}
	}
}

// WithEventHook registers a hook called after every click.
func WithEventHook(hook EventHook) Option {
	return func(m *Manager) {
		if hook != nil {
			m.hooks = append(m.hooks, hook)
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(next func() string) Option {
	return func(m *Manager) {
		if next != nil {
			m.newID = next
		}
	}
}

// Manager owns the live editors.
type Manager struct {
	mu      sync.RWMutex
	editors map[string]*Editor

	renderer render.Renderer
	catalog  *layout.Catalog
	ttl      time.Duration
	hooks    []EventHook
	newID    func() string
}

// NewManager builds a manager rendering catalog forms with renderer.
func NewManager(renderer render.Renderer, catalog *layout.Catalog, options ...Option) *Manager {
	if catalog == nil {
		catalog = layout.DefaultCatalog()
	}
	m := &Manager{
		editors:  make(map[string]*Editor),
		renderer: renderer,
		catalog:  catalog,
		newID:    uuid.NewString,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(m)
	}
	return m
}

// Catalog returns the layouts sessions are created from.
func (m *Manager) Catalog() *layout.Catalog {
	return m.catalog
}

// Create renders formID and registers a new editor over the result. The
// actionFor callback receives the new id and returns the options the form
// is rendered with, so the edit form can post back to its own session.
func (m *Manager) Create(ctx context.Context, formID string, actionFor func(id string) render.RenderOptions) (*Editor, error) {
	if m.renderer == nil {
		return nil, errors.New("session: renderer is required")
	}
	form, err := m.catalog.Get(formID)
	if err != nil {
		return nil, err
	}

	id := m.newID()
	var options render.RenderOptions
	if actionFor != nil {
		options = actionFor(id)
	}
	markup, err := m.renderer.Render(ctx, form, options)
	if err != nil {
		return nil, fmt.Errorf("session: render %q: %w", formID, err)
	}

	editor, err := NewEditor(id, form, markup, m.observerFor(id))
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.editors[id]; exists {
		return nil, fmt.Errorf("session: duplicate id %q", id)
	}
	m.editors[id] = editor
	return editor, nil
}

func (m *Manager) observerFor(id string) dispatch.Observer {
	return func(event dispatch.Event) {
		for _, hook := range m.hooks {
			hook(id, event)
		}
	}
}

// Get returns a live editor.
func (m *Manager) Get(id string) (*Editor, error) {
	m.mu.RLock()
	editor, ok := m.editors[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if m.expired(editor, time.Now()) {
		m.Delete(id)
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return editor, nil
}

// Delete drops an editor. Unknown ids are ignored.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.editors, id)
}

// IDs lists live editor ids, sorted.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.editors))
	for id := range m.editors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Prune removes editors idle past the TTL and returns how many were dropped.
func (m *Manager) Prune(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	dropped := 0
	for id, editor := range m.editors {
		if m.expired(editor, now) {
			delete(m.editors, id)
			dropped++
		}
	}
	return dropped
}

// Run prunes expired editors every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || m.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Prune(now)
		}
	}
}

func (m *Manager) expired(editor *Editor, now time.Time) bool {
	return m.ttl > 0 && now.Sub(editor.LastActive()) > m.ttl
}
