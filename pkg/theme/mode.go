package theme

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Mode is the persisted light/dark preference.
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// StorageKey is the key the preference is persisted under.
const StorageKey = "theme"

// DarkClass is the root element class applied in dark mode.
const DarkClass = "dark"

// ParseMode accepts "light" or "dark" in any case.
func ParseMode(raw string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeLight:
		return ModeLight, true
	case ModeDark:
		return ModeDark, true
	}
	return "", false
}

// IsDark reports whether m is the dark mode.
func (m Mode) IsDark() bool {
	return m == ModeDark
}

// Toggle returns the opposite mode.
func (m Mode) Toggle() Mode {
	if m.IsDark() {
		return ModeLight
	}
	return ModeDark
}

// RootClass returns the class the document root carries for m.
func (m Mode) RootClass() string {
	if m.IsDark() {
		return DarkClass
	}
	return ""
}

// Icons reports which toggle icon is hidden. The light icon is offered while
// dark mode is active and the dark icon while light mode is active.
type Icons struct {
	LightHidden bool
	DarkHidden  bool
}

// IconsFor returns the icon visibility for m.
func IconsFor(m Mode) Icons {
	return Icons{
		LightHidden: !m.IsDark(),
		DarkHidden:  m.IsDark(),
	}
}

// State is the process-wide theme preference. Init reads the persisted value
// once, Toggle is the single mutator.
type State struct {
	mu    sync.Mutex
	store Store
	mode  Mode
}

// NewState binds a state to its store.
func NewState(store Store) *State {
	if store == nil {
		store = NewMemoryStore()
	}
	return &State{store: store, mode: ModeLight}
}

// Init resolves the current mode: a saved "dark" wins, an absent or
// unrecognized value falls back to the system preference.
func (s *State) Init(ctx context.Context, systemPrefersDark bool) (Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, ok, err := s.store.Get(ctx, StorageKey)
	if err != nil {
		return "", fmt.Errorf("theme: read preference: %w", err)
	}

	s.mode = ModeLight
	if mode, valid := ParseMode(saved); ok && valid {
		s.mode = mode
	} else if systemPrefersDark {
		s.mode = ModeDark
	}
	return s.mode, nil
}

// Mode returns the current mode.
func (s *State) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Toggle flips the mode and persists it.
func (s *State) Toggle(ctx context.Context) (Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.mode.Toggle()
	if err := s.store.Set(ctx, StorageKey, string(next)); err != nil {
		return s.mode, fmt.Errorf("theme: persist preference: %w", err)
	}
	s.mode = next
	return next, nil
}
