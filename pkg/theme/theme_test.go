package theme

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formrows/pkg/dom"
)

func TestInitResolvesPreference(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name         string
		saved        string
		systemDark   bool
		want         Mode
		seedPrevious bool
	}{
		{name: "nothing saved, light system", want: ModeLight},
		{name: "nothing saved, dark system", systemDark: true, want: ModeDark},
		{name: "saved dark wins", saved: "dark", seedPrevious: true, want: ModeDark},
		{name: "saved light beats dark system", saved: "light", seedPrevious: true, systemDark: true, want: ModeLight},
		{name: "garbage falls back to system", saved: "sepia", seedPrevious: true, systemDark: true, want: ModeDark},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewMemoryStore()
			if tc.seedPrevious {
				_ = store.Set(ctx, StorageKey, tc.saved)
			}
			state := NewState(store)
			got, err := state.Init(ctx, tc.systemDark)
			if err != nil {
				t.Fatalf("init: %v", err)
			}
			if got != tc.want || state.Mode() != tc.want {
				t.Fatalf("mode = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestTogglePersistsAndReapplies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	state := NewState(store)
	if _, err := state.Init(ctx, false); err != nil {
		t.Fatalf("init: %v", err)
	}

	mode, err := state.Toggle(ctx)
	if err != nil || mode != ModeDark {
		t.Fatalf("toggle = %s, %v", mode, err)
	}
	saved, ok, _ := store.Get(ctx, StorageKey)
	if !ok || saved != "dark" {
		t.Fatalf("persisted %q (%v)", saved, ok)
	}

	reloaded := NewState(store)
	if mode, _ := reloaded.Init(ctx, false); mode != ModeDark {
		t.Fatalf("reload should apply saved dark, got %s", mode)
	}
	if mode, _ := reloaded.Init(ctx, false); mode != ModeDark {
		t.Fatalf("init must be idempotent, got %s", mode)
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (failingStore) Set(context.Context, string, string) error         { return errors.New("disk full") }

func TestToggleKeepsModeWhenPersistFails(t *testing.T) {
	state := NewState(failingStore{})
	if _, err := state.Toggle(context.Background()); err == nil {
		t.Fatalf("expected persist error")
	}
	if state.Mode() != ModeLight {
		t.Fatalf("mode must not change on failed persist")
	}
}

func TestIconsAndRootClass(t *testing.T) {
	if diff := cmp.Diff(Icons{LightHidden: false, DarkHidden: true}, IconsFor(ModeDark)); diff != "" {
		t.Fatalf("dark icons (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Icons{LightHidden: true, DarkHidden: false}, IconsFor(ModeLight)); diff != "" {
		t.Fatalf("light icons (-want +got):\n%s", diff)
	}
	if ModeDark.RootClass() != DarkClass || ModeLight.RootClass() != "" {
		t.Fatalf("unexpected root classes")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "prefs.yaml")
	store := NewFileStore(path)

	if _, ok, err := store.Get(ctx, StorageKey); ok || err != nil {
		t.Fatalf("missing file should read as empty: %v %v", ok, err)
	}
	if err := store.Set(ctx, StorageKey, "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "theme: dark\n" {
		t.Fatalf("unexpected file contents %q", data)
	}

	value, ok, err := NewFileStore(path).Get(ctx, StorageKey)
	if err != nil || !ok || value != "dark" {
		t.Fatalf("get = %q %v %v", value, ok, err)
	}
}

func TestCookieStore(t *testing.T) {
	ctx := context.Background()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: StorageKey, Value: "dark"})
	rec := httptest.NewRecorder()

	store := NewCookieStore(rec, req)
	value, ok, err := store.Get(ctx, StorageKey)
	if err != nil || !ok || value != "dark" {
		t.Fatalf("get = %q %v %v", value, ok, err)
	}

	if err := store.Set(ctx, StorageKey, "light"); err != nil {
		t.Fatalf("set: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != "light" || !cookies[0].HttpOnly {
		t.Fatalf("unexpected cookies %+v", cookies)
	}
}

func TestResolveVariantTokens(t *testing.T) {
	cfg, err := Resolve(DefaultSelector(), "", ModeDark)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Theme != DefaultThemeName || cfg.Variant != "dark" {
		t.Fatalf("unexpected selection %s/%s", cfg.Theme, cfg.Variant)
	}
	if cfg.CSSVars["--bg"] != "#111827" || cfg.CSSVars["--radius"] != "0.5rem" {
		t.Fatalf("css vars not merged: %v", cfg.CSSVars)
	}
	if got := cfg.AssetURL("stylesheet"); got != "/assets/formrows.css" {
		t.Fatalf("asset url = %q", got)
	}
	if got := cfg.AssetURL("missing"); got != "" {
		t.Fatalf("unknown asset should resolve empty, got %q", got)
	}
}

func TestSelectorErrors(t *testing.T) {
	selector := DefaultSelector()
	if _, err := selector.Select("nope", ""); !errors.Is(err, ErrThemeNotFound) {
		t.Fatalf("expected ErrThemeNotFound, got %v", err)
	}
	if _, err := selector.Select("", "sepia"); !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("expected ErrVariantNotFound, got %v", err)
	}
	if err := selector.Register(DefaultManifest()); err == nil {
		t.Fatalf("duplicate manifest should fail")
	}
	if err := selector.Register(&gotheme.Manifest{Name: "acme"}); err != nil {
		t.Fatalf("register acme: %v", err)
	}
	if diff := cmp.Diff([]string{"acme", DefaultThemeName}, selector.Names()); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
}

func TestResolveAllReturnsBothVariants(t *testing.T) {
	light, dark, err := ResolveAll(DefaultSelector(), "")
	if err != nil {
		t.Fatalf("resolve all: %v", err)
	}
	if light.CSSVars["--bg"] != "#ffffff" || dark.CSSVars["--bg"] != "#111827" {
		t.Fatalf("unexpected palettes: light=%v dark=%v", light.CSSVars, dark.CSSVars)
	}
}

func TestApplyFlipsRootClassAndIcons(t *testing.T) {
	doc := dom.MustParseString(`<!DOCTYPE html><html lang="en"><body>
<button id="theme-toggle"><span id="theme-toggle-light-icon" class="theme-icon hidden"></span><span id="theme-toggle-dark-icon" class="theme-icon"></span></button>
</body></html>`)
	root := dom.QueryFirst(doc.Root(), dom.ByTag("html"))

	Apply(doc, ModeDark)
	if !dom.HasClass(root, DarkClass) {
		t.Fatalf("dark mode must set the root class")
	}
	if dom.HasClass(doc.GetElementByID(LightIconID), HiddenClass) || !dom.HasClass(doc.GetElementByID(DarkIconID), HiddenClass) {
		t.Fatalf("dark mode should offer the light icon")
	}

	Apply(doc, ModeLight)
	if dom.HasClass(root, DarkClass) {
		t.Fatalf("light mode must clear the root class")
	}
	if !dom.HasClass(doc.GetElementByID(LightIconID), HiddenClass) || dom.HasClass(doc.GetElementByID(DarkIconID), HiddenClass) {
		t.Fatalf("light mode should offer the dark icon")
	}

	Apply(dom.MustParseString(`<p>no toggle</p>`), ModeDark)
}
