package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formrows/internal/logger"
	"github.com/goliatone/go-formrows/pkg/dom"
	"github.com/goliatone/go-formrows/pkg/layout"
	"github.com/goliatone/go-formrows/pkg/renderers/vanilla"
	"github.com/goliatone/go-formrows/pkg/rows"
	"github.com/goliatone/go-formrows/pkg/session"
	"github.com/goliatone/go-formrows/pkg/theme"
)

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	return newLoggedHandler(t, logger.Nop())
}

func newLoggedHandler(t *testing.T, log *logger.Logger) http.Handler {
	t.Helper()
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	seq := 0
	manager := session.NewManager(renderer, layout.DefaultCatalog(),
		session.WithIDGenerator(func() string {
			seq++
			return "s" + strconv.Itoa(seq)
		}),
		session.WithEventHook(EventLogger(log)),
	)
	handler, err := NewHandler(HandlerConfig{Sessions: manager, Logger: log})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func do(h http.Handler, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func startSession(t *testing.T, h http.Handler, formID string) string {
	t.Helper()
	rec := do(h, http.MethodGet, "/forms/"+formID, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("new session status = %d", rec.Code)
	}
	return rec.Header().Get("Location")
}

func loadPage(t *testing.T, h http.Handler, path string, cookies ...*http.Cookie) *dom.Document {
	t.Helper()
	rec := do(h, http.MethodGet, path, nil, cookies...)
	if rec.Code != http.StatusOK {
		t.Fatalf("page status = %d", rec.Code)
	}
	doc, err := dom.ParseString(rec.Body.String())
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	return doc
}

func buttonTarget(t *testing.T, doc *dom.Document, id string) string {
	t.Helper()
	button := doc.GetElementByID(id)
	if button == nil {
		t.Fatalf("button %q missing", id)
	}
	value, ok := dom.Attr(button, "value")
	if !ok {
		t.Fatalf("button %q carries no target", id)
	}
	return value
}

func loadRows(t *testing.T, h http.Handler, path string) map[string][]rows.Row {
	t.Helper()
	rec := do(h, http.MethodGet, path+"/rows", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("rows status = %d", rec.Code)
	}
	var snapshot map[string][]rows.Row
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	return snapshot
}

func TestHealthz(t *testing.T) {
	rec := do(newHandler(t), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestIndexRedirectsToFirstForm(t *testing.T) {
	h := newHandler(t)
	rec := do(h, http.MethodGet, "/", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/forms/"+layout.RecipeForm {
		t.Fatalf("index = %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if rec := do(h, http.MethodGet, "/elsewhere", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path = %d", rec.Code)
	}
}

func TestUnknownFormAndSession(t *testing.T) {
	h := newHandler(t)
	if rec := do(h, http.MethodGet, "/forms/nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown form = %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/sessions/nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session = %d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/sessions/nope", url.Values{}); rec.Code != http.StatusNotFound {
		t.Fatalf("post to unknown session = %d", rec.Code)
	}
}

func TestEditRoundTrip(t *testing.T) {
	h := newHandler(t)
	path := startSession(t, h, layout.RecipeForm)
	if path != "/sessions/s1" {
		t.Fatalf("session path = %q", path)
	}

	doc := loadPage(t, h, path)
	form := url.Values{
		"direction":         {"Preheat"},
		session.TargetField: {buttonTarget(t, doc, "add-direction")},
	}
	rec := do(h, http.MethodPost, path, form)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != path {
		t.Fatalf("interact = %d %q", rec.Code, rec.Header().Get("Location"))
	}

	directions := loadRows(t, h, path)[rows.DirectionsContainer]
	var got []string
	var numbers []int
	for _, row := range directions {
		got = append(got, row.Value("direction"))
		numbers = append(numbers, row.Number)
	}
	if diff := cmp.Diff([]string{"Preheat", ""}, got); diff != "" {
		t.Fatalf("directions (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2}, numbers); diff != "" {
		t.Fatalf("numbers (-want +got):\n%s", diff)
	}

	doc = loadPage(t, h, path)
	areas := dom.QueryAll(doc.GetElementByID(rows.DirectionsContainer), dom.ByTag("textarea"))
	if len(areas) != 2 {
		t.Fatalf("expected 2 textareas, got %d", len(areas))
	}
	if _, ok := dom.Attr(areas[1], "autofocus"); !ok {
		t.Fatalf("the added row should take focus")
	}
	if _, ok := dom.Attr(areas[0], "autofocus"); ok {
		t.Fatalf("only the added row may carry autofocus")
	}
}

func TestRemoveKeepsLastRow(t *testing.T) {
	h := newHandler(t)
	path := startSession(t, h, layout.TipForm)
	doc := loadPage(t, h, path)

	remove := dom.QueryFirst(doc.GetElementByID(rows.ItemsContainer), dom.ByClass(rows.MarkerRemove))
	target, _ := dom.Attr(remove, "value")
	form := url.Values{
		"item_name":         {"salt"},
		"item_details":      {"to taste"},
		session.TargetField: {target},
	}
	if rec := do(h, http.MethodPost, path, form); rec.Code != http.StatusSeeOther {
		t.Fatalf("interact = %d", rec.Code)
	}

	items := loadRows(t, h, path)[rows.ItemsContainer]
	if len(items) != 1 || items[0].Value("item_name") != "salt" {
		t.Fatalf("last row must survive with its values: %+v", items)
	}
}

func TestReplayedSubmitRedirectsWithoutApplying(t *testing.T) {
	var logs bytes.Buffer
	log, err := logger.New(logger.Options{Level: "debug", Writer: &logs})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	h := newLoggedHandler(t, log)
	path := startSession(t, h, layout.RecipeForm)

	doc := loadPage(t, h, path)
	add := url.Values{
		"direction":         {"Preheat"},
		session.TargetField: {buttonTarget(t, doc, "add-direction")},
	}
	revision, _ := dom.Attr(formField(t, doc, session.RevisionField), "value")
	add.Set(session.RevisionField, revision)

	for i := 0; i < 2; i++ {
		rec := do(h, http.MethodPost, path, add)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != path {
			t.Fatalf("submit %d = %d %q", i, rec.Code, rec.Header().Get("Location"))
		}
	}

	if directions := loadRows(t, h, path)[rows.DirectionsContainer]; len(directions) != 2 {
		t.Fatalf("a replayed add must not apply twice, got %d rows", len(directions))
	}

	var stale map[string]any
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if entry["message"] == "stale submission ignored" {
			stale = entry
		}
	}
	if stale == nil || stale["session"] != "s1" || stale["level"] != "warn" {
		t.Fatalf("stale submission should be logged for the session, got %v", stale)
	}
}

func formField(t *testing.T, doc *dom.Document, name string) *html.Node {
	t.Helper()
	field := dom.QueryFirst(doc.Root(), func(n *html.Node) bool { return dom.ControlName(n) == name })
	if field == nil {
		t.Fatalf("field %q missing", name)
	}
	return field
}

func TestInteractRejectsBadTarget(t *testing.T) {
	h := newHandler(t)
	path := startSession(t, h, layout.TipForm)
	rec := do(h, http.MethodPost, path, url.Values{session.TargetField: {"not-a-path"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad target = %d", rec.Code)
	}
}

func TestThemeToggleSetsCookieAndRedirects(t *testing.T) {
	h := newHandler(t)
	path := startSession(t, h, layout.TipForm)

	rec := do(h, http.MethodPost, ThemePath, url.Values{RedirectField: {path}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != path {
		t.Fatalf("toggle = %d %q", rec.Code, rec.Header().Get("Location"))
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != theme.StorageKey || cookies[0].Value != string(theme.ModeDark) {
		t.Fatalf("unexpected cookies %+v", cookies)
	}

	doc := loadPage(t, h, path, cookies[0])
	root := dom.QueryFirst(doc.Root(), dom.ByTag("html"))
	if !dom.HasClass(root, theme.DarkClass) {
		t.Fatalf("dark cookie must mark the root")
	}
	if dom.HasClass(doc.GetElementByID(theme.LightIconID), theme.HiddenClass) {
		t.Fatalf("dark mode should offer the light icon")
	}

	rec = do(h, http.MethodPost, ThemePath, url.Values{RedirectField: {path}}, cookies[0])
	if cookies := rec.Result().Cookies(); len(cookies) != 1 || cookies[0].Value != string(theme.ModeLight) {
		t.Fatalf("second toggle should go back to light, got %+v", cookies)
	}
}

func TestThemeToggleRedirectTargets(t *testing.T) {
	h := newHandler(t)
	cases := []struct {
		name     string
		redirect string
		referer  string
		want     string
	}{
		{name: "posted path", redirect: "/sessions/s9", want: "/sessions/s9"},
		{name: "protocol relative is ignored", redirect: "//evil.example/x", want: "/"},
		{name: "absolute is ignored", redirect: "https://evil.example/x", want: "/"},
		{name: "same host referer", referer: "http://example.com/forms/tip?x=1", want: "/forms/tip?x=1"},
		{name: "foreign referer", referer: "http://evil.example/forms/tip", want: "/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := url.Values{}
			if tc.redirect != "" {
				form.Set(RedirectField, tc.redirect)
			}
			req := httptest.NewRequest(http.MethodPost, ThemePath, strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tc.referer != "" {
				req.Header.Set("Referer", tc.referer)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if got := rec.Header().Get("Location"); got != tc.want {
				t.Fatalf("location = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAssetsServed(t *testing.T) {
	rec := do(newHandler(t), http.MethodGet, "/assets/"+vanilla.StylesheetName, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("asset status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/css") {
		t.Fatalf("content type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestNewHandlerRequiresSessions(t *testing.T) {
	if _, err := NewHandler(HandlerConfig{}); err == nil {
		t.Fatalf("expected error without a session manager")
	}
	if _, err := NewHandler(HandlerConfig{Sessions: session.NewManager(nil, nil), ThemeName: "missing"}); err == nil {
		t.Fatalf("expected error for an unknown theme")
	}
}
