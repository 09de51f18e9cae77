package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ucformula/sponsor-scout/internal/api/handler"
	"github.com/ucformula/sponsor-scout/internal/api/router"
	"github.com/ucformula/sponsor-scout/internal/filtering"
	"github.com/ucformula/sponsor-scout/internal/outreach"
	"github.com/ucformula/sponsor-scout/internal/sponsor"
	"github.com/ucformula/sponsor-scout/internal/store/file"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubDiscoverer struct {
	list  *sponsor.Candidates
	err   error
	calls int
	// untilDone blocks Discover until its context is cancelled.
	untilDone bool
	ctxErr    error
}

func (s *stubDiscoverer) Discover(ctx context.Context) (*sponsor.Candidates, error) {
	s.calls++
	if s.untilDone {
		<-ctx.Done()
	}
	s.ctxErr = ctx.Err()
	return s.list, s.err
}

type fixture struct {
	engine     *gin.Engine
	store      *file.Store
	discoverer *stubDiscoverer
}

func newFixture(t *testing.T, opts handler.Options, seed ...*sponsor.Candidate) *fixture {
	t.Helper()

	log := zaptest.NewLogger(t)
	st, err := file.New(filepath.Join(t.TempDir(), "data"), log)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	if len(seed) > 0 {
		if err := st.UpsertSponsors(context.Background(), &sponsor.Candidates{Items: seed}); err != nil {
			t.Fatalf("seeding store: %v", err)
		}
	}

	discoverer := &stubDiscoverer{list: &sponsor.Candidates{Items: []*sponsor.Candidate{}}}
	generator := outreach.NewService(st, outreach.Config{OutputDir: filepath.Join(t.TempDir(), "letters")}, nil, log)

	engine := router.New(zap.NewNop(), "*")
	router.RegisterRoutes(engine, handler.NewSponsorHandler(discoverer, generator, st, opts, log))

	return &fixture{engine: engine, store: st, discoverer: discoverer}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func names(t *testing.T, raw any) []string {
	t.Helper()

	items, ok := raw.([]any)
	if !ok {
		t.Fatalf("expected a list, got %T", raw)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.(map[string]any)["name"].(string))
	}
	return out
}

func TestHello(t *testing.T) {
	f := newFixture(t, handler.Options{})

	rec, body := f.do(t, http.MethodGet, "/api/hello", "")
	if rec.Code != http.StatusOK || body["message"] != "Hello, World!" {
		t.Fatalf("unexpected response %d %v", rec.Code, body)
	}
}

func TestScrapeReturnsCandidates(t *testing.T) {
	f := newFixture(t, handler.Options{})
	f.discoverer.list = &sponsor.Candidates{Items: []*sponsor.Candidate{
		{Name: "Acme", Website: "https://acme.example", SearchQuery: "q"},
	}}

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec, _ := f.do(t, method, "/api/scrape", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: unexpected status %d", method, rec.Code)
		}

		var items []map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
			t.Fatalf("decoding list: %v", err)
		}
		if len(items) != 1 || items[0]["name"] != "Acme" || items[0]["search_query"] != "q" {
			t.Fatalf("unexpected body %s", rec.Body.String())
		}
		if _, ok := items[0]["email"]; ok {
			t.Fatalf("absent contact fields must be omitted: %s", rec.Body.String())
		}
	}
	if f.discoverer.calls != 2 {
		t.Fatalf("expected two discovery runs, got %d", f.discoverer.calls)
	}
}

func TestScrapeOutlivesClientDisconnect(t *testing.T) {
	f := newFixture(t, handler.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/scrape", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if f.discoverer.ctxErr != nil {
		t.Fatalf("discovery must not see the request cancellation, got %v", f.discoverer.ctxErr)
	}
}

func TestScrapeStopsWithServerLifetime(t *testing.T) {
	lifetime, cancel := context.WithCancel(context.Background())
	cancel()

	f := newFixture(t, handler.Options{Lifetime: lifetime})
	f.discoverer.untilDone = true
	f.discoverer.err = context.Canceled

	rec, _ := f.do(t, http.MethodPost, "/api/scrape", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !errors.Is(f.discoverer.ctxErr, context.Canceled) {
		t.Fatalf("expected discovery cancelled by server lifetime, got %v", f.discoverer.ctxErr)
	}
}

func TestInternalErrorsHideDetailsByDefault(t *testing.T) {
	f := newFixture(t, handler.Options{})
	f.discoverer.err = errors.New("mongo: connection refused")

	rec, body := f.do(t, http.MethodGet, "/api/scrape", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if body["success"] != false || body["message"] != "Internal server error" {
		t.Fatalf("unexpected body %v", body)
	}

	exposed := newFixture(t, handler.Options{ExposeErrors: true})
	exposed.discoverer.err = errors.New("mongo: connection refused")

	_, body = exposed.do(t, http.MethodGet, "/api/scrape", "")
	if body["message"] != "Error: mongo: connection refused" {
		t.Fatalf("expected error text, got %v", body["message"])
	}
}

func TestSponsorsProjectionDropsJunk(t *testing.T) {
	f := newFixture(t, handler.Options{Filters: filtering.Config{ExcludedNames: []string{"Globex"}}},
		&sponsor.Candidate{Name: "Acme"},
		&sponsor.Candidate{Name: "r/FSAE - reddit.com"},
		&sponsor.Candidate{Name: "Globex"},
		&sponsor.Candidate{Name: "Who sponsors racing? quora.com"},
	)

	rec, body := f.do(t, http.MethodGet, "/api/sponsors", "")
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("unexpected response %d %v", rec.Code, body)
	}
	if got := names(t, body["sponsors"]); len(got) != 1 || got[0] != "Acme" {
		t.Fatalf("unexpected sponsors %v", got)
	}

	stored, err := f.store.ListSponsors(context.Background())
	if err != nil {
		t.Fatalf("listing sponsors: %v", err)
	}
	if stored.Len() != 4 {
		t.Fatalf("projection must not modify the store, got %d", stored.Len())
	}
}

func TestSponsorsEmptyStore(t *testing.T) {
	f := newFixture(t, handler.Options{})

	rec, _ := f.do(t, http.MethodGet, "/api/sponsors", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"sponsors":[]`) {
		t.Fatalf("expected empty list, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeAndAnalyzedSponsors(t *testing.T) {
	f := newFixture(t, handler.Options{Filters: filtering.Config{MinimumScore: 5}},
		&sponsor.Candidate{Name: "Plain", Description: "a bakery"},
		&sponsor.Candidate{Name: "Racer", Description: "automotive racing", CareersPage: "https://racer.example/careers"},
		&sponsor.Candidate{Name: "Volt", Description: "electric"},
	)

	rec, body := f.do(t, http.MethodPost, "/api/analyze", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %v", rec.Code, body)
	}
	if got := names(t, body["sponsors"]); strings.Join(got, ",") != "Racer,Volt" {
		t.Fatalf("unexpected analyzed order %v", got)
	}

	rec, body = f.do(t, http.MethodGet, "/api/analyzed-sponsors", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	items := body["sponsors"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 analyzed sponsors, got %d", len(items))
	}
	analysis := items[0].(map[string]any)["fit_analysis"].(map[string]any)
	if analysis["score"] != float64(20) {
		t.Fatalf("unexpected score %v", analysis["score"])
	}
}

func TestGenerateForSponsor(t *testing.T) {
	f := newFixture(t, handler.Options{}, &sponsor.Candidate{Name: "Acme Corp", Description: "anvils"})

	rec, body := f.do(t, http.MethodPost, "/api/generate", `{
		"sponsor_name": "acme",
		"club_description": "We build race cars.",
		"university_description": "A university.",
		"user_name": "Jane"
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %v", rec.Code, body)
	}

	content, _ := body["template_content"].(string)
	if !strings.Contains(content, "My name is Jane") || !strings.Contains(content, "We build race cars.") {
		t.Fatalf("unexpected content %q", content)
	}
	if path, _ := body["template_path"].(string); !strings.HasSuffix(path, "Acme_Corp_email_template.txt") {
		t.Fatalf("unexpected path %q", path)
	}

	rec, body = f.do(t, http.MethodGet, "/api/templates/Acme%20Corp", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	tpl := body["template"].(map[string]any)
	if tpl["template_content"] != content {
		t.Fatalf("stored template differs from generated content")
	}

	_, body = f.do(t, http.MethodGet, "/api/templates", "")
	if templates := body["templates"].([]any); len(templates) != 1 {
		t.Fatalf("expected one template, got %d", len(templates))
	}
}

func TestGenerateNotFound(t *testing.T) {
	f := newFixture(t, handler.Options{}, &sponsor.Candidate{Name: "Acme"})

	rec, body := f.do(t, http.MethodPost, "/api/generate", `{"sponsor_name": "Initech"}`)
	if rec.Code != http.StatusNotFound || body["success"] != false {
		t.Fatalf("unexpected response %d %v", rec.Code, body)
	}

	empty := newFixture(t, handler.Options{})
	rec, body = empty.do(t, http.MethodPost, "/api/generate", `{}`)
	if rec.Code != http.StatusNotFound || !strings.HasPrefix(body["message"].(string), "No sponsors found") {
		t.Fatalf("unexpected response %d %v", rec.Code, body)
	}
}

func TestGenerateAll(t *testing.T) {
	f := newFixture(t, handler.Options{},
		&sponsor.Candidate{Name: "Acme"},
		&sponsor.Candidate{Name: "thread on reddit.com"},
		&sponsor.Candidate{Name: "Globex"},
	)

	rec, body := f.do(t, http.MethodPost, "/api/generate", `{"club_description": "Club"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %v", rec.Code, body)
	}
	paths := body["template_paths"].(map[string]any)
	if len(paths) != 2 || paths["Acme"] == nil || paths["Globex"] == nil {
		t.Fatalf("unexpected paths %v", paths)
	}
}

func TestGenerateRejectsMalformedBody(t *testing.T) {
	f := newFixture(t, handler.Options{})

	rec, body := f.do(t, http.MethodPost, "/api/generate", `{"sponsor_name": `)
	if rec.Code != http.StatusBadRequest || body["success"] != false {
		t.Fatalf("unexpected response %d %v", rec.Code, body)
	}
}

func TestTemplateNotFound(t *testing.T) {
	f := newFixture(t, handler.Options{})

	for _, path := range []string{"/api/templates/Nobody", "/api/templates/x%20reddit.com"} {
		rec, body := f.do(t, http.MethodGet, path, "")
		if rec.Code != http.StatusNotFound || body["success"] != false {
			t.Fatalf("%s: unexpected response %d %v", path, rec.Code, body)
		}
	}
}

func TestFiltersStatus(t *testing.T) {
	f := newFixture(t, handler.Options{Filters: filtering.Config{ExcludedNames: []string{"Globex"}, MinimumScore: 10}})

	rec, body := f.do(t, http.MethodGet, "/api/filters", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	filters := body["filters"].([]any)
	if len(filters) != 3 {
		t.Fatalf("expected 3 filters, got %d", len(filters))
	}
	last := filters[2].(map[string]any)
	if last["name"] != "minimum_score" || last["details"].(map[string]any)["minimum_score"] != "10" {
		t.Fatalf("unexpected status %v", last)
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, handler.Options{})

	rec, _ := f.do(t, http.MethodOptions, "/api/generate", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}
