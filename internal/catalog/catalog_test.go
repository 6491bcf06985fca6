package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shelfmate/shelfmate/internal/api"
	"github.com/shelfmate/shelfmate/internal/catalog"
	"github.com/shelfmate/shelfmate/internal/session"
)

func searchClient(t *testing.T, handler http.HandlerFunc) *catalog.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	sess := session.NewStore(filepath.Join(t.TempDir(), "session.yml"))
	if err := sess.Save("tok", 3600); err != nil {
		t.Fatal(err)
	}
	return catalog.NewClient(api.New(srv.URL, sess, nil), 100, 1)
}

// --- Search client ---

func TestSearch_ParsesAndFiltersDocs(t *testing.T) {
	c := searchClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.URL.Query().Get("q") != "the hobbit" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"docs":[
			{"key":"/works/OL1W","title":"The Hobbit","author_name":["J. R. R. Tolkien"]},
			{}
		]}`))
	})

	results, err := c.Search(context.Background(), "the hobbit")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected the empty doc filtered out, got %d results", len(results))
	}
	if results[0].Key != "/works/OL1W" {
		t.Errorf("Key = %q", results[0].Key)
	}
}

func TestSearch_RetriesTransientFailures(t *testing.T) {
	calls := 0
	c := searchClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"docs":[{"key":"k","title":"t"}]}`))
	})

	results, err := c.Search(context.Background(), "x")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(results) != 1 {
		t.Errorf("results = %v", results)
	}
}

func TestSearch_SessionExpiryNotRetried(t *testing.T) {
	calls := 0
	c := searchClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	})

	if _, err := c.Search(context.Background(), "x"); err != api.ErrSessionExpired {
		t.Errorf("err = %v, want ErrSessionExpired", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on auth failure)", calls)
	}
}

// --- Picker state machine ---

func TestPicker_SearchLifecycle(t *testing.T) {
	p := catalog.NewPicker()
	if p.State() != catalog.PickerIdle {
		t.Fatal("new picker must be idle")
	}

	p.SetQuery("dune")
	if !p.BeginSearch() {
		t.Fatal("BeginSearch with a query must start loading")
	}
	if p.State() != catalog.PickerLoading {
		t.Errorf("state = %v, want loading", p.State())
	}
	if rows := p.Rows(); len(rows) != 1 || rows[0].Title != "Loading..." {
		t.Errorf("loading placeholder = %v", rows)
	}

	p.SetResults(nil)
	if p.State() != catalog.PickerEmpty {
		t.Errorf("state = %v, want empty", p.State())
	}
	if rows := p.Rows(); len(rows) != 1 || rows[0].Title != "No books found" {
		t.Errorf("empty placeholder = %v", rows)
	}
}

func TestPicker_ChooseCollapsesResults(t *testing.T) {
	p := catalog.NewPicker()
	p.SetQuery("dune")
	p.BeginSearch()
	p.SetResults([]catalog.Result{
		{Key: "a", Title: "Dune"},
		{Key: "b", Title: "Dune Messiah"},
	})

	chosen := p.Choose("b")
	if chosen == nil || chosen.Key != "b" {
		t.Fatalf("Choose = %v", chosen)
	}
	if p.State() != catalog.PickerChosen {
		t.Errorf("state = %v, want chosen", p.State())
	}
	if rows := p.Rows(); len(rows) != 1 || rows[0].Key != "b" {
		t.Errorf("collapsed rows = %v", rows)
	}
}

func TestPicker_ChooseIgnoredWhenClosedOrUnknown(t *testing.T) {
	p := catalog.NewPicker()
	if p.Choose("a") != nil {
		t.Error("choosing from a closed list must be ignored")
	}
	p.SetQuery("q")
	p.BeginSearch()
	p.SetResults([]catalog.Result{{Key: "a"}})
	if p.Choose("zzz") != nil {
		t.Error("choosing an unknown key must be ignored")
	}
}

func TestPicker_EmptyQueryDoesNotSearch(t *testing.T) {
	p := catalog.NewPicker()
	if p.BeginSearch() {
		t.Error("empty query must not start a search")
	}
	if !p.Touched() {
		t.Error("a submit attempt marks the control touched")
	}
}

func TestPicker_DisabledRejectsInteraction(t *testing.T) {
	p := catalog.NewPicker()
	p.Preselect(catalog.Result{Key: "a", Title: "Dune"})
	p.SetDisabled(true)

	p.SetQuery("other")
	if p.Query() != "" {
		t.Error("disabled picker must ignore query edits")
	}
	if p.BeginSearch() {
		t.Error("disabled picker must not search")
	}
	if p.Choose("a") != nil {
		t.Error("disabled picker must not re-choose")
	}
	if p.Chosen() == nil || p.Chosen().Key != "a" {
		t.Error("preselected choice must survive disabling")
	}
}
