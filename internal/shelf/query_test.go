package shelf_test

import (
	"testing"

	"github.com/shelfmate/shelfmate/internal/shelf"
)

// --- Filter composition ---

func TestCompose_EmptyStatusSetOmitsStatus(t *testing.T) {
	c := shelf.NewComposer()
	c.SetFilter(shelf.FilterCriteria{Title: "Dune"})
	q := c.Compose()
	if q.Has("status") {
		t.Errorf("empty status set must omit the status key, got %q", q.Get("status"))
	}
	if q.Get("title") != "Dune" {
		t.Errorf("title = %q, want %q", q.Get("title"), "Dune")
	}
}

func TestCompose_StatusTokensJoined(t *testing.T) {
	c := shelf.NewComposer()
	c.SetFilter(shelf.FilterCriteria{
		Statuses: shelf.StatusSet{Owned: true, Borrowed: true, Library: true},
	})
	got := c.Compose().Get("status")
	if got != "owned,borrowed,library" {
		t.Errorf("status = %q, want %q", got, "owned,borrowed,library")
	}
}

func TestCompose_EmptyFieldsOmitted(t *testing.T) {
	c := shelf.NewComposer()
	q := c.Compose()
	if len(q) != 0 {
		t.Errorf("neutral composer must produce an empty query, got %v", q)
	}
}

func TestSetFilter_ReplacesWholesale(t *testing.T) {
	c := shelf.NewComposer()
	c.SetFilter(shelf.FilterCriteria{Owner: "Alex", Title: "Dune"})
	c.SetFilter(shelf.FilterCriteria{Author: "Herbert"})
	q := c.Compose()
	if q.Has("owner") || q.Has("title") {
		t.Errorf("old criteria leaked into replaced filter: %v", q)
	}
	if q.Get("author") != "Herbert" {
		t.Errorf("author = %q, want %q", q.Get("author"), "Herbert")
	}
}

// --- Sort toggling ---

func TestToggleSort_CyclesDirection(t *testing.T) {
	c := shelf.NewComposer()

	c.ToggleSort(shelf.SortTitle)
	if got := c.Compose().Get("title_sort"); got != "asc" {
		t.Errorf("first toggle: title_sort = %q, want asc", got)
	}
	c.ToggleSort(shelf.SortTitle)
	if got := c.Compose().Get("title_sort"); got != "desc" {
		t.Errorf("second toggle: title_sort = %q, want desc", got)
	}
	c.ToggleSort(shelf.SortTitle)
	if got := c.Compose().Get("title_sort"); got != "asc" {
		t.Errorf("third toggle: title_sort = %q, want asc", got)
	}
}

func TestToggleSort_SwitchingColumnsClearsOther(t *testing.T) {
	c := shelf.NewComposer()
	c.ToggleSort(shelf.SortTitle)
	c.ToggleSort(shelf.SortTitle) // title descending
	c.ToggleSort(shelf.SortOwner)

	q := c.Compose()
	if q.Has("title_sort") {
		t.Errorf("title sort must be cleared when owner sort activates, got %q", q.Get("title_sort"))
	}
	// A newly active column always starts ascending, regardless of the
	// direction the previous column was left in.
	if got := q.Get("owner_sort"); got != "asc" {
		t.Errorf("owner_sort = %q, want asc", got)
	}
}

// --- Pagination window ---

func TestSetPage_FirstPageOmitted(t *testing.T) {
	c := shelf.NewComposer()
	c.SetPage(1)
	if c.Compose().Has("page") {
		t.Error("page 1 must be omitted from the query")
	}
	c.SetPage(0)
	if c.Compose().Has("page") {
		t.Error("page <= 1 must reset to first page and stay off the wire")
	}
	if c.Page() != 1 {
		t.Errorf("Page() = %d, want 1", c.Page())
	}
	c.SetPage(2)
	if got := c.Compose().Get("page"); got != "2" {
		t.Errorf("page = %q, want 2", got)
	}
}

func TestSetLimit_MinimumTreatedAsUnset(t *testing.T) {
	c := shelf.NewComposer()
	c.SetLimit(1)
	if c.Compose().Has("limit") {
		t.Error("limit <= 1 must be omitted")
	}
	c.SetLimit(25)
	if got := c.Compose().Get("limit"); got != "25" {
		t.Errorf("limit = %q, want 25", got)
	}
}

// --- Combined scenario ---

func TestCompose_FilterSortWindowTogether(t *testing.T) {
	c := shelf.NewComposer()
	c.SetFilter(shelf.FilterCriteria{Title: "Hobbit"})
	c.ToggleSort(shelf.SortTitle)
	c.SetPage(2)
	c.SetLimit(10)

	q := c.Compose()
	want := map[string]string{
		"title":      "Hobbit",
		"title_sort": "asc",
		"page":       "2",
		"limit":      "10",
	}
	if len(q) != len(want) {
		t.Fatalf("query has %d keys, want %d: %v", len(q), len(want), q)
	}
	for k, v := range want {
		if q.Get(k) != v {
			t.Errorf("%s = %q, want %q", k, q.Get(k), v)
		}
	}
}
