package shelf

import (
	"net/url"
	"strconv"
	"strings"
)

// StatusSet selects which shelf statuses a listing is restricted to.
// The zero value means no restriction, all statuses included.
type StatusSet struct {
	Owned    bool
	Lent     bool
	Borrowed bool
	Library  bool
}

// Empty reports whether no status is selected.
func (s StatusSet) Empty() bool {
	return !s.Owned && !s.Lent && !s.Borrowed && !s.Library
}

// Tokens returns the selected statuses as wire tokens, in a stable order.
func (s StatusSet) Tokens() []string {
	var out []string
	if s.Owned {
		out = append(out, string(StatusOwned))
	}
	if s.Lent {
		out = append(out, string(StatusLent))
	}
	if s.Borrowed {
		out = append(out, string(StatusBorrowed))
	}
	if s.Library {
		out = append(out, string(StatusLibrary))
	}
	return out
}

// FilterCriteria narrows a listing. Empty fields do not constrain.
type FilterCriteria struct {
	Owner    string
	Title    string
	Author   string
	Statuses StatusSet
}

// SortColumn names a sortable listing column.
type SortColumn string

const (
	SortNone  SortColumn = ""
	SortOwner SortColumn = "owner"
	SortTitle SortColumn = "title"
)

// SortSpec is the single active sort, if any. The zero value means
// server default order.
type SortSpec struct {
	Column    SortColumn
	Ascending bool
}

// PageWindow is the requested slice of the listing. Page 1 and limits
// of 1 or less are server defaults and stay off the wire.
type PageWindow struct {
	Page  int
	Limit int
}

// Composer merges filter criteria, sort order and the page window into
// one wire-ready query. The three pieces mutate independently; every
// mutation is expected to be followed by exactly one refetch by the
// caller.
type Composer struct {
	filter FilterCriteria
	sort   SortSpec
	window PageWindow
}

// NewComposer returns a composer with no restrictions on page 1.
func NewComposer() *Composer {
	return &Composer{window: PageWindow{Page: 1}}
}

// SetFilter replaces the filter wholesale. Criteria are never merged
// field by field.
func (c *Composer) SetFilter(f FilterCriteria) {
	c.filter = f
}

// Filter returns the current criteria.
func (c *Composer) Filter() FilterCriteria { return c.filter }

// ToggleSort cycles the given column ascending → descending → ascending.
// Activating a column clears the other one; the first toggle on a newly
// active column always starts ascending.
func (c *Composer) ToggleSort(col SortColumn) {
	if col == SortNone {
		c.sort = SortSpec{}
		return
	}
	if c.sort.Column == col {
		c.sort.Ascending = !c.sort.Ascending
		return
	}
	c.sort = SortSpec{Column: col, Ascending: true}
}

// Sort returns the active sort spec.
func (c *Composer) Sort() SortSpec { return c.sort }

// SetPage moves the window. Anything at or below 1 resets to the first
// page, which is omitted from the wire query.
func (c *Composer) SetPage(n int) {
	if n <= 1 {
		n = 1
	}
	c.window.Page = n
}

// Page returns the current page, 1-based.
func (c *Composer) Page() int { return c.window.Page }

// SetLimit sets the page size. A limit of 1 or less is treated as
// unset and left to the server default.
func (c *Composer) SetLimit(n int) {
	if n <= 1 {
		n = 0
	}
	c.window.Limit = n
}

// Limit returns the page size, 0 when unset.
func (c *Composer) Limit() int { return c.window.Limit }

// Compose flattens filter, sort and window into one query. Empty
// fields are omitted entirely, never sent as empty strings. The
// status restriction is a comma-joined token list, absent when the
// set is empty (empty set means unrestricted, not zero results).
func (c *Composer) Compose() url.Values {
	q := url.Values{}
	if c.filter.Owner != "" {
		q.Set("owner", c.filter.Owner)
	}
	if c.filter.Title != "" {
		q.Set("title", c.filter.Title)
	}
	if c.filter.Author != "" {
		q.Set("author", c.filter.Author)
	}
	if !c.filter.Statuses.Empty() {
		q.Set("status", strings.Join(c.filter.Statuses.Tokens(), ","))
	}
	if c.sort.Column != SortNone {
		dir := "desc"
		if c.sort.Ascending {
			dir = "asc"
		}
		q.Set(string(c.sort.Column)+"_sort", dir)
	}
	if c.window.Page > 1 {
		q.Set("page", strconv.Itoa(c.window.Page))
	}
	if c.window.Limit > 1 {
		q.Set("limit", strconv.Itoa(c.window.Limit))
	}
	return q
}
