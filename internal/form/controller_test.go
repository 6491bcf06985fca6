package form_test

import (
	"errors"
	"testing"

	"github.com/shelfmate/shelfmate/internal/api"
	"github.com/shelfmate/shelfmate/internal/catalog"
	"github.com/shelfmate/shelfmate/internal/form"
	"github.com/shelfmate/shelfmate/internal/shelf"
)

func lentBook() shelf.ShelvedBook {
	return shelf.ShelvedBook{
		ID:        "42",
		BookKey:   "/works/OL1W",
		Title:     "The Hobbit",
		Authors:   []string{"J. R. R. Tolkien"},
		Status:    shelf.StatusLent,
		OtherName: "Alex",
		Date:      "2025-02-01",
	}
}

func TestAddForm_StartsReadyAndOwned(t *testing.T) {
	c := form.NewAdd(false)
	if c.Phase() != form.PhaseReady {
		t.Errorf("phase = %v, want ready", c.Phase())
	}
	if c.Status() != shelf.StatusOwned {
		t.Errorf("status = %v, want owned", c.Status())
	}
	if c.CanSubmit() {
		t.Error("empty form must not be submittable")
	}
	c.SelectBook(catalog.Result{Key: "/works/OL1W", Title: "The Hobbit"})
	if !c.CanSubmit() {
		t.Error("a chosen book makes the form submittable")
	}
}

func TestWishlistForm_PinsStatus(t *testing.T) {
	c := form.NewAdd(true)
	if c.Status() != shelf.StatusWishlist {
		t.Errorf("status = %v, want wishlist", c.Status())
	}
	if !c.StatusDisabled() {
		t.Error("wishlist dialog must pin the status")
	}
	if c.ShowOtherFields() {
		t.Error("wishlist entries carry no counterparty fields")
	}
	c.SetStatus(shelf.StatusBorrowed)
	if c.Status() != shelf.StatusWishlist {
		t.Error("pinned status must reject changes")
	}
}

func TestEditForm_PopulatesFromFetch(t *testing.T) {
	c := form.NewEdit(form.ModeEdit, false)
	if c.Phase() != form.PhaseLoading {
		t.Fatalf("phase = %v, want loading", c.Phase())
	}
	c.Populate(lentBook())
	if c.Phase() != form.PhaseReady {
		t.Errorf("phase = %v, want ready", c.Phase())
	}
	if c.Book() == nil || c.Book().Key != "/works/OL1W" {
		t.Errorf("book = %v", c.Book())
	}
	if c.Status() != shelf.StatusLent || c.OtherName() != "Alex" || c.Date() != "2025-02-01" {
		t.Errorf("fields = %v %q %q", c.Status(), c.OtherName(), c.Date())
	}
}

func TestEditForm_FailedLoadIsTerminal(t *testing.T) {
	c := form.NewEdit(form.ModeEdit, false)
	c.FailLoad()
	if c.Phase() != form.PhaseFailed {
		t.Errorf("phase = %v, want failed", c.Phase())
	}
	c.SetStatus(shelf.StatusOwned)
	if c.Status() != "" {
		t.Error("failed dialog must reject edits")
	}
}

func TestLendForm_PinsBookAndStatus(t *testing.T) {
	c := form.NewEdit(form.ModeLend, false)
	book := lentBook()
	book.Status = shelf.StatusOwned
	book.OtherName = ""
	book.Date = ""
	c.Populate(book)

	if c.Status() != shelf.StatusLent {
		t.Errorf("status = %v, want lent", c.Status())
	}
	if !c.BookDisabled() || !c.StatusDisabled() {
		t.Error("lend mode must pin book and status")
	}
	if got := c.OtherNameLabel(); got != "Lend to (optional)" {
		t.Errorf("other label = %q", got)
	}
	if got := c.DateLabel(); got != "Lend on (optional)" {
		t.Errorf("date label = %q", got)
	}
	c.SelectBook(catalog.Result{Key: "other"})
	if c.Book().Key != "/works/OL1W" {
		t.Error("pinned book must reject changes")
	}
}

func TestVisibility_TracksStatus(t *testing.T) {
	c := form.NewAdd(false)
	if c.ShowOtherFields() {
		t.Error("owned hides the counterparty fields")
	}
	c.SetStatus(shelf.StatusBorrowed)
	if !c.ShowOtherFields() {
		t.Error("borrowed shows the counterparty fields")
	}
	c.SetStatus(shelf.StatusOwned)
	if c.ShowOtherFields() {
		t.Error("returning to owned hides them again")
	}
}

func TestLabels_PerStatus(t *testing.T) {
	c := form.NewEdit(form.ModeEdit, false)
	c.Populate(lentBook())

	if got := c.OtherNameLabel(); got != "Lent to (optional)" {
		t.Errorf("lent other label = %q", got)
	}
	if got := c.DateLabel(); got != "Lent on (optional)" {
		t.Errorf("lent date label = %q", got)
	}
	c.SetStatus(shelf.StatusLibrary)
	if got := c.DateLabel(); got != "Due (optional)" {
		t.Errorf("library date label = %q", got)
	}
	if got := c.OtherNameLabel(); got != "Owner name (optional)" {
		t.Errorf("library other label = %q", got)
	}
	c.SetStatus(shelf.StatusBorrowed)
	if got := c.OtherNameLabel(); got != "Owner name (optional)" {
		t.Errorf("borrowed other label = %q", got)
	}
	if got := c.DateLabel(); got != "Borrowed on (optional)" {
		t.Errorf("borrowed date label = %q", got)
	}
}

func TestStatusOptions_PerMode(t *testing.T) {
	add := form.NewAdd(false)
	for _, s := range add.StatusOptions() {
		if s == shelf.StatusLent {
			t.Error("add dialog must not offer lent")
		}
	}
	edit := form.NewEdit(form.ModeEdit, false)
	edit.Populate(lentBook())
	found := false
	for _, s := range edit.StatusOptions() {
		if s == shelf.StatusLent {
			found = true
		}
	}
	if !found {
		t.Error("edit dialog must offer lent")
	}
}

// A lent book edited back to owned transmits neither counterparty nor
// date, even though the hidden fields still hold stale values.
func TestPayload_NormalizesStaleFields(t *testing.T) {
	c := form.NewEdit(form.ModeEdit, false)
	c.Populate(lentBook())
	c.SetStatus(shelf.StatusOwned)
	if !c.BeginSubmit() {
		t.Fatal("form must be submittable")
	}

	p := c.Payload()
	if p.Status != shelf.StatusOwned {
		t.Errorf("status = %v", p.Status)
	}
	if p.OtherName != "" || p.Date != "" {
		t.Errorf("stale fields leaked: other_name=%q date=%q", p.OtherName, p.Date)
	}
	if p.ID != "42" || p.BookKey != "/works/OL1W" {
		t.Errorf("identity lost: %+v", p)
	}
}

func TestInvalidDate_BlocksSubmit(t *testing.T) {
	c := form.NewAdd(false)
	c.SelectBook(catalog.Result{Key: "k"})
	c.SetStatus(shelf.StatusBorrowed)
	c.SetDate("02/01/2025")
	if c.CanSubmit() {
		t.Error("malformed date must block submission")
	}
	c.SetDate("2025-02-01")
	if !c.CanSubmit() {
		t.Error("well-formed date must submit")
	}
}

// Server validation errors attach to fields, show only on fields the
// user has interacted with, and leave the form retryable.
func TestSubmitError_FieldMappingAndGating(t *testing.T) {
	c := form.NewAdd(false)
	c.SelectBook(catalog.Result{Key: "k", Title: "t"})
	if !c.BeginSubmit() {
		t.Fatal("form must be submittable")
	}

	c.HandleSubmitError(&api.FormError{
		Message: "Validation failed",
		Fields: []api.FieldError{
			{Path: "book_key", Message: "Title is required"},
			{Path: "date", Message: "Bad date"},
		},
	})

	if c.Phase() != form.PhaseReady {
		t.Errorf("phase = %v, want ready (retryable)", c.Phase())
	}
	if got := c.FieldError(form.FieldBook); got != "Title is required" {
		t.Errorf("book_key path must remap to the catalog field, got %q", got)
	}
	// The book field was edited before submit, so its error is visible.
	if got := c.VisibleFieldError(form.FieldBook); got != "Title is required" {
		t.Errorf("visible book error = %q", got)
	}
	// The date field is pristine, its error stays hidden until edited.
	if got := c.VisibleFieldError(form.FieldDate); got != "" {
		t.Errorf("pristine date field must not show %q", got)
	}
	c.SetDate("x")
	if got := c.VisibleFieldError(form.FieldDate); got != "Bad date" {
		t.Errorf("edited date field must show its error, got %q", got)
	}
}

func TestSubmitError_BannerForUnstructuredFailure(t *testing.T) {
	c := form.NewAdd(false)
	c.SelectBook(catalog.Result{Key: "k"})
	c.BeginSubmit()
	c.HandleSubmitError(errors.New("backend error 500: boom"))
	if c.Phase() != form.PhaseReady {
		t.Errorf("phase = %v, want ready", c.Phase())
	}
	if c.Banner() == "" {
		t.Error("unstructured failure must set the banner")
	}

	c.BeginSubmit()
	if c.Banner() != "" {
		t.Error("resubmitting must clear the banner")
	}
}

// An expired session closes the dialog instead of showing an error.
func TestSubmitError_SessionExpiryClosesDialog(t *testing.T) {
	c := form.NewAdd(false)
	c.SelectBook(catalog.Result{Key: "k"})
	c.BeginSubmit()
	c.HandleSubmitError(api.ErrSessionExpired)
	if c.Phase() != form.PhaseClosed {
		t.Errorf("phase = %v, want closed", c.Phase())
	}
	if !c.SessionExpired() {
		t.Error("session expiry must be flagged for the shell")
	}
	if c.Banner() != "" {
		t.Error("no banner in a closed dialog")
	}
}

func TestSucceed_ClosesDialog(t *testing.T) {
	c := form.NewAdd(false)
	c.SelectBook(catalog.Result{Key: "k"})
	c.BeginSubmit()
	c.Succeed()
	if c.Phase() != form.PhaseClosed {
		t.Errorf("phase = %v, want closed", c.Phase())
	}
}
