// Package form drives the add/edit/lend book dialog as a pure view
// model. The TUI layer renders the controller's state and dispatches
// intents back; nothing here touches the network.
package form

import (
	"errors"

	"github.com/shelfmate/shelfmate/internal/api"
	"github.com/shelfmate/shelfmate/internal/catalog"
	"github.com/shelfmate/shelfmate/internal/shelf"
)

// Mode selects which dialog variant the controller drives.
type Mode int

const (
	// ModeAdd creates a new shelf or wishlist entry.
	ModeAdd Mode = iota
	// ModeEdit changes an existing entry's status and details.
	ModeEdit
	// ModeLend is a restricted edit: the book is fixed and the status
	// is pinned to lent, only counterparty and date are editable.
	ModeLend
)

// Phase is the dialog lifecycle state.
type Phase int

const (
	// PhaseLoading: edit and lend dialogs fetch current values first.
	PhaseLoading Phase = iota
	// PhaseReady: populated and interactive.
	PhaseReady
	// PhaseSubmitting: a save is in flight, controls disabled.
	PhaseSubmitting
	// PhaseClosed: saved successfully or forced shut by an expired
	// session; the dialog is done.
	PhaseClosed
	// PhaseFailed: the prefetch failed. Terminal for this instance,
	// the user has to reopen the dialog.
	PhaseFailed
)

// Field names used for error attribution and the touched/dirty maps.
const (
	FieldBook      = "book"
	FieldStatus    = "status"
	FieldOtherName = "other_name"
	FieldDate      = "date"
)

// Controller holds the dialog's field values and validation state.
type Controller struct {
	mode     Mode
	phase    Phase
	wishlist bool

	bookID    string
	book      *catalog.Result
	status    shelf.Status
	otherName string
	date      string

	touched   map[string]bool
	dirty     map[string]bool
	fieldErrs map[string]string
	banner    string

	sessionExpired bool
}

// NewAdd opens an empty create dialog. A wishlist dialog pins the
// status so only the catalog field is in play.
func NewAdd(wishlist bool) *Controller {
	c := newController(ModeAdd, wishlist)
	c.phase = PhaseReady
	c.status = shelf.StatusOwned
	if wishlist {
		c.status = shelf.StatusWishlist
	}
	return c
}

// NewEdit opens an edit or lend dialog in the loading phase. The
// caller fetches the current values and calls Populate or FailLoad.
func NewEdit(mode Mode, wishlist bool) *Controller {
	return newController(mode, wishlist)
}

func newController(mode Mode, wishlist bool) *Controller {
	return &Controller{
		mode:      mode,
		wishlist:  wishlist,
		phase:     PhaseLoading,
		touched:   map[string]bool{},
		dirty:     map[string]bool{},
		fieldErrs: map[string]string{},
	}
}

// Populate completes the prefetch with the book's current values and
// moves the dialog to ready. Lend mode pins the status to lent; a
// wishlist entry opened in the shelf dialog starts from owned, since
// wishlist is not a selectable shelf status.
func (c *Controller) Populate(b shelf.ShelvedBook) {
	c.bookID = b.ID
	c.book = &catalog.Result{Key: b.BookKey, Title: b.Title, AuthorNames: b.Authors}
	c.status = b.Status
	c.otherName = b.OtherName
	c.date = b.Date
	switch {
	case c.mode == ModeLend:
		c.status = shelf.StatusLent
		c.otherName = ""
		c.date = ""
	case !c.wishlist && b.Status == shelf.StatusWishlist:
		c.status = shelf.StatusOwned
	}
	c.phase = PhaseReady
}

// FailLoad marks the prefetch as failed. The dialog cannot recover.
func (c *Controller) FailLoad() { c.phase = PhaseFailed }

// Mode returns the dialog variant.
func (c *Controller) Mode() Mode { return c.mode }

// Phase returns the lifecycle state.
func (c *Controller) Phase() Phase { return c.phase }

// Wishlist reports whether the dialog targets the wishlist.
func (c *Controller) Wishlist() bool { return c.wishlist }

// BookID returns the id of the entry being edited, empty for add.
func (c *Controller) BookID() string { return c.bookID }

// Book returns the current catalog selection, nil when unset.
func (c *Controller) Book() *catalog.Result { return c.book }

// Status returns the current status selection.
func (c *Controller) Status() shelf.Status { return c.status }

// OtherName returns the counterparty field value.
func (c *Controller) OtherName() string { return c.otherName }

// Date returns the date field value.
func (c *Controller) Date() string { return c.date }

// Banner returns the whole-form error message, if any.
func (c *Controller) Banner() string { return c.banner }

// SessionExpired reports whether the dialog was closed because the
// session died mid-submit. The shell reacts by routing to login.
func (c *Controller) SessionExpired() bool { return c.sessionExpired }

// SelectBook writes a chosen catalog candidate into the form. Only a
// picker selection can populate this field.
func (c *Controller) SelectBook(r catalog.Result) {
	if c.BookDisabled() || c.phase != PhaseReady {
		return
	}
	c.book = &r
	c.dirty[FieldBook] = true
}

// SetStatus changes the status selection and recomputes visibility.
func (c *Controller) SetStatus(s shelf.Status) {
	if c.StatusDisabled() || c.phase != PhaseReady {
		return
	}
	c.status = s
	c.dirty[FieldStatus] = true
}

// SetOtherName updates the counterparty field.
func (c *Controller) SetOtherName(v string) {
	if c.phase != PhaseReady {
		return
	}
	c.otherName = v
	c.dirty[FieldOtherName] = true
}

// SetDate updates the date field (YYYY-MM-DD, or empty).
func (c *Controller) SetDate(v string) {
	if c.phase != PhaseReady {
		return
	}
	c.date = v
	c.dirty[FieldDate] = true
}

// Blur marks a field as touched. Field errors only show on fields
// that were both touched and edited, so pristine fields never flash.
func (c *Controller) Blur(field string) { c.touched[field] = true }

// BookDisabled reports whether the catalog field rejects changes.
func (c *Controller) BookDisabled() bool { return c.mode == ModeLend }

// StatusDisabled reports whether the status field rejects changes.
// Lend pins the status to lent and the wishlist dialog pins it to
// wishlist.
func (c *Controller) StatusDisabled() bool {
	return c.mode == ModeLend || c.wishlist
}

// ShowOtherFields reports whether the counterparty and date fields are
// visible. They only apply when the book is in someone else's hands.
func (c *Controller) ShowOtherFields() bool {
	return c.status != shelf.StatusOwned && c.status != shelf.StatusWishlist
}

// StatusOptions lists the selectable statuses. Adding a book never
// starts lent; editing can move an entry into the lent state directly.
func (c *Controller) StatusOptions() []shelf.Status {
	if c.StatusDisabled() {
		return []shelf.Status{c.status}
	}
	opts := []shelf.Status{shelf.StatusOwned, shelf.StatusBorrowed, shelf.StatusLibrary}
	if c.mode == ModeEdit {
		opts = append(opts, shelf.StatusLent)
	}
	return opts
}

// OtherNameLabel returns the counterparty field label for the current
// status and mode.
func (c *Controller) OtherNameLabel() string {
	switch {
	case c.mode == ModeLend:
		return "Lend to (optional)"
	case c.status == shelf.StatusLent:
		return "Lent to (optional)"
	}
	// Borrowed and library-borrowed share the owner-name label.
	return "Owner name (optional)"
}

// DateLabel returns the date field label for the current status and
// mode.
func (c *Controller) DateLabel() string {
	switch {
	case c.mode == ModeLend:
		return "Lend on (optional)"
	case c.status == shelf.StatusLent:
		return "Lent on (optional)"
	case c.status == shelf.StatusLibrary:
		return "Due (optional)"
	}
	return "Borrowed on (optional)"
}

// Valid reports whether the form can be submitted. The catalog field
// is required; counterparty and date are always optional, but a date
// that is present must parse.
func (c *Controller) Valid() bool {
	if c.book == nil || c.book.Key == "" {
		return false
	}
	if c.status == "" {
		return false
	}
	return shelf.ValidDate(c.date)
}

// CanSubmit reports whether the submit control is enabled.
func (c *Controller) CanSubmit() bool {
	return c.phase == PhaseReady && c.Valid()
}

// BeginSubmit moves to the submitting phase and clears prior errors.
// Returns false when the form is not submittable; an attempt marks
// every field touched so validation messages become visible.
func (c *Controller) BeginSubmit() bool {
	for _, f := range []string{FieldBook, FieldStatus, FieldOtherName, FieldDate} {
		c.touched[f] = true
	}
	if !c.CanSubmit() {
		return false
	}
	c.phase = PhaseSubmitting
	c.banner = ""
	c.fieldErrs = map[string]string{}
	return true
}

// Payload builds the normalized book to transmit. Stale counterparty
// and date values left over from a prior status never leave the form.
func (c *Controller) Payload() shelf.ShelvedBook {
	b := shelf.ShelvedBook{
		ID:        c.bookID,
		Status:    c.status,
		OtherName: c.otherName,
		Date:      c.date,
	}
	if c.book != nil {
		b.BookKey = c.book.Key
		b.Title = c.book.Title
		b.Authors = c.book.AuthorNames
	}
	b.Normalize()
	return b
}

// Succeed closes the dialog after a successful save.
func (c *Controller) Succeed() { c.phase = PhaseClosed }

// HandleSubmitError maps a failed save back onto the form. Structured
// validation errors attach to their fields, with the backend's catalog
// key path remapped to the catalog-selection control. Anything else
// becomes a banner. An expired session closes the dialog instead,
// there is nothing actionable left in it without re-authentication.
func (c *Controller) HandleSubmitError(err error) {
	if errors.Is(err, api.ErrSessionExpired) {
		c.sessionExpired = true
		c.phase = PhaseClosed
		return
	}
	c.phase = PhaseReady
	if fe, ok := api.AsFormError(err); ok {
		if len(fe.Fields) == 0 {
			c.banner = fe.Message
			return
		}
		for _, f := range fe.Fields {
			c.fieldErrs[remapPath(f.Path)] = f.Message
		}
		return
	}
	c.banner = err.Error()
}

// remapPath translates backend field paths onto form fields where the
// names diverge.
func remapPath(path string) string {
	switch path {
	case "book_key", "title", "author":
		return FieldBook
	}
	return path
}

// FieldError returns the server-attributed error for a field, if any,
// without display gating.
func (c *Controller) FieldError(field string) string {
	return c.fieldErrs[field]
}

// VisibleFieldError returns a field's error only once the user has
// touched and edited that field.
func (c *Controller) VisibleFieldError(field string) string {
	if !c.touched[field] || !c.dirty[field] {
		return ""
	}
	return c.fieldErrs[field]
}
