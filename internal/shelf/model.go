package shelf

import (
	"fmt"
	"strings"
	"time"
)

// Status classifies a shelved book's current possession state.
// Exactly one status applies to a book at a time.
type Status string

const (
	// StatusOwned is a book sitting on the user's own shelf.
	StatusOwned Status = "owned"
	// StatusLent is an owned book currently lent to someone else.
	StatusLent Status = "lent"
	// StatusBorrowed is a book borrowed from another person.
	StatusBorrowed Status = "borrowed"
	// StatusLibrary is a book borrowed from a library.
	StatusLibrary Status = "library"
	// StatusWishlist is a book the user wants but does not hold.
	StatusWishlist Status = "wishlist"
)

// DateLayout is the calendar-date wire format. Dates never carry a
// time of day or a zone.
const DateLayout = "2006-01-02"

// ShelvedBook is one entry in a user's collection, as exchanged with
// the backend. Title and authors are denormalized from the catalog at
// add time and not re-synced afterward.
type ShelvedBook struct {
	ID        string   `json:"id,omitempty"`
	BookKey   string   `json:"book_key"`
	Title     string   `json:"title,omitempty"`
	Authors   []string `json:"author,omitempty"`
	Status    Status   `json:"status"`
	OtherName string   `json:"other_name,omitempty"`
	Date      string   `json:"date,omitempty"` // YYYY-MM-DD
}

// Normalize enforces the possession invariant: a book that is owned or
// wishlisted has no counterparty and no date, even if stale values are
// still present from an earlier status. Called before every create and
// update, not just in the UI layer.
func (b *ShelvedBook) Normalize() {
	if b.Status == StatusOwned || b.Status == StatusWishlist {
		b.OtherName = ""
		b.Date = ""
	}
}

// ValidDate reports whether s is empty or a well-formed calendar date.
func ValidDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ParseStatus converts a wire token back to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(s)) {
	case StatusOwned, StatusLent, StatusBorrowed, StatusLibrary, StatusWishlist:
		return Status(strings.ToLower(s)), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// OwnerLabel derives the owner column for a book. Owned and lent books
// belong to the user; borrowed books show the counterparty with a
// generic fallback when none was recorded.
func OwnerLabel(b ShelvedBook) string {
	switch b.Status {
	case StatusOwned, StatusLent:
		return "Me"
	case StatusBorrowed:
		if b.OtherName != "" {
			return b.OtherName
		}
		return "Other"
	case StatusLibrary:
		if b.OtherName != "" {
			return b.OtherName
		}
		return "Library"
	}
	return ""
}

// StatusLine derives the status column for a book, folding in the
// counterparty and date where present.
func StatusLine(b ShelvedBook) string {
	switch b.Status {
	case StatusLent:
		s := "Lent"
		if b.OtherName != "" {
			s += " to " + b.OtherName
		}
		if b.Date != "" {
			s += " on " + b.Date
		}
		return s
	case StatusBorrowed:
		s := "Borrowed"
		if b.Date != "" {
			s += " on " + b.Date
		}
		return s
	case StatusLibrary:
		s := "Borrowed"
		if b.Date != "" {
			s += " (due " + b.Date + ")"
		}
		return s
	}
	return ""
}

// Row actions available per status, mirrored by both the table view
// and the one-shot commands.

// CanLend reports whether a book can be lent out.
func CanLend(b ShelvedBook) bool { return b.Status == StatusOwned }

// CanReturn reports whether a lent book can be taken back.
func CanReturn(b ShelvedBook) bool { return b.Status == StatusLent }

// CanReturnToOwner reports whether a borrowed book can be given back
// (which removes it from the shelf).
func CanReturnToOwner(b ShelvedBook) bool {
	return b.Status == StatusBorrowed || b.Status == StatusLibrary
}

// CanDelete reports whether a book can be removed outright.
func CanDelete(b ShelvedBook) bool {
	return b.Status == StatusOwned || b.Status == StatusLent || b.Status == StatusWishlist
}
