package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shelfmate/shelfmate/internal/api"
	"github.com/shelfmate/shelfmate/internal/form"
	"github.com/shelfmate/shelfmate/internal/shelf"
	"github.com/shelfmate/shelfmate/internal/tui"
)

func isSessionExpired(err error) bool {
	return errors.Is(err, api.ErrSessionExpired)
}

// runAddForm opens the add dialog for the shelf or wishlist.
func runAddForm(wishlist bool) error {
	ctrl := form.NewAdd(wishlist)
	result, err := tui.RunBookForm(ctrl, tui.BookFormDeps{
		Search: search.Search,
		Submit: func(ctx context.Context, book shelf.ShelvedBook) error {
			return backend.CreateBook(ctx, book, wishlist)
		},
	})
	if err != nil {
		return err
	}
	if result.SessionExpired {
		return api.ErrSessionExpired
	}
	if result.Saved {
		ok("Book added")
	}
	return nil
}

// runEditForm opens the edit dialog on an existing entry.
func runEditForm(id string, wishlist bool) error {
	ctrl := form.NewEdit(form.ModeEdit, wishlist)
	result, err := tui.RunBookForm(ctrl, tui.BookFormDeps{
		Load: func(ctx context.Context) (shelf.ShelvedBook, error) {
			book, err := backend.GetBook(ctx, id, wishlist)
			if err != nil {
				return shelf.ShelvedBook{}, err
			}
			return *book, nil
		},
		Search: search.Search,
		Submit: func(ctx context.Context, book shelf.ShelvedBook) error {
			return backend.UpdateBook(ctx, id, book, wishlist)
		},
	})
	if err != nil {
		return err
	}
	if result.SessionExpired {
		return api.ErrSessionExpired
	}
	if result.Saved {
		ok("Book updated")
	}
	return nil
}

// runLendForm opens the restricted lend dialog: book fixed, status
// pinned to lent, only counterparty and date editable.
func runLendForm(id string) error {
	ctrl := form.NewEdit(form.ModeLend, false)
	result, err := tui.RunBookForm(ctrl, tui.BookFormDeps{
		Load: func(ctx context.Context) (shelf.ShelvedBook, error) {
			book, err := backend.GetBook(ctx, id, false)
			if err != nil {
				return shelf.ShelvedBook{}, err
			}
			if !shelf.CanLend(*book) {
				return shelf.ShelvedBook{}, fmt.Errorf("only owned books can be lent")
			}
			return *book, nil
		},
		Search: search.Search,
		Submit: func(ctx context.Context, book shelf.ShelvedBook) error {
			return backend.UpdateBook(ctx, id, book, false)
		},
	})
	if err != nil {
		return err
	}
	if result.SessionExpired {
		return api.ErrSessionExpired
	}
	if result.Saved {
		ok("Book lent out")
	}
	return nil
}

// doReturn undoes the book's current loan. A lent book comes back to
// the shelf as owned; a borrowed one goes back to its owner and leaves
// the shelf entirely.
func doReturn(ctx context.Context, book shelf.ShelvedBook) error {
	switch {
	case shelf.CanReturn(book):
		book.Status = shelf.StatusOwned
		if err := backend.UpdateBook(ctx, book.ID, book, false); err != nil {
			return err
		}
		ok("%s returned to your shelf", book.Title)
		return nil
	case shelf.CanReturnToOwner(book):
		if err := backend.DeleteBook(ctx, book.ID); err != nil {
			return err
		}
		ok("%s returned to %s", book.Title, shelf.OwnerLabel(book))
		return nil
	}
	return fmt.Errorf("%s is not lent or borrowed", book.Title)
}

func confirmDelete(ctx context.Context, book shelf.ShelvedBook) error {
	fmt.Printf("Delete %q? (y/N): ", book.Title)
	var response string
	_, _ = fmt.Scanln(&response)
	if response != "y" && response != "Y" && response != "yes" {
		return nil
	}
	if err := backend.DeleteBook(ctx, book.ID); err != nil {
		return err
	}
	ok("%s deleted", book.Title)
	return nil
}

func newAddCmd() *cobra.Command {
	var (
		wishlist  bool
		bookKey   string
		title     string
		authors   []string
		statusStr string
		otherName string
		date      string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to your shelf or wishlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}

			if bookKey == "" && tui.ShouldUseTUI(cmd) {
				return mapSessionErr(runAddForm(wishlist))
			}

			if bookKey == "" || title == "" {
				return fmt.Errorf("--key and --title are required outside the interactive dialog")
			}
			book := shelf.ShelvedBook{
				BookKey:   bookKey,
				Title:     title,
				Authors:   authors,
				Status:    shelf.StatusOwned,
				OtherName: otherName,
				Date:      date,
			}
			if wishlist {
				book.Status = shelf.StatusWishlist
			} else if statusStr != "" {
				status, err := shelf.ParseStatus(statusStr)
				if err != nil {
					return err
				}
				book.Status = status
			}
			if !shelf.ValidDate(book.Date) {
				return fmt.Errorf("date must be YYYY-MM-DD")
			}

			if err := backend.CreateBook(cmd.Context(), book, wishlist); err != nil {
				if printFormError(err) {
					return fmt.Errorf("book rejected")
				}
				return mapSessionErr(err)
			}
			ok("%s added", book.Title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&wishlist, "wishlist", false, "Add to the wishlist instead of the shelf")
	cmd.Flags().StringVar(&bookKey, "key", "", "Catalog work key")
	cmd.Flags().StringVar(&title, "title", "", "Book title")
	cmd.Flags().StringSliceVar(&authors, "author", nil, "Author (repeatable)")
	cmd.Flags().StringVar(&statusStr, "status", "", "Initial status (owned, lent, borrowed, library)")
	cmd.Flags().StringVar(&otherName, "other", "", "Counterparty name for lent or borrowed books")
	cmd.Flags().StringVar(&date, "date", "", "Lend, borrow or due date (YYYY-MM-DD)")
	return cmd
}

func newEditCmd() *cobra.Command {
	var (
		wishlist  bool
		statusStr string
		otherName string
		date      string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a shelved book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			id := args[0]

			if statusStr == "" && otherName == "" && date == "" && tui.ShouldUseTUI(cmd) {
				return mapSessionErr(runEditForm(id, wishlist))
			}

			book, err := backend.GetBook(cmd.Context(), id, wishlist)
			if err != nil {
				return mapSessionErr(err)
			}
			if statusStr != "" {
				status, err := shelf.ParseStatus(statusStr)
				if err != nil {
					return err
				}
				book.Status = status
			}
			if otherName != "" {
				book.OtherName = otherName
			}
			if date != "" {
				if !shelf.ValidDate(date) {
					return fmt.Errorf("date must be YYYY-MM-DD")
				}
				book.Date = date
			}

			if err := backend.UpdateBook(cmd.Context(), id, *book, wishlist); err != nil {
				if printFormError(err) {
					return fmt.Errorf("update rejected")
				}
				return mapSessionErr(err)
			}
			ok("%s updated", book.Title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&wishlist, "wishlist", false, "Edit a wishlist entry")
	cmd.Flags().StringVar(&statusStr, "status", "", "New status (owned, lent, borrowed, library)")
	cmd.Flags().StringVar(&otherName, "other", "", "Counterparty name")
	cmd.Flags().StringVar(&date, "date", "", "Lend, borrow or due date (YYYY-MM-DD)")
	return cmd
}

func newLendCmd() *cobra.Command {
	var (
		lendTo string
		lendOn string
	)

	cmd := &cobra.Command{
		Use:   "lend <id>",
		Short: "Lend an owned book to someone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			id := args[0]

			if lendTo == "" && lendOn == "" && tui.ShouldUseTUI(cmd) {
				return mapSessionErr(runLendForm(id))
			}

			book, err := backend.GetBook(cmd.Context(), id, false)
			if err != nil {
				return mapSessionErr(err)
			}
			if !shelf.CanLend(*book) {
				return fmt.Errorf("only owned books can be lent")
			}
			if !shelf.ValidDate(lendOn) {
				return fmt.Errorf("date must be YYYY-MM-DD")
			}
			book.Status = shelf.StatusLent
			book.OtherName = strings.TrimSpace(lendTo)
			book.Date = lendOn

			if err := backend.UpdateBook(cmd.Context(), id, *book, false); err != nil {
				if printFormError(err) {
					return fmt.Errorf("lend rejected")
				}
				return mapSessionErr(err)
			}
			ok("%s lent out", book.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&lendTo, "to", "", "Who the book goes to")
	cmd.Flags().StringVar(&lendOn, "on", "", "Lend date (YYYY-MM-DD)")
	return cmd
}

func newReturnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "return <id>",
		Short: "Take back a lent book, or give a borrowed one back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			book, err := backend.GetBook(cmd.Context(), args[0], false)
			if err != nil {
				return mapSessionErr(err)
			}
			return mapSessionErr(doReturn(cmd.Context(), *book))
		},
	}
}

func newDeleteCmd() *cobra.Command {
	var (
		wishlist bool
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a book from your shelf or wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			book, err := backend.GetBook(cmd.Context(), args[0], wishlist)
			if err != nil {
				return mapSessionErr(err)
			}
			if !wishlist && !shelf.CanDelete(*book) {
				return fmt.Errorf("return %q to its owner instead of deleting it", book.Title)
			}
			if force {
				if err := backend.DeleteBook(cmd.Context(), book.ID); err != nil {
					return mapSessionErr(err)
				}
				ok("%s deleted", book.Title)
				return nil
			}
			return mapSessionErr(confirmDelete(cmd.Context(), *book))
		},
	}

	cmd.Flags().BoolVar(&wishlist, "wishlist", false, "Delete a wishlist entry")
	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	return cmd
}
