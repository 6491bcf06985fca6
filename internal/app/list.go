package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shelfmate/shelfmate/internal/api"
	"github.com/shelfmate/shelfmate/internal/shelf"
	"github.com/shelfmate/shelfmate/internal/tui"
)

// listFlags are the filter, sort and paging options shared by the
// shelf and wishlist commands.
type listFlags struct {
	owner    string
	title    string
	author   string
	statuses []string
	sortCol  string
	desc     bool
	page     int
	limit    int
	plain    bool
}

func (f *listFlags) register(cmd *cobra.Command, wishlist bool) {
	if !wishlist {
		cmd.Flags().StringVar(&f.owner, "owner", "", "Filter by owner name")
	}
	cmd.Flags().StringVar(&f.title, "title", "", "Filter by title")
	cmd.Flags().StringVar(&f.author, "author", "", "Filter by author")
	if !wishlist {
		cmd.Flags().StringSliceVar(&f.statuses, "status", nil, "Filter by status (owned, lent, borrowed, library)")
	}
	sortCols := "owner or title"
	if wishlist {
		sortCols = "title"
	}
	cmd.Flags().StringVar(&f.sortCol, "sort", "", "Sort column ("+sortCols+")")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "Sort descending")
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Page size (0 uses the server default)")
	cmd.Flags().BoolVar(&f.plain, "plain", false, "Plain text output, no TUI")
}

// composer builds the query composer from the parsed flags.
func (f *listFlags) composer(wishlist bool) (*shelf.Composer, error) {
	criteria := shelf.FilterCriteria{
		Owner:  f.owner,
		Title:  f.title,
		Author: f.author,
	}
	for _, token := range f.statuses {
		status, err := shelf.ParseStatus(token)
		if err != nil {
			return nil, err
		}
		switch status {
		case shelf.StatusOwned:
			criteria.Statuses.Owned = true
		case shelf.StatusLent:
			criteria.Statuses.Lent = true
		case shelf.StatusBorrowed:
			criteria.Statuses.Borrowed = true
		case shelf.StatusLibrary:
			criteria.Statuses.Library = true
		default:
			return nil, fmt.Errorf("status %q cannot filter a listing", token)
		}
	}

	c := shelf.NewComposer()
	c.SetFilter(criteria)
	switch f.sortCol {
	case "":
	case "owner":
		if wishlist {
			return nil, fmt.Errorf("the wishlist has no owner column")
		}
		c.ToggleSort(shelf.SortOwner)
	case "title":
		c.ToggleSort(shelf.SortTitle)
	default:
		return nil, fmt.Errorf("unknown sort column %q", f.sortCol)
	}
	if f.desc && c.Sort().Column != shelf.SortNone {
		c.ToggleSort(c.Sort().Column)
	}
	c.SetPage(f.page)
	limit := f.limit
	if limit == 0 {
		limit = cfg.Defaults.PageLimit
	}
	c.SetLimit(limit)
	return c, nil
}

func newShelfCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:     "shelf",
		Aliases: []string{"ls"},
		Short:   "Browse your bookshelf",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			composer, err := flags.composer(false)
			if err != nil {
				return err
			}
			if tui.ShouldUseTUI(cmd) {
				return mapSessionErr(browseLoop(composer, false))
			}
			return mapSessionErr(printListing(cmd.Context(), composer, false))
		},
	}

	flags.register(cmd, false)
	return cmd
}

func newWishlistCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Browse your wishlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			composer, err := flags.composer(true)
			if err != nil {
				return err
			}
			if tui.ShouldUseTUI(cmd) {
				return mapSessionErr(browseLoop(composer, true))
			}
			return mapSessionErr(printListing(cmd.Context(), composer, true))
		},
	}

	flags.register(cmd, true)
	return cmd
}

func listFetcher(wishlist bool) tui.ShelfFetcher {
	return func(ctx context.Context, query map[string][]string) (*api.ShelfPage, error) {
		if wishlist {
			return backend.ListWishlist(ctx, url.Values(query))
		}
		return backend.ListShelf(ctx, url.Values(query))
	}
}

// browseLoop runs the interactive browser and dispatches row actions.
// After every action the browser relaunches with the same composer, so
// the listing refetches.
func browseLoop(composer *shelf.Composer, wishlist bool) error {
	fetch := listFetcher(wishlist)
	for {
		result, err := tui.RunBrowser(fetch, composer, wishlist)
		if err != nil {
			return err
		}
		if result.SessionExpired {
			return api.ErrSessionExpired
		}

		var actionErr error
		switch result.Action {
		case tui.ActionNone:
			return nil
		case tui.ActionAdd:
			actionErr = runAddForm(wishlist)
		case tui.ActionEdit:
			actionErr = runEditForm(result.Book.ID, wishlist)
		case tui.ActionLend:
			actionErr = runLendForm(result.Book.ID)
		case tui.ActionReturn:
			actionErr = doReturn(context.Background(), *result.Book)
		case tui.ActionDelete:
			actionErr = confirmDelete(context.Background(), *result.Book)
		}

		if actionErr != nil {
			if isSessionExpired(actionErr) {
				return api.ErrSessionExpired
			}
			warn("%v", actionErr)
			fmt.Println(color.CyanString("Press Enter to return to the list..."))
			var dummy string
			_, _ = fmt.Scanln(&dummy)
		}
	}
}

// printListing is the plain-text path for scripts and pipes.
func printListing(ctx context.Context, composer *shelf.Composer, wishlist bool) error {
	page, err := listFetcher(wishlist)(ctx, composer.Compose())
	if err != nil {
		return err
	}

	if len(page.Books) == 0 {
		fmt.Println("No books found.")
		return nil
	}

	name := "Bookshelf"
	if wishlist {
		name = "Wishlist"
	}
	header("── %s  (page %d/%d)", name, composer.Page(), max(page.LastPage, 1))
	for _, b := range page.Books {
		line := fmt.Sprintf("  %-32s  %-24s",
			b.Title,
			color.CyanString(strings.Join(b.Authors, ", ")),
		)
		if !wishlist {
			line += fmt.Sprintf("  %-10s", shelf.OwnerLabel(b))
			if s := shelf.StatusLine(b); s != "" {
				line += "  " + color.YellowString(s)
			} else {
				line += "  " + color.GreenString("Owned")
			}
		}
		fmt.Println(line)
	}
	return nil
}
