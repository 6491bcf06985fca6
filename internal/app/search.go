package app

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the book catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			return mapSessionErr(printSearch(cmd, strings.Join(args, " ")))
		},
	}
}

func printSearch(cmd *cobra.Command, query string) error {
	results, err := search.Search(cmd.Context(), query)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No books found.")
		return nil
	}

	header("── %d results for %q", len(results), query)
	for _, r := range results {
		fmt.Printf("  %-20s  %-40s  %s\n",
			color.HiBlackString(r.Key),
			r.Title,
			color.CyanString(strings.Join(r.AuthorNames, ", ")),
		)
	}
	return nil
}
