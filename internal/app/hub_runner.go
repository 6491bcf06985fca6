package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/shelfmate/shelfmate/internal/shelf"
	"github.com/shelfmate/shelfmate/internal/tui"
)

// runHub drives the interactive menu loop. Session expiry anywhere in
// the loop lands back at the sign-in dialog, the one dispatch point
// for expired tokens in interactive mode.
func runHub() error {
	for {
		if !sess.Valid() {
			signedIn, err := tui.RunLoginForm(doLogin)
			if err != nil {
				return err
			}
			if !signedIn {
				return nil
			}
		}

		username := ""
		if p, err := backend.GetProfile(context.Background()); err == nil {
			username = p.Username
		}

		action, err := tui.RunHub(tui.HubContext{Username: username, LoggedIn: true})
		if err != nil {
			return err
		}

		var actionErr error
		pause := false

		switch action {
		case "shelf":
			actionErr = browseLoop(defaultComposer(), false)
		case "wishlist":
			actionErr = browseLoop(defaultComposer(), true)
		case "add":
			actionErr = runAddForm(false)
		case "wish":
			actionErr = runAddForm(true)
		case "search":
			actionErr = runHubSearch()
			pause = true
		case "profile":
			profileCmd := newProfileShowCmd()
			profileCmd.SetArgs([]string{})
			actionErr = profileCmd.Execute()
			pause = true
		case "logout":
			if err := sess.Clear(); err != nil {
				return err
			}
			continue
		case "quit", "":
			return nil
		default:
			return fmt.Errorf("unknown action: %s", action)
		}

		if actionErr != nil {
			if isSessionExpired(actionErr) {
				_ = sess.Clear()
				warn("Session expired, please sign in again.")
				continue
			}
			warn("%v", actionErr)
			pause = true
		}

		if pause {
			fmt.Println()
			fmt.Println(color.CyanString("Press Enter to return to the menu..."))
			var dummy string
			_, _ = fmt.Scanln(&dummy)
		}

		// Clear screen to reduce flicker between TUI transitions
		fmt.Print("\033[2J\033[H")
	}
}

func defaultComposer() *shelf.Composer {
	c := shelf.NewComposer()
	c.SetLimit(cfg.Defaults.PageLimit)
	return c
}

func runHubSearch() error {
	reader := bufio.NewReader(os.Stdin)
	fmt.Println()
	header("Search Catalog")
	fmt.Print("Query: ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	query := strings.TrimSpace(line)
	if query == "" {
		return nil
	}
	return printSearch(rootCmd, query)
}
