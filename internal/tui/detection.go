package tui

import (
	"github.com/shelfmate/shelfmate/internal/util"
	"github.com/spf13/cobra"
)

// ShouldUseTUI returns true if the command should use interactive TUI mode.
// TUI mode is enabled when:
// - stdout is a TTY (not piped or redirected)
// - --no-interactive flag is not set
// - --plain is not set (indicates scripting intent)
func ShouldUseTUI(cmd *cobra.Command) bool {
	// Must be running in a terminal
	if !util.IsTTY() {
		return false
	}

	// User explicitly disabled interactive mode
	noInteractive, _ := cmd.Flags().GetBool("no-interactive")
	if noInteractive {
		return false
	}

	// Plain output means the user wants parseable text
	if plain, _ := cmd.Flags().GetBool("plain"); plain {
		return false
	}

	return true
}
