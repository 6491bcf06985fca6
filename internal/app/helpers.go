package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/shelfmate/shelfmate/internal/api"
	"github.com/shelfmate/shelfmate/internal/util"
)

func initColorOutput() {
	util.InitColor(flagNoColor)
}

// ok prints a green success line.
func ok(format string, a ...interface{}) {
	fmt.Println(color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(format string, a ...interface{}) {
	fmt.Println(color.CyanString(fmt.Sprintf(format, a...)))
}

// printField prints an aligned key/value detail line.
func printField(name, value string) {
	fmt.Printf("  %-12s %s\n", color.HiBlackString(name), value)
}

// requireSession fails early when nobody is logged in, instead of
// letting the first request bounce with a 401.
func requireSession() error {
	if !sess.Valid() {
		return fmt.Errorf("not logged in, run 'shelfmate login' first")
	}
	return nil
}

// mapSessionErr is the single dispatch point for expired sessions on
// one-shot commands: the stored token is cleared and the user is told
// to sign in again. Every other error passes through unchanged.
func mapSessionErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, api.ErrSessionExpired) {
		_ = sess.Clear()
		return fmt.Errorf("session expired, run 'shelfmate login' to sign in again")
	}
	return err
}

// printFormError renders a structured validation failure the way the
// dialog would, one line per field.
func printFormError(err error) bool {
	fe, isForm := api.AsFormError(err)
	if !isForm {
		return false
	}
	if fe.Message != "" {
		warn("%s", fe.Message)
	}
	for _, f := range fe.Fields {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", color.YellowString(f.Path), f.Message)
	}
	return true
}
