package app

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shelfmate/shelfmate/internal/api"
	"github.com/shelfmate/shelfmate/internal/catalog"
	"github.com/shelfmate/shelfmate/internal/config"
	"github.com/shelfmate/shelfmate/internal/session"
	"github.com/shelfmate/shelfmate/internal/tui"
)

var (
	cfg     *config.Config
	sess    *session.Store
	backend *api.Client
	search  *catalog.Client
	logger  *log.Logger

	appVersion = "dev"

	flagNoColor       bool
	flagNoInteractive bool
	flagConfig        string
	flagVerbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "shelfmate",
	Short: "Track the books you own, lend, borrow and wish for",
	Long: `shelfmate is a terminal client for a personal library backend.

It keeps one shelf of owned, lent and borrowed books plus a separate
wishlist, looks up titles in the book catalog, and talks to the backend
over its REST API.

Run 'shelfmate' with no arguments to launch the interactive menu.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if tui.ShouldUseTUI(cmd) {
			return runHub()
		}
		return cmd.Help()
	}
}

// SetVersion records the build version for the version command.
func SetVersion(v string) {
	if v != "" {
		appVersion = v
	}
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagNoInteractive, "no-interactive", false, "Disable interactive TUI mode")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/shelfmate/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		initColorOutput()

		logger = newLogger(flagVerbose)

		if flagConfig != "" {
			_ = os.Setenv("SHELFMATE_CONFIG", flagConfig)
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		sess = session.NewStore(cfg.Defaults.SessionPath)
		if err := sess.Load(); err != nil {
			// A corrupt session file should never lock the tool out.
			logger.Warn("could not read session, starting logged out", "err", err)
		}

		backend = api.New(cfg.API.BaseURL, sess, logger)
		search = catalog.NewClient(backend, cfg.Search.RatePerSec, cfg.Search.MaxRetries)
		return nil
	}

	// Register sub-commands.
	rootCmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newRegisterCmd(),
		newShelfCmd(),
		newWishlistCmd(),
		newAddCmd(),
		newEditCmd(),
		newLendCmd(),
		newReturnCmd(),
		newDeleteCmd(),
		newSearchCmd(),
		newProfileCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
}

// newLogger builds the structured logger. Debug output is opt-in; the
// default keeps the terminal quiet for TUI sessions.
func newLogger(verbose bool) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.WarnLevel)
	}
	return l
}
