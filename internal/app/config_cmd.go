package app

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shelfmate/shelfmate/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or persist client settings",
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigSetCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			header("── Configuration (%s)", config.DefaultPath())
			printField("api.base_url", cfg.API.BaseURL)
			printField("search.rate_per_sec", strconv.Itoa(cfg.Search.RatePerSec))
			printField("search.max_retries", strconv.Itoa(cfg.Search.MaxRetries))
			printField("defaults.page_limit", strconv.Itoa(cfg.Defaults.PageLimit))
			printField("defaults.session_path", cfg.Defaults.SessionPath)
			return nil
		},
	}
}

// newConfigSetCmd persists overrides on top of the effective config, so
// repeated invocations accumulate into the same file.
func newConfigSetCmd() *cobra.Command {
	var (
		apiURL      string
		ratePerSec  int
		maxRetries  int
		pageLimit   int
		sessionPath string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Write settings to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiURL != "" {
				cfg.API.BaseURL = apiURL
			}
			if cmd.Flags().Changed("rate") {
				cfg.Search.RatePerSec = ratePerSec
			}
			if cmd.Flags().Changed("retries") {
				cfg.Search.MaxRetries = maxRetries
			}
			if cmd.Flags().Changed("page-limit") {
				cfg.Defaults.PageLimit = pageLimit
			}
			if cmd.Flags().Changed("session-path") {
				cfg.Defaults.SessionPath = sessionPath
			}
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			ok("Config written to %s", config.DefaultPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Backend base URL")
	cmd.Flags().IntVar(&ratePerSec, "rate", 0, "Catalog searches per second")
	cmd.Flags().IntVar(&maxRetries, "retries", 0, "Catalog search retries")
	cmd.Flags().IntVar(&pageLimit, "page-limit", 0, "Default listing page size")
	cmd.Flags().StringVar(&sessionPath, "session-path", "", "Session file location")
	return cmd
}
