package cmd

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"salon-admin-cli/config"
	"salon-admin-cli/logging"
	"salon-admin-cli/planner"
	"salon-admin-cli/service"
	"salon-admin-cli/store"
	"salon-admin-cli/tui"
)

const appName = "salon-admin-cli"

var (
	version = "dev"
	commit  = "none"
)

// runtimeDeps is built once per invocation before any command runs.
type runtimeDeps struct {
	cfg    config.Config
	logger *zap.Logger
	client *service.Client
}

var deps runtimeDeps

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Salon booking admin CLI",
	Long:          `Book appointments, check free slots and manage bookings from the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		// The wizard owns the terminal, so it always logs to a file.
		return setup(cmd == cmd.Root())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if deps.logger != nil {
			_ = deps.logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := store.LoadAuthToken()
		if err != nil {
			return err
		}
		model := tui.New(tui.Options{
			Gateway:   deps.client,
			Customers: deps.client,
			Logger:    deps.logger,
			Planner:   plannerOptions(token),
		})
		_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s", appName, version)
		if commit != "none" && commit != "" {
			fmt.Fprintf(out, " (%s)", commit)
		}
		fmt.Fprintln(out)
	},
}

func setup(logToFile bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logPath := cfg.LogFile
	if logPath == "" && logToFile {
		if logPath, err = store.LogFilePath(); err != nil {
			return err
		}
	}
	logger, err := logging.New(cfg.Env, cfg.LogLevel, logPath)
	if err != nil {
		return err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	client := service.NewClient(
		&http.Client{Timeout: cfg.HTTPTimeout, Jar: jar},
		cfg.BaseURL,
		service.WithLogger(logger),
		service.WithRateLimit(cfg.MaxRequestsPerSec),
		service.WithUserAgent(fmt.Sprintf("%s/%s", appName, version)),
	)
	deps = runtimeDeps{cfg: cfg, logger: logger, client: client}
	logger.Debug("configured",
		zap.String("base_url", cfg.BaseURL),
		zap.String("policy", string(cfg.Policy)),
		zap.String("timezone", cfg.Location.String()),
	)
	return nil
}

func plannerOptions(token string) planner.Options {
	return planner.Options{
		Policy:       deps.cfg.Policy,
		WrapMidnight: deps.cfg.WrapMidnight,
		Location:     deps.cfg.Location,
		Logger:       deps.logger,
		Token:        token,
	}
}

func init() {
	rootCmd.AddCommand(versionCmd, loginCmd, logoutCmd, slotsCmd, salonTimesCmd, bookingsCmd)
}

// Execute runs the command tree and exits non-zero on failure.
func Execute(buildVersion, buildCommit string) {
	if buildVersion != "" {
		version = buildVersion
	}
	if buildCommit != "" {
		commit = buildCommit
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if service.IsUnauthorized(err) {
			fmt.Fprintf(os.Stderr, "Run `%s login` to sign in again.\n", appName)
		}
		os.Exit(1)
	}
}
