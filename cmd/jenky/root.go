package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/jenky/internal/app"
	"github.com/five82/jenky/internal/config"
	"github.com/five82/jenky/internal/logging"
	"github.com/five82/jenky/internal/logtail"
	"github.com/five82/jenky/internal/menu"
	"github.com/five82/jenky/internal/settings"
	"github.com/five82/jenky/internal/ui"
)

// cli holds the persistent flags shared by every command.
type cli struct {
	configPath   string
	settingsPath string
	format       string

	// secrets overrides the OS keyring in tests.
	secrets settings.SecretStore
}

func newRootCmd() *cobra.Command {
	return (&cli{}).rootCmd()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jenky",
		Short: "Search Jenkins jobs, set build parameters and trigger builds",
		Long: `jenky drives Jenkins from a single text query.

The jobs, build and settings commands print the items for a query. Each item
either carries an action string for "jenky action" or the next query to run.
"jenky tui" does the same interactively.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "override jenky config path (optional)")
	flags.StringVar(&c.settingsPath, "settings", "", "override settings path (optional)")
	flags.StringVar(&c.format, "format", ui.FormatText, "output format: text or json")

	root.AddCommand(
		c.flowCmd(menu.FlowMain, "jobs [query]", "List and search jobs"),
		c.flowCmd(menu.FlowBuild, "build [query]", "Inspect parameters, set them and build a job"),
		c.flowCmd(menu.FlowSettings, "settings [query]", "Show and change settings"),
		c.actionCmd(),
		c.refreshCmd(),
		c.tuiCmd(),
		c.logCmd(),
	)
	return root
}

func (c *cli) open(ctx context.Context, mode app.RefreshMode) (*app.App, error) {
	return app.Open(ctx, app.Options{
		ConfigPath:   c.configPath,
		SettingsPath: c.settingsPath,
		Refresh:      mode,
		Secrets:      c.secrets,
	})
}

func (c *cli) flowCmd(flow menu.Flow, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := c.open(cmd.Context(), app.RefreshDetached)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.Close()) }()

			items := a.Items(cmd.Context(), flow, strings.Join(args, " "))
			return ui.Render(cmd.OutOrStdout(), c.format, items, ui.GetTheme(a.Settings.Theme))
		},
	}
}

func (c *cli) actionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "action <arg>",
		Short: "Run an action string printed by another command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := c.open(cmd.Context(), app.RefreshDetached)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.Close()) }()

			res, err := a.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if res.Failed {
				return errors.New(res.Message)
			}
			if res.Message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			}
			if nav := res.Nav; !nav.IsZero() {
				items := a.Items(cmd.Context(), nav.Flow, nav.Query)
				return ui.Render(cmd.OutOrStdout(), c.format, items, ui.GetTheme(a.Settings.Theme))
			}
			return nil
		},
	}
}

func (c *cli) refreshCmd() *cobra.Command {
	var job string
	cmd := &cobra.Command{
		Use:    "refresh --params <job>",
		Short:  "Refresh cached job data (started in the background by other commands)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			a, err := c.open(cmd.Context(), app.RefreshDetached)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.Close()) }()
			return a.RefreshParams(cmd.Context(), job)
		},
	}
	cmd.Flags().StringVar(&job, "params", "", "job whose parameter definitions to refresh")
	_ = cmd.MarkFlagRequired("params")
	return cmd
}

func (c *cli) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui [query]",
		Short: "Browse jobs and trigger builds interactively",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := c.open(cmd.Context(), app.RefreshInProcess)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.Close()) }()

			return ui.Run(ui.Options{
				Context:   cmd.Context(),
				Host:      a,
				ThemeName: a.Settings.Theme,
				Query:     strings.Join(args, " "),
			})
		},
	}
}

func (c *cli) logCmd() *cobra.Command {
	var (
		lines int
		level string
	)
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the end of the jenky log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return fmt.Errorf("load jenky config: %w", err)
			}
			minLevel, err := logging.ParseLevel(level)
			if err != nil {
				return err
			}
			out, err := logtail.ReadLevel(cfg.LogPath(), lines, minLevel)
			if err != nil {
				return err
			}
			s, err := settings.Load(c.settingsPath)
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			for _, line := range ui.FormatLogLines(out, ui.GetTheme(s.Theme)) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to show (0 for all)")
	cmd.Flags().StringVar(&level, "level", "debug", "minimum level: debug, info, warn or error")
	return cmd
}
