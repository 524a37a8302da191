package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/claude/lightweight/internal/client"
	"github.com/claude/lightweight/internal/config"
	"github.com/claude/lightweight/internal/settings"
	"github.com/spf13/cobra"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	version    string
	configPath string
	stateDir   string

	cfg      *config.Config
	api      *client.HTTPClient
	settings *settings.Store
	now      func() time.Time
}

// NewRootCommand creates the root command
func NewRootCommand(version string) *cobra.Command {
	a := &app{version: version, now: time.Now}

	rootCmd := &cobra.Command{
		Use:           "lightweight-cli",
		Short:         "Run timed workout sessions against a Lightweight server",
		Long:          `lightweight-cli manages workouts and schedules on a Lightweight server and runs 30 minute sessions in the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "config.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&a.stateDir, "state-dir", "", "directory of the local settings database (overrides client.state_dir)")

	rootCmd.AddCommand(
		newWorkoutsCommand(a),
		newHistoryCommand(a),
		newScheduleCommand(a),
		newStatsCommand(a),
		newSessionCommand(a),
		newSettingsCommand(a),
		newMCPCommand(a),
	)

	return rootCmd
}

// Execute runs the root command
func Execute(version string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand(version).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func (a *app) open() error {
	cfg, err := config.LoadClient(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.api = client.New(cfg.Client.ServerURL, cfg.Client.APIKey)

	dir := a.stateDir
	if dir == "" {
		dir = cfg.Client.StateDir
	}
	if dir == "" {
		dir = settings.DefaultDir()
	}
	a.stateDir = dir

	st, err := settings.Open(dir)
	if err != nil {
		return err
	}
	a.settings = st
	return nil
}

func (a *app) close() error {
	if a.settings == nil {
		return nil
	}
	err := a.settings.Close()
	a.settings = nil
	return err
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func formatWeight(w float64, unit string) string {
	if w == 0 {
		return "bodyweight"
	}
	return fmt.Sprintf("%g %s", w, unit)
}
