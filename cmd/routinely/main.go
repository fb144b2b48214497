package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/storage"
	"github.com/julianstephens/routinely/internal/tracker"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Storage file path (.db for SQLite, .json for JSON)." type:"path" default:"~/.config/routinely/routinely.db"`

	Init     cli.InitCmd     `cmd:"" help:"Initialize routinely storage."`
	Tui      cli.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Habit    struct {
		Add     cli.HabitAddCmd     `cmd:"" help:"Add a new habit."`
		List    cli.HabitListCmd    `cmd:"" help:"List habits."`
		Archive cli.HabitArchiveCmd `cmd:"" help:"Archive a habit."`
		Delete  cli.HabitDeleteCmd  `cmd:"" help:"Delete a habit (soft delete)."`
		Restore cli.HabitRestoreCmd `cmd:"" help:"Restore a deleted habit."`
	} `cmd:"" help:"Manage habits."`
	Done     cli.DoneCmd `cmd:"" help:"Record a completion."`
	Vacation struct {
		Add    cli.VacationAddCmd    `cmd:"" help:"Add a vacation period."`
		List   cli.VacationListCmd   `cmd:"" help:"List vacation periods."`
		Delete cli.VacationDeleteCmd `cmd:"" help:"Delete a vacation period."`
	} `cmd:"" help:"Manage vacations."`
	Day     cli.DayCmd     `cmd:"" help:"Show all habit statuses for a day."`
	Month   cli.MonthCmd   `cmd:"" help:"Show a habit's month calendar."`
	Streaks cli.StreaksCmd `cmd:"" help:"Show habit streaks."`
	Backup  struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a backup."`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage backups."`
	Doctor cli.DoctorCmd `cmd:"" help:"Run health checks on storage."`
	Debug  cli.DebugCmd  `cmd:"" help:"Debugging helpers."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("routinely"),
		kong.Description("Habit and routine tracker with flexible schedules"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	// Storage backend follows the file extension
	var store storage.Provider
	if strings.HasSuffix(CLI.Config, ".json") {
		store = storage.NewJSONStore(CLI.Config)
	} else {
		store = storage.NewSQLiteStore(CLI.Config)
	}

	appCtx := &cli.Context{
		Store:   store,
		Tracker: tracker.NewService(store),
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
