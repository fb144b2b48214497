package cli

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/routinely/internal/calendar"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show storage path."`
	DumpHabit    *DebugDumpHabitCmd    `cmd:"" help:"Dump habit data as JSON."`
	DumpStatuses *DebugDumpStatusesCmd `cmd:"" help:"Dump resolved statuses as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	// Machine-readable so scripts can locate the storage file
	output := map[string]string{
		"path": ctx.Store.GetConfigPath(),
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDumpHabitCmd struct {
	ID string `arg:"" help:"ID of the habit to dump."`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}

	habit, err := ctx.Store.GetHabit(cmd.ID)
	if err != nil {
		return err
	}

	jsonBytes, err := json.MarshalIndent(habit, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal habit: %w", err)
	}

	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDumpStatusesCmd struct {
	ID   string `arg:"" help:"ID of the habit to dump."`
	From string `arg:"" help:"Range start (YYYY-MM-DD or 'today')."`
	To   string `arg:"" help:"Range end (YYYY-MM-DD or 'today')."`
}

func (cmd *DebugDumpStatusesCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}

	from, err := resolveDay(cmd.From)
	if err != nil {
		return err
	}
	to, err := resolveDay(cmd.To)
	if err != nil {
		return err
	}
	if to.Before(from) {
		return fmt.Errorf("range end %s precedes start %s",
			calendar.FormatDay(to), calendar.FormatDay(from))
	}

	days, err := ctx.Tracker.StatusRange(cmd.ID, from, to, today())
	if err != nil {
		return err
	}

	jsonBytes, err := json.MarshalIndent(days, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal statuses: %w", err)
	}

	fmt.Println(string(jsonBytes))
	return nil
}
