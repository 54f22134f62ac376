package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/dock/internal/core/views"
	"github.com/colonyops/dock/internal/tui"
)

type TuiCmd struct {
	flags *Flags

	// flags
	location string
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{flags: flags}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "location",
			Aliases:     []string{"l"},
			Usage:       "view location to open (sidebar, panel)",
			Sources:     cli.EnvVars("DOCK_LOCATION"),
			Value:       string(views.LocationSidebar),
			Destination: &cmd.location,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(_ context.Context, _ *cli.Command) error {
	loc := views.Location(cmd.location)
	switch loc {
	case views.LocationSidebar, views.LocationPanel:
	default:
		return fmt.Errorf("unknown location %q (expected sidebar or panel)", cmd.location)
	}

	return tui.Run(cmd.flags.App, loc)
}
