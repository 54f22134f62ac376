package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/dock/internal/core/views"
)

type ViewsCmd struct {
	flags *Flags

	// flags
	location string
}

// NewViewsCmd creates a new views command.
func NewViewsCmd(flags *Flags) *ViewsCmd {
	return &ViewsCmd{flags: flags}
}

// Register adds the views command group to the application.
func (cmd *ViewsCmd) Register(app *cli.Command) *cli.Command {
	locationFlag := &cli.StringFlag{
		Name:        "location",
		Aliases:     []string{"l"},
		Usage:       "view container location",
		Value:       string(views.LocationSidebar),
		Destination: &cmd.location,
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "views",
		Usage: "Inspect and customize contributed views",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List views for a location",
				UsageText: "dock views ls [--location sidebar|panel]",
				Flags:     []cli.Flag{locationFlag},
				Action:    cmd.runLs,
			},
			{
				Name:      "toggle",
				Usage:     "Interactively show or hide views",
				UsageText: "dock views toggle [--location sidebar|panel]",
				Flags:     []cli.Flag{locationFlag},
				Action:    cmd.runToggle,
			},
		},
	})

	return app
}

func (cmd *ViewsCmd) runLs(ctx context.Context, c *cli.Command) error {
	loc := views.Location(cmd.location)
	coll, model := cmd.flags.App.OpenViews(loc)
	defer coll.Close()
	defer func() { _ = model.Close() }()

	all := cmd.flags.App.Registry.Views(loc)
	if len(all) == 0 {
		fmt.Fprintf(os.Stderr, "No views registered for location %q\n", loc)
		return nil
	}

	activeIDs := make(map[string]struct{})
	for _, d := range model.Descriptors() {
		activeIDs[d.ID] = struct{}{}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tACTIVE\tVISIBLE\tCOLLAPSED\tWHEN")
	for _, d := range all {
		_, active := activeIDs[d.ID]

		visible, collapsed := "-", "-"
		if active {
			v, err := model.IsVisible(d.ID)
			if err != nil {
				return err
			}
			col, err := model.IsCollapsed(d.ID)
			if err != nil {
				return err
			}
			visible, collapsed = yesNo(v), yesNo(col)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.Name, yesNo(active), visible, collapsed, d.When.String())
	}
	return w.Flush()
}

func (cmd *ViewsCmd) runToggle(ctx context.Context, c *cli.Command) error {
	loc := views.Location(cmd.location)
	coll, model := cmd.flags.App.OpenViews(loc)
	defer coll.Close()

	var toggleable []views.Descriptor
	var selected []string
	for _, d := range model.Descriptors() {
		if !d.CanToggleVisibility {
			continue
		}
		toggleable = append(toggleable, d)
		visible, err := model.IsVisible(d.ID)
		if err != nil {
			return err
		}
		if visible {
			selected = append(selected, d.ID)
		}
	}

	if len(toggleable) == 0 {
		_ = model.Close()
		fmt.Fprintf(os.Stderr, "No toggleable views for location %q\n", loc)
		return nil
	}

	options := make([]huh.Option[string], 0, len(toggleable))
	for _, d := range toggleable {
		options = append(options, huh.NewOption(d.Name, d.ID))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title(fmt.Sprintf("Visible views (%s)", loc)).
				Options(options...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		_ = model.Close()
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return fmt.Errorf("run form: %w", err)
	}

	for _, d := range toggleable {
		if err := model.SetVisible(d.ID, slices.Contains(selected, d.ID)); err != nil {
			_ = model.Close()
			return err
		}
	}

	// Close persists the new layout.
	return model.Close()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
