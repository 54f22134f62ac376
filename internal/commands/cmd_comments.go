package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/dock/internal/core/comments"
	"github.com/colonyops/dock/pkg/iojson"
)

type CommentsCmd struct {
	flags *Flags
	fr    *iojson.FileReader[comments.ChangeEvent]

	// flags
	resource   string
	jsonOutput bool
}

// NewCommentsCmd creates a new comments command.
func NewCommentsCmd(flags *Flags) *CommentsCmd {
	return &CommentsCmd{
		flags: flags,
		fr:    &iojson.FileReader[comments.ChangeEvent]{},
	}
}

// Register adds the comments command group to the application.
func (cmd *CommentsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "comments",
		Usage: "Inspect comment threads",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List comment threads grouped by resource",
				UsageText: "dock comments ls [--resource <glob>] [--json]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "resource",
						Aliases:     []string{"r"},
						Usage:       "filter resources by glob pattern",
						Destination: &cmd.resource,
					},
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runLs,
			},
			{
				Name:      "apply",
				Usage:     "Apply a thread delta (added/removed/changed) and print the result",
				UsageText: "dock comments apply [-f <delta.json>]",
				Flags: []cli.Flag{
					cmd.fr.Flag(),
				},
				Action: cmd.runApply,
			},
		},
	})

	return app
}

func (cmd *CommentsCmd) runLs(ctx context.Context, c *cli.Command) error {
	model := cmd.flags.App.Comments

	resources := model.Resources()
	if cmd.resource != "" {
		matched, err := model.MatchResources(cmd.resource)
		if err != nil {
			return err
		}
		resources = matched
	}

	if len(resources) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintln(os.Stderr, model.Message())
		}
		return nil
	}

	if cmd.jsonOutput {
		return iojson.Write(toJSON(resources))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RESOURCE\tTHREAD\tLINE\tAUTHOR\tREPLIES\tCOMMENT")
	for _, r := range resources {
		for _, node := range r.Threads {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%s\n",
				r.ID, node.ThreadID, node.Range.StartLine,
				node.Comment.Author, len(node.Replies), truncate(node.Comment.Body, 60))
		}
	}
	return w.Flush()
}

func (cmd *CommentsCmd) runApply(ctx context.Context, c *cli.Command) error {
	delta, err := cmd.fr.Read()
	if err != nil {
		return iojson.WriteError(fmt.Sprintf("read input: %s", err), nil)
	}

	model := cmd.flags.App.Comments
	if err := model.UpdateThreads(delta); err != nil {
		// Skipped references are recoverable; report them but still
		// print the resulting grouping.
		_ = iojson.WriteError(err.Error(), nil)
	}

	return iojson.Write(toJSON(model.Resources()))
}

type jsonThread struct {
	ThreadID string             `json:"thread_id"`
	Range    comments.Range     `json:"range"`
	Comment  comments.Comment   `json:"comment"`
	Replies  []comments.Comment `json:"replies,omitempty"`
}

type jsonResource struct {
	Resource string       `json:"resource"`
	Threads  []jsonThread `json:"threads"`
}

func toJSON(resources []*comments.ResourceThreads) []jsonResource {
	out := make([]jsonResource, 0, len(resources))
	for _, r := range resources {
		jr := jsonResource{Resource: r.ID}
		for _, node := range r.Threads {
			jr.Threads = append(jr.Threads, jsonThread{
				ThreadID: node.ThreadID,
				Range:    node.Range,
				Comment:  node.Comment,
				Replies:  node.Replies,
			})
		}
		out = append(out, jr)
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
