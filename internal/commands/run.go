package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"jiradigest/internal/pipeline"
)

type RunCmd struct {
	flags *Flags

	dryRun bool
}

func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Fetch, render and deliver one report",
		UsageText: "jiradigest run [--dry-run]",
		Description: `Runs the query, groups and renders the matching issues, splits the report
under the destination's chunk limit and posts the chunks in order.

The exit status is 0 only when every chunk was delivered.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "fetch and render but do not deliver",
				Destination: &cmd.dryRun,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	cfg, err := cmd.flags.load(!cmd.dryRun)
	if err != nil {
		return err
	}
	log, closer, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closer()

	deps, err := pipeline.NewDeps(*cfg, log, cmd.dryRun)
	if err != nil {
		return err
	}
	_, err = pipeline.Run(ctx, *cfg, deps)
	return err
}
