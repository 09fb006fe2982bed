package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"jiradigest/internal/pipeline"
	"jiradigest/internal/report"
)

type PreviewCmd struct {
	flags *Flags
	out   io.Writer

	jsonOutput bool
}

func NewPreviewCmd(flags *Flags) *PreviewCmd {
	return &PreviewCmd{flags: flags, out: os.Stdout}
}

// Register adds the preview command to the application
func (cmd *PreviewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "preview",
		Usage:     "Print the report chunks without delivering them",
		UsageText: "jiradigest preview [--json]",
		Description: `Fetches and renders the report exactly as run would, then prints each chunk
to stdout. Destination credentials are not required.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print chunks as a JSON array",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *PreviewCmd) run(ctx context.Context, c *cli.Command) error {
	cfg, err := cmd.flags.load(false)
	if err != nil {
		return err
	}
	log, closer, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closer()

	res, err := pipeline.Prepare(ctx, *cfg, pipeline.NewFetcher(*cfg, log), log)
	if err != nil {
		return err
	}
	return writeChunks(cmd.out, res.Chunks, cmd.jsonOutput)
}

func writeChunks(w io.Writer, chunks []report.Chunk, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(chunks)
	}
	for i, c := range chunks {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "--- chunk %d/%d (%d) ---\n%s\n", c.Index, c.Total, c.Len(), c.Text); err != nil {
			return err
		}
	}
	return nil
}
