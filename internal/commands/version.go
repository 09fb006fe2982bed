package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

type VersionCmd struct {
	build string
	out   io.Writer
}

func NewVersionCmd(build string) *VersionCmd {
	return &VersionCmd{build: build, out: os.Stdout}
}

// Register adds the version command to the application
func (cmd *VersionCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "version",
		Usage: "Print the build version",
		Action: func(ctx context.Context, c *cli.Command) error {
			_, err := fmt.Fprintln(cmd.out, "jiradigest", cmd.build)
			return err
		},
	})
	return app
}
