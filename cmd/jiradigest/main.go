package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/urfave/cli/v3"

	"jiradigest/internal/apperr"
	"jiradigest/internal/commands"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
)

func build() string {
	v, c := version, commit
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					c = s.Value
				}
			}
		}
	}
	if len(c) > 7 {
		c = c[:7]
	}
	return fmt.Sprintf("%s (%s)", v, c)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "jiradigest",
		Usage:     "Post a grouped Jira issue report to Slack or Telegram",
		UsageText: "jiradigest [global options] [command [command options]]",
		Description: `Runs a JQL query, groups the matching issues, renders a report and posts it
in as many messages as the destination's size limit requires.

Configuration comes from an optional YAML/JSON file overlaid with environment
variables (JIRA_BASE_URL, JIRA_JQL, SLACK_BOT_TOKEN, ...). Without a command,
'run' is assumed.`,
		Version:        build(),
		DefaultCommand: "run",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file (optional)",
				Sources:     cli.EnvVars("JIRADIGEST_CONFIG"),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (trace, debug, info, warn, error)",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "also write JSON logs to this file",
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "console or json",
				Destination: &flags.LogFormat,
			},
		},
	}

	app = commands.NewRunCmd(flags).Register(app)
	app = commands.NewPreviewCmd(flags).Register(app)
	app = commands.NewScheduleCmd(flags).Register(app)
	app = commands.NewVersionCmd(build()).Register(app)

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "jiradigest:", err)
		cancel()
		os.Exit(apperr.ExitCode(err))
	}
}
