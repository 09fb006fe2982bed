package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/urfave/cli/v3"

	"jiradigest/internal/apperr"
	"jiradigest/internal/config"
	"jiradigest/internal/pipeline"
	"jiradigest/internal/runtime/supervisor"
	"jiradigest/internal/scheduler"
	logx "jiradigest/pkg/logx"
)

const shutdownTimeout = 30 * time.Second

type ScheduleCmd struct {
	flags *Flags

	dryRun bool
}

func NewScheduleCmd(flags *Flags) *ScheduleCmd {
	return &ScheduleCmd{flags: flags}
}

// Register adds the schedule command to the application
func (cmd *ScheduleCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "schedule",
		Usage:     "Run the report on a schedule until stopped",
		UsageText: "jiradigest schedule [--dry-run]",
		Description: `Triggers a run on schedule.spec: a cron expression ("0 9 * * MON-FRI",
"@daily"), an interval ("6h", "02:30") or daily:HH:MM. Runs never overlap.

The config file is watched; accepted edits apply from the next run on.
Under systemd the process reports READY and STOPPING through sd_notify.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "render on schedule but do not deliver",
				Destination: &cmd.dryRun,
			},
		},
		Action: cmd.run,
	})
	return app
}

func scheduleConfig(cfg *config.Config) scheduler.Config {
	return scheduler.Config{
		Spec:       cfg.Schedule.Spec,
		Timezone:   cfg.Schedule.Timezone,
		RunOnStart: cfg.Schedule.RunOnStart,
	}
}

func (cmd *ScheduleCmd) validate(cfg *config.Config) error {
	cmd.flags.applyLogging(cfg)
	var err error
	if cmd.dryRun {
		err = cfg.ValidateDryRun()
	} else {
		err = cfg.Validate()
	}
	if err != nil {
		return err
	}
	if _, _, err := scheduler.Compile(scheduleConfig(cfg)); err != nil {
		return apperr.Config(fmt.Errorf("schedule.spec: %w", err))
	}
	return nil
}

func (cmd *ScheduleCmd) run(ctx context.Context, c *cli.Command) error {
	mgr := config.NewManager(cmd.flags.ConfigPath, cmd.flags.lookup())
	mgr.SetValidator(cmd.validate)
	cfg, err := mgr.Load()
	if err != nil {
		return err
	}

	log, closer, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closer()
	mgr.SetLogger(log.With(logx.String("comp", "config")))

	sched := scheduler.New(cmd.job(mgr, log), log)
	if err := sched.Apply(scheduleConfig(cfg)); err != nil {
		return apperr.Config(err)
	}

	sup := supervisor.New(ctx, supervisor.WithLogger(log), supervisor.WithCancelOnError(true))
	updates := mgr.Subscribe(1)
	defer mgr.Unsubscribe(updates)

	sup.GoRestart("config.watch", mgr.Watch)
	sup.Go("config.apply", func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case next, ok := <-updates:
				if !ok {
					return nil
				}
				if err := sched.Apply(scheduleConfig(next)); err != nil {
					log.Warn("schedule change rejected", logx.Err(err))
				}
			}
		}
	})
	sup.Go("scheduler", sched.Run)

	notify(log, daemon.SdNotifyReady)
	<-sup.Context().Done()
	notify(log, daemon.SdNotifyStopping)

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sup.Wait(stopCtx); err != nil {
		return err
	}
	st := sched.Stats()
	log.Info("schedule stopped",
		logx.Int64("runs", st.Runs),
		logx.Int64("failed", st.Failed),
		logx.Int64("skipped", st.Skipped),
	)
	return nil
}

// job builds a run from the latest accepted config each time it fires.
func (cmd *ScheduleCmd) job(mgr *config.Manager, log logx.Logger) scheduler.Job {
	return func(ctx context.Context) error {
		cfg := *mgr.Get()
		deps, err := pipeline.NewDeps(cfg, log, cmd.dryRun)
		if err != nil {
			return err
		}
		_, err = pipeline.Run(ctx, cfg, deps)
		return err
	}
}

func notify(log logx.Logger, state string) {
	sent, err := daemon.SdNotify(false, state)
	switch {
	case err != nil:
		log.Warn("sd_notify failed", logx.String("state", state), logx.Err(err))
	case sent:
		log.Debug("sd_notify sent", logx.String("state", state))
	}
}
