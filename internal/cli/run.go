package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/camunda-demo/internal/demo"
	"github.com/shaiso/camunda-demo/internal/scheduler"
)

// NewRunCmd — полный demo-сценарий, однократно или по расписанию.
func NewRunCmd(envFn EnvFunc, outputFn func() *Output) *cobra.Command {
	var cronExpr string
	var timezone string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the whole demo: deploy, start, user task, service task, final state",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := envFn()
			if err != nil {
				return err
			}
			defer env.Close()
			out := outputFn()

			if cronExpr != "" {
				env.Config.Schedule.Cron = cronExpr
			}
			if timezone != "" {
				env.Config.Schedule.Timezone = timezone
			}

			coord, cleanup := env.Coordinator(cmd.Context())
			defer cleanup()

			if env.Config.Schedule.Cron == "" {
				report, err := coord.Run(cmd.Context())
				if report != nil {
					printReport(out, report)
				}
				return err
			}

			sched, err := scheduler.New(scheduler.Config{
				CronExpr: env.Config.Schedule.Cron,
				Timezone: env.Config.Schedule.Timezone,
				Logger:   env.Logger,
				Job: func(ctx context.Context) error {
					report, err := coord.Run(ctx)
					if report != nil {
						printReport(out, report)
					}
					return err
				},
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Scheduled demo runs: %q (next at %s)",
				env.Config.Schedule.Cron, sched.Next(time.Now()).Format(time.RFC3339)))

			if err := sched.Run(cmd.Context()); err != nil && cmd.Context().Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cronExpr, "cron", "", "Repeat on a 5-field cron schedule, e.g. \"*/5 * * * *\"")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone for --cron (default UTC)")

	return cmd
}

// NewWorkerCmd — только шаг service task: открыть воркер и дождаться одного job.
func NewWorkerCmd(envFn EnvFunc, outputFn func() *Output) *cobra.Command {
	var jobType string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Handle one service task job and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := envFn()
			if err != nil {
				return err
			}
			defer env.Close()
			out := outputFn()

			if jobType != "" {
				env.Config.Demo.JobType = jobType
			}
			if timeout > 0 {
				env.Config.Demo.JobTimeout = timeout
			}

			coord, cleanup := env.Coordinator(cmd.Context())
			defer cleanup()

			completed, err := coord.RunServiceTask(cmd.Context())
			if err != nil {
				return err
			}

			cfg := coord.Config()
			if !completed {
				out.Warn(fmt.Sprintf("no %s job handled within %s", cfg.JobType, cfg.JobTimeout))
				return nil
			}

			out.Success(fmt.Sprintf("Handled %s job", cfg.JobType))
			return nil
		},
	}

	cmd.Flags().StringVar(&jobType, "type", "", "Job type (default from config: processData)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "How long to wait for a job (default from config: 30s)")

	return cmd
}

// printReport выводит итог run.
func printReport(out *Output, report *demo.Report) {
	run := report.Run

	userTask := "-"
	if report.UserTask != nil {
		userTask = report.UserTask.Key.String()
	}

	finalState := "-"
	if report.FinalInstance != nil {
		finalState = string(report.FinalInstance.State)
	}

	instance := "-"
	if report.Instance != nil {
		instance = report.Instance.Key.String()
	}

	out.Print(
		[]string{"RUN_ID", "STATUS", "INSTANCE", "USER_TASK", "JOB_COMPLETED", "FINAL_STATE", "DURATION"},
		[][]string{{
			run.ID.String(),
			string(run.Status),
			instance,
			userTask,
			fmt.Sprintf("%t", report.JobCompleted),
			finalState,
			run.Duration().Round(time.Millisecond).String(),
		}},
		report,
	)
}
