package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/camunda-demo/internal/config"
	"github.com/shaiso/camunda-demo/internal/domain"
	"github.com/shaiso/camunda-demo/internal/mq"
	"github.com/shaiso/camunda-demo/internal/repo"
)

// NewHistoryCmd — последние runs из журнала.
func NewHistoryCmd(envFn EnvFunc, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent demo runs from the journal (requires DB_URL)",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := envFn()
			if err != nil {
				return err
			}
			defer env.Close()
			out := outputFn()

			if env.Config.DatabaseURL == "" {
				return fmt.Errorf("run journal is not configured: set %s", config.EnvDatabaseURL)
			}

			journal, closeJournal, err := env.OpenJournal(cmd.Context())
			if err != nil {
				return err
			}
			defer closeJournal()

			runs, err := journal.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{
					r.ID.String(),
					string(r.Status),
					keyOrDash(r.InstanceKey),
					strconv.FormatBool(r.JobCompleted),
					orDash(string(r.FinalState)),
					r.StartedAt.Format(time.RFC3339),
					orDash(r.Error),
				}
			}

			out.Print([]string{"RUN_ID", "STATUS", "INSTANCE", "JOB_COMPLETED", "FINAL_STATE", "STARTED", "ERROR"}, rows, runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", repo.DefaultListLimit, "Maximum number of runs")

	return cmd
}

// NewEventsCmd — чтение событий из очереди demo.events до Ctrl+C.
func NewEventsCmd(envFn EnvFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Tail demo events from RabbitMQ (requires RABBITMQ_URL)",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := envFn()
			if err != nil {
				return err
			}
			defer env.Close()
			out := outputFn()

			if env.Config.RabbitMQURL == "" {
				return fmt.Errorf("events are not configured: set %s", config.EnvRabbitMQURL)
			}

			conn, err := env.openConnection(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			consumer := mq.NewConsumer(conn, env.Logger, mq.ConsumerConfig{
				Handler: func(_ context.Context, event *mq.Event) error {
					if out.jsonMode {
						out.JSON(event)
						return nil
					}
					out.Line("%s  %-20s  run=%s  %s",
						event.Timestamp.Format(time.RFC3339), event.Type, event.RunID, event.Payload)
					return nil
				},
			})

			out.Success(fmt.Sprintf("Listening on %s (Ctrl+C to stop)", mq.QueueEvents))

			err = consumer.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func keyOrDash(k domain.Key) string {
	if k.IsZero() {
		return "-"
	}
	return k.String()
}
