package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/camunda-demo/internal/broker"
	"github.com/shaiso/camunda-demo/internal/domain"
)

// EnvFunc создаёт Env после парсинга флагов.
type EnvFunc func() (*Env, error)

// NewTopologyCmd — проверка доступности брокера.
func NewTopologyCmd(envFn EnvFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "topology",
		Short: "Show broker cluster topology",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := envFn()
			if err != nil {
				return err
			}
			defer env.Close()
			out := outputFn()

			topo, err := env.Client.Topology(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, len(topo.Brokers))
			for i, b := range topo.Brokers {
				rows[i] = []string{strconv.Itoa(b.NodeID), b.Host, strconv.Itoa(b.Port), b.Version}
			}

			out.Success(fmt.Sprintf("Gateway %s, cluster size %d, partitions %d",
				topo.GatewayVersion, topo.ClusterSize, topo.PartitionsCount))
			out.Print([]string{"NODE", "HOST", "PORT", "VERSION"}, rows, topo)
			return nil
		},
	}
}

// NewDeployCmd — развёртывание определения процесса.
func NewDeployCmd(envFn EnvFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy [FILE]",
		Short: "Deploy a BPMN process definition (embedded sample-process by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := envFn()
			if err != nil {
				return err
			}
			defer env.Close()
			out := outputFn()

			if len(args) == 1 {
				env.Config.Demo.Resource = args[0]
				env.Config.Demo.ResourceName = filepath.Base(args[0])
			}

			coord, cleanup := env.Coordinator(cmd.Context())
			defer cleanup()

			deployment, err := coord.Deploy(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, len(deployment.Processes))
			for i, p := range deployment.Processes {
				rows[i] = []string{p.ID, strconv.Itoa(p.Version), p.Key.String(), p.ResourceName}
			}

			out.Success(fmt.Sprintf("Deployed: %s", deployment.Key))
			out.Print([]string{"PROCESS_ID", "VERSION", "DEFINITION_KEY", "RESOURCE"}, rows, deployment)
			return nil
		},
	}
}

// NewStartCmd — запуск process instance.
func NewStartCmd(envFn EnvFunc, outputFn func() *Output) *cobra.Command {
	var processID string
	var vars []string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a process instance (latest version)",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := envFn()
			if err != nil {
				return err
			}
			defer env.Close()
			out := outputFn()

			if processID != "" {
				env.Config.Demo.ProcessID = processID
			}
			if len(vars) > 0 {
				parsed, err := parseVars(vars)
				if err != nil {
					return err
				}
				env.Config.Demo.StartVariables = parsed
			}

			coord, cleanup := env.Coordinator(cmd.Context())
			defer cleanup()

			instance, err := coord.StartInstance(cmd.Context())
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Process instance started: %s", instance.Key))
			out.Print(
				[]string{"KEY", "PROCESS_ID", "VERSION", "STATE"},
				[][]string{{instance.Key.String(), instance.ProcessDefinitionID, strconv.Itoa(instance.ProcessDefinitionVersion), string(instance.State)}},
				instance,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&processID, "process", "", "Process definition ID (default from config)")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Start variable as KEY=VALUE, value parsed as JSON when possible (repeatable)")

	return cmd
}

// NewTasksCmd — user tasks instance.
func NewTasksCmd(envFn EnvFunc, outputFn func() *Output) *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "tasks INSTANCE_KEY",
		Short: "List user tasks of a process instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := domain.ParseKey(args[0])
			if err != nil {
				return err
			}

			env, err := envFn()
			if err != nil {
				return err
			}
			defer env.Close()
			out := outputFn()

			tasks, err := env.Client.SearchUserTasks(cmd.Context(), broker.UserTaskFilter{
				ProcessInstanceKey: key,
				State:              domain.UserTaskState(state),
			})
			if err != nil {
				return err
			}

			if len(tasks) == 0 {
				out.Warn(fmt.Sprintf("no user tasks found for process instance %s", key))
			}

			rows := make([][]string, len(tasks))
			for i, t := range tasks {
				rows[i] = []string{
					t.Key.String(), t.ElementID, t.Name, string(t.State),
					orDash(t.Assignee), formatTime(t.CreationDate),
				}
			}

			out.Print([]string{"KEY", "ELEMENT", "NAME", "STATE", "ASSIGNEE", "CREATED"}, rows, tasks)
			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "Filter by state (CREATED, COMPLETED, CANCELED, FAILED)")

	return cmd
}

// NewCompleteCmd — назначение и завершение user task.
func NewCompleteCmd(envFn EnvFunc, outputFn func() *Output) *cobra.Command {
	var assignee string
	var vars []string

	cmd := &cobra.Command{
		Use:   "complete TASK_KEY",
		Short: "Assign a user task and complete it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := domain.ParseKey(args[0])
			if err != nil {
				return err
			}

			env, err := envFn()
			if err != nil {
				return err
			}
			defer env.Close()
			out := outputFn()

			if assignee != "" {
				env.Config.Demo.Assignee = assignee
			}
			if len(vars) > 0 {
				parsed, err := parseVars(vars)
				if err != nil {
					return err
				}
				env.Config.Demo.CompletionVariables = parsed
			}

			coord, cleanup := env.Coordinator(cmd.Context())
			defer cleanup()

			if err := coord.AssignAndComplete(cmd.Context(), &domain.UserTask{Key: key}); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("User task %s assigned to %s and completed", key, coord.Config().Assignee))
			return nil
		},
	}

	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee (default from config)")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Completion variable as KEY=VALUE (repeatable)")

	return cmd
}

// NewInstanceCmd — текущее состояние instance.
func NewInstanceCmd(envFn EnvFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "instance INSTANCE_KEY",
		Short: "Show process instance state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := domain.ParseKey(args[0])
			if err != nil {
				return err
			}

			env, err := envFn()
			if err != nil {
				return err
			}
			defer env.Close()
			out := outputFn()

			coord, cleanup := env.Coordinator(cmd.Context())
			defer cleanup()

			instance, err := coord.QueryInstanceState(cmd.Context(), key)
			if err != nil {
				return err
			}
			if instance == nil {
				out.Warn(fmt.Sprintf("process instance %s not found", key))
				return nil
			}

			out.Print(
				[]string{"KEY", "PROCESS_ID", "VERSION", "STATE"},
				[][]string{{instance.Key.String(), instance.ProcessDefinitionID, strconv.Itoa(instance.ProcessDefinitionVersion), string(instance.State)}},
				instance,
			)
			return nil
		},
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}
