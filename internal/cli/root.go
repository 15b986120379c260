package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/camunda-demo/internal/config"
	"github.com/shaiso/camunda-demo/internal/telemetry"
)

// NewRootCmd собирает camunda-demo со всеми командами.
// Данные пишутся в stdout, сообщения и логи — в stderr.
func NewRootCmd(version string, stdout, stderr io.Writer) *cobra.Command {
	var address string
	var configPath string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "camunda-demo",
		Short:         "camunda-demo — Camunda 8 process demo client",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&address, "address", "", "Broker REST address (default $CAMUNDA_REST_ADDRESS or http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	envFn := func() (*Env, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if address != "" {
			cfg.Broker.Address = address
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
		}

		logger := telemetry.NewLogger(stderr, os.Getenv("LOG_FORMAT"), telemetry.LogLevel())
		return NewEnv(cfg, logger), nil
	}
	outputFn := func() *Output { return NewOutputTo(jsonOutput, stdout, stderr) }

	rootCmd.AddCommand(
		NewRunCmd(envFn, outputFn),
		NewTopologyCmd(envFn, outputFn),
		NewDeployCmd(envFn, outputFn),
		NewStartCmd(envFn, outputFn),
		NewTasksCmd(envFn, outputFn),
		NewCompleteCmd(envFn, outputFn),
		NewWorkerCmd(envFn, outputFn),
		NewInstanceCmd(envFn, outputFn),
		NewHistoryCmd(envFn, outputFn),
		NewEventsCmd(envFn, outputFn),
	)

	return rootCmd
}
