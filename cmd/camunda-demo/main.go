// camunda-demo — демонстрационный клиент Camunda 8.
//
// Разворачивает процесс, запускает instance, завершает user task,
// обрабатывает service task через job worker и показывает итоговое
// состояние instance.
//
// Использование:
//
//	camunda-demo [--address URL] [--config FILE] [--json] <command> [flags]
//
// Команды:
//
//	run       Весь сценарий (--cron для повторения по расписанию)
//	topology  Топология кластера
//	deploy    Развернуть BPMN
//	start     Запустить instance
//	tasks     User tasks instance
//	complete  Назначить и завершить user task
//	worker    Обработать один job service task
//	instance  Состояние instance
//	history   Журнал runs (DB_URL)
//	events    События runs (RABBITMQ_URL)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaiso/camunda-demo/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := cli.NewRootCmd(version, os.Stdout, os.Stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
