// Supercon CLI — расчёт критической температуры сверхпроводника.
//
// Использование:
//
//	supercon [--api-url URL] [--json] <command> [flags]
//
// Команды:
//
//	run       Локальный запуск workflow
//	tc        Формула Allen-Dynes
//	lambda    Разбор файла lambda
//	clean     Очистка рабочей директории
//	spec      Проверка и конвертация спецификаций
//	runs      Runs на API сервере
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaiso/supercon/internal/cli"
	"github.com/shaiso/supercon/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "supercon",
		Short:         "Supercon CLI — superconductor Tc workflow",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Логи в stderr, stdout остаётся для результатов
			format := os.Getenv("LOG_FORMAT")
			if format == "" {
				format = "text"
			}
			telemetry.SetupLoggerTo(os.Stderr, format)
		},
	}

	defaultURL := "http://localhost:8080"
	if v := os.Getenv("SUPERCON_API_URL"); v != "" {
		defaultURL = v
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewRunCmd(outputFn, nil),
		cli.NewTcCmd(outputFn),
		cli.NewLambdaCmd(outputFn),
		cli.NewCleanCmd(outputFn),
		cli.NewSpecCmd(outputFn),
		cli.NewRunsCmd(clientFn, outputFn),
	)

	// Ctrl+C прерывает выполняемую стадию
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}
