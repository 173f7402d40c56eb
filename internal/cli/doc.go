// Package cli реализует инструмент командной строки Supercon.
//
// # Обзор
//
// CLI работает в двух режимах:
//   - локально: запуск workflow в рабочей директории, вычисление Tc,
//     разбор файла lambda, очистка и проверка спецификаций
//   - через HTTP API: отправка спецификаций и просмотр runs
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Supercon API. Инкапсулирует HTTP-запросы,
// парсинг ответов ({data}, {data,total}, {error}) и обработку ошибок.
// Клиент не импортирует internal/api, типы ответов дублируются.
//
//	client := cli.NewClient("http://localhost:8080")
//	runs, total, err := client.ListRuns(cli.ListRunsOpts{Status: "FAILED"})
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Warn/Error) — в stderr.
// Это позволяет использовать pipe: supercon lambda lambda --json | jq .
//
// ## Commands
//
//   - run: локальный запуск workflow (NewRunCmd)
//   - tc, lambda: формула Allen-Dynes и разбор файла lambda
//   - clean: удаление артефактов движка
//   - spec: validate, convert
//   - runs: submit, list, show, stages (через API)
//
// Каждая команда создаётся фабричной функцией, принимающей outputFn
// (и clientFn для API) — замыкания для ленивого создания Output
// и Client после парсинга PersistentFlags.
package cli
