// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go     — Handler с DI (хранилища, publisher, logger)
//   - routes.go      — регистрация маршрутов
//   - middleware.go  — middleware (logging, recovery)
//   - response.go    — унифицированные JSON-ответы и обработка ошибок
//   - dto.go         — Data Transfer Objects
//   - run_handler.go — обработчики для /runs
//
// API принимает WorkflowSpec, создаёт PENDING run и уведомляет
// orchestrator через runs.pending. Результаты (Tc по уширениям)
// и ход стадий читаются через GET /runs/{id} и /runs/{id}/stages.
package api
