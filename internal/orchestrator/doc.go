// Package orchestrator выполняет workflow расчёта Tc.
//
// Workflow — фиксированная последовательность стадий:
//
//	relax → scf → phonon → force-constant → interpolation → parse → evaluate
//
// Стадии движка описываются пакетом steps и запускаются через
// worker.Executor в общей рабочей директории. После relax структура
// читается из XML и передаётся всем следующим стадиям. Первая ошибка
// прерывает workflow (*StageError с именем стадии).
//
// В service mode Orchestrator забирает PENDING runs из RabbitMQ
// (runs.pending) и БД (polling fallback), выполняет их по одному,
// сохраняет записи стадий и итог run, архивирует артефакты
// и публикует stage.completed / run.completed.
package orchestrator
