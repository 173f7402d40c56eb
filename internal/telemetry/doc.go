// Package telemetry — логирование и метрики supercon.
//
// logging.go настраивает slog по LOG_LEVEL и LOG_FORMAT и передаёт
// логгер workflow (run_id, work_dir) через context до исполнителя
// стадий. metrics.go экспортирует счётчики стадий и runs;
// StageMetrics подключается к orchestrator как Observer.
package telemetry
