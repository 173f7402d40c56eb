// Package worker запускает задания движка Quantum ESPRESSO.
//
// # Обзор
//
// Worker не знает о порядке стадий: он получает готовый domain.Job
// и рабочую директорию и выполняет один процесс:
//
//	cd <workDir> && <command> < <input> > <output>
//
// Порядок стадий и передачу результатов между ними ведёт orchestrator.
//
// # Ключевые компоненты
//
// ## Executor
//
// Интерфейс запуска задания. ExecutorFunc позволяет подставить
// функцию (используется в тестах orchestrator и CLI).
//
// ## ProcessExecutor
//
// Реализация через os/exec:
//   - входной файл рендерится engine.RenderInput и пишется в workDir
//   - stdout движка пишется в OutputFile, хвост stderr сохраняется
//   - после выхода проверяются объявленные артефакты
//   - отмена context завершает процесс (WaitDelay ограничивает ожидание)
//
// ## Ошибки
//
// Все сбои запуска — *JobExecutionError; errors.Is(err, ErrJobExecution)
// истинно для любого из них. Причина различается через ErrNonZeroExit,
// ErrMissingArtifact, ErrEmptyCommand, ErrStart, ErrCancelled.
package worker
