// Package engine строит входные данные Quantum ESPRESSO для стадий workflow.
//
// Включает:
//   - params.go   — общие runtime-параметры (структура, pseudo_dir, режим релаксации)
//   - config.go   — по одному конструктору конфигурации на стадию
//   - command.go  — подстановка ph.x / q2r.x / matdyn.x в команду движка
//   - input.go    — запись входного файла (namelist + карточки pw.x)
//   - validate.go — проверка WorkflowSpec до запуска
//
// Engine ничего не запускает: он только описывает, что должен получить
// каждый бинарник. Запуск — задача worker, порядок — orchestrator.
package engine
