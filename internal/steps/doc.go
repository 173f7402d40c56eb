// Package steps описывает стадии движка в workflow расчёта Tc.
//
// # Обзор
//
// Каждая стадия — Step, который по Request строит domain.Job:
// полное описание запуска (бинарник, команда, namelist, файлы,
// ожидаемые артефакты). Шаги ничего не выполняют, запуск —
// задача worker.Executor, последовательность — orchestrator.
//
//	type Step interface {
//	    Stage() domain.Stage
//	    Job(req *Request) (*domain.Job, error)
//	}
//
// # Pipeline
//
// DefaultPipeline задаёт фиксированный порядок:
//
//	relax → scf → phonon → force-constant → interpolation
//
// Request.Structure для relax — исходная структура, для остальных
// стадий — структура, прочитанная из XML после relax.
//
// # Файлы стадий
//
//	relax          arelax.in    → relax.out,    RELAX.xml
//	scf            ascf_init.in → scf_init.out, QE.xml
//	phonon         aph.in       → ph.out,       QE.dyn*
//	force-constant aqr.in       → q2r.out,      QE333.fc
//	interpolation  amatdyn.in   → matdyn.out,   lambda
//
// # Файлы пакета
//
//   - step.go     — интерфейс Step, Request, ошибки
//   - pipeline.go — упорядоченный Pipeline
//   - qe.go       — шаги pw.x, ph.x, q2r.x, matdyn.x
package steps
