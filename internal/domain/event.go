package domain

import "time"

// StageEvent — уведомление о начале или завершении стадии.
//
// Для стадий движка Job заполнен всегда, Result — после завершения.
// Для parse и evaluate Job и Result пусты.
type StageEvent struct {
	Stage    Stage
	Job      *Job
	Result   *JobResult
	Duration time.Duration
	Err      error
}

// Succeeded возвращает true, если стадия завершилась без ошибки.
func (e StageEvent) Succeeded() bool {
	return e.Err == nil
}
