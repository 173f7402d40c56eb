package orchestrator

import (
	"context"

	"github.com/shaiso/supercon/internal/domain"
)

// Observer получает уведомления о ходе стадий.
//
// Вызовы синхронные и происходят в горутине workflow:
// медленный Observer замедляет выполнение.
type Observer interface {
	StageStarted(ctx context.Context, ev domain.StageEvent)
	StageFinished(ctx context.Context, ev domain.StageEvent)
}

// Observers рассылает уведомления всем наблюдателям по порядку.
type Observers []Observer

// StageStarted реализует Observer.
func (o Observers) StageStarted(ctx context.Context, ev domain.StageEvent) {
	for _, obs := range o {
		if obs != nil {
			obs.StageStarted(ctx, ev)
		}
	}
}

// StageFinished реализует Observer.
func (o Observers) StageFinished(ctx context.Context, ev domain.StageEvent) {
	for _, obs := range o {
		if obs != nil {
			obs.StageFinished(ctx, ev)
		}
	}
}
