package sync

import (
	"context"
	"errors"
	"time"
)

// TriggerSync запрашивает внеочередной цикл синхронизации.
// Неблокирующий: если запрос уже ожидает, повторный сливается с ним.
func (o *Orchestrator) TriggerSync() {
	select {
	case o.triggerC <- struct{}{}:
	default:
	}
}

// Run выполняет фоновый цикл до отмены контекста: периодический тикер,
// явные запросы TriggerSync и дебаунс-реакция на восстановление связи
// сходятся в один single-flight запуск.
func (o *Orchestrator) Run(ctx context.Context) {
	ticker := time.NewTicker(o.cfg.SyncInterval)
	defer ticker.Stop()

	events := o.netmon.Subscribe()

	// Дебаунс-таймер создается остановленным
	debounce := time.NewTimer(time.Hour)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			o.runCycle(ctx)

		case <-o.triggerC:
			o.runCycle(ctx)

		case online := <-events:
			if online {
				// Связь часто мигает при восстановлении,
				// синхронизируемся после паузы
				debounce.Reset(o.cfg.ReconnectDebounce)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
			}

		case <-debounce.C:
			o.logger.Info("connectivity restored, triggering sync")
			o.runCycle(ctx)
		}
	}
}

// runCycle запускает один цикл, не считая ошибкой отклоненный запуск
func (o *Orchestrator) runCycle(ctx context.Context) {
	if _, err := o.Sync(ctx); err != nil {
		switch {
		case errors.Is(err, ErrSyncInProgress), errors.Is(err, ErrOffline):
			o.logger.Debug("sync skipped", "reason", err)
		case errors.Is(err, ErrNotAuthenticated):
			o.logger.Debug("sync skipped: no session")
		default:
			// Ошибка уже залогирована и отражена в статусе
		}
	}
}
