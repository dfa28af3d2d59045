// Package netmon отслеживает доступность сервера синхронизации.
// Текущее состояние читается синхронно, подписчики получают
// уведомления при каждой смене состояния.
package netmon

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

//go:generate moq -out prober_mock.go . Prober

// Prober проверяет доступность сервера одним запросом
type Prober interface {
	Health(ctx context.Context) error
}

// Monitor наблюдает за связностью через периодический health probe
type Monitor struct {
	prober   Prober
	logger   *slog.Logger
	subs     map[int]chan bool
	interval time.Duration
	mu       sync.Mutex
	nextSub  int
	online   bool
}

// New создает монитор связности. Начальное состояние - offline,
// пока первый probe не скажет обратное.
func New(prober Prober, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Monitor{
		prober:   prober,
		logger:   logger,
		subs:     make(map[int]chan bool),
		interval: interval,
	}
}

// IsOnline возвращает текущее состояние связности
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe возвращает канал, получающий новое состояние при каждой смене.
// Канал буферизован; уведомление, которое некому принять, отбрасывается.
func (m *Monitor) Subscribe() <-chan bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan bool, 1)
	m.subs[m.nextSub] = ch
	m.nextSub++
	return ch
}

// SetOnline выставляет состояние связности и уведомляет подписчиков
// при его смене
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.online == online {
		return
	}
	m.online = online

	for _, ch := range m.subs {
		select {
		case ch <- online:
		default:
			// Подписчик не успел прочитать предыдущее уведомление
		}
	}
}

// Run запускает периодический probe до отмены контекста.
// Первый probe выполняется сразу.
func (m *Monitor) Run(ctx context.Context) {
	m.probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

// Probe выполняет один health check немедленно, вне расписания Run,
// и возвращает результат. Состояние монитора обновляется как обычно.
func (m *Monitor) Probe(ctx context.Context) bool {
	m.probe(ctx)
	return m.IsOnline()
}

// probe выполняет один health check и обновляет состояние
func (m *Monitor) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := m.prober.Health(probeCtx)
	online := err == nil

	if online != m.IsOnline() {
		if online {
			m.logger.Info("connectivity restored")
		} else {
			m.logger.Warn("connectivity lost", "error", err)
		}
	}

	m.SetOnline(online)
}
