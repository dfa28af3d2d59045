package models

// ResolutionStrategy определяет способ разрешения конфликта
type ResolutionStrategy string

// Поддерживаемые стратегии разрешения
const (
	StrategyKeepLocal     ResolutionStrategy = "keep_local"
	StrategyKeepRemote    ResolutionStrategy = "keep_remote"
	StrategyLastWriteWins ResolutionStrategy = "last_write_wins"
	StrategyMerge         ResolutionStrategy = "merge"
	StrategyManual        ResolutionStrategy = "manual"
)

// Valid проверяет, что стратегия известна
func (s ResolutionStrategy) Valid() bool {
	switch s {
	case StrategyKeepLocal, StrategyKeepRemote, StrategyLastWriteWins, StrategyMerge, StrategyManual:
		return true
	}
	return false
}

// ConflictPolicy - конфигурация разрешения конфликтов: дефолтная стратегия
// плюс переопределения по типу сущности. Неизменяема после создания.
//
// Переопределение по entity type - абсолютный escape hatch: оно полностью
// обходит severity-дефолты. На это полагаются, чтобы держать отдельные типы
// (например "message") всегда local-preferring независимо от severity.
type ConflictPolicy struct {
	EntityOverrides map[string]ResolutionStrategy `json:"entity_overrides"`
	Name            string                        `json:"name"`
	DefaultStrategy ResolutionStrategy            `json:"default_strategy"`
}

// DefaultPolicy возвращает политику по умолчанию:
// MEDIUM конфликты разрешаются по last-write-wins, переопределений нет
func DefaultPolicy() ConflictPolicy {
	return ConflictPolicy{
		Name:            "default",
		DefaultStrategy: StrategyLastWriteWins,
	}
}

// LocalFirstPolicy возвращает политику, предпочитающую локальные изменения
func LocalFirstPolicy() ConflictPolicy {
	return ConflictPolicy{
		Name:            "local-first",
		DefaultStrategy: StrategyKeepLocal,
	}
}

// RemoteFirstPolicy возвращает политику, предпочитающую серверные изменения
func RemoteFirstPolicy() ConflictPolicy {
	return ConflictPolicy{
		Name:            "remote-first",
		DefaultStrategy: StrategyKeepRemote,
	}
}

// MessagingPolicy возвращает политику для приложений с перепиской:
// сообщения всегда local-preferring, остальное - last-write-wins
func MessagingPolicy() ConflictPolicy {
	return ConflictPolicy{
		Name:            "messaging",
		DefaultStrategy: StrategyLastWriteWins,
		EntityOverrides: map[string]ResolutionStrategy{
			"message": StrategyKeepLocal,
		},
	}
}

// PolicyByName возвращает именованный пресет политики.
// Неизвестное имя дает политику по умолчанию.
func PolicyByName(name string) ConflictPolicy {
	switch name {
	case "local-first":
		return LocalFirstPolicy()
	case "remote-first":
		return RemoteFirstPolicy()
	case "messaging":
		return MessagingPolicy()
	}
	return DefaultPolicy()
}
