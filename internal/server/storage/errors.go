package storage

import "errors"

// Ошибки серверного хранилища
var (
	// ErrUserNotFound - пользователь не найден
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists - пользователь с таким username уже существует
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound - refresh token не найден
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrChangeNotFound - запись изменения не найдена
	ErrChangeNotFound = errors.New("change not found")

	// ErrVersionConflict - версия входящего изменения не выше текущей
	// версии сущности на сервере. Клиент должен получить текущее состояние
	// и разрешить конфликт.
	ErrVersionConflict = errors.New("version conflict")
)
