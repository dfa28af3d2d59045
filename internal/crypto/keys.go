// Package crypto выводит клиентский auth key из пароля.
// Пароль не покидает клиента: сервер получает только SHA256 хеш
// производного ключа.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Параметры Argon2id. Менять нельзя без миграции: другой набор
// параметров дает другой auth key для того же пароля.
const (
	// Argon2Time - количество итераций
	Argon2Time = 1
	// Argon2Memory - память в KiB (64 MiB)
	Argon2Memory = 64 * 1024
	// Argon2Threads - степень параллелизма
	Argon2Threads = 4
	// Argon2KeyLen - длина производного ключа в байтах
	Argon2KeyLen = 32
	// SaltSize - длина соли в байтах
	SaltSize = 32
)

// GenerateSalt возвращает криптографически случайную соль
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// GenerateSaltBase64 возвращает случайную соль в base64,
// как она ходит по wire и хранится на сервере
func GenerateSaltBase64() (string, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// DeriveAuthKey выводит auth key из пароля через Argon2id.
// Username подмешивается во вход, чтобы одинаковые пароли разных
// пользователей не давали одинаковый ключ при совпадении солей.
func DeriveAuthKey(password, username string, salt []byte) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}
	if username == "" {
		return nil, fmt.Errorf("username cannot be empty")
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("salt must be %d bytes, got %d", SaltSize, len(salt))
	}

	input := []byte(password + username)
	return argon2.IDKey(input, salt, Argon2Time, Argon2Memory, Argon2Threads, Argon2KeyLen), nil
}

// DeriveAuthKeyFromBase64Salt выводит auth key из base64-кодированной соли
func DeriveAuthKeyFromBase64Salt(password, username, saltBase64 string) ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(saltBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	return DeriveAuthKey(password, username, salt)
}
