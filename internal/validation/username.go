package validation

import (
	"fmt"
	"regexp"
)

// UsernamePattern задает допустимый username: латинские буквы,
// цифры и подчеркивание, 3-32 символа
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

// Границы длины username
const (
	MinUsernameLen = 3
	MaxUsernameLen = 32
)

// ValidateUsername проверяет username перед регистрацией и логином.
// Проверки длины идут до regexp, чтобы ошибка называла нарушенное
// правило, а не общий формат.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLen)
	}
	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}
	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters (a-z, A-Z), numbers (0-9), and underscores (_)")
	}
	return nil
}

// ValidatePassword проверяет минимальную длину пароля.
// Из пароля выводится auth key, поэтому короткие пароли запрещены.
func ValidatePassword(password string) error {
	const minPasswordLen = 12

	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLen)
	}
	return nil
}
