// Package iocli абстрагирует терминальный ввод-вывод клиента,
// чтобы команды CLI можно было тестировать со скриптованным вводом
package iocli

//go:generate moq -out io_mock.go . IO

// IO - терминал команды: вывод, построчный ввод и скрытый ввод пароля
type IO interface {
	// Println печатает строку с переводом
	Println(a ...any)
	// Printf печатает форматированную строку
	Printf(format string, a ...any)
	// ReadInput печатает prompt и читает строку до перевода
	ReadInput(prompt string) (string, error)
	// ReadPassword печатает prompt и читает строку без эха
	ReadPassword(prompt string) (string, error)
	// Write дает io.Writer поверх того же вывода
	Write(p []byte) (n int, err error)
}
