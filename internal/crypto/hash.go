package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// HashAuthKey возвращает hex-кодированный SHA256 от auth key.
// Именно этот хеш уходит на сервер и хранится там: сам ключ
// (и тем более пароль) сервер не видит.
func HashAuthKey(authKey []byte) (string, error) {
	if len(authKey) == 0 {
		return "", fmt.Errorf("auth key cannot be empty")
	}

	sum := sha256.Sum256(authKey)
	return hex.EncodeToString(sum[:]), nil
}

// VerifyAuthKey сравнивает auth key с сохраненным хешем за константное время
func VerifyAuthKey(authKey []byte, hashedAuthKey string) error {
	if len(authKey) == 0 {
		return fmt.Errorf("auth key cannot be empty")
	}
	if hashedAuthKey == "" {
		return fmt.Errorf("hashed auth key cannot be empty")
	}

	computed, err := HashAuthKey(authKey)
	if err != nil {
		return fmt.Errorf("failed to compute auth key hash: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(computed), []byte(hashedAuthKey)) != 1 {
		return fmt.Errorf("invalid auth key")
	}
	return nil
}
