package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// GenerateOTP генерирует одноразовый код из указанного количества цифр.
// Используется криптографический генератор случайных чисел.
func GenerateOTP(digits int) (string, error) {
	if digits <= 0 {
		digits = 6
	}

	var sb strings.Builder
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate OTP digit: %v", err)
		}
		sb.WriteString(n.String())
	}

	return sb.String(), nil
}

// HMACSign подписывает данные ключом HMAC-SHA256. Используется для
// детерминированного поиска по номеру счета без хранения его в открытом виде.
func HMACSign(data string, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// HMACVerify проверяет HMAC-подпись данных
func HMACVerify(data string, signature string, key string) bool {
	expected := HMACSign(data, key)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// MaskAccountNumber маскирует номер счета, оставляя последние 4 цифры
func MaskAccountNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}
