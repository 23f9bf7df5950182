package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	pin, err := GenerateOTP(6)
	require.NoError(t, err)
	require.Len(t, pin, 6)
	for _, r := range pin {
		assert.True(t, r >= '0' && r <= '9', "нецифровой символ в коде: %q", r)
	}

	// Нулевая длина заменяется значением по умолчанию
	pin, err = GenerateOTP(0)
	require.NoError(t, err)
	assert.Len(t, pin, 6)
}

func TestHMACSignAndVerify(t *testing.T) {
	signature := HMACSign("1234567890", "secret-key")
	assert.NotEmpty(t, signature)

	assert.True(t, HMACVerify("1234567890", signature, "secret-key"))
	assert.False(t, HMACVerify("1234567891", signature, "secret-key"))
	assert.False(t, HMACVerify("1234567890", signature, "other-key"))

	// Подпись детерминирована для одинаковых входов
	assert.Equal(t, signature, HMACSign("1234567890", "secret-key"))
}

func TestMaskAccountNumber(t *testing.T) {
	assert.Equal(t, "******7890", MaskAccountNumber("1234567890"))
	// Короткие номера возвращаются без изменений
	assert.Equal(t, "1234", MaskAccountNumber("1234"))
}
