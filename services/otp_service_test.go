package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPIssueAndVerify(t *testing.T) {
	ctx := context.Background()
	s := NewOTPService(NewMemoryOTPStore(), 5*time.Minute)

	pin, err := s.Issue(ctx, "+27821234567")
	require.NoError(t, err)
	require.Len(t, pin, 6)

	// Правильный код принимается
	require.NoError(t, s.Verify(ctx, "+27821234567", pin))

	// Код одноразовый: повторная проверка не проходит
	assert.ErrorIs(t, s.Verify(ctx, "+27821234567", pin), ErrOTPNotFound)
}

func TestOTPVerifyWrongCode(t *testing.T) {
	ctx := context.Background()
	s := NewOTPService(NewMemoryOTPStore(), 5*time.Minute)

	pin, err := s.Issue(ctx, "+27821234567")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == pin {
		wrong = "111111"
	}

	// Две неудачные попытки, затем правильный код все еще принимается
	assert.Error(t, s.Verify(ctx, "+27821234567", wrong))
	assert.Error(t, s.Verify(ctx, "+27821234567", wrong))
	assert.NoError(t, s.Verify(ctx, "+27821234567", pin))
}

func TestOTPVerifyAttemptsExhausted(t *testing.T) {
	ctx := context.Background()
	s := NewOTPService(NewMemoryOTPStore(), 5*time.Minute)

	pin, err := s.Issue(ctx, "+27821234567")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == pin {
		wrong = "111111"
	}

	assert.Error(t, s.Verify(ctx, "+27821234567", wrong))
	assert.Error(t, s.Verify(ctx, "+27821234567", wrong))
	// Третья неудачная попытка аннулирует код
	assert.ErrorIs(t, s.Verify(ctx, "+27821234567", wrong), ErrTooManyAttempts)

	// Даже правильный код больше не принимается
	assert.ErrorIs(t, s.Verify(ctx, "+27821234567", pin), ErrOTPNotFound)
}

func TestOTPReissueResetsAttempts(t *testing.T) {
	ctx := context.Background()
	s := NewOTPService(NewMemoryOTPStore(), 5*time.Minute)

	pin, err := s.Issue(ctx, "+27821234567")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == pin {
		wrong = "111111"
	}
	assert.Error(t, s.Verify(ctx, "+27821234567", wrong))
	assert.Error(t, s.Verify(ctx, "+27821234567", wrong))

	// Новый код сбрасывает счетчик попыток
	pin2, err := s.Issue(ctx, "+27821234567")
	require.NoError(t, err)

	assert.Error(t, s.Verify(ctx, "+27821234567", wrong))
	assert.Error(t, s.Verify(ctx, "+27821234567", wrong))
	assert.NoError(t, s.Verify(ctx, "+27821234567", pin2))
}

func TestOTPExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOTPStore()
	s := NewOTPService(store, 10*time.Millisecond)

	pin, err := s.Issue(ctx, "+27821234567")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	assert.ErrorIs(t, s.Verify(ctx, "+27821234567", pin), ErrOTPNotFound)
}

func TestOTPRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisOTPStoreFromClient(client)

	ctx := context.Background()
	s := NewOTPService(store, 5*time.Minute)

	pin, err := s.Issue(ctx, "+27821234567")
	require.NoError(t, err)

	require.NoError(t, s.Verify(ctx, "+27821234567", pin))
	assert.ErrorIs(t, s.Verify(ctx, "+27821234567", pin), ErrOTPNotFound)
}

func TestOTPRedisStoreExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisOTPStoreFromClient(client)

	ctx := context.Background()
	s := NewOTPService(store, time.Minute)

	pin, err := s.Issue(ctx, "+27821234567")
	require.NoError(t, err)

	// miniredis двигает время вручную
	mr.FastForward(2 * time.Minute)

	assert.ErrorIs(t, s.Verify(ctx, "+27821234567", pin), ErrOTPNotFound)
}
