package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrOTPNotFound возвращается, когда код не найден или истек
var ErrOTPNotFound = errors.New("одноразовый код не найден или истек")

// OTPStore представляет хранилище одноразовых кодов с временем жизни.
// Внедряется как зависимость: in-memory реализация для одного экземпляра,
// redis для развертывания на нескольких.
type OTPStore interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// memoryOTPStore хранит коды в памяти процесса. Записи проверяются на
// истечение при чтении. Подходит только для одного экземпляра приложения:
// коды теряются при перезапуске.
type memoryOTPStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	counter   int64
	expiresAt time.Time
}

// NewMemoryOTPStore создает новое хранилище кодов в памяти
func NewMemoryOTPStore() OTPStore {
	return &memoryOTPStore{
		entries: make(map[string]memoryEntry),
	}
}

func (s *memoryOTPStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpiredLocked()
	s.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *memoryOTPStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[key]
	if !exists || time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return "", ErrOTPNotFound
	}
	return entry.value, nil
}

func (s *memoryOTPStore) Del(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *memoryOTPStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[key]
	if !exists || time.Now().After(entry.expiresAt) {
		entry = memoryEntry{expiresAt: time.Now().Add(ttl)}
	}
	entry.counter++
	s.entries[key] = entry
	return entry.counter, nil
}

// evictExpiredLocked удаляет истекшие записи. Вызывается под мьютексом.
func (s *memoryOTPStore) evictExpiredLocked() {
	now := time.Now()
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// redisOTPStore хранит коды в Redis. Используется при развертывании
// нескольких экземпляров приложения.
type redisOTPStore struct {
	client *redis.Client
}

// NewRedisOTPStore создает хранилище кодов поверх Redis
func NewRedisOTPStore(addr, password string, db int) OTPStore {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &redisOTPStore{client: client}
}

// NewRedisOTPStoreFromClient оборачивает существующий клиент Redis
func NewRedisOTPStoreFromClient(client *redis.Client) OTPStore {
	return &redisOTPStore{client: client}
}

func (s *redisOTPStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisOTPStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrOTPNotFound
	}
	return value, err
}

func (s *redisOTPStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *redisOTPStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		// TTL выставляется только при создании счетчика
		if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}
