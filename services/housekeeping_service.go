package services

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"hohemaloans/models"
)

const (
	// Сессия WhatsApp без активности считается брошенной
	sessionIdleLimit = 48 * time.Hour
	// Черновик заявки без изменений удаляется
	draftIdleLimit = 30 * 24 * time.Hour
)

// HousekeepingService периодически чистит брошенные сессии WhatsApp и
// устаревшие черновики заявок
type HousekeepingService struct {
	db *gorm.DB
}

// NewHousekeepingService создает новый экземпляр HousekeepingService
func NewHousekeepingService(db *gorm.DB) *HousekeepingService {
	return &HousekeepingService{db: db}
}

// Start запускает фоновую очистку
func (s *HousekeepingService) Start() {
	// Брошенные сессии помечаются каждый час
	sessionTicker := time.NewTicker(1 * time.Hour)
	go func() {
		for range sessionTicker.C {
			if err := s.abandonStaleSessions(); err != nil {
				log.Printf("Ошибка при обработке брошенных сессий: %v", err)
			}
		}
	}()

	// Устаревшие черновики удаляются раз в сутки
	draftTicker := time.NewTicker(24 * time.Hour)
	go func() {
		for range draftTicker.C {
			if err := s.purgeStaleDrafts(); err != nil {
				log.Printf("Ошибка при удалении устаревших черновиков: %v", err)
			}
		}
	}()
}

// abandonStaleSessions помечает активные сессии без активности брошенными
func (s *HousekeepingService) abandonStaleSessions() error {
	cutoff := time.Now().Add(-sessionIdleLimit)

	result := s.db.Model(&models.WhatsAppSession{}).
		Where("session_status = ? AND last_updated_at < ?", models.WASessionActive, cutoff).
		Update("session_status", models.WASessionAbandoned)
	if result.Error != nil {
		return errors.New("ошибка при пометке брошенных сессий")
	}

	if result.RowsAffected > 0 {
		log.Printf("Помечено брошенных сессий WhatsApp: %d", result.RowsAffected)
	}

	return nil
}

// purgeStaleDrafts удаляет черновики заявок без изменений
func (s *HousekeepingService) purgeStaleDrafts() error {
	cutoff := time.Now().Add(-draftIdleLimit)

	result := s.db.
		Where("status = ? AND updated_at < ?", models.ApplicationStatusDraft, cutoff).
		Delete(&models.LoanApplication{})
	if result.Error != nil {
		return errors.New("ошибка при удалении устаревших черновиков")
	}

	if result.RowsAffected > 0 {
		log.Printf("Удалено устаревших черновиков заявок: %d", result.RowsAffected)
	}

	return nil
}
