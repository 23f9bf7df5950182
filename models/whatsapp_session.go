package models

import (
	"time"
)

// WhatsAppSessionStatus представляет состояние диалога в WhatsApp
type WhatsAppSessionStatus string

const (
	WASessionActive    WhatsAppSessionStatus = "ACTIVE"
	WASessionCompleted WhatsAppSessionStatus = "COMPLETED"
	WASessionAbandoned WhatsAppSessionStatus = "ABANDONED"
)

// WhatsAppSession представляет незавершенный диалог заполнения заявки
// через WhatsApp. Курсор мастера для чат-канала.
type WhatsAppSession struct {
	ID                 uint                  `gorm:"primaryKey;autoIncrement"`
	PhoneNumber        string                `gorm:"column:phone_number;unique;not null;size:20;index"`
	UserID             uint                  `gorm:"column:user_id;index"`
	DraftApplicationID *uint                 `gorm:"column:draft_application_id"`
	SessionStatus      WhatsAppSessionStatus `gorm:"column:session_status;type:varchar(10);not null;default:'ACTIVE'"`
	LastUpdatedAt      time.Time             `gorm:"column:last_updated_at;default:CURRENT_TIMESTAMP"`
	CreatedAt          time.Time             `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
}

func (WhatsAppSession) TableName() string {
	return "whatsapp_sessions"
}
