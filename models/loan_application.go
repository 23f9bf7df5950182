package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ApplicationStatus представляет статус заявки на займ
type ApplicationStatus string

const (
	ApplicationStatusDraft       ApplicationStatus = "DRAFT"
	ApplicationStatusPending     ApplicationStatus = "PENDING"
	ApplicationStatusUnderReview ApplicationStatus = "UNDER_REVIEW"
	ApplicationStatusApproved    ApplicationStatus = "APPROVED"
	ApplicationStatusRejected    ApplicationStatus = "REJECTED"
	ApplicationStatusDisbursed   ApplicationStatus = "DISBURSED"
	ApplicationStatusClosed      ApplicationStatus = "CLOSED"
)

// ChannelOrigin представляет канал, через который подана заявка
type ChannelOrigin string

const (
	ChannelWeb      ChannelOrigin = "WEB"
	ChannelWhatsApp ChannelOrigin = "WHATSAPP"
)

// LoanApplication представляет заявку на займ, заполняемую пошаговым мастером
type LoanApplication struct {
	gorm.Model
	Reference      string            `gorm:"type:varchar(36);uniqueIndex;not null"` // внешний номер заявки (uuid)
	UserID         uint              `gorm:"not null;index"`
	User           User              `gorm:"foreignKey:UserID"`
	Amount         decimal.Decimal   `gorm:"type:decimal(20,2);not null;default:0"`
	TermMonths     int               `gorm:"not null;default:0"`
	Purpose        string            `gorm:"size:255"`
	Status         ApplicationStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	InterestRate   decimal.Decimal   `gorm:"type:decimal(10,4);not null;default:0"` // годовая ставка в долях (0.12 = 12%)
	MonthlyPayment decimal.Decimal   `gorm:"type:decimal(20,2);not null;default:0"`
	TotalAmount    decimal.Decimal   `gorm:"type:decimal(20,2);not null;default:0"`
	CurrentStep    int               `gorm:"not null;default:0"`
	StepData       []byte            `gorm:"type:jsonb"` // сериализованные данные шагов мастера
	ChannelOrigin  ChannelOrigin     `gorm:"type:varchar(10);not null;default:'WEB'"`

	// Банковские реквизиты для выплаты. Номер счета хранится в замаскированном
	// виде, для поиска используется HMAC.
	BankName            string `gorm:"size:100"`
	AccountNumberMasked string `gorm:"size:30"`
	AccountNumberHMAC   string `gorm:"size:64;index"`
	AccountHolderName   string `gorm:"size:100"`

	ApplicationDate *time.Time // дата подачи (Draft -> Pending)
	DecisionDate    *time.Time // дата решения администратора
	DecisionNotes   string     `gorm:"size:500"`
	SignedAt        *time.Time // дата подтверждения OTP-подписью
}

// TableName возвращает имя таблицы для модели LoanApplication
func (LoanApplication) TableName() string {
	return "loan_applications"
}
