package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncomeFrequency представляет периодичность дохода
type IncomeFrequency string

const (
	FrequencyWeekly   IncomeFrequency = "WEEKLY"
	FrequencyBiWeekly IncomeFrequency = "BIWEEKLY"
	FrequencyMonthly  IncomeFrequency = "MONTHLY"
)

// Income представляет источник дохода пользователя
type Income struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"`
	UserID        uint            `gorm:"column:user_id;not null;index"`
	User          User            `gorm:"foreignKey:UserID;references:ID"`
	SourceType    string          `gorm:"column:source_type;not null;size:50"` // Salary, Business, Grant, Other
	Description   string          `gorm:"column:description;size:255"`
	MonthlyAmount decimal.Decimal `gorm:"column:monthly_amount;type:decimal(20,2);not null"`
	Frequency     IncomeFrequency `gorm:"column:frequency;type:varchar(10);not null;default:'MONTHLY'"`
	IsVerified    bool            `gorm:"column:is_verified;not null;default:false"`
	CreatedAt     time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Income) TableName() string {
	return "incomes"
}
