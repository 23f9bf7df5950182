package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SystemSettings представляет глобальные настройки займов. В таблице
// хранится единственная строка с ID = 1.
type SystemSettings struct {
	ID                     uint            `gorm:"primaryKey"`
	InterestRatePercentage decimal.Decimal `gorm:"column:interest_rate_percentage;type:decimal(10,2);not null;default:30"`
	AdminFee               decimal.Decimal `gorm:"column:admin_fee;type:decimal(20,2);not null;default:60"`
	MaxLoanPercentage      decimal.Decimal `gorm:"column:max_loan_percentage;type:decimal(10,2);not null;default:25"`
	MinLoanAmount          decimal.Decimal `gorm:"column:min_loan_amount;type:decimal(20,2);not null;default:500"`
	MaxLoanAmount          decimal.Decimal `gorm:"column:max_loan_amount;type:decimal(20,2);not null;default:10000"`
	UpdatedAt              time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (SystemSettings) TableName() string {
	return "system_settings"
}
