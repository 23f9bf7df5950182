package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Категории расходов. ExpenseCategoryDebt выделяется отдельно:
// такие расходы учитываются как платежи по существующим долгам.
const (
	ExpenseCategoryHousing   = "Housing"
	ExpenseCategoryTransport = "Transport"
	ExpenseCategoryFood      = "Food"
	ExpenseCategoryDebt      = "Debt"
	ExpenseCategoryOther     = "Other"
)

// Expense представляет ежемесячный расход пользователя
type Expense struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"`
	UserID        uint            `gorm:"column:user_id;not null;index"`
	User          User            `gorm:"foreignKey:UserID;references:ID"`
	Category      string          `gorm:"column:category;not null;size:50"`
	Description   string          `gorm:"column:description;size:255"`
	MonthlyAmount decimal.Decimal `gorm:"column:monthly_amount;type:decimal(20,2);not null"`
	Frequency     IncomeFrequency `gorm:"column:frequency;type:varchar(10);not null;default:'MONTHLY'"`
	IsEssential   bool            `gorm:"column:is_essential;not null;default:false"`
	IsFixed       bool            `gorm:"column:is_fixed;not null;default:false"`
	CreatedAt     time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Expense) TableName() string {
	return "expenses"
}
