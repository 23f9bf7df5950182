package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AffordabilityStatus представляет итоговую классификацию платежеспособности
type AffordabilityStatus string

const (
	StatusAffordable           AffordabilityStatus = "AFFORDABLE"
	StatusLimitedAffordability AffordabilityStatus = "LIMITED_AFFORDABILITY"
	StatusNotAffordable        AffordabilityStatus = "NOT_AFFORDABLE"
)

// AffordabilityAssessment представляет сохраненный снимок расчета
// платежеспособности. Каждый расчет создает новую строку; актуальной
// считается только последняя.
type AffordabilityAssessment struct {
	gorm.Model
	UserID                   uint                `gorm:"not null;index"`
	User                     User                `gorm:"foreignKey:UserID"`
	GrossMonthlyIncome       decimal.Decimal     `gorm:"type:decimal(20,2);not null"`
	NetMonthlyIncome         decimal.Decimal     `gorm:"type:decimal(20,2);not null"`
	TotalMonthlyExpenses     decimal.Decimal     `gorm:"type:decimal(20,2);not null"`
	EssentialExpenses        decimal.Decimal     `gorm:"type:decimal(20,2);not null"`
	NonEssentialExpenses     decimal.Decimal     `gorm:"type:decimal(20,2);not null"`
	ExistingDebtPayments     decimal.Decimal     `gorm:"type:decimal(20,2);not null"`
	DebtToIncomeRatio        decimal.Decimal     `gorm:"type:decimal(10,4);not null"`
	AvailableFunds           decimal.Decimal     `gorm:"type:decimal(20,2);not null"`
	ExpenseToIncomeRatio     decimal.Decimal     `gorm:"type:decimal(10,4);not null"`
	AffordabilityStatus      AffordabilityStatus `gorm:"type:varchar(25);not null"`
	MaxRecommendedLoanAmount decimal.Decimal     `gorm:"type:decimal(20,2);not null"`
	AssessmentDate           time.Time           `gorm:"not null"`
	ExpiryDate               time.Time           `gorm:"not null"` // AssessmentDate + 30 дней, справочное поле
}

// TableName возвращает имя таблицы для модели AffordabilityAssessment
func (AffordabilityAssessment) TableName() string {
	return "affordability_assessments"
}
