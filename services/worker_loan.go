package services

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"hohemaloans/models"
	"hohemaloans/utils"
)

// WorkerLoanRequestDTO представляет данные для быстрого расчета займа
// по отработанным часам
type WorkerLoanRequestDTO struct {
	HoursWorked     decimal.Decimal `json:"hoursWorked" validate:"required"`
	HourlyRate      decimal.Decimal `json:"hourlyRate" validate:"required"`
	RequestedAmount decimal.Decimal `json:"requestedAmount" validate:"required"`
}

// LoanCalculationResult представляет результат быстрого расчета займа
type LoanCalculationResult struct {
	MonthlyEarnings decimal.Decimal `json:"monthlyEarnings"`
	MaxLoanAmount   decimal.Decimal `json:"maxLoanAmount"`
	LoanAmount      decimal.Decimal `json:"loanAmount"`
	InterestAmount  decimal.Decimal `json:"interestAmount"`
	AdminFee        decimal.Decimal `json:"adminFee"`
	TotalRepayment  decimal.Decimal `json:"totalRepayment"`
	IsWithinLimits  bool            `json:"isWithinLimits"`
}

// WorkerLoanCalculator рассчитывает займы для работников с почасовой оплатой
type WorkerLoanCalculator struct {
	validator *validator.Validate
}

// NewWorkerLoanCalculator создает новый экземпляр WorkerLoanCalculator
func NewWorkerLoanCalculator() *WorkerLoanCalculator {
	return &WorkerLoanCalculator{
		validator: validator.New(),
	}
}

var hundred = decimal.NewFromInt(100)

// Calculate рассчитывает параметры займа по отработанным часам и текущим
// настройкам системы. Порядок ограничения суммы: сначала потолок по
// заработку, затем минимальная сумма, затем глобальный максимум.
func (c *WorkerLoanCalculator) Calculate(dto WorkerLoanRequestDTO, settings models.SystemSettings) (*LoanCalculationResult, error) {
	// Валидируем DTO
	if err := c.validator.Struct(dto); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				errorMessages = append(errorMessages, "поле "+e.Field()+" обязательно")
			}
		}
		return nil, errors.New(strings.Join(errorMessages, "; "))
	}

	if dto.HoursWorked.LessThanOrEqual(decimal.Zero) || dto.HourlyRate.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("часы и ставка должны быть больше нуля")
	}
	if dto.RequestedAmount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("запрошенная сумма должна быть больше нуля")
	}

	monthlyEarnings := dto.HoursWorked.Mul(dto.HourlyRate).Round(2)

	// Потолок по заработку: процент от месячного дохода
	maxLoanAmount := monthlyEarnings.Mul(settings.MaxLoanPercentage.Div(hundred)).Round(2)

	// Трехступенчатое ограничение: потолок по заработку, затем минимальная
	// сумма, затем глобальный максимум. Порядок сохранен как в продукте:
	// минимальная сумма может поднять займ выше потолка по заработку.
	loanAmount := dto.RequestedAmount
	if loanAmount.GreaterThan(maxLoanAmount) {
		loanAmount = maxLoanAmount
	}
	if loanAmount.LessThan(settings.MinLoanAmount) {
		loanAmount = settings.MinLoanAmount
	}
	if loanAmount.GreaterThan(settings.MaxLoanAmount) {
		loanAmount = settings.MaxLoanAmount
	}

	interestAmount := loanAmount.Mul(settings.InterestRatePercentage.Div(hundred)).Round(2)
	totalRepayment := loanAmount.Add(interestAmount).Add(settings.AdminFee).Round(2)

	utils.GetMetrics().RecordWorkerCalculation()

	return &LoanCalculationResult{
		MonthlyEarnings: monthlyEarnings,
		MaxLoanAmount:   maxLoanAmount,
		LoanAmount:      loanAmount,
		InterestAmount:  interestAmount,
		AdminFee:        settings.AdminFee,
		TotalRepayment:  totalRepayment,
		// Информационный флаг: сравнивается запрошенная сумма, не итоговая
		IsWithinLimits: dto.RequestedAmount.LessThanOrEqual(maxLoanAmount),
	}, nil
}
