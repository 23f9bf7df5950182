package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hohemaloans/models"
)

func testSettings() models.SystemSettings {
	return models.SystemSettings{
		ID:                     1,
		InterestRatePercentage: decimal.NewFromInt(30),
		AdminFee:               decimal.NewFromInt(60),
		MaxLoanPercentage:      decimal.NewFromInt(20),
		MinLoanAmount:          decimal.NewFromInt(500),
		MaxLoanAmount:          decimal.NewFromInt(10000),
	}
}

func TestWorkerLoanCalculate(t *testing.T) {
	calc := NewWorkerLoanCalculator()

	result, err := calc.Calculate(WorkerLoanRequestDTO{
		HoursWorked:     decimal.NewFromInt(160),
		HourlyRate:      decimal.NewFromInt(100),
		RequestedAmount: decimal.NewFromInt(3000),
	}, testSettings())
	require.NoError(t, err)

	assert.True(t, result.MonthlyEarnings.Equal(decimal.NewFromInt(16000)), "earnings=%s", result.MonthlyEarnings)
	assert.True(t, result.MaxLoanAmount.Equal(decimal.NewFromInt(3200)), "max=%s", result.MaxLoanAmount)
	assert.True(t, result.LoanAmount.Equal(decimal.NewFromInt(3000)), "loan=%s", result.LoanAmount)
	assert.True(t, result.InterestAmount.Equal(decimal.NewFromInt(900)), "interest=%s", result.InterestAmount)
	assert.True(t, result.TotalRepayment.Equal(decimal.NewFromInt(3960)), "total=%s", result.TotalRepayment)
	assert.True(t, result.IsWithinLimits)
}

func TestWorkerLoanCalculateCapsByEarnings(t *testing.T) {
	calc := NewWorkerLoanCalculator()

	// Запрошено больше потолка по заработку: сумма урезается
	result, err := calc.Calculate(WorkerLoanRequestDTO{
		HoursWorked:     decimal.NewFromInt(160),
		HourlyRate:      decimal.NewFromInt(100),
		RequestedAmount: decimal.NewFromInt(5000),
	}, testSettings())
	require.NoError(t, err)

	assert.True(t, result.LoanAmount.Equal(decimal.NewFromInt(3200)), "loan=%s", result.LoanAmount)
	assert.False(t, result.IsWithinLimits)
	// 3200 + 30% + 60
	assert.True(t, result.TotalRepayment.Equal(decimal.NewFromInt(4220)), "total=%s", result.TotalRepayment)
}

func TestWorkerLoanCalculateMinimumOverridesCap(t *testing.T) {
	calc := NewWorkerLoanCalculator()

	// Потолок по заработку ниже минимальной суммы: минимальная сумма
	// поднимает займ выше потолка
	result, err := calc.Calculate(WorkerLoanRequestDTO{
		HoursWorked:     decimal.NewFromInt(10),
		HourlyRate:      decimal.NewFromInt(50),
		RequestedAmount: decimal.NewFromInt(400),
	}, testSettings())
	require.NoError(t, err)

	assert.True(t, result.MaxLoanAmount.Equal(decimal.NewFromInt(100)), "max=%s", result.MaxLoanAmount)
	assert.True(t, result.LoanAmount.Equal(decimal.NewFromInt(500)), "loan=%s", result.LoanAmount)
}

func TestWorkerLoanCalculateCeiling(t *testing.T) {
	calc := NewWorkerLoanCalculator()

	// Глобальный максимум ограничивает сумму даже при большом заработке
	result, err := calc.Calculate(WorkerLoanRequestDTO{
		HoursWorked:     decimal.NewFromInt(200),
		HourlyRate:      decimal.NewFromInt(500),
		RequestedAmount: decimal.NewFromInt(15000),
	}, testSettings())
	require.NoError(t, err)

	assert.True(t, result.MaxLoanAmount.Equal(decimal.NewFromInt(20000)), "max=%s", result.MaxLoanAmount)
	assert.True(t, result.LoanAmount.Equal(decimal.NewFromInt(10000)), "loan=%s", result.LoanAmount)
	assert.True(t, result.IsWithinLimits)
}

func TestWorkerLoanCalculateRejectsInvalidInput(t *testing.T) {
	calc := NewWorkerLoanCalculator()

	_, err := calc.Calculate(WorkerLoanRequestDTO{
		HoursWorked:     decimal.NewFromInt(-10),
		HourlyRate:      decimal.NewFromInt(100),
		RequestedAmount: decimal.NewFromInt(1000),
	}, testSettings())
	assert.Error(t, err)

	_, err = calc.Calculate(WorkerLoanRequestDTO{
		HoursWorked:     decimal.NewFromInt(160),
		HourlyRate:      decimal.NewFromInt(100),
		RequestedAmount: decimal.NewFromInt(-1),
	}, testSettings())
	assert.Error(t, err)
}
