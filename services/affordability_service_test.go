package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"hohemaloans/models"
)

func testAffordabilityService() *AffordabilityService {
	return NewAffordabilityService(nil, 0.12, 36)
}

func income(amount int64) models.Income {
	return models.Income{
		SourceType:    "Salary",
		MonthlyAmount: decimal.NewFromInt(amount),
		Frequency:     models.FrequencyMonthly,
	}
}

func expense(category string, amount int64, essential bool) models.Expense {
	return models.Expense{
		Category:      category,
		MonthlyAmount: decimal.NewFromInt(amount),
		IsEssential:   essential,
	}
}

func TestAssessAffordable(t *testing.T) {
	s := testAffordabilityService()

	// Доход 20000, расходы 8000, долгов нет
	assessment := s.Assess(
		[]models.Income{income(20000)},
		[]models.Expense{
			expense(models.ExpenseCategoryHousing, 5000, true),
			expense(models.ExpenseCategoryFood, 3000, true),
		},
		decimal.Zero,
	)

	assert.Equal(t, models.StatusAffordable, assessment.AffordabilityStatus)
	assert.True(t, assessment.GrossMonthlyIncome.Equal(decimal.NewFromInt(20000)))
	assert.True(t, assessment.AvailableFunds.Equal(decimal.NewFromInt(12000)))
	assert.True(t, assessment.ExpenseToIncomeRatio.Equal(decimal.NewFromFloat(0.4)),
		"ratio=%s", assessment.ExpenseToIncomeRatio)
	assert.True(t, assessment.MaxRecommendedLoanAmount.GreaterThan(decimal.Zero))
}

func TestAssessNotAffordableByDebtRatio(t *testing.T) {
	s := testAffordabilityService()

	// Платежи по долгам 40% дохода
	assessment := s.Assess(
		[]models.Income{income(10000)},
		[]models.Expense{expense(models.ExpenseCategoryDebt, 4000, true)},
		decimal.Zero,
	)

	assert.Equal(t, models.StatusNotAffordable, assessment.AffordabilityStatus)
	assert.True(t, assessment.DebtToIncomeRatio.Equal(decimal.NewFromFloat(0.4)),
		"ratio=%s", assessment.DebtToIncomeRatio)
}

func TestAssessNotAffordableByNegativeFunds(t *testing.T) {
	s := testAffordabilityService()

	// Расходы превышают доход
	assessment := s.Assess(
		[]models.Income{income(5000)},
		[]models.Expense{expense(models.ExpenseCategoryHousing, 6000, true)},
		decimal.Zero,
	)

	assert.Equal(t, models.StatusNotAffordable, assessment.AffordabilityStatus)
	assert.True(t, assessment.AvailableFunds.IsNegative())
	// Свободных средств нет, рекомендованная сумма нулевая
	assert.True(t, assessment.MaxRecommendedLoanAmount.IsZero())
}

func TestAssessLimitedAffordability(t *testing.T) {
	s := testAffordabilityService()

	// Расходы 80% дохода, но долгов нет и средства положительные
	assessment := s.Assess(
		[]models.Income{income(10000)},
		[]models.Expense{
			expense(models.ExpenseCategoryHousing, 5000, true),
			expense(models.ExpenseCategoryOther, 3000, false),
		},
		decimal.Zero,
	)

	assert.Equal(t, models.StatusLimitedAffordability, assessment.AffordabilityStatus)
	assert.True(t, assessment.EssentialExpenses.Equal(decimal.NewFromInt(5000)))
	assert.True(t, assessment.NonEssentialExpenses.Equal(decimal.NewFromInt(3000)))
}

func TestAssessZeroIncome(t *testing.T) {
	s := testAffordabilityService()

	assessment := s.Assess(nil, []models.Expense{expense(models.ExpenseCategoryFood, 1000, true)}, decimal.Zero)

	assert.Equal(t, models.StatusNotAffordable, assessment.AffordabilityStatus)
	// Коэффициенты не считаются при нулевом доходе
	assert.True(t, assessment.DebtToIncomeRatio.IsZero())
	assert.True(t, assessment.ExpenseToIncomeRatio.IsZero())
}

func TestAssessCountsActiveInstallments(t *testing.T) {
	s := testAffordabilityService()

	// Платежи по действующим займам входят в долговую нагрузку
	assessment := s.Assess(
		[]models.Income{income(10000)},
		nil,
		decimal.NewFromInt(3600),
	)

	assert.Equal(t, models.StatusNotAffordable, assessment.AffordabilityStatus)
	assert.True(t, assessment.ExistingDebtPayments.Equal(decimal.NewFromInt(3600)))
}

func TestAssessMaxRecommendedMonotonic(t *testing.T) {
	s := testAffordabilityService()

	// Больше свободных средств - больше рекомендованная сумма
	low := s.Assess([]models.Income{income(10000)},
		[]models.Expense{expense(models.ExpenseCategoryHousing, 5000, true)}, decimal.Zero)
	high := s.Assess([]models.Income{income(20000)},
		[]models.Expense{expense(models.ExpenseCategoryHousing, 5000, true)}, decimal.Zero)

	assert.True(t, high.MaxRecommendedLoanAmount.GreaterThan(low.MaxRecommendedLoanAmount))
}

func TestAssessMaxRecommendedMatchesInstallment(t *testing.T) {
	s := testAffordabilityService()

	assessment := s.Assess([]models.Income{income(20000)},
		[]models.Expense{expense(models.ExpenseCategoryHousing, 8000, true)}, decimal.Zero)

	// Платеж по рекомендованной сумме не превышает свободные средства
	payment := MonthlyInstallment(assessment.MaxRecommendedLoanAmount, decimal.NewFromFloat(0.12), 36)
	diff := assessment.AvailableFunds.Sub(payment)
	assert.True(t, diff.Abs().LessThanOrEqual(decimal.NewFromFloat(0.05)),
		"payment=%s available=%s", payment, assessment.AvailableFunds)
}

func TestAssessExpirySetThirtyDays(t *testing.T) {
	s := testAffordabilityService()

	assessment := s.Assess([]models.Income{income(10000)}, nil, decimal.Zero)
	assert.Equal(t, assessment.AssessmentDate.AddDate(0, 0, 30), assessment.ExpiryDate)
}

func TestAssessSplitIncomeHighEssentialExpenses(t *testing.T) {
	s := testAffordabilityService()

	// Несколько источников дохода в сумме 8500, обязательные расходы 4300
	assessment := s.Assess(
		[]models.Income{income(6000), income(2500)},
		[]models.Expense{expense(models.ExpenseCategoryHousing, 4300, true)},
		decimal.Zero,
	)

	assert.Equal(t, models.StatusAffordable, assessment.AffordabilityStatus)
	assert.True(t, assessment.GrossMonthlyIncome.Equal(decimal.NewFromInt(8500)))
	assert.True(t, assessment.DebtToIncomeRatio.IsZero())
	assert.True(t, assessment.ExpenseToIncomeRatio.Equal(decimal.NewFromFloat(0.5059)),
		"ratio=%s", assessment.ExpenseToIncomeRatio)
	assert.True(t, assessment.AvailableFunds.Equal(decimal.NewFromInt(4200)))
}

func TestAssessExpensesAndDebtExceedIncome(t *testing.T) {
	s := testAffordabilityService()

	// Доход 3200, расходы 4550, платежи по долгам 800
	assessment := s.Assess(
		[]models.Income{income(3200)},
		[]models.Expense{expense(models.ExpenseCategoryHousing, 4550, true)},
		decimal.NewFromInt(800),
	)

	assert.Equal(t, models.StatusNotAffordable, assessment.AffordabilityStatus)
	assert.True(t, assessment.AvailableFunds.IsNegative(),
		"funds=%s", assessment.AvailableFunds)
	assert.True(t, assessment.ExistingDebtPayments.Equal(decimal.NewFromInt(800)))
	assert.True(t, assessment.MaxRecommendedLoanAmount.IsZero())
}

// statusRank упорядочивает статусы от худшего к лучшему
func statusRank(status models.AffordabilityStatus) int {
	switch status {
	case models.StatusNotAffordable:
		return 0
	case models.StatusLimitedAffordability:
		return 1
	default:
		return 2
	}
}

func TestAssessStatusMonotonicInExpenses(t *testing.T) {
	s := testAffordabilityService()

	// Рост расходов при прочих равных не улучшает статус
	prev := statusRank(models.StatusAffordable)
	for amount := int64(0); amount <= 12000; amount += 500 {
		assessment := s.Assess(
			[]models.Income{income(10000)},
			[]models.Expense{expense(models.ExpenseCategoryHousing, amount, true)},
			decimal.Zero,
		)
		rank := statusRank(assessment.AffordabilityStatus)
		assert.LessOrEqual(t, rank, prev, "expenses=%d", amount)
		prev = rank
	}
}
