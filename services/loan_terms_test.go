package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteInterestRate(t *testing.T) {
	tests := []struct {
		name       string
		amount     decimal.Decimal
		termMonths int
		expected   string
	}{
		{"базовая ставка", decimal.NewFromInt(50000), 12, "0.12"},
		{"скидка за крупную сумму", decimal.NewFromInt(150000), 12, "0.11"},
		{"надбавка за длинный срок", decimal.NewFromInt(50000), 36, "0.125"},
		{"скидка и надбавка вместе", decimal.NewFromInt(150000), 36, "0.115"},
		{"граница крупной суммы не включается", decimal.NewFromInt(100000), 12, "0.12"},
		{"граница длинного срока не включается", decimal.NewFromInt(50000), 24, "0.12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate := QuoteInterestRate(tt.amount, tt.termMonths)
			assert.Equal(t, tt.expected, rate.String())
		})
	}
}

func TestQuoteInterestRateWithinBounds(t *testing.T) {
	amounts := []decimal.Decimal{
		decimal.NewFromInt(1),
		decimal.NewFromInt(500),
		decimal.NewFromInt(99999),
		decimal.NewFromInt(1000000),
	}
	terms := []int{1, 6, 12, 24, 25, 60}

	for _, amount := range amounts {
		for _, term := range terms {
			rate := QuoteInterestRate(amount, term)
			assert.True(t, rate.GreaterThanOrEqual(decimal.NewFromFloat(0.08)),
				"ставка ниже минимума: amount=%s term=%d rate=%s", amount, term, rate)
			assert.True(t, rate.LessThanOrEqual(decimal.NewFromFloat(0.18)),
				"ставка выше максимума: amount=%s term=%d rate=%s", amount, term, rate)
		}
	}
}

func TestMonthlyInstallment(t *testing.T) {
	// 50000 на 12 месяцев под 12% годовых
	payment := MonthlyInstallment(decimal.NewFromInt(50000), decimal.NewFromFloat(0.12), 12)
	assert.Equal(t, "4442.44", payment.String())

	total := TotalAmount(payment, 12)
	assert.Equal(t, "53309.28", total.String())
}

func TestMonthlyInstallmentZeroRate(t *testing.T) {
	// Беспроцентный займ: равные доли
	payment := MonthlyInstallment(decimal.NewFromInt(50000), decimal.Zero, 12)
	assert.True(t, payment.Equal(decimal.NewFromFloat(4166.67)), "payment=%s", payment)

	payment = MonthlyInstallment(decimal.NewFromInt(12000), decimal.Zero, 12)
	assert.True(t, payment.Equal(decimal.NewFromInt(1000)), "payment=%s", payment)
}

func TestMonthlyInstallmentSinglePayment(t *testing.T) {
	// Один месяц: платеж равен сумме с месячными процентами
	payment := MonthlyInstallment(decimal.NewFromInt(10000), decimal.NewFromFloat(0.12), 1)
	assert.True(t, payment.Equal(decimal.NewFromInt(10100)), "payment=%s", payment)
}

func TestTotalAmountConsistency(t *testing.T) {
	// Сумма платежей всегда не меньше тела займа
	principals := []int64{500, 10000, 50000, 250000}
	terms := []int{3, 12, 36, 60}

	for _, p := range principals {
		for _, n := range terms {
			principal := decimal.NewFromInt(p)
			rate := QuoteInterestRate(principal, n)
			payment := MonthlyInstallment(principal, rate, n)
			total := TotalAmount(payment, n)

			assert.True(t, total.GreaterThanOrEqual(principal),
				"полная стоимость меньше тела займа: P=%d n=%d total=%s", p, n, total)
		}
	}
}

func TestPrincipalForInstallmentInverse(t *testing.T) {
	// Обратная операция восстанавливает тело займа с точностью до округления
	principal := decimal.NewFromInt(50000)
	rate := decimal.NewFromFloat(0.12)
	payment := MonthlyInstallment(principal, rate, 12)

	recovered := PrincipalForInstallment(payment, rate, 12)
	diff := recovered.Sub(principal).Abs()
	require.True(t, diff.LessThanOrEqual(decimal.NewFromInt(1)),
		"восстановленное тело займа отличается больше чем на 1: %s", recovered)
}

func TestPrincipalForInstallmentEdgeCases(t *testing.T) {
	assert.True(t, PrincipalForInstallment(decimal.Zero, decimal.NewFromFloat(0.12), 12).IsZero())
	assert.True(t, PrincipalForInstallment(decimal.NewFromInt(-100), decimal.NewFromFloat(0.12), 12).IsZero())
	assert.True(t, PrincipalForInstallment(decimal.NewFromInt(1000), decimal.NewFromFloat(0.12), 0).IsZero())

	// Нулевая ставка: тело равно платежу умноженному на срок
	principal := PrincipalForInstallment(decimal.NewFromInt(1000), decimal.Zero, 12)
	assert.True(t, principal.Equal(decimal.NewFromInt(12000)), "principal=%s", principal)
}
