package services

import (
	"math"

	"github.com/shopspring/decimal"
)

// Границы ставки и параметры эвристики подбора ставки
var (
	baseAnnualRate     = decimal.NewFromFloat(0.12)
	minAnnualRate      = decimal.NewFromFloat(0.08)
	maxAnnualRate      = decimal.NewFromFloat(0.18)
	largeAmountCutoff  = decimal.NewFromInt(100000)
	largeAmountAdjust  = decimal.NewFromFloat(-0.01)
	longTermAdjustment = decimal.NewFromFloat(0.005)
)

// QuoteInterestRate подбирает годовую ставку по сумме и сроку займа.
// Это простая эвристика, а не модель риска: база 12%, скидка 1 п.п. для
// крупных сумм, надбавка 0.5 п.п. для длинных сроков, границы 8%..18%.
func QuoteInterestRate(amount decimal.Decimal, termMonths int) decimal.Decimal {
	rate := baseAnnualRate

	if amount.GreaterThan(largeAmountCutoff) {
		rate = rate.Add(largeAmountAdjust)
	}
	if termMonths > 24 {
		rate = rate.Add(longTermAdjustment)
	}

	if rate.LessThan(minAnnualRate) {
		rate = minAnnualRate
	}
	if rate.GreaterThan(maxAnnualRate) {
		rate = maxAnnualRate
	}

	return rate
}

// MonthlyInstallment рассчитывает размер аннуитетного платежа:
// payment = P * r * (1+r)^n / ((1+r)^n - 1), где r - месячная ставка.
// Возведение в степень выполняется в float64, денежная арифметика - в
// decimal; результат округляется до центов (половина - от нуля).
// Вызывающая сторона обязана передать termMonths > 0 и annualRate >= 0.
func MonthlyInstallment(principal decimal.Decimal, annualRate decimal.Decimal, termMonths int) decimal.Decimal {
	if annualRate.IsZero() {
		// Беспроцентный займ: равные доли
		return principal.Div(decimal.NewFromInt(int64(termMonths))).Round(2)
	}

	monthlyRate := annualRate.InexactFloat64() / 12
	factor := math.Pow(1+monthlyRate, float64(termMonths))

	annuityCoefficient := decimal.NewFromFloat(monthlyRate * factor / (factor - 1))
	return principal.Mul(annuityCoefficient).Round(2)
}

// TotalAmount рассчитывает полную стоимость займа: платеж умноженный на
// количество месяцев
func TotalAmount(monthlyPayment decimal.Decimal, termMonths int) decimal.Decimal {
	return monthlyPayment.Mul(decimal.NewFromInt(int64(termMonths))).Round(2)
}

// PrincipalForInstallment решает аннуитетную формулу относительно тела
// займа: какую сумму можно выдать, чтобы платеж не превышал заданный.
// Обратная операция к MonthlyInstallment.
func PrincipalForInstallment(payment decimal.Decimal, annualRate decimal.Decimal, termMonths int) decimal.Decimal {
	if payment.LessThanOrEqual(decimal.Zero) || termMonths <= 0 {
		return decimal.Zero
	}

	if annualRate.IsZero() {
		return payment.Mul(decimal.NewFromInt(int64(termMonths))).Round(2)
	}

	monthlyRate := annualRate.InexactFloat64() / 12
	factor := math.Pow(1+monthlyRate, float64(termMonths))

	inverse := decimal.NewFromFloat((factor - 1) / (monthlyRate * factor))
	return payment.Mul(inverse).Round(2)
}
