package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hohemaloans/models"
	"hohemaloans/utils"
)

// Пороговые значения NCR для классификации платежеспособности
var (
	maxDebtToIncomeRatio    = decimal.NewFromFloat(0.35)
	maxExpenseToIncomeRatio = decimal.NewFromFloat(0.7)
)

// AffordabilityAssessmentDTO представляет результат расчета платежеспособности
type AffordabilityAssessmentDTO struct {
	GrossMonthlyIncome       decimal.Decimal            `json:"grossMonthlyIncome"`
	NetMonthlyIncome         decimal.Decimal            `json:"netMonthlyIncome"`
	TotalMonthlyExpenses     decimal.Decimal            `json:"totalMonthlyExpenses"`
	EssentialExpenses        decimal.Decimal            `json:"essentialExpenses"`
	NonEssentialExpenses     decimal.Decimal            `json:"nonEssentialExpenses"`
	ExistingDebtPayments     decimal.Decimal            `json:"existingDebtPayments"`
	DebtToIncomeRatio        decimal.Decimal            `json:"debtToIncomeRatio"`
	AvailableFunds           decimal.Decimal            `json:"availableFunds"`
	ExpenseToIncomeRatio     decimal.Decimal            `json:"expenseToIncomeRatio"`
	AffordabilityStatus      models.AffordabilityStatus `json:"affordabilityStatus"`
	MaxRecommendedLoanAmount decimal.Decimal            `json:"maxRecommendedLoanAmount"`
	AssessmentDate           time.Time                  `json:"assessmentDate"`
	ExpiryDate               time.Time                  `json:"expiryDate"`
}

// AffordabilityService рассчитывает платежеспособность пользователя
type AffordabilityService struct {
	db *gorm.DB

	// Параметры расчета максимальной рекомендованной суммы:
	// ставка и справочный срок амортизации
	defaultAnnualRate   decimal.Decimal
	referenceTermMonths int
}

// NewAffordabilityService создает новый экземпляр AffordabilityService
func NewAffordabilityService(db *gorm.DB, defaultAnnualRate float64, referenceTermMonths int) *AffordabilityService {
	return &AffordabilityService{
		db:                  db,
		defaultAnnualRate:   decimal.NewFromFloat(defaultAnnualRate),
		referenceTermMonths: referenceTermMonths,
	}
}

// Calculate рассчитывает платежеспособность пользователя и сохраняет
// новый снимок. Снимок всегда рассчитывается заново, сохраненные строки
// не переиспользуются.
func (s *AffordabilityService) Calculate(userID uint) (*models.AffordabilityAssessment, error) {
	// Загружаем доходы пользователя
	var incomes []models.Income
	if err := s.db.Where("user_id = ?", userID).Find(&incomes).Error; err != nil {
		return nil, errors.New("ошибка при получении доходов пользователя")
	}

	// Загружаем расходы пользователя
	var expenses []models.Expense
	if err := s.db.Where("user_id = ?", userID).Find(&expenses).Error; err != nil {
		return nil, errors.New("ошибка при получении расходов пользователя")
	}

	// Загружаем платежи по действующим займам
	var activeApplications []models.LoanApplication
	if err := s.db.Where("user_id = ? AND status IN ?", userID,
		[]models.ApplicationStatus{models.ApplicationStatusApproved, models.ApplicationStatusDisbursed}).
		Find(&activeApplications).Error; err != nil {
		return nil, errors.New("ошибка при получении действующих займов")
	}

	activeInstallments := decimal.Zero
	for _, app := range activeApplications {
		activeInstallments = activeInstallments.Add(app.MonthlyPayment)
	}

	assessment := s.Assess(incomes, expenses, activeInstallments)
	assessment.UserID = userID

	// Сохраняем снимок
	if err := s.db.Create(assessment).Error; err != nil {
		return nil, errors.New("ошибка при сохранении результата расчета")
	}

	utils.GetMetrics().RecordAssessment()

	return assessment, nil
}

// Assess выполняет расчет платежеспособности по загруженным данным.
// Чистая функция без обращений к базе данных.
func (s *AffordabilityService) Assess(incomes []models.Income, expenses []models.Expense, activeInstallments decimal.Decimal) *models.AffordabilityAssessment {
	// Валовый доход: сумма всех источников
	grossIncome := decimal.Zero
	for _, income := range incomes {
		grossIncome = grossIncome.Add(income.MonthlyAmount)
	}

	// Чистый доход приравнивается к валовому: модели налогов нет
	netIncome := grossIncome

	// Разделение расходов на обязательные и необязательные
	essential := decimal.Zero
	nonEssential := decimal.Zero
	debtExpenses := decimal.Zero
	for _, expense := range expenses {
		if expense.IsEssential {
			essential = essential.Add(expense.MonthlyAmount)
		} else {
			nonEssential = nonEssential.Add(expense.MonthlyAmount)
		}
		if expense.Category == models.ExpenseCategoryDebt {
			debtExpenses = debtExpenses.Add(expense.MonthlyAmount)
		}
	}
	totalExpenses := essential.Add(nonEssential)

	existingDebt := debtExpenses.Add(activeInstallments)
	availableFunds := netIncome.Sub(totalExpenses)

	// Коэффициенты с защитой от деления на ноль
	debtRatio := decimal.Zero
	expenseRatio := decimal.Zero
	if grossIncome.GreaterThan(decimal.Zero) {
		debtRatio = existingDebt.Div(grossIncome).Round(4)
		expenseRatio = totalExpenses.Div(grossIncome).Round(4)
	}

	// Классификация, порядок проверок имеет значение
	var status models.AffordabilityStatus
	switch {
	case grossIncome.LessThanOrEqual(decimal.Zero):
		status = models.StatusNotAffordable
	case debtRatio.GreaterThan(maxDebtToIncomeRatio) || availableFunds.LessThan(decimal.Zero):
		status = models.StatusNotAffordable
	case expenseRatio.GreaterThan(maxExpenseToIncomeRatio):
		status = models.StatusLimitedAffordability
	default:
		status = models.StatusAffordable
	}

	// Максимальная рекомендованная сумма: тело займа, при котором платеж
	// по справочному сроку не превышает свободные средства
	maxRecommended := decimal.Zero
	if availableFunds.GreaterThan(decimal.Zero) {
		maxRecommended = PrincipalForInstallment(availableFunds, s.defaultAnnualRate, s.referenceTermMonths)
	}

	now := time.Now().UTC()
	return &models.AffordabilityAssessment{
		GrossMonthlyIncome:       grossIncome,
		NetMonthlyIncome:         netIncome,
		TotalMonthlyExpenses:     totalExpenses,
		EssentialExpenses:        essential,
		NonEssentialExpenses:     nonEssential,
		ExistingDebtPayments:     existingDebt,
		DebtToIncomeRatio:        debtRatio,
		AvailableFunds:           availableFunds,
		ExpenseToIncomeRatio:     expenseRatio,
		AffordabilityStatus:      status,
		MaxRecommendedLoanAmount: maxRecommended,
		AssessmentDate:           now,
		ExpiryDate:               now.AddDate(0, 0, 30),
	}
}

// ToDTO конвертирует модель AffordabilityAssessment в DTO
func (s *AffordabilityService) ToDTO(a *models.AffordabilityAssessment) AffordabilityAssessmentDTO {
	return AffordabilityAssessmentDTO{
		GrossMonthlyIncome:       a.GrossMonthlyIncome,
		NetMonthlyIncome:         a.NetMonthlyIncome,
		TotalMonthlyExpenses:     a.TotalMonthlyExpenses,
		EssentialExpenses:        a.EssentialExpenses,
		NonEssentialExpenses:     a.NonEssentialExpenses,
		ExistingDebtPayments:     a.ExistingDebtPayments,
		DebtToIncomeRatio:        a.DebtToIncomeRatio,
		AvailableFunds:           a.AvailableFunds,
		ExpenseToIncomeRatio:     a.ExpenseToIncomeRatio,
		AffordabilityStatus:      a.AffordabilityStatus,
		MaxRecommendedLoanAmount: a.MaxRecommendedLoanAmount,
		AssessmentDate:           a.AssessmentDate,
		ExpiryDate:               a.ExpiryDate,
	}
}
