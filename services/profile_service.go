package services

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hohemaloans/models"
)

// Ошибки поиска элементов профиля
var (
	ErrIncomeNotFound  = errors.New("доход не найден")
	ErrExpenseNotFound = errors.New("расход не найден")
)

// IncomeDTO представляет данные для создания или изменения дохода
type IncomeDTO struct {
	SourceType    string          `json:"sourceType" validate:"required,min=2,max=50"`
	Description   string          `json:"description" validate:"max=255"`
	MonthlyAmount decimal.Decimal `json:"monthlyAmount" validate:"required"`
	Frequency     string          `json:"frequency" validate:"omitempty,oneof=WEEKLY BIWEEKLY MONTHLY"`
}

// ExpenseDTO представляет данные для создания или изменения расхода
type ExpenseDTO struct {
	Category      string          `json:"category" validate:"required,min=2,max=50"`
	Description   string          `json:"description" validate:"max=255"`
	MonthlyAmount decimal.Decimal `json:"monthlyAmount" validate:"required"`
	Frequency     string          `json:"frequency" validate:"omitempty,oneof=WEEKLY BIWEEKLY MONTHLY"`
	IsEssential   bool            `json:"isEssential"`
	IsFixed       bool            `json:"isFixed"`
}

// ProfileService предоставляет методы для работы с доходами и расходами
type ProfileService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewProfileService создает новый экземпляр ProfileService
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{
		db:        db,
		validator: validator.New(),
	}
}

// validate валидирует DTO и возвращает ошибки валидации
func (s *ProfileService) validate(dto interface{}) error {
	if err := s.validator.Struct(dto); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				errorMessages = append(errorMessages, "поле "+e.Field()+" обязательно")
			case "min":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно содержать минимум "+e.Param()+" символов")
			case "max":
				errorMessages = append(errorMessages, "поле "+e.Field()+" превышает максимальную длину "+e.Param())
			case "oneof":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть одним из: "+e.Param())
			}
		}
		return errors.New(strings.Join(errorMessages, "; "))
	}
	return nil
}

// CreateIncome создает новый источник дохода
func (s *ProfileService) CreateIncome(userID uint, dto IncomeDTO) (*models.Income, error) {
	if err := s.validate(dto); err != nil {
		return nil, err
	}
	if dto.MonthlyAmount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("сумма дохода должна быть больше нуля")
	}

	income := &models.Income{
		UserID:        userID,
		SourceType:    dto.SourceType,
		Description:   dto.Description,
		MonthlyAmount: dto.MonthlyAmount.Round(2),
		Frequency:     frequencyOrDefault(dto.Frequency),
	}

	if err := s.db.Create(income).Error; err != nil {
		return nil, errors.New("ошибка при создании дохода")
	}
	return income, nil
}

// UpdateIncome изменяет источник дохода
func (s *ProfileService) UpdateIncome(userID uint, incomeID uint, dto IncomeDTO) (*models.Income, error) {
	if err := s.validate(dto); err != nil {
		return nil, err
	}
	if dto.MonthlyAmount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("сумма дохода должна быть больше нуля")
	}

	var income models.Income
	if err := s.db.First(&income, incomeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIncomeNotFound
		}
		return nil, errors.New("ошибка при поиске дохода")
	}
	if income.UserID != userID {
		return nil, errors.New("Access denied")
	}

	income.SourceType = dto.SourceType
	income.Description = dto.Description
	income.MonthlyAmount = dto.MonthlyAmount.Round(2)
	income.Frequency = frequencyOrDefault(dto.Frequency)

	if err := s.db.Save(&income).Error; err != nil {
		return nil, errors.New("ошибка при сохранении дохода")
	}
	return &income, nil
}

// DeleteIncome удаляет источник дохода
func (s *ProfileService) DeleteIncome(userID uint, incomeID uint) error {
	var income models.Income
	if err := s.db.First(&income, incomeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrIncomeNotFound
		}
		return errors.New("ошибка при поиске дохода")
	}
	if income.UserID != userID {
		return errors.New("Access denied")
	}
	if err := s.db.Delete(&income).Error; err != nil {
		return errors.New("ошибка при удалении дохода")
	}
	return nil
}

// GetIncomes возвращает все доходы пользователя
func (s *ProfileService) GetIncomes(userID uint) ([]models.Income, error) {
	var incomes []models.Income
	if err := s.db.Where("user_id = ?", userID).Find(&incomes).Error; err != nil {
		return nil, errors.New("ошибка при поиске доходов")
	}
	return incomes, nil
}

// CreateExpense создает новый расход
func (s *ProfileService) CreateExpense(userID uint, dto ExpenseDTO) (*models.Expense, error) {
	if err := s.validate(dto); err != nil {
		return nil, err
	}
	if dto.MonthlyAmount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("сумма расхода должна быть больше нуля")
	}

	expense := &models.Expense{
		UserID:        userID,
		Category:      dto.Category,
		Description:   dto.Description,
		MonthlyAmount: dto.MonthlyAmount.Round(2),
		Frequency:     frequencyOrDefault(dto.Frequency),
		IsEssential:   dto.IsEssential,
		IsFixed:       dto.IsFixed,
	}

	if err := s.db.Create(expense).Error; err != nil {
		return nil, errors.New("ошибка при создании расхода")
	}
	return expense, nil
}

// UpdateExpense изменяет расход
func (s *ProfileService) UpdateExpense(userID uint, expenseID uint, dto ExpenseDTO) (*models.Expense, error) {
	if err := s.validate(dto); err != nil {
		return nil, err
	}
	if dto.MonthlyAmount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("сумма расхода должна быть больше нуля")
	}

	var expense models.Expense
	if err := s.db.First(&expense, expenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, errors.New("ошибка при поиске расхода")
	}
	if expense.UserID != userID {
		return nil, errors.New("Access denied")
	}

	expense.Category = dto.Category
	expense.Description = dto.Description
	expense.MonthlyAmount = dto.MonthlyAmount.Round(2)
	expense.Frequency = frequencyOrDefault(dto.Frequency)
	expense.IsEssential = dto.IsEssential
	expense.IsFixed = dto.IsFixed

	if err := s.db.Save(&expense).Error; err != nil {
		return nil, errors.New("ошибка при сохранении расхода")
	}
	return &expense, nil
}

// DeleteExpense удаляет расход
func (s *ProfileService) DeleteExpense(userID uint, expenseID uint) error {
	var expense models.Expense
	if err := s.db.First(&expense, expenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExpenseNotFound
		}
		return errors.New("ошибка при поиске расхода")
	}
	if expense.UserID != userID {
		return errors.New("Access denied")
	}
	if err := s.db.Delete(&expense).Error; err != nil {
		return errors.New("ошибка при удалении расхода")
	}
	return nil
}

// GetExpenses возвращает все расходы пользователя
func (s *ProfileService) GetExpenses(userID uint) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := s.db.Where("user_id = ?", userID).Find(&expenses).Error; err != nil {
		return nil, errors.New("ошибка при поиске расходов")
	}
	return expenses, nil
}

// frequencyOrDefault возвращает периодичность или MONTHLY по умолчанию
func frequencyOrDefault(frequency string) models.IncomeFrequency {
	if frequency == "" {
		return models.FrequencyMonthly
	}
	return models.IncomeFrequency(frequency)
}
