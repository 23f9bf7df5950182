package services

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hohemaloans/models"
)

const systemSettingsID = 1

// UpdateSettingsDTO представляет данные обновления настроек займов
type UpdateSettingsDTO struct {
	InterestRatePercentage decimal.Decimal `json:"interestRatePercentage" validate:"required"`
	AdminFee               decimal.Decimal `json:"adminFee" validate:"required"`
	MaxLoanPercentage      decimal.Decimal `json:"maxLoanPercentage" validate:"required"`
	MinLoanAmount          decimal.Decimal `json:"minLoanAmount" validate:"required"`
	MaxLoanAmount          decimal.Decimal `json:"maxLoanAmount" validate:"required"`
}

// SettingsService предоставляет методы для работы с настройками займов
type SettingsService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewSettingsService создает новый экземпляр SettingsService
func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{
		db:        db,
		validator: validator.New(),
	}
}

// Get возвращает настройки займов. Если строки еще нет, создается строка
// со значениями по умолчанию.
func (s *SettingsService) Get() (*models.SystemSettings, error) {
	var settings models.SystemSettings
	err := s.db.First(&settings, systemSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.SystemSettings{
			ID:                     systemSettingsID,
			InterestRatePercentage: decimal.NewFromInt(30),
			AdminFee:               decimal.NewFromInt(60),
			MaxLoanPercentage:      decimal.NewFromInt(25),
			MinLoanAmount:          decimal.NewFromInt(500),
			MaxLoanAmount:          decimal.NewFromInt(10000),
		}
		if err := s.db.Create(&settings).Error; err != nil {
			return nil, errors.New("ошибка при создании настроек по умолчанию")
		}
		return &settings, nil
	}
	if err != nil {
		return nil, errors.New("ошибка при получении настроек")
	}
	return &settings, nil
}

// Update обновляет настройки займов
func (s *SettingsService) Update(dto UpdateSettingsDTO) (*models.SystemSettings, error) {
	if err := s.validator.Struct(dto); err != nil {
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

	// Проверяем диапазоны процентов и согласованность границ
	if dto.InterestRatePercentage.LessThan(decimal.Zero) || dto.InterestRatePercentage.GreaterThan(hundred) {
		return nil, errors.New("процентная ставка должна быть в диапазоне 0..100")
	}
	if dto.MaxLoanPercentage.LessThanOrEqual(decimal.Zero) || dto.MaxLoanPercentage.GreaterThan(hundred) {
		return nil, errors.New("процент от заработка должен быть в диапазоне 1..100")
	}
	if dto.AdminFee.LessThan(decimal.Zero) {
		return nil, errors.New("административный сбор не может быть отрицательным")
	}
	if dto.MinLoanAmount.LessThanOrEqual(decimal.Zero) || dto.MaxLoanAmount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("границы суммы займа должны быть больше нуля")
	}
	if dto.MinLoanAmount.GreaterThan(dto.MaxLoanAmount) {
		return nil, errors.New("минимальная сумма не может превышать максимальную")
	}

	settings, err := s.Get()
	if err != nil {
		return nil, err
	}

	settings.InterestRatePercentage = dto.InterestRatePercentage
	settings.AdminFee = dto.AdminFee
	settings.MaxLoanPercentage = dto.MaxLoanPercentage
	settings.MinLoanAmount = dto.MinLoanAmount
	settings.MaxLoanAmount = dto.MaxLoanAmount

	if err := s.db.Save(settings).Error; err != nil {
		return nil, errors.New("ошибка при сохранении настроек")
	}

	return settings, nil
}
