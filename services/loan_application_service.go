package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hohemaloans/models"
	"hohemaloans/utils"
)

// ErrApplicationNotFound возвращается, когда заявка не существует
var ErrApplicationNotFound = errors.New("заявка не найдена")

// ApplicationResponseDTO представляет ответ с данными заявки
type ApplicationResponseDTO struct {
	ID              uint                     `json:"id"`
	Reference       string                   `json:"reference"`
	Amount          decimal.Decimal          `json:"amount"`
	TermMonths      int                      `json:"termMonths"`
	Purpose         string                   `json:"purpose"`
	Status          models.ApplicationStatus `json:"status"`
	InterestRate    decimal.Decimal          `json:"interestRate"`
	MonthlyPayment  decimal.Decimal          `json:"monthlyPayment"`
	TotalAmount     decimal.Decimal          `json:"totalAmount"`
	CurrentStep     int                      `json:"currentStep"`
	ChannelOrigin   models.ChannelOrigin     `json:"channelOrigin"`
	BankName        string                   `json:"bankName,omitempty"`
	AccountNumber   string                   `json:"accountNumber,omitempty"` // замаскированный
	AccountHolder   string                   `json:"accountHolderName,omitempty"`
	ApplicationDate *time.Time               `json:"applicationDate,omitempty"`
	DecisionDate    *time.Time               `json:"decisionDate,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
}

// ApproveApplicationDTO представляет данные решения администратора
type ApproveApplicationDTO struct {
	InterestRate    decimal.Decimal `json:"interestRate" validate:"required"`
	RepaymentMonths int             `json:"repaymentMonths" validate:"required,gt=0"`
	Notes           string          `json:"notes" validate:"max=500"`
}

// LoanApplicationService предоставляет методы для работы с заявками на займ
type LoanApplicationService struct {
	db         *gorm.DB
	validator  *validator.Validate
	email      *EmailService
	otp        *OTPService
	compliance *ComplianceService
	hmacKey    string
}

// NewLoanApplicationService создает новый экземпляр LoanApplicationService
func NewLoanApplicationService(db *gorm.DB, email *EmailService, otp *OTPService, compliance *ComplianceService, hmacKey string) *LoanApplicationService {
	return &LoanApplicationService{
		db:         db,
		validator:  validator.New(),
		email:      email,
		otp:        otp,
		compliance: compliance,
		hmacKey:    hmacKey,
	}
}

// CreateDraft создает черновик заявки
func (s *LoanApplicationService) CreateDraft(userID uint, channel models.ChannelOrigin) (*models.LoanApplication, error) {
	app := &models.LoanApplication{
		Reference:     uuid.NewString(),
		UserID:        userID,
		Status:        models.ApplicationStatusDraft,
		CurrentStep:   int(StepLoanAmount),
		ChannelOrigin: channel,
	}

	if err := s.db.Create(app).Error; err != nil {
		return nil, errors.New("ошибка при создании заявки")
	}

	utils.GetMetrics().RecordApplicationEvent("create")

	return app, nil
}

// GetByID возвращает заявку по ID
func (s *LoanApplicationService) GetByID(id uint) (*models.LoanApplication, error) {
	var app models.LoanApplication
	if err := s.db.Preload("User").First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, errors.New("ошибка при поиске заявки")
	}
	return &app, nil
}

// GetByUserID возвращает все заявки пользователя
func (s *LoanApplicationService) GetByUserID(userID uint) ([]models.LoanApplication, error) {
	var apps []models.LoanApplication
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&apps).Error; err != nil {
		return nil, errors.New("ошибка при поиске заявок")
	}
	return apps, nil
}

// GetByStatus возвращает заявки с указанным статусом (для администратора)
func (s *LoanApplicationService) GetByStatus(status models.ApplicationStatus) ([]models.LoanApplication, error) {
	var apps []models.LoanApplication
	if err := s.db.Where("status = ?", status).Preload("User").Order("created_at ASC").Find(&apps).Error; err != nil {
		return nil, errors.New("ошибка при поиске заявок")
	}
	return apps, nil
}

// UpdateStep обновляет данные шага мастера. Шаги можно заполнять в любом
// порядке; данные шага валидируются, затем записываются и в JSON шагов,
// и в типизированные поля заявки. При наличии суммы и срока условия
// займа пересчитываются.
func (s *LoanApplicationService) UpdateStep(appID uint, userID uint, step int, dto StepUpdateDTO) (*models.LoanApplication, error) {
	wizardStep := WizardStep(step)
	if !wizardStep.IsValid() {
		return nil, errors.New("неизвестный шаг мастера")
	}

	app, err := s.GetByID(appID)
	if err != nil {
		return nil, err
	}
	if app.UserID != userID {
		return nil, errors.New("Access denied")
	}
	if app.Status != models.ApplicationStatusDraft {
		return nil, errors.New("заявка уже подана, изменение шагов недоступно")
	}

	if err := validateStepPayload(wizardStep, dto); err != nil {
		return nil, err
	}

	stepData, err := mergeStepData(app.StepData, wizardStep, dto)
	if err != nil {
		return nil, err
	}
	app.StepData = stepData
	app.CurrentStep = step

	// Переносим данные шага в типизированные поля
	if dto.Amount != nil {
		app.Amount = dto.Amount.Round(2)
	}
	if dto.TermMonths != nil {
		app.TermMonths = *dto.TermMonths
	}
	if dto.Purpose != nil {
		app.Purpose = *dto.Purpose
	}
	if dto.BankName != nil {
		app.BankName = *dto.BankName
	}
	if dto.AccountNumber != nil {
		app.AccountNumberMasked = utils.MaskAccountNumber(*dto.AccountNumber)
		app.AccountNumberHMAC = utils.HMACSign(*dto.AccountNumber, s.hmacKey)
	}
	if dto.AccountHolderName != nil {
		app.AccountHolderName = *dto.AccountHolderName
	}

	// Пересчитываем условия, когда известны сумма и срок
	if app.Amount.GreaterThan(decimal.Zero) && app.TermMonths > 0 {
		app.InterestRate = QuoteInterestRate(app.Amount, app.TermMonths)
		app.MonthlyPayment = MonthlyInstallment(app.Amount, app.InterestRate, app.TermMonths)
		app.TotalAmount = TotalAmount(app.MonthlyPayment, app.TermMonths)
	}

	if err := s.db.Save(app).Error; err != nil {
		return nil, errors.New("ошибка при сохранении шага заявки")
	}

	return app, nil
}

// Submit подает заявку: проверяет полноту данных, OTP-подпись и переводит
// заявку из черновика в ожидание решения
func (s *LoanApplicationService) Submit(ctx context.Context, appID uint, userID uint, otp string) (*models.LoanApplication, error) {
	app, err := s.GetByID(appID)
	if err != nil {
		return nil, err
	}
	if app.UserID != userID {
		return nil, errors.New("Access denied")
	}
	if app.Status != models.ApplicationStatusDraft {
		return nil, errors.New("подать можно только черновик заявки")
	}

	// Проверяем полноту заявки
	if err := s.checkCompleteness(app); err != nil {
		return nil, err
	}

	// Проверяем OTP-подпись по телефону заявителя
	if app.User.Phone == "" {
		return nil, errors.New("у заявителя не указан номер телефона")
	}
	if err := s.otp.Verify(ctx, app.User.Phone, otp); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	app.Status = models.ApplicationStatusPending
	app.ApplicationDate = &now
	app.SignedAt = &now
	app.CurrentStep = int(StepDigitalSignature)

	if err := s.db.Save(app).Error; err != nil {
		return nil, errors.New("ошибка при подаче заявки")
	}

	utils.GetMetrics().RecordApplicationEvent("submit")

	// Отправляем уведомление и предварительное заявление об условиях.
	// Ошибки отправки логируются, но не отменяют подачу.
	if err := s.email.SendApplicationSubmittedNotification(app.User.Email, app.Reference, app.Amount, app.TermMonths); err != nil {
		log.Printf("Ошибка при отправке уведомления о подаче заявки: %v", err)
	}
	statement := s.compliance.RenderPreAgreementStatement(app, &app.User)
	if err := s.email.SendPreAgreementStatement(app.User.Email, statement); err != nil {
		log.Printf("Ошибка при отправке предварительного заявления: %v", err)
	}

	return app, nil
}

// checkCompleteness проверяет, что обязательные шаги мастера заполнены
func (s *LoanApplicationService) checkCompleteness(app *models.LoanApplication) error {
	var missing []string
	if app.Amount.LessThanOrEqual(decimal.Zero) {
		missing = append(missing, "сумма займа")
	}
	if app.TermMonths <= 0 {
		missing = append(missing, "срок займа")
	}
	if app.Purpose == "" {
		missing = append(missing, "цель займа")
	}
	if app.BankName == "" || app.AccountNumberHMAC == "" || app.AccountHolderName == "" {
		missing = append(missing, "банковские реквизиты")
	}
	if len(missing) > 0 {
		return errors.New("заявка заполнена не полностью: " + strings.Join(missing, ", "))
	}
	return nil
}

// Approve одобряет заявку. Условия пересчитываются по ставке и сроку,
// указанным администратором.
func (s *LoanApplicationService) Approve(appID uint, dto ApproveApplicationDTO) (*models.LoanApplication, error) {
	if err := s.validator.Struct(dto); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				errorMessages = append(errorMessages, "поле "+e.Field()+" обязательно")
			case "gt":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть больше 0")
			}
		}
		return nil, errors.New(strings.Join(errorMessages, "; "))
	}
	if dto.InterestRate.LessThan(decimal.Zero) {
		return nil, errors.New("ставка не может быть отрицательной")
	}

	app, err := s.GetByID(appID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationStatusPending {
		return nil, errors.New("одобрить можно только заявку в ожидании решения")
	}

	now := time.Now().UTC()
	app.Status = models.ApplicationStatusApproved
	app.InterestRate = dto.InterestRate
	app.TermMonths = dto.RepaymentMonths
	app.MonthlyPayment = MonthlyInstallment(app.Amount, dto.InterestRate, dto.RepaymentMonths)
	app.TotalAmount = TotalAmount(app.MonthlyPayment, dto.RepaymentMonths)
	app.DecisionDate = &now
	app.DecisionNotes = dto.Notes

	if err := s.db.Save(app).Error; err != nil {
		return nil, errors.New("ошибка при одобрении заявки")
	}

	utils.GetMetrics().RecordApplicationEvent("approve")

	if err := s.email.SendApplicationApprovedNotification(app.User.Email, app.Reference, app.MonthlyPayment, app.TotalAmount, app.TermMonths); err != nil {
		log.Printf("Ошибка при отправке уведомления об одобрении: %v", err)
	}

	return app, nil
}

// Reject отклоняет заявку
func (s *LoanApplicationService) Reject(appID uint, notes string) (*models.LoanApplication, error) {
	app, err := s.GetByID(appID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationStatusPending {
		return nil, errors.New("отклонить можно только заявку в ожидании решения")
	}

	now := time.Now().UTC()
	app.Status = models.ApplicationStatusRejected
	app.DecisionDate = &now
	app.DecisionNotes = notes

	if err := s.db.Save(app).Error; err != nil {
		return nil, errors.New("ошибка при отклонении заявки")
	}

	utils.GetMetrics().RecordApplicationEvent("reject")

	if err := s.email.SendApplicationRejectedNotification(app.User.Email, app.Reference, notes); err != nil {
		log.Printf("Ошибка при отправке уведомления об отказе: %v", err)
	}

	return app, nil
}

// RenderForm39 формирует форму 39 по заявке
func (s *LoanApplicationService) RenderForm39(appID uint) (string, error) {
	app, err := s.GetByID(appID)
	if err != nil {
		return "", err
	}
	return s.compliance.RenderForm39(app, &app.User)
}

// ToDTO конвертирует модель LoanApplication в DTO
func (s *LoanApplicationService) ToDTO(app *models.LoanApplication) ApplicationResponseDTO {
	return ApplicationResponseDTO{
		ID:              app.ID,
		Reference:       app.Reference,
		Amount:          app.Amount,
		TermMonths:      app.TermMonths,
		Purpose:         app.Purpose,
		Status:          app.Status,
		InterestRate:    app.InterestRate,
		MonthlyPayment:  app.MonthlyPayment,
		TotalAmount:     app.TotalAmount,
		CurrentStep:     app.CurrentStep,
		ChannelOrigin:   app.ChannelOrigin,
		BankName:        app.BankName,
		AccountNumber:   app.AccountNumberMasked,
		AccountHolder:   app.AccountHolderName,
		ApplicationDate: app.ApplicationDate,
		DecisionDate:    app.DecisionDate,
		CreatedAt:       app.CreatedAt,
	}
}
