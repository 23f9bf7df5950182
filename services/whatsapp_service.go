package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hohemaloans/models"
)

// WhatsAppSender отправляет сообщения пользователю. Выделен в интерфейс,
// чтобы в тестах подменять Cloud API.
type WhatsAppSender interface {
	SendText(to string, body string) error
	SendTemplateWithFallback(to string, templateName string, language string, params []string, fallbackText string) error
}

// WhatsAppService ведет диалог заполнения заявки в WhatsApp. Сессия
// хранит привязку телефона к черновику заявки; сам прогресс мастера
// живет в заявке, как и для веб-канала.
type WhatsAppService struct {
	db           *gorm.DB
	sender       WhatsAppSender
	users        *UserService
	applications *LoanApplicationService
	otp          *OTPService
}

// NewWhatsAppService создает новый экземпляр WhatsAppService
func NewWhatsAppService(db *gorm.DB, sender WhatsAppSender, users *UserService, applications *LoanApplicationService, otp *OTPService) *WhatsAppService {
	return &WhatsAppService{
		db:           db,
		sender:       sender,
		users:        users,
		applications: applications,
		otp:          otp,
	}
}

// HandleInbound обрабатывает входящее сообщение. Возвращаемая ошибка
// означает сбой обработки, а не некорректный ввод пользователя: на
// некорректный ввод отправляется подсказка.
func (s *WhatsAppService) HandleInbound(ctx context.Context, phone string, text string) error {
	text = strings.TrimSpace(text)

	// Cloud API присылает номер без знака "+", в профилях он хранится
	// в формате E.164
	user, err := s.users.FindByPhone(phone)
	if err != nil && !strings.HasPrefix(phone, "+") {
		user, err = s.users.FindByPhone("+" + phone)
	}
	if err != nil {
		// Незарегистрированный номер: подсказываем, как начать
		return s.sender.SendText(phone,
			"Welcome to Ho Hema Loans! We could not find an account for this number. "+
				"Please register on our website first, then message us again to apply for a loan.")
	}

	session, err := s.getOrCreateSession(phone, user.ID)
	if err != nil {
		return err
	}

	// Каждое входящее сообщение продлевает сессию, иначе фоновая
	// очистка бросит диалог прямо посреди мастера
	if err := s.touch(session); err != nil {
		return err
	}

	// Команда отмены сбрасывает диалог
	if strings.EqualFold(text, "cancel") {
		return s.abandon(session)
	}

	app, err := s.currentDraft(session, user.ID)
	if err != nil {
		return err
	}

	return s.advance(ctx, session, user, app, text)
}

// getOrCreateSession возвращает активную сессию для телефона
func (s *WhatsAppService) getOrCreateSession(phone string, userID uint) (*models.WhatsAppSession, error) {
	var session models.WhatsAppSession
	err := s.db.Where("phone_number = ?", phone).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		session = models.WhatsAppSession{
			PhoneNumber:   phone,
			UserID:        userID,
			SessionStatus: models.WASessionActive,
			LastUpdatedAt: time.Now().UTC(),
		}
		if err := s.db.Create(&session).Error; err != nil {
			return nil, errors.New("ошибка при создании сессии WhatsApp")
		}
		return &session, nil
	}
	if err != nil {
		return nil, errors.New("ошибка при поиске сессии WhatsApp")
	}

	// Завершенная сессия начинается заново
	if session.SessionStatus != models.WASessionActive {
		session.SessionStatus = models.WASessionActive
		session.DraftApplicationID = nil
	}
	return &session, nil
}

// currentDraft возвращает черновик заявки сессии, создавая его при
// необходимости
func (s *WhatsAppService) currentDraft(session *models.WhatsAppSession, userID uint) (*models.LoanApplication, error) {
	if session.DraftApplicationID != nil {
		app, err := s.applications.GetByID(*session.DraftApplicationID)
		if err == nil && app.Status == models.ApplicationStatusDraft {
			return app, nil
		}
	}

	app, err := s.applications.CreateDraft(userID, models.ChannelWhatsApp)
	if err != nil {
		return nil, err
	}

	session.DraftApplicationID = &app.ID
	if err := s.touch(session); err != nil {
		return nil, err
	}

	// Новый диалог начинается с приветствия
	if err := s.sender.SendTemplateWithFallback(session.PhoneNumber, "loan_application_start", "en", nil,
		"Welcome to Ho Hema Loans! Let's apply for a loan. How much would you like to borrow? (e.g. 2500)"); err != nil {
		log.Printf("Ошибка отправки приветствия WhatsApp: %v", err)
	}

	return app, nil
}

// advance обрабатывает ответ пользователя на текущем шаге мастера
func (s *WhatsAppService) advance(ctx context.Context, session *models.WhatsAppSession, user *models.User, app *models.LoanApplication, text string) error {
	step := WizardStep(app.CurrentStep)

	switch step {
	case StepLoanAmount:
		amount, err := decimal.NewFromString(text)
		if err != nil || amount.LessThanOrEqual(decimal.Zero) {
			return s.sender.SendText(session.PhoneNumber, "Please enter the loan amount as a number, e.g. 2500.")
		}
		if _, err := s.applications.UpdateStep(app.ID, user.ID, int(StepLoanAmount), StepUpdateDTO{Amount: &amount}); err != nil {
			log.Printf("Ошибка сохранения суммы займа: %v", err)
			return s.sender.SendText(session.PhoneNumber, "Sorry, we could not save that amount. Please try again.")
		}
		if err := s.setStep(app, StepTermMonths); err != nil {
			return err
		}
		return s.sender.SendText(session.PhoneNumber, "Over how many months would you like to repay? (1-60)")

	case StepTermMonths:
		months, err := strconv.Atoi(text)
		if err != nil || months <= 0 || months > 60 {
			return s.sender.SendText(session.PhoneNumber, "Please enter the term in months as a number between 1 and 60.")
		}
		if _, err := s.applications.UpdateStep(app.ID, user.ID, int(StepTermMonths), StepUpdateDTO{TermMonths: &months}); err != nil {
			log.Printf("Ошибка сохранения срока займа: %v", err)
			return s.sender.SendText(session.PhoneNumber, "Sorry, we could not save that term. Please try again.")
		}
		if err := s.setStep(app, StepPurpose); err != nil {
			return err
		}
		return s.sender.SendText(session.PhoneNumber, "What is the loan for? (e.g. school fees, emergency)")

	case StepPurpose:
		if text == "" {
			return s.sender.SendText(session.PhoneNumber, "Please tell us what the loan is for.")
		}
		if _, err := s.applications.UpdateStep(app.ID, user.ID, int(StepPurpose), StepUpdateDTO{Purpose: &text}); err != nil {
			log.Printf("Ошибка сохранения цели займа: %v", err)
			return s.sender.SendText(session.PhoneNumber, "Sorry, we could not save the purpose. Please try again.")
		}
		if err := s.setStep(app, StepAffordabilityReview); err != nil {
			return err
		}
		return s.sender.SendText(session.PhoneNumber,
			"We will assess your affordability based on the incomes and expenses in your profile. Reply YES to continue.")

	case StepAffordabilityReview:
		if !strings.EqualFold(text, "yes") {
			return s.sender.SendText(session.PhoneNumber, "Reply YES to accept the affordability assessment, or CANCEL to stop.")
		}
		accepted := true
		if _, err := s.applications.UpdateStep(app.ID, user.ID, int(StepAffordabilityReview), StepUpdateDTO{AffordabilityAccepted: &accepted}); err != nil {
			log.Printf("Ошибка подтверждения оценки платежеспособности: %v", err)
			return s.sender.SendText(session.PhoneNumber, "Sorry, something went wrong. Please try again or reply CANCEL.")
		}
		if err := s.setStep(app, StepPreviewTerms); err != nil {
			return err
		}
		// Показываем рассчитанные условия
		refreshed, err := s.applications.GetByID(app.ID)
		if err != nil {
			return err
		}
		preview := fmt.Sprintf(
			"Your loan terms: R %s over %d months at %s%% per year. Monthly instalment: R %s, total repayable: R %s. Reply YES to accept.",
			refreshed.Amount.StringFixed(2), refreshed.TermMonths,
			refreshed.InterestRate.Mul(hundred).StringFixed(2),
			refreshed.MonthlyPayment.StringFixed(2), refreshed.TotalAmount.StringFixed(2))
		return s.sender.SendTemplateWithFallback(session.PhoneNumber, "loan_terms_preview", "en",
			[]string{refreshed.MonthlyPayment.StringFixed(2), refreshed.TotalAmount.StringFixed(2)}, preview)

	case StepPreviewTerms:
		if !strings.EqualFold(text, "yes") {
			return s.sender.SendText(session.PhoneNumber, "Reply YES to accept the terms, or CANCEL to stop.")
		}
		accepted := true
		if _, err := s.applications.UpdateStep(app.ID, user.ID, int(StepPreviewTerms), StepUpdateDTO{TermsAccepted: &accepted}); err != nil {
			log.Printf("Ошибка подтверждения условий займа: %v", err)
			return s.sender.SendText(session.PhoneNumber, "Sorry, something went wrong. Please try again or reply CANCEL.")
		}
		if err := s.setStep(app, StepBankDetails); err != nil {
			return err
		}
		return s.sender.SendText(session.PhoneNumber,
			"Please send your bank details in one message, separated by commas: bank name, account number, account holder name.")

	case StepBankDetails:
		parts := strings.SplitN(text, ",", 3)
		if len(parts) != 3 {
			return s.sender.SendText(session.PhoneNumber,
				"Please send three values separated by commas: bank name, account number, account holder name.")
		}
		bank := strings.TrimSpace(parts[0])
		account := strings.TrimSpace(parts[1])
		holder := strings.TrimSpace(parts[2])
		if _, err := s.applications.UpdateStep(app.ID, user.ID, int(StepBankDetails), StepUpdateDTO{
			BankName:          &bank,
			AccountNumber:     &account,
			AccountHolderName: &holder,
		}); err != nil {
			log.Printf("Ошибка сохранения банковских реквизитов: %v", err)
			return s.sender.SendText(session.PhoneNumber, "Sorry, we could not save your bank details. Please check them and try again.")
		}
		if err := s.setStep(app, StepDigitalSignature); err != nil {
			return err
		}
		// Выдаем код для цифровой подписи. Ключ кода привязан к номеру
		// из профиля: при подаче заявки проверка идет по нему же.
		pin, err := s.otp.Issue(ctx, user.Phone)
		if err != nil {
			return err
		}
		return s.sender.SendTemplateWithFallback(session.PhoneNumber, "loan_signature_otp", "en", []string{pin},
			"Your signature code is "+pin+". Reply with this code to sign and submit your application.")

	case StepDigitalSignature:
		if _, err := s.applications.Submit(ctx, app.ID, user.ID, text); err != nil {
			log.Printf("Ошибка подписания заявки %d: %v", app.ID, err)
			return s.sender.SendText(session.PhoneNumber, "We could not verify that code. Please try again or reply CANCEL.")
		}
		session.SessionStatus = models.WASessionCompleted
		if err := s.touch(session); err != nil {
			return err
		}
		return s.sender.SendText(session.PhoneNumber,
			"Thank you! Your application has been signed and submitted. We will message you once a decision has been made.")
	}

	return errors.New("неизвестный шаг диалога")
}

// setStep переводит курсор мастера на следующий шаг
func (s *WhatsAppService) setStep(app *models.LoanApplication, step WizardStep) error {
	if err := s.db.Model(&models.LoanApplication{}).
		Where("id = ?", app.ID).
		Update("current_step", int(step)).Error; err != nil {
		return errors.New("ошибка при переходе на следующий шаг")
	}
	app.CurrentStep = int(step)
	return nil
}

// abandon помечает сессию брошенной и сообщает пользователю
func (s *WhatsAppService) abandon(session *models.WhatsAppSession) error {
	session.SessionStatus = models.WASessionAbandoned
	session.DraftApplicationID = nil
	if err := s.touch(session); err != nil {
		return err
	}
	return s.sender.SendText(session.PhoneNumber, "Your application has been cancelled. Message us any time to start again.")
}

// touch сохраняет сессию и обновляет время последней активности
func (s *WhatsAppService) touch(session *models.WhatsAppSession) error {
	session.LastUpdatedAt = time.Now().UTC()
	if err := s.db.Save(session).Error; err != nil {
		return errors.New("ошибка при сохранении сессии WhatsApp")
	}
	return nil
}
