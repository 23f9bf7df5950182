package services

import (
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// WizardStep представляет шаг мастера заявки
type WizardStep int

const (
	StepLoanAmount WizardStep = iota
	StepTermMonths
	StepPurpose
	StepAffordabilityReview
	StepPreviewTerms
	StepBankDetails
	StepDigitalSignature
)

// stepNames используются как ключи в сохраненных данных шагов
var stepNames = map[WizardStep]string{
	StepLoanAmount:          "loanAmount",
	StepTermMonths:          "termMonths",
	StepPurpose:             "purpose",
	StepAffordabilityReview: "affordabilityReview",
	StepPreviewTerms:        "previewTerms",
	StepBankDetails:         "bankDetails",
	StepDigitalSignature:    "digitalSignature",
}

// Name возвращает имя шага
func (s WizardStep) Name() string {
	return stepNames[s]
}

// IsValid проверяет, что номер шага находится в допустимом диапазоне
func (s WizardStep) IsValid() bool {
	return s >= StepLoanAmount && s <= StepDigitalSignature
}

// StepUpdateDTO представляет данные обновления шага мастера. Внешняя форма
// совпадает для всех шагов; какие поля обязательны, определяется шагом.
type StepUpdateDTO struct {
	Amount                *decimal.Decimal `json:"amount,omitempty"`
	TermMonths            *int             `json:"termMonths,omitempty"`
	Purpose               *string          `json:"purpose,omitempty"`
	AffordabilityAccepted *bool            `json:"affordabilityAccepted,omitempty"`
	TermsAccepted         *bool            `json:"termsAccepted,omitempty"`
	BankName              *string          `json:"bankName,omitempty"`
	AccountNumber         *string          `json:"accountNumber,omitempty"`
	AccountHolderName     *string          `json:"accountHolderName,omitempty"`
}

// validateStepPayload проверяет обязательные поля для конкретного шага
func validateStepPayload(step WizardStep, dto StepUpdateDTO) error {
	switch step {
	case StepLoanAmount:
		if dto.Amount == nil || dto.Amount.LessThanOrEqual(decimal.Zero) {
			return errors.New("сумма займа должна быть больше нуля")
		}
	case StepTermMonths:
		if dto.TermMonths == nil || *dto.TermMonths <= 0 || *dto.TermMonths > 60 {
			return errors.New("срок займа должен быть от 1 до 60 месяцев")
		}
	case StepPurpose:
		if dto.Purpose == nil || *dto.Purpose == "" {
			return errors.New("цель займа обязательна")
		}
	case StepAffordabilityReview:
		if dto.AffordabilityAccepted == nil || !*dto.AffordabilityAccepted {
			return errors.New("требуется подтверждение результата оценки платежеспособности")
		}
	case StepPreviewTerms:
		if dto.TermsAccepted == nil || !*dto.TermsAccepted {
			return errors.New("требуется согласие с условиями займа")
		}
	case StepBankDetails:
		if dto.BankName == nil || *dto.BankName == "" ||
			dto.AccountNumber == nil || *dto.AccountNumber == "" ||
			dto.AccountHolderName == nil || *dto.AccountHolderName == "" {
			return errors.New("банковские реквизиты заполнены не полностью")
		}
	case StepDigitalSignature:
		// Подпись выполняется отдельной операцией подачи заявки с OTP
	}
	return nil
}

// mergeStepData записывает данные шага в сохраненный JSON по имени шага
func mergeStepData(stored []byte, step WizardStep, dto StepUpdateDTO) ([]byte, error) {
	stepData := make(map[string]json.RawMessage)
	if len(stored) > 0 {
		if err := json.Unmarshal(stored, &stepData); err != nil {
			return nil, errors.New("сохраненные данные шагов повреждены")
		}
	}

	payload, err := json.Marshal(dto)
	if err != nil {
		return nil, errors.New("ошибка сериализации данных шага")
	}
	stepData[step.Name()] = payload

	return json.Marshal(stepData)
}
