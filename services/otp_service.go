package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"hohemaloans/utils"
)

const (
	otpDigits      = 6
	otpMaxAttempts = 3
)

// ErrTooManyAttempts возвращается после исчерпания попыток проверки кода
var ErrTooManyAttempts = errors.New("превышено количество попыток ввода кода")

// OTPService выдает и проверяет одноразовые коды для входа по телефону
// и цифровой подписи заявок
type OTPService struct {
	store  OTPStore
	ttl    time.Duration
	sender WhatsAppSender // канал доставки кодов, может быть nil
}

// NewOTPService создает новый экземпляр OTPService
func NewOTPService(store OTPStore, ttl time.Duration) *OTPService {
	return &OTPService{
		store: store,
		ttl:   ttl,
	}
}

// SetSender задает канал доставки кодов
func (s *OTPService) SetSender(sender WhatsAppSender) {
	s.sender = sender
}

// IssueAndDeliver генерирует код и отправляет его на телефон пользователя
func (s *OTPService) IssueAndDeliver(ctx context.Context, phone string) (string, error) {
	pin, err := s.Issue(ctx, phone)
	if err != nil {
		return "", err
	}

	if s.sender == nil {
		return "", errors.New("канал доставки кодов не настроен")
	}

	if err := s.sender.SendTemplateWithFallback(phone, "login_otp", "en", []string{pin},
		"Your Ho Hema Loans login code is "+pin+". It expires shortly. Do not share it with anyone."); err != nil {
		return "", errors.New("ошибка при отправке кода")
	}

	return pin, nil
}

// Issue генерирует код для указанного телефона и сохраняет его хеш.
// Возвращает код в открытом виде для отправки пользователю.
func (s *OTPService) Issue(ctx context.Context, phone string) (string, error) {
	pin, err := utils.GenerateOTP(otpDigits)
	if err != nil {
		return "", errors.New("ошибка при генерации кода")
	}

	// Храним только bcrypt-хеш кода
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.New("ошибка при хешировании кода")
	}

	if err := s.store.Set(ctx, otpKey(phone), string(hash), s.ttl); err != nil {
		return "", errors.New("ошибка при сохранении кода")
	}

	// Новый код сбрасывает счетчик попыток
	if err := s.store.Del(ctx, attemptsKey(phone)); err != nil {
		return "", errors.New("ошибка при сбросе счетчика попыток")
	}

	utils.GetMetrics().RecordOTP("issue")

	return pin, nil
}

// Verify проверяет код для телефона. Успешная проверка удаляет код;
// после трех неудачных попыток код аннулируется.
func (s *OTPService) Verify(ctx context.Context, phone string, pin string) error {
	hash, err := s.store.Get(ctx, otpKey(phone))
	if err != nil {
		utils.GetMetrics().RecordOTP("fail")
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) != nil {
		utils.GetMetrics().RecordOTP("fail")

		attempts, incrErr := s.store.Incr(ctx, attemptsKey(phone), s.ttl)
		if incrErr != nil {
			return errors.New("ошибка при учете попытки проверки")
		}
		if attempts >= otpMaxAttempts {
			// Код аннулируется, потребуется запросить новый
			_ = s.store.Del(ctx, otpKey(phone))
			_ = s.store.Del(ctx, attemptsKey(phone))
			return ErrTooManyAttempts
		}
		return errors.New("неверный код")
	}

	// Код одноразовый: удаляем после успешной проверки
	if err := s.store.Del(ctx, otpKey(phone)); err != nil {
		return errors.New("ошибка при удалении использованного кода")
	}
	_ = s.store.Del(ctx, attemptsKey(phone))

	utils.GetMetrics().RecordOTP("verify")

	return nil
}

func otpKey(phone string) string {
	return "otp:" + phone
}

func attemptsKey(phone string) string {
	return "otp:" + phone + ":attempts"
}
