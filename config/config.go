package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server struct {
		Port      int
		AdminPort int // отдельный порт для административного API
	}
	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
	}
	JWT struct {
		SecretKey string
		ExpiresIn int // в часах
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	WhatsApp struct {
		APIBaseURL    string // базовый URL Cloud API
		PhoneNumberID string
		AccessToken   string
		VerifyToken   string // токен подтверждения вебхука
	}
	OTP struct {
		Backend       string // memory или redis
		TTLMinutes    int
		RedisAddr     string
		RedisPassword string
		RedisDB       int
	}
	Loan struct {
		DefaultAnnualRate   float64 // годовая ставка по умолчанию в долях (0.12 = 12%)
		ReferenceTermMonths int     // срок для расчета максимальной рекомендованной суммы
	}
	AccountHMACKey string // ключ для HMAC-подписи номеров счетов
}

// NewConfig создает новый экземпляр конфигурации. Значения читаются через
// viper: сначала config.yaml (если есть), затем переменные окружения.
func NewConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Файл конфигурации необязателен
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %v", err)
		}
	}

	cfg := &Config{}

	// Настройки сервера
	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.AdminPort = v.GetInt("server.adminport")

	// Настройки базы данных
	cfg.DB.Host = v.GetString("db.host")
	cfg.DB.Port = v.GetInt("db.port")
	cfg.DB.User = v.GetString("db.user")
	cfg.DB.Password = v.GetString("db.password")
	cfg.DB.DBName = v.GetString("db.name")

	// Настройки JWT
	cfg.JWT.SecretKey = v.GetString("jwt.secret.key")
	cfg.JWT.ExpiresIn = v.GetInt("jwt.expires.in")

	// Настройки SMTP
	cfg.SMTP.Host = v.GetString("smtp.host")
	cfg.SMTP.Port = v.GetInt("smtp.port")
	cfg.SMTP.Username = v.GetString("smtp.username")
	cfg.SMTP.Password = v.GetString("smtp.password")
	cfg.SMTP.From = v.GetString("smtp.from")

	// Настройки WhatsApp Cloud API
	cfg.WhatsApp.APIBaseURL = v.GetString("whatsapp.api.base.url")
	cfg.WhatsApp.PhoneNumberID = v.GetString("whatsapp.phone.number.id")
	cfg.WhatsApp.AccessToken = v.GetString("whatsapp.access.token")
	cfg.WhatsApp.VerifyToken = v.GetString("whatsapp.verify.token")

	// Настройки хранилища OTP
	cfg.OTP.Backend = v.GetString("otp.backend")
	cfg.OTP.TTLMinutes = v.GetInt("otp.ttl.minutes")
	cfg.OTP.RedisAddr = v.GetString("otp.redis.addr")
	cfg.OTP.RedisPassword = v.GetString("otp.redis.password")
	cfg.OTP.RedisDB = v.GetInt("otp.redis.db")

	// Параметры расчета займов
	cfg.Loan.DefaultAnnualRate = v.GetFloat64("loan.default.annual.rate")
	cfg.Loan.ReferenceTermMonths = v.GetInt("loan.reference.term.months")

	cfg.AccountHMACKey = v.GetString("account.hmac.key")

	if cfg.OTP.Backend != "memory" && cfg.OTP.Backend != "redis" {
		return nil, fmt.Errorf("неизвестный бэкенд OTP: %s", cfg.OTP.Backend)
	}

	return cfg, nil
}

// setDefaults задает значения по умолчанию
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.adminport", 8081)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "hohema_db")

	v.SetDefault("jwt.secret.key", "your-secret-key-here")
	v.SetDefault("jwt.expires.in", 24)

	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "your-email@gmail.com")
	v.SetDefault("smtp.password", "your-app-password")
	v.SetDefault("smtp.from", "no-reply@hohemaloans.co.za")

	v.SetDefault("whatsapp.api.base.url", "https://graph.facebook.com/v19.0")
	v.SetDefault("whatsapp.phone.number.id", "")
	v.SetDefault("whatsapp.access.token", "")
	v.SetDefault("whatsapp.verify.token", "hohema-verify-token")

	v.SetDefault("otp.backend", "memory")
	v.SetDefault("otp.ttl.minutes", 5)
	v.SetDefault("otp.redis.addr", "localhost:6379")
	v.SetDefault("otp.redis.password", "")
	v.SetDefault("otp.redis.db", 0)

	v.SetDefault("loan.default.annual.rate", 0.12)
	v.SetDefault("loan.reference.term.months", 36)

	v.SetDefault("account.hmac.key", "your-account-hmac-key-here")
}
