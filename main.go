package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"hohemaloans/config"
	"hohemaloans/controllers"
	"hohemaloans/database"
	"hohemaloans/middleware"
	"hohemaloans/services"
)

// healthHandler возвращает состояние сервиса
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// newOTPStore выбирает хранилище одноразовых кодов по конфигурации
func newOTPStore(cfg *config.Config) services.OTPStore {
	if cfg.OTP.Backend == "redis" {
		log.Println("Хранилище OTP: redis")
		return services.NewRedisOTPStore(cfg.OTP.RedisAddr, cfg.OTP.RedisPassword, cfg.OTP.RedisDB)
	}
	log.Println("Хранилище OTP: память процесса")
	return services.NewMemoryOTPStore()
}

func main() {
	// Переменные окружения из .env (файл необязателен)
	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используются переменные окружения")
	}

	// Инициализируем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем подключение к базе данных
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer db.Close()
	gormDB := db.GetDB()

	// Инициализируем сервисы
	emailService := services.NewEmailService(cfg)
	whatsappClient := services.NewWhatsAppClient(cfg)

	otpStore := newOTPStore(cfg)
	otpService := services.NewOTPService(otpStore, time.Duration(cfg.OTP.TTLMinutes)*time.Minute)
	otpService.SetSender(whatsappClient)

	complianceService := services.NewComplianceService()
	applicationService := services.NewLoanApplicationService(gormDB, emailService, otpService, complianceService, cfg.AccountHMACKey)
	profileService := services.NewProfileService(gormDB)
	affordabilityService := services.NewAffordabilityService(gormDB, cfg.Loan.DefaultAnnualRate, cfg.Loan.ReferenceTermMonths)
	settingsService := services.NewSettingsService(gormDB)
	userService := services.NewUserService(db)
	whatsappService := services.NewWhatsAppService(gormDB, whatsappClient, userService, applicationService, otpService)

	// Запускаем фоновую очистку сессий и черновиков
	housekeeping := services.NewHousekeepingService(gormDB)
	housekeeping.Start()
	log.Println("Фоновая очистка запущена")

	// Создаем роутер
	router := mux.NewRouter()

	// Инициализируем контроллеры
	authController := controllers.NewAuthController(db, cfg, otpService)
	profileController := controllers.NewProfileController(profileService, affordabilityService)
	applicationController := controllers.NewLoanApplicationController(applicationService)
	settingsController := controllers.NewSettingsController(settingsService)
	whatsappController := controllers.NewWhatsAppController(whatsappService, cfg)

	// Публичные маршруты
	router.HandleFunc("/health", healthHandler).Methods("GET")
	router.HandleFunc("/api/auth/signUp", authController.SignUp).Methods("POST")
	router.HandleFunc("/api/auth/signIn", authController.SignIn).Methods("POST")
	router.HandleFunc("/api/auth/otp/request", authController.RequestOTP).Methods("POST")
	router.HandleFunc("/api/auth/otp/verify", authController.VerifyOTP).Methods("POST")
	router.HandleFunc("/api/systemsettings/calculate", settingsController.Calculate).Methods("POST")

	// Вебхуки WhatsApp Cloud API
	router.HandleFunc("/api/whatsapp/webhook", whatsappController.VerifyWebhook).Methods("GET")
	router.HandleFunc("/api/whatsapp/webhook", whatsappController.ReceiveWebhook).Methods("POST")

	// Защищенные маршруты
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware([]byte(authController.GetJWTKey())))
	protected.Use(middleware.LoggingMiddleware)

	// Маршруты профиля: доходы, расходы, платежеспособность
	protected.HandleFunc("/profile/incomes", profileController.CreateIncome).Methods("POST")
	protected.HandleFunc("/profile/incomes", profileController.GetIncomes).Methods("GET")
	protected.HandleFunc("/profile/incomes/{id}", profileController.UpdateIncome).Methods("PUT")
	protected.HandleFunc("/profile/incomes/{id}", profileController.DeleteIncome).Methods("DELETE")
	protected.HandleFunc("/profile/expenses", profileController.CreateExpense).Methods("POST")
	protected.HandleFunc("/profile/expenses", profileController.GetExpenses).Methods("GET")
	protected.HandleFunc("/profile/expenses/{id}", profileController.UpdateExpense).Methods("PUT")
	protected.HandleFunc("/profile/expenses/{id}", profileController.DeleteExpense).Methods("DELETE")
	protected.HandleFunc("/profile/affordability", profileController.GetAffordability).Methods("GET")

	// Маршруты заявок на займ
	protected.HandleFunc("/applications", applicationController.CreateApplication).Methods("POST")
	protected.HandleFunc("/applications", applicationController.GetApplications).Methods("GET")
	protected.HandleFunc("/applications/{id}", applicationController.GetApplication).Methods("GET")
	protected.HandleFunc("/applications/{id}/step/{step}", applicationController.UpdateStep).Methods("PUT")
	protected.HandleFunc("/applications/{id}/submit", applicationController.SubmitApplication).Methods("POST")
	protected.HandleFunc("/applications/{id}/form39", applicationController.GetForm39).Methods("GET")

	// Административный сервер на отдельном порту
	go runAdminServer(cfg, applicationService, settingsService)

	// Запускаем сервер
	port := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на порту %s", port)
	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}

// runAdminServer запускает административный API на отдельном порту
func runAdminServer(cfg *config.Config, applicationService *services.LoanApplicationService, settingsService *services.SettingsService) {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())
	engine.Use(middleware.RateLimit())
	engine.Use(middleware.CORSMiddleware())

	adminController := controllers.NewAdminController(applicationService, settingsService)

	admin := engine.Group("/admin", middleware.RequireAdmin([]byte(cfg.JWT.SecretKey)))
	{
		admin.GET("/applications", adminController.ListApplications)
		admin.GET("/applications/:id", adminController.GetApplication)
		admin.POST("/applications/:id/approve", adminController.ApproveApplication)
		admin.POST("/applications/:id/reject", adminController.RejectApplication)
		admin.GET("/applications/:id/form39", adminController.GetForm39)
		admin.GET("/settings", adminController.GetSettings)
		admin.PUT("/settings", adminController.UpdateSettings)
		admin.GET("/metrics", adminController.GetMetrics)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.AdminPort)
	log.Printf("Административный сервер запущен на порту %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Ошибка запуска административного сервера: %v", err)
	}
}
