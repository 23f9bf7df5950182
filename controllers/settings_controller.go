package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"hohemaloans/services"
)

// SettingsController обрабатывает публичный расчет займа по настройкам
// системы
type SettingsController struct {
	settingsService *services.SettingsService
	calculator      *services.WorkerLoanCalculator
	validator       *validator.Validate
}

// NewSettingsController создает новый экземпляр SettingsController
func NewSettingsController(settingsService *services.SettingsService) *SettingsController {
	return &SettingsController{
		settingsService: settingsService,
		calculator:      services.NewWorkerLoanCalculator(),
		validator:       validator.New(),
	}
}

// Calculate обрабатывает запрос на расчет займа по отработанным часам.
// Эндпоинт публичный: используется калькулятором на сайте до регистрации.
func (c *SettingsController) Calculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var dto services.WorkerLoanRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.validator.Struct(dto); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		http.Error(w, validationErrors.Error(), http.StatusBadRequest)
		return
	}

	settings, err := c.settingsService.Get()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result, err := c.calculator.Calculate(dto, *settings)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}
