package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"hohemaloans/middleware"
	"hohemaloans/models"
	"hohemaloans/services"
)

// LoanApplicationController обрабатывает запросы, связанные с заявками на займ
type LoanApplicationController struct {
	applicationService *services.LoanApplicationService
}

// NewLoanApplicationController создает новый экземпляр LoanApplicationController
func NewLoanApplicationController(applicationService *services.LoanApplicationService) *LoanApplicationController {
	return &LoanApplicationController{
		applicationService: applicationService,
	}
}

// CreateApplication обрабатывает запрос на создание черновика заявки
func (c *LoanApplicationController) CreateApplication(w http.ResponseWriter, r *http.Request) {
	// Получаем ID пользователя из контекста
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Создаем черновик
	app, err := c.applicationService.CreateDraft(userID, models.ChannelWeb)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(c.applicationService.ToDTO(app))
}

// GetApplications обрабатывает запрос на получение списка заявок пользователя
func (c *LoanApplicationController) GetApplications(w http.ResponseWriter, r *http.Request) {
	// Получаем ID пользователя из контекста
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Получаем список заявок
	apps, err := c.applicationService.GetByUserID(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]services.ApplicationResponseDTO, 0, len(apps))
	for i := range apps {
		dtos = append(dtos, c.applicationService.ToDTO(&apps[i]))
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dtos)
}

// GetApplication обрабатывает запрос на получение информации о заявке
func (c *LoanApplicationController) GetApplication(w http.ResponseWriter, r *http.Request) {
	// Получаем ID пользователя из контекста
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Получаем ID заявки из URL
	vars := mux.Vars(r)
	appID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid application ID", http.StatusBadRequest)
		return
	}

	// Получаем информацию о заявке
	app, err := c.applicationService.GetByID(uint(appID))
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			http.Error(w, "Application not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Проверяем, что заявка принадлежит пользователю
	if app.UserID != userID {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(c.applicationService.ToDTO(app))
}

// UpdateStep обрабатывает запрос на обновление шага мастера
func (c *LoanApplicationController) UpdateStep(w http.ResponseWriter, r *http.Request) {
	// Получаем ID пользователя из контекста
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Получаем ID заявки и номер шага из URL
	vars := mux.Vars(r)
	appID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid application ID", http.StatusBadRequest)
		return
	}
	step, err := strconv.Atoi(vars["step"])
	if err != nil {
		http.Error(w, "Invalid step number", http.StatusBadRequest)
		return
	}

	// Создаем DTO для запроса
	var dto services.StepUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Обновляем шаг заявки
	app, err := c.applicationService.UpdateStep(uint(appID), userID, step, dto)
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			http.Error(w, "Application not found", http.StatusNotFound)
			return
		}
		if err.Error() == "Access denied" {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(c.applicationService.ToDTO(app))
}

type submitRequest struct {
	OTP string `json:"otp"`
}

// SubmitApplication обрабатывает подачу заявки с OTP-подписью
func (c *LoanApplicationController) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	// Получаем ID пользователя из контекста
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Получаем ID заявки из URL
	vars := mux.Vars(r)
	appID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid application ID", http.StatusBadRequest)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.OTP == "" {
		http.Error(w, "OTP code is required", http.StatusBadRequest)
		return
	}

	// Подаем заявку
	app, err := c.applicationService.Submit(r.Context(), uint(appID), userID, req.OTP)
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			http.Error(w, "Application not found", http.StatusNotFound)
			return
		}
		if err.Error() == "Access denied" {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(c.applicationService.ToDTO(app))
}

// GetForm39 обрабатывает запрос на получение формы 39 по заявке
func (c *LoanApplicationController) GetForm39(w http.ResponseWriter, r *http.Request) {
	// Получаем ID пользователя из контекста
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Получаем ID заявки из URL
	vars := mux.Vars(r)
	appID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid application ID", http.StatusBadRequest)
		return
	}

	// Проверяем, что заявка принадлежит пользователю
	app, err := c.applicationService.GetByID(uint(appID))
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			http.Error(w, "Application not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if app.UserID != userID && middleware.GetRoleFromContext(r) != string(models.RoleAdmin) {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	// Формируем документ
	form, err := c.applicationService.RenderForm39(uint(appID))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(form))
}
