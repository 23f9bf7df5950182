package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"hohemaloans/middleware"
	"hohemaloans/services"
)

// ProfileController обрабатывает запросы профиля: доходы, расходы и
// оценку платежеспособности
type ProfileController struct {
	profileService       *services.ProfileService
	affordabilityService *services.AffordabilityService
}

// NewProfileController создает новый экземпляр ProfileController
func NewProfileController(profileService *services.ProfileService, affordabilityService *services.AffordabilityService) *ProfileController {
	return &ProfileController{
		profileService:       profileService,
		affordabilityService: affordabilityService,
	}
}

// CreateIncome обрабатывает запрос на добавление источника дохода
func (c *ProfileController) CreateIncome(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var dto services.IncomeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	income, err := c.profileService.CreateIncome(userID, dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(income)
}

// GetIncomes обрабатывает запрос на получение доходов пользователя
func (c *ProfileController) GetIncomes(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	incomes, err := c.profileService.GetIncomes(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(incomes)
}

// UpdateIncome обрабатывает запрос на изменение источника дохода
func (c *ProfileController) UpdateIncome(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	incomeID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid income ID", http.StatusBadRequest)
		return
	}

	var dto services.IncomeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	income, err := c.profileService.UpdateIncome(userID, incomeID, dto)
	if err != nil {
		if errors.Is(err, services.ErrIncomeNotFound) {
			http.Error(w, "Income not found", http.StatusNotFound)
			return
		}
		if err.Error() == "Access denied" {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(income)
}

// DeleteIncome обрабатывает запрос на удаление источника дохода
func (c *ProfileController) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	incomeID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid income ID", http.StatusBadRequest)
		return
	}

	if err := c.profileService.DeleteIncome(userID, incomeID); err != nil {
		if errors.Is(err, services.ErrIncomeNotFound) {
			http.Error(w, "Income not found", http.StatusNotFound)
			return
		}
		if err.Error() == "Access denied" {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateExpense обрабатывает запрос на добавление расхода
func (c *ProfileController) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var dto services.ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	expense, err := c.profileService.CreateExpense(userID, dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(expense)
}

// GetExpenses обрабатывает запрос на получение расходов пользователя
func (c *ProfileController) GetExpenses(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	expenses, err := c.profileService.GetExpenses(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(expenses)
}

// UpdateExpense обрабатывает запрос на изменение расхода
func (c *ProfileController) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	expenseID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid expense ID", http.StatusBadRequest)
		return
	}

	var dto services.ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	expense, err := c.profileService.UpdateExpense(userID, expenseID, dto)
	if err != nil {
		if errors.Is(err, services.ErrExpenseNotFound) {
			http.Error(w, "Expense not found", http.StatusNotFound)
			return
		}
		if err.Error() == "Access denied" {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(expense)
}

// DeleteExpense обрабатывает запрос на удаление расхода
func (c *ProfileController) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	expenseID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid expense ID", http.StatusBadRequest)
		return
	}

	if err := c.profileService.DeleteExpense(userID, expenseID); err != nil {
		if errors.Is(err, services.ErrExpenseNotFound) {
			http.Error(w, "Expense not found", http.StatusNotFound)
			return
		}
		if err.Error() == "Access denied" {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetAffordability обрабатывает запрос на расчет платежеспособности.
// Каждый вызов создает новый снимок оценки.
func (c *ProfileController) GetAffordability(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	assessment, err := c.affordabilityService.Calculate(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(c.affordabilityService.ToDTO(assessment))
}

// pathID извлекает числовой идентификатор из URL
func pathID(r *http.Request, name string) (uint, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars[name], 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
