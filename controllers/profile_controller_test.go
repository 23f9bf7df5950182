package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"hohemaloans/middleware"
	"hohemaloans/services"
)

func newProfileRouter(t *testing.T, mock func(sqlmock.Sqlmock)) *mux.Router {
	t.Helper()
	gdb, sqlMock := newMockedGorm(t)
	mock(sqlMock)

	profileService := services.NewProfileService(gdb)
	ctrl := NewProfileController(profileService, nil)

	router := mux.NewRouter()
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware(testJWTKey))
	protected.HandleFunc("/profile/incomes/{id}", ctrl.DeleteIncome).Methods(http.MethodDelete)
	protected.HandleFunc("/profile/expenses/{id}", ctrl.UpdateExpense).Methods(http.MethodPut)
	return router
}

func TestDeleteIncomeReturnsNotFound(t *testing.T) {
	router := newProfileRouter(t, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery(`SELECT \* FROM "incomes"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/profile/incomes/404", nil)
	req.Header.Set("Authorization", "Bearer "+authToken(t, 7, "CLIENT"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Income not found")
}

func TestUpdateExpenseReturnsNotFound(t *testing.T) {
	router := newProfileRouter(t, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery(`SELECT \* FROM "expenses"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
	})

	body := strings.NewReader(`{"category":"Rent","monthlyAmount":1200,"isEssential":true}`)
	req := httptest.NewRequest(http.MethodPut, "/api/profile/expenses/404", body)
	req.Header.Set("Authorization", "Bearer "+authToken(t, 7, "CLIENT"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Expense not found")
}
