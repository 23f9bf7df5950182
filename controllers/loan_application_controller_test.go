package controllers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"hohemaloans/middleware"
	"hohemaloans/services"
)

var testJWTKey = []byte("test-jwt-key")

func newMockedGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return gdb, mock
}

func authToken(t *testing.T, userID uint, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   "thabo@example.com",
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(testJWTKey)
	require.NoError(t, err)
	return signed
}

func newApplicationRouter(t *testing.T, mock func(sqlmock.Sqlmock)) *mux.Router {
	t.Helper()
	gdb, sqlMock := newMockedGorm(t)
	mock(sqlMock)

	svc := services.NewLoanApplicationService(gdb, nil, nil, nil, "test-hmac-key")
	ctrl := NewLoanApplicationController(svc)

	router := mux.NewRouter()
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware(testJWTKey))
	protected.HandleFunc("/applications/{id}", ctrl.GetApplication).Methods(http.MethodGet)
	protected.HandleFunc("/applications/{id}/form39", ctrl.GetForm39).Methods(http.MethodGet)
	return router
}

func TestGetApplicationReturnsNotFound(t *testing.T) {
	router := newApplicationRouter(t, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery(`SELECT \* FROM "loan_applications"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/applications/999", nil)
	req.Header.Set("Authorization", "Bearer "+authToken(t, 7, "CLIENT"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "Application not found")
}

func TestGetForm39ReturnsNotFound(t *testing.T) {
	router := newApplicationRouter(t, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery(`SELECT \* FROM "loan_applications"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/applications/999/form39", nil)
	req.Header.Set("Authorization", "Bearer "+authToken(t, 7, "CLIENT"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
