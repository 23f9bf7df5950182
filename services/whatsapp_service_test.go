package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"hohemaloans/database"
)

// fakeWASender записывает исходящие сообщения вместо вызова Cloud API
type fakeWASender struct {
	texts     []string
	templates []string
}

func (f *fakeWASender) SendText(to string, body string) error {
	f.texts = append(f.texts, body)
	return nil
}

func (f *fakeWASender) SendTemplateWithFallback(to string, templateName string, language string, params []string, fallbackText string) error {
	f.templates = append(f.templates, templateName)
	return nil
}

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

// Любое входящее сообщение должно обновлять last_updated_at сессии,
// иначе фоновая очистка бросит диалог посреди мастера.
func TestHandleInboundRefreshesSessionActivity(t *testing.T) {
	gdb, mock := newMockedGorm(t)

	sender := &fakeWASender{}
	users := NewUserService(&database.Database{DB: gdb})
	applications := NewLoanApplicationService(gdb, nil, nil, nil, "test-hmac-key")
	otp := NewOTPService(NewMemoryOTPStore(), 5*time.Minute)
	svc := NewWhatsAppService(gdb, sender, users, applications, otp)

	staleAt := time.Now().UTC().Add(-47 * time.Hour)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE phone`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "phone", "role"}).
			AddRow(7, "thabo@example.com", "+27821234567", "CLIENT"))
	mock.ExpectQuery(`SELECT \* FROM "whatsapp_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "phone_number", "user_id", "draft_application_id", "session_status", "last_updated_at"}).
			AddRow(3, "27821234567", 7, 11, "ACTIVE", staleAt))
	mock.ExpectExec(`UPDATE "whatsapp_sessions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "loan_applications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "reference", "status", "current_step"}).
			AddRow(11, 7, "HH-TEST-0001", "DRAFT", 0))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "phone", "role"}).
			AddRow(7, "thabo@example.com", "+27821234567", "CLIENT"))

	// Некорректная сумма: мастер остается на месте, но сессия продлена
	err := svc.HandleInbound(context.Background(), "27821234567", "abc")
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
	require.NotEmpty(t, sender.texts)
	assert.Contains(t, sender.texts[len(sender.texts)-1], "loan amount")
}

// Внутренние ошибки сервиса не должны попадать в ответы пользователю
func TestHandleInboundHidesInternalErrors(t *testing.T) {
	gdb, mock := newMockedGorm(t)

	sender := &fakeWASender{}
	users := NewUserService(&database.Database{DB: gdb})
	applications := NewLoanApplicationService(gdb, nil, nil, nil, "test-hmac-key")
	otp := NewOTPService(NewMemoryOTPStore(), 5*time.Minute)
	svc := NewWhatsAppService(gdb, sender, users, applications, otp)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE phone`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "phone", "role"}).
			AddRow(7, "thabo@example.com", "+27821234567", "CLIENT"))
	mock.ExpectQuery(`SELECT \* FROM "whatsapp_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "phone_number", "user_id", "draft_application_id", "session_status", "last_updated_at"}).
			AddRow(3, "27821234567", 7, 11, "ACTIVE", time.Now().UTC()))
	mock.ExpectExec(`UPDATE "whatsapp_sessions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "loan_applications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "reference", "status", "current_step"}).
			AddRow(11, 7, "HH-TEST-0001", "DRAFT", 2))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "phone", "role"}).
			AddRow(7, "thabo@example.com", "+27821234567", "CLIENT"))

	// Шаг цели займа: повторная загрузка заявки в UpdateStep падает
	mock.ExpectQuery(`SELECT \* FROM "loan_applications"`).
		WillReturnError(assert.AnError)

	err := svc.HandleInbound(context.Background(), "27821234567", "school fees")
	require.NoError(t, err)

	require.NotEmpty(t, sender.texts)
	reply := sender.texts[len(sender.texts)-1]
	assert.NotContains(t, reply, "ошибка")
	assert.Contains(t, reply, "could not save the purpose")
}
