package services

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hohemaloans/models"
)

func sampleApplication() (*models.LoanApplication, *models.User) {
	signed := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	app := &models.LoanApplication{
		Reference:      "7f9c24e5-1d2b-4a6e-9a77-3f8b11a0c001",
		Amount:         decimal.NewFromInt(5000),
		TermMonths:     6,
		Purpose:        "school fees",
		Status:         models.ApplicationStatusPending,
		InterestRate:   decimal.NewFromFloat(0.12),
		MonthlyPayment: decimal.NewFromFloat(862.74),
		TotalAmount:    decimal.NewFromFloat(5176.44),
		ChannelOrigin:  models.ChannelWhatsApp,
		SignedAt:       &signed,
	}
	user := &models.User{
		FirstName: "Thabo",
		LastName:  "Mokoena",
		Email:     "thabo@example.com",
		Phone:     "+27821234567",
	}
	return app, user
}

func TestRenderForm39(t *testing.T) {
	s := NewComplianceService()
	app, user := sampleApplication()

	xml, err := s.RenderForm39(app, user)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(xml))

	root := doc.SelectElement("Form39")
	require.NotNil(t, root)

	assert.Equal(t, "Ho Hema Loans (Pty) Ltd", root.FindElement("CreditProvider/Name").Text())
	assert.Equal(t, "Thabo Mokoena", root.FindElement("Consumer/FullName").Text())
	assert.Equal(t, "+27821234567", root.FindElement("Consumer/Phone").Text())
	assert.Equal(t, app.Reference, root.FindElement("CreditAgreement/Reference").Text())
	assert.Equal(t, "5000.00", root.FindElement("CreditAgreement/PrincipalDebt").Text())
	assert.Equal(t, "12.00", root.FindElement("CreditAgreement/AnnualInterestRate").Text())
	assert.Equal(t, "862.74", root.FindElement("CreditAgreement/MonthlyInstalment").Text())
	assert.Equal(t, "WHATSAPP", root.FindElement("CreditAgreement/Channel").Text())
	assert.Equal(t, "WHATSAPP_OTP", root.FindElement("DigitalSignature/Method").Text())
	assert.Equal(t, "2026-03-15T10:30:00Z", root.FindElement("DigitalSignature/SignedAt").Text())
}

func TestRenderForm39WithoutSignature(t *testing.T) {
	s := NewComplianceService()
	app, user := sampleApplication()
	app.SignedAt = nil

	xml, err := s.RenderForm39(app, user)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(xml))
	assert.Nil(t, doc.SelectElement("Form39").FindElement("DigitalSignature"))
}

func TestRenderForm39RejectsDraft(t *testing.T) {
	s := NewComplianceService()
	app, user := sampleApplication()
	app.Status = models.ApplicationStatusDraft

	_, err := s.RenderForm39(app, user)
	assert.Error(t, err)
}

func TestRenderPreAgreementStatement(t *testing.T) {
	s := NewComplianceService()
	app, user := sampleApplication()

	statement := s.RenderPreAgreementStatement(app, user)

	assert.Contains(t, statement, "Pre-agreement statement")
	assert.Contains(t, statement, "Thabo Mokoena")
	assert.Contains(t, statement, app.Reference)
	assert.Contains(t, statement, "R 5000.00")
	assert.Contains(t, statement, "6 months")
	assert.Contains(t, statement, "12.00%")
}
