package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/beevik/etree"

	"hohemaloans/models"
)

// ComplianceService формирует документы для NCR: форму 39 и
// предварительное заявление об условиях займа
type ComplianceService struct {
	providerName string
	ncrNumber    string
}

// NewComplianceService создает новый экземпляр ComplianceService
func NewComplianceService() *ComplianceService {
	return &ComplianceService{
		providerName: "Ho Hema Loans (Pty) Ltd",
		ncrNumber:    "NCRCP0000",
	}
}

// RenderForm39 формирует XML-документ формы 39 по заявке
func (s *ComplianceService) RenderForm39(app *models.LoanApplication, user *models.User) (string, error) {
	if app.Status == models.ApplicationStatusDraft {
		return "", errors.New("форма 39 формируется только для поданных заявок")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	form := doc.CreateElement("Form39")
	form.CreateAttr("xmlns", "urn:ncr:form39")
	form.CreateAttr("generated", time.Now().UTC().Format(time.RFC3339))

	provider := form.CreateElement("CreditProvider")
	provider.CreateElement("Name").SetText(s.providerName)
	provider.CreateElement("NCRNumber").SetText(s.ncrNumber)

	consumer := form.CreateElement("Consumer")
	consumer.CreateElement("FullName").SetText(user.FirstName + " " + user.LastName)
	consumer.CreateElement("Email").SetText(user.Email)
	if user.Phone != "" {
		consumer.CreateElement("Phone").SetText(user.Phone)
	}

	agreement := form.CreateElement("CreditAgreement")
	agreement.CreateElement("Reference").SetText(app.Reference)
	agreement.CreateElement("PrincipalDebt").SetText(app.Amount.StringFixed(2))
	agreement.CreateElement("TermMonths").SetText(fmt.Sprintf("%d", app.TermMonths))
	agreement.CreateElement("AnnualInterestRate").SetText(app.InterestRate.Mul(hundred).StringFixed(2))
	agreement.CreateElement("MonthlyInstalment").SetText(app.MonthlyPayment.StringFixed(2))
	agreement.CreateElement("TotalRepayable").SetText(app.TotalAmount.StringFixed(2))
	agreement.CreateElement("Purpose").SetText(app.Purpose)
	agreement.CreateElement("Channel").SetText(string(app.ChannelOrigin))

	if app.SignedAt != nil {
		signature := form.CreateElement("DigitalSignature")
		signature.CreateElement("Method").SetText("WHATSAPP_OTP")
		signature.CreateElement("SignedAt").SetText(app.SignedAt.UTC().Format(time.RFC3339))
	}

	doc.Indent(2)
	return doc.WriteToString()
}

// RenderPreAgreementStatement формирует HTML предварительного заявления
// об условиях займа для отправки клиенту
func (s *ComplianceService) RenderPreAgreementStatement(app *models.LoanApplication, user *models.User) string {
	return fmt.Sprintf(`
		<h2>Pre-agreement statement and quotation</h2>
		<p>Credit provider: %s (registration %s)</p>
		<p>Consumer: %s %s</p>
		<p>Application reference: %s</p>
		<table>
			<tr><td>Principal debt</td><td>R %s</td></tr>
			<tr><td>Term</td><td>%d months</td></tr>
			<tr><td>Annual interest rate</td><td>%s%%</td></tr>
			<tr><td>Monthly instalment</td><td>R %s</td></tr>
			<tr><td>Total amount repayable</td><td>R %s</td></tr>
		</table>
		<p>This quotation is valid for 5 business days as required by the
		National Credit Act. You are under no obligation to accept it.</p>
	`,
		s.providerName, s.ncrNumber,
		user.FirstName, user.LastName,
		app.Reference,
		app.Amount.StringFixed(2),
		app.TermMonths,
		app.InterestRate.Mul(hundred).StringFixed(2),
		app.MonthlyPayment.StringFixed(2),
		app.TotalAmount.StringFixed(2),
	)
}
