package services

import (
	"fmt"

	"clinic_flow_app_go/config"
	"clinic_flow_app_go/models"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// mailer holds the configured email settings. When nil or in test mode,
// messages are logged instead of sent.
var mailer *config.Config

// InitializeMailer installs the email configuration
func InitializeMailer(cfg *config.Config) {
	mailer = cfg
}

// Email represents an email message
type Email struct {
	To      []string
	Subject string
	Text    string
}

// SendEmail sends a message through Resend, or logs it in test mode.
// Notification delivery is always best-effort for callers.
func SendEmail(email *Email) error {
	if mailer == nil || mailer.EmailTestMode || mailer.ResendAPIKey == "" {
		log.Info().Strs("to", email.To).Str("subject", email.Subject).
			Msg("[EMAIL TEST MODE] message logged, not sent")
		return nil
	}

	client := resend.NewClient(mailer.ResendAPIKey)
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", mailer.EmailFromName, mailer.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Text:    email.Text,
	}

	if _, err := client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// NotifyAppointmentConfirmed emails the patient about a confirmed
// appointment. Failures are logged, never returned: a notification must not
// fail the appointment operation.
func NotifyAppointmentConfirmed(db *gorm.DB, apt *models.Appointment) {
	var patient models.Patient
	if err := db.First(&patient, "id = ?", apt.PatientID).Error; err != nil {
		log.Warn().Err(err).Uint("appointment_id", apt.ID).Msg("cannot notify: patient lookup failed")
		return
	}
	if patient.Email == "" {
		return
	}

	email := &Email{
		To:      []string{patient.Email},
		Subject: "Votre rendez-vous est confirmé",
		Text: fmt.Sprintf("Bonjour %s,\n\nVotre rendez-vous du %s à %s est confirmé.\n\nCordialement",
			patient.FullName(), apt.Date, apt.Time),
	}
	if err := SendEmail(email); err != nil {
		log.Warn().Err(err).Uint("appointment_id", apt.ID).Msg("failed to send confirmation email")
	}
}

// NotifyInvoicePaid emails the patient a payment acknowledgement. Best-effort
// like all notifications.
func NotifyInvoicePaid(db *gorm.DB, invoice *models.Invoice) {
	var patient models.Patient
	if err := db.First(&patient, "id = ?", invoice.PatientID).Error; err != nil {
		log.Warn().Err(err).Uint("invoice_id", invoice.ID).Msg("cannot notify: patient lookup failed")
		return
	}
	if patient.Email == "" {
		return
	}

	email := &Email{
		To:      []string{patient.Email},
		Subject: fmt.Sprintf("Facture %s réglée", invoice.InvoiceNumber),
		Text: fmt.Sprintf("Bonjour %s,\n\nNous confirmons le règlement de la facture %s (%.2f €).\n\nCordialement",
			patient.FullName(), invoice.InvoiceNumber, invoice.TotalAmount),
	}
	if err := SendEmail(email); err != nil {
		log.Warn().Err(err).Uint("invoice_id", invoice.ID).Msg("failed to send payment email")
	}
}
