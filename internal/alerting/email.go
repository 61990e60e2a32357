package alerting

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"fee-reconciliation-service/internal/config"
	"fee-reconciliation-service/internal/models"
)

// EmailAlerter sends the below-threshold reconciliation alert over SMTP.
// The threshold decision itself belongs to the caller; the alerter only
// formats and delivers.
type EmailAlerter struct {
	cfg  config.SMTPConfig
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailAlerter(cfg config.SMTPConfig) *EmailAlerter {
	return &EmailAlerter{cfg: cfg, send: smtp.SendMail}
}

// SendAlert delivers the alert email for one transaction's report. Disabled
// alerting is not an error.
func (a *EmailAlerter) SendAlert(rep *models.Report, transactionName string) error {
	if !a.cfg.Enabled {
		log.Println("Email alerts disabled - skipping")
		return nil
	}

	subject := fmt.Sprintf("Reconciliation Alert: %s", rep.Summary.AmountReconciledDisplay)
	if transactionName != "" {
		subject = fmt.Sprintf("Reconciliation Alert - %s: %s", transactionName, rep.Summary.AmountReconciledDisplay)
	}

	msg := buildMessage(a.cfg.Sender, a.cfg.Recipient, subject, buildBody(rep, transactionName))
	addr := fmt.Sprintf("%s:%d", a.cfg.Host, a.cfg.Port)
	auth := smtp.PlainAuth("", a.cfg.User, a.cfg.Password, a.cfg.Host)

	if err := a.send(addr, auth, a.cfg.Sender, []string{a.cfg.Recipient}, msg); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	log.Printf("Alert email sent, amount reconciled %s", rep.Summary.AmountReconciledDisplay)
	return nil
}

func buildBody(rep *models.Report, transactionName string) string {
	var b strings.Builder

	b.WriteString("Reconciliation Alert - Low Match Percentage Detected")
	if transactionName != "" {
		b.WriteString(" - " + transactionName)
	}
	b.WriteString("\n\nCRITICAL METRICS:\n")
	fmt.Fprintf(&b, "Amount Reconciled: %s (below alert threshold)\n", rep.Summary.AmountReconciledDisplay)

	b.WriteString("\nRECONCILIATION SUMMARY:\n")
	fmt.Fprintf(&b, "- Calculated Total: %s\n", rep.Summary.TotalFinalAmountDisplay)
	fmt.Fprintf(&b, "- VISA Invoice Total: %s\n", rep.Summary.TotalVisaAmountDisplay)
	fmt.Fprintf(&b, "- Fee Reconciled: %s\n", rep.Summary.FeeReconciledDisplay)
	fmt.Fprintf(&b, "- Items Reconciled: %d/%d\n", rep.Summary.MatchedItems, rep.Summary.TotalVisaItems)
	fmt.Fprintf(&b, "- Amount Match Percentage: %s\n", rep.Summary.AmountMatchDisplay)

	b.WriteString("\nADDITIONAL DETAILS:\n")
	fmt.Fprintf(&b, "- Total Fee Mappings: %d\n", rep.Summary.TotalMappings)
	fmt.Fprintf(&b, "- Sheets Analyzed: %d\n", rep.Summary.SheetCount)

	b.WriteString("\nACTION REQUIRED:\n")
	b.WriteString("The reconciliation percentage is below the acceptable threshold.\n")
	b.WriteString("Please review the detailed reconciliation report and investigate discrepancies.\n")
	b.WriteString("\nThis is an automated alert from the Card Reconciliation Service.\n")

	return b.String()
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
