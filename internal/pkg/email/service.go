// internal/pkg/email/service.go
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/stickerly/stickershop-backend/internal/config"
	"github.com/stickerly/stickershop-backend/internal/domain/order"
)

// EmailService sends transactional mail over SMTP. When disabled it
// logs instead of sending, so development setups need no mail server.
type EmailService struct {
	config *config.Config
	logger *logrus.Logger
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config, logger *logrus.Logger) *EmailService {
	return &EmailService{config: cfg, logger: logger}
}

var orderConfirmationTmpl = template.Must(template.New("order_confirmation").Parse(`
<h2>Thanks for your order, {{.Name}}!</h2>
<p>Order <strong>{{.OrderNumber}}</strong> is confirmed.</p>
<table>
{{range .Items}}<tr><td>{{.Name}}</td><td>x{{.Quantity}}</td></tr>
{{end}}</table>
<p>Total charged: <strong>{{.Total}}</strong></p>
<p>Your stickers are on the way.</p>
`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
<h2>Welcome to {{.SiteName}}, {{.Name}}!</h2>
<p>Your account is ready. Start customizing your first sticker.</p>
`))

// SendOrderConfirmation emails the order summary to the buyer
func (s *EmailService) SendOrderConfirmation(ord *order.Order) error {
	data := struct {
		Name        string
		OrderNumber string
		Items       []order.Item
		Total       string
	}{
		Name:        ord.Email,
		OrderNumber: ord.OrderNumber,
		Items:       ord.Items,
		Total:       fmt.Sprintf("%.2f %s", float64(ord.TotalAmount)/100, ord.Currency),
	}

	var body bytes.Buffer
	if err := orderConfirmationTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render order confirmation: %w", err)
	}

	return s.send([]string{ord.Email},
		fmt.Sprintf("Order %s confirmed", ord.OrderNumber), body.String())
}

// SendWelcome emails a new user
func (s *EmailService) SendWelcome(to, name string) error {
	data := struct {
		SiteName string
		Name     string
	}{SiteName: s.config.App.Name, Name: name}

	var body bytes.Buffer
	if err := welcomeTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render welcome email: %w", err)
	}

	return s.send([]string{to}, fmt.Sprintf("Welcome to %s", s.config.App.Name), body.String())
}

func (s *EmailService) send(to []string, subject, htmlBody string) error {
	cfg := s.config.External.Email
	if !cfg.Enabled {
		s.logger.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("Email sending disabled, skipping")
		return nil
	}
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" {
		return fmt.Errorf("SMTP configuration incomplete")
	}

	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}

	var msg bytes.Buffer
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	if err := smtp.SendMail(addr, auth, cfg.FromEmail, to, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
