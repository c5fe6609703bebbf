// internal/pkg/email/service.go
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/your-org/marketplace-backend/internal/config"
)

// EmailService handles all email operations
type EmailService struct {
	config    *config.Config
	templates map[string]*template.Template
	client    *http.Client
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config) *EmailService {
	service := &EmailService{
		config: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	service.templates = map[string]*template.Template{
		"order_notification": template.Must(template.New("order_notification").Parse(orderNotificationTemplate)),
		"store_registered":   template.Must(template.New("store_registered").Parse(storeRegisteredTemplate)),
	}
	return service
}

// SendEmail sends an email using the configured provider
func (s *EmailService) SendEmail(email *Email) error {
	switch s.config.Email.Provider {
	case "smtp":
		return s.sendSMTPEmail(email)
	case "resend":
		return s.sendResendEmail(email)
	case "sendgrid":
		return s.sendSendGridEmail(email)
	case "mailersend":
		return s.sendMailerSendEmail(email)
	default:
		return fmt.Errorf("unsupported email provider: %s", s.config.Email.Provider)
	}
}

// SendOrderNotification tells a store about a freshly committed order
func (s *EmailService) SendOrderNotification(data *OrderNotificationData) error {
	htmlContent, err := s.renderTemplate("order_notification", data)
	if err != nil {
		return fmt.Errorf("failed to render order notification template: %w", err)
	}

	email := &Email{
		To:          []string{data.To},
		Subject:     fmt.Sprintf("New Order %s", data.OrderNumber),
		HTMLContent: htmlContent,
		Type:        EmailTypeOrderNotification,
	}

	return s.SendEmail(email)
}

// SendStoreRegisteredNotice tells the platform admin about a new store
func (s *EmailService) SendStoreRegisteredNotice(data *StoreRegisteredData) error {
	if s.config.Email.AdminEmail == "" {
		return nil
	}

	htmlContent, err := s.renderTemplate("store_registered", data)
	if err != nil {
		return fmt.Errorf("failed to render store registered template: %w", err)
	}

	email := &Email{
		To:          []string{s.config.Email.AdminEmail},
		Subject:     fmt.Sprintf("New store registered: %s", data.StoreName),
		HTMLContent: htmlContent,
		Type:        EmailTypeStoreRegistered,
	}

	return s.SendEmail(email)
}

// renderTemplate renders an email template with data
func (s *EmailService) renderTemplate(templateName string, data interface{}) (string, error) {
	tmpl, exists := s.templates[templateName]
	if !exists {
		return "", fmt.Errorf("template %s not found", templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	return buf.String(), nil
}

const orderNotificationTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New Order</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #333;">New Order {{.OrderNumber}}</h1>
        <p>Hello {{.StoreName}}, you received a new order.</p>
        <p>
            Customer: {{.CustomerName}} ({{.CustomerPhone}})<br>
            {{if .Address}}Address: {{.Address}}<br>{{end}}
            Delivery: {{.DeliveryType}}<br>
            Payment: {{.PaymentMethod}}
        </p>
        <table style="width: 100%; border-collapse: collapse;">
            {{range .Items}}
            <tr>
                <td style="padding: 4px 0;">{{.Quantity}}x {{.Name}}</td>
                <td style="padding: 4px 0; text-align: right;">{{.PriceFormatted}}</td>
            </tr>
            {{end}}
        </table>
        <p style="font-weight: bold;">Total: {{.TotalFormatted}}</p>
    </div>
</body>
</html>`

const storeRegisteredTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New Store</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #333;">New store registered</h1>
        <p>
            Name: {{.StoreName}}<br>
            Slug: {{.StoreSlug}}<br>
            Owner: {{.OwnerEmail}}
        </p>
    </div>
</body>
</html>`
