package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/partsdepot/backoffice/internal/orders/domain"
)

// Config carries SMTP server settings for transactional mail.
type Config struct {
	Addr     string
	Host     string
	From     string
	Password string
}

var statusUpdateTemplate = template.Must(template.New("status_update").Parse(`<html>
<body>
<p>Hi {{.CustomerName}},</p>
<p>Your order <strong>{{.OrderNumber}}</strong> is now <strong>{{.Status}}</strong>.</p>
{{if .TrackingCode}}<p>Tracking code: {{.TrackingCode}}</p>{{end}}
<table>
{{range .Items}}<tr><td>{{.ProductName}}</td><td>x{{.Quantity}}</td></tr>
{{end}}</table>
<p>Thank you for shopping with us.</p>
</body>
</html>`))

type statusUpdateData struct {
	CustomerName string
	OrderNumber  string
	Status       string
	TrackingCode string
	Items        []domain.Item
}

// SMTPNotifier sends order status updates over plain SMTP.
type SMTPNotifier struct {
	cfg Config
}

func NewSMTPNotifier(cfg Config) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) SendOrderStatusUpdate(_ context.Context, order domain.Order, items []domain.Item, displayStatus string, _ domain.OrderStatus) error {
	var body bytes.Buffer
	err := statusUpdateTemplate.Execute(&body, statusUpdateData{
		CustomerName: order.CustomerName,
		OrderNumber:  order.Number,
		Status:       displayStatus,
		TrackingCode: order.TrackingCode,
		Items:        items,
	})
	if err != nil {
		return fmt.Errorf("render status update email: %w", err)
	}

	message := fmt.Sprintf(
		"From: %s\r\nSubject: Order %s update\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		n.cfg.From,
		order.Number,
		body.String(),
	)

	auth := smtp.PlainAuth("", n.cfg.From, n.cfg.Password, n.cfg.Host)
	if err := smtp.SendMail(n.cfg.Addr, auth, n.cfg.From, []string{order.CustomerEmail}, []byte(message)); err != nil {
		return fmt.Errorf("send status update email: %w", err)
	}

	return nil
}
