package mail

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"kilim/internal/domain"
)

// Mailer отправка почты. Отправка уведомлений best-effort:
// ошибку вызывающий логирует и не пробрасывает дальше.
type Mailer interface {
	Send(subject, body string, to []string) error
}

// SMTPConfig параметры SMTP-отправителя
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer отправитель через gomail
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

var _ Mailer = (*SMTPMailer)(nil)

func (m *SMTPMailer) Send(subject, body string, to []string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}

// Disabled no-op отправитель для запуска без настроенного SMTP
type Disabled struct{}

func (Disabled) Send(subject, body string, to []string) error { return nil }

// OrderSubject тема письма-уведомления о новом оплаченном заказе
func OrderSubject(o *domain.Order) string {
	return fmt.Sprintf("New Order #%d", o.ID)
}

// OrderSummary текст уведомления: состав заказа и итоговая сумма
func OrderSummary(o *domain.Order) string {
	var b strings.Builder
	b.WriteString("New paid order received!\n\n")
	fmt.Fprintf(&b, "Order ID: %d\n", o.ID)
	fmt.Fprintf(&b, "Customer: %s\n", o.CustomerName)
	fmt.Fprintf(&b, "Email: %s\n\n", o.CustomerEmail)
	b.WriteString("Items:\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %s x %d - %s %s\n", it.Name, it.Quantity, o.Currency, it.Price.String())
	}
	fmt.Fprintf(&b, "\nTotal: %s %s\n", o.Currency, o.TotalAmount.String())
	return b.String()
}
