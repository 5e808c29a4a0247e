package services

import (
	"fmt"
	"time"

	"github.com/elisajuliana12/finzense/config"
	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

// EmailService предоставляет методы для отправки email
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailService создает новый экземпляр EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer: dialer,
		from:   cfg.SMTP.From,
	}
}

// SendEmail отправляет email
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("ошибка отправки email: %v", err)
	}

	return nil
}

// SendWelcomeEmail отправляет приветственное письмо новому пользователю
func (s *EmailService) SendWelcomeEmail(to, name string) error {
	subject := "Добро пожаловать в FinZense!"
	body := fmt.Sprintf(`
		<h2>Здравствуйте, %s!</h2>
		<p>Ваш аккаунт успешно создан.</p>
		<p>Записывайте доходы и расходы, планируйте бюджеты и копите на цели.</p>
		<p>С уважением,<br>Команда FinZense</p>
	`, name)

	return s.SendEmail(to, subject, body)
}

// SendBudgetAlert отправляет уведомление о превышении бюджета
func (s *EmailService) SendBudgetAlert(to, categoryName, month string, limit, actual decimal.Decimal) error {
	subject := "Бюджет превышен"
	body := fmt.Sprintf(`
		<h2>Бюджет превышен</h2>
		<p>Категория: %s</p>
		<p>Месяц: %s</p>
		<p>Лимит: %s</p>
		<p>Потрачено: %s</p>
		<p>Дата: %s</p>
	`, categoryName, month, limit.StringFixed(2), actual.StringFixed(2),
		time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(to, subject, body)
}
