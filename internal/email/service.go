package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type Service interface {
	SendAppointmentConfirmation(ctx context.Context, to, patientName, date, slotTime string) error
	SendAppointmentCancellation(ctx context.Context, to, patientName, date, slotTime string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg Config) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendAppointmentConfirmation(ctx context.Context, to, patientName, date, slotTime string) error {
	subject := "Your appointment is confirmed"
	body := fmt.Sprintf("Dear %s,\n\nYour appointment on %s at %s has been booked.\n\nAl-Safaa Hospital", patientName, date, slotTime)
	return s.send(to, subject, body)
}

func (s *smtpService) SendAppointmentCancellation(ctx context.Context, to, patientName, date, slotTime string) error {
	subject := "Your appointment was cancelled"
	body := fmt.Sprintf("Dear %s,\n\nYour appointment on %s at %s has been cancelled.\n\nAl-Safaa Hospital", patientName, date, slotTime)
	return s.send(to, subject, body)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
