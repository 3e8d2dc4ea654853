// Package services реализует почтовый воркер: разбирает сообщения из очереди
// уведомлений и отправляет письма через SMTP транспорт.
//
// Отправка писем строго best-effort: сбой почты никогда не откатывает
// мутацию, которая его породила. Сообщение при ошибке возвращается в очередь.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mediacareers/membership-service/internal/lib/sl"
	"github.com/mediacareers/membership-service/internal/lib/smtp"
	"github.com/mediacareers/membership-service/internal/models"
)

// SenderService отправляет транзакционные письма пользователям.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendWelcomeEmail отправляет приветственное письмо новому пользователю.
func (s *SenderService) SendWelcomeEmail(body []byte) error {
	var message models.WelcomeEmail
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Welcome to MediaCareers.in - Your Gateway to Media Jobs"
	bodyText := fmt.Sprintf(`Hello, %s!

Thank you for joining the job platform for media professionals.

Upload your resume, browse jobs and get personalized recommendations.
Premium membership unlocks unlimited applications and career advice.

If you have 1+ year of experience in the media industry,
you qualify for a free premium membership.`, message.Name)

	return s.sendEmail(to, subject, bodyText)
}

// SendApplicationConfirmation отправляет подтверждение отклика на вакансию.
func (s *SenderService) SendApplicationConfirmation(body []byte) error {
	var message models.ApplicationConfirmation
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := fmt.Sprintf("Application received: %s at %s", message.JobTitle, message.Company)
	bodyText := fmt.Sprintf(`Hello, %s!

Your application for the position %s at %s has been received.
The employer will contact you directly if your profile is shortlisted.`,
		message.Name, message.JobTitle, message.Company)

	return s.sendEmail(to, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
