package mailer

import (
	"fmt"
	"net/url"

	"fundocs-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendVerification(toEmail, name, userID, secret string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	clientURL   string
	logger      logger.ILogger
}

func NewEmailService(host string, port int, username, password, senderEmail, clientURL string, log logger.ILogger) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		clientURL:   clientURL,
		logger:      log,
	}
}

// VerificationLink points at the client's verify page.
func VerificationLink(clientURL, userID, secret string) string {
	q := url.Values{}
	q.Set("userId", userID)
	q.Set("secret", secret)
	return fmt.Sprintf("%s/verify?%s", clientURL, q.Encode())
}

func (s *emailService) SendVerification(toEmail, name, userID, secret string) error {
	link := VerificationLink(s.clientURL, userID, secret)

	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Verify your email")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome, %s!</h2>
			<p>Confirm your email to start earning XP:</p>
			<a href="%s" style="background-color: #F02E65; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Verify Email</a>
			<p>Or copy this link:</p>
			<p>%s</p>
			<p>If you didn't create an account, please ignore this email.</p>
		</div>
	`, name, link, link)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("Mailer", "Failed to send verification email", map[string]interface{}{"to": toEmail, "error": err.Error()})
		return err
	}

	s.logger.Info("Mailer", "Verification email sent", map[string]interface{}{"to": toEmail})
	return nil
}
