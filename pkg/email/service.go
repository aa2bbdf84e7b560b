// Package email sends transactional mail through SendGrid, or logs it when
// no API key is configured.
package email

import (
	"fmt"
	"html/template"
	"log"
	"strings"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Service handles email sending
type Service struct {
	fromEmail   string
	fromName    string
	baseURL     string
	sendGridKey string
	useSendGrid bool

	mu     sync.Mutex
	outbox []Message // console mode only
}

// Message is an email as logged in console mode
type Message struct {
	ToEmail   string
	ToName    string
	Subject   string
	HTML      string
	PlainText string
}

// NewService creates a new email service.
// With a SendGrid key emails are sent; otherwise they are logged to the console.
func NewService(fromEmail, fromName, baseURL, sendGridAPIKey string) *Service {
	useSendGrid := sendGridAPIKey != ""
	if useSendGrid {
		log.Printf("✅ Email service initialized with SendGrid")
	} else {
		log.Printf("⚠️  Email service in console-only mode (set SENDGRID_API_KEY for production)")
	}

	return &Service{
		fromEmail:   fromEmail,
		fromName:    fromName,
		baseURL:     strings.TrimRight(baseURL, "/"),
		sendGridKey: sendGridAPIKey,
		useSendGrid: useSendGrid,
	}
}

// SendWelcomeEmail greets a new account and states its starting credits
func (s *Service) SendWelcomeEmail(toEmail, toName string, credits int) error {
	subject := "Welcome to EasyProspect"
	html := fmt.Sprintf(`
		<html>
		<body>
			<h2>Welcome to EasyProspect!</h2>
			<p>Hi %s,</p>
			<p>Your account is ready and comes with <strong>%d free credits</strong>. One credit buys one company contact.</p>
			<p><a href="%s/explorar" style="background-color: #3b82f6; color: white; padding: 14px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">Explore companies</a></p>
			<p>Thanks,<br>The EasyProspect Team</p>
		</body>
		</html>
	`, template.HTMLEscapeString(toName), credits, s.baseURL)

	plainText := fmt.Sprintf(`Hi %s,

Your account is ready and comes with %d free credits. One credit buys one company contact.

Explore companies: %s/explorar

Thanks,
The EasyProspect Team
`, toName, credits, s.baseURL)

	return s.SendRawEmail(toEmail, toName, subject, html, plainText)
}

// SendPurchaseReceipt confirms a paid export
func (s *Service) SendPurchaseReceipt(toEmail, toName string, records, creditsUsed, remaining int, format string) error {
	subject := fmt.Sprintf("Your EasyProspect export: %d companies", records)
	html := fmt.Sprintf(`
		<html>
		<body>
			<h2>Export complete</h2>
			<p>Hi %s,</p>
			<p>Your %s export with <strong>%d companies</strong> is ready.</p>
			<table>
				<tr><td>Credits used</td><td><strong>%d</strong></td></tr>
				<tr><td>Credits remaining</td><td><strong>%d</strong></td></tr>
			</table>
			<p>You can find it again in your <a href="%s/dashboard/downloads">download history</a>.</p>
			<p>Thanks,<br>The EasyProspect Team</p>
		</body>
		</html>
	`, template.HTMLEscapeString(toName), strings.ToUpper(format), records, creditsUsed, remaining, s.baseURL)

	plainText := fmt.Sprintf(`Hi %s,

Your %s export with %d companies is ready.

Credits used: %d
Credits remaining: %d

Download history: %s/dashboard/downloads

Thanks,
The EasyProspect Team
`, toName, strings.ToUpper(format), records, creditsUsed, remaining, s.baseURL)

	return s.SendRawEmail(toEmail, toName, subject, html, plainText)
}

// SendRawEmail sends an email with custom subject and body content
func (s *Service) SendRawEmail(toEmail, toName, subject, htmlBody, plainTextBody string) error {
	if s.useSendGrid {
		return s.sendViaSendGrid(toEmail, toName, subject, htmlBody, plainTextBody)
	}
	return s.logEmailToConsole(Message{toEmail, toName, subject, htmlBody, plainTextBody})
}

// Outbox returns the messages logged in console mode
func (s *Service) Outbox() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.outbox...)
}

// sendViaSendGrid sends email using SendGrid API
func (s *Service) sendViaSendGrid(toEmail, toName, subject, htmlBody, plainTextBody string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainTextBody, htmlBody)

	client := sendgrid.NewSendClient(s.sendGridKey)
	response, err := client.Send(message)
	if err != nil {
		log.Printf("❌ SendGrid error: %v", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		log.Printf("❌ SendGrid returned error status %d: %s", response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid returned error status: %d", response.StatusCode)
	}

	log.Printf("✅ Email sent to %s (SendGrid status: %d)", toEmail, response.StatusCode)
	return nil
}

// logEmailToConsole logs email details to console (development mode)
func (s *Service) logEmailToConsole(m Message) error {
	s.mu.Lock()
	s.outbox = append(s.outbox, m)
	s.mu.Unlock()

	log.Printf("📧 [EMAIL] %s", m.Subject)
	log.Printf("   To: %s <%s>", m.ToName, m.ToEmail)
	log.Printf("   From: %s <%s>", s.fromName, s.fromEmail)
	log.Printf("   ⚠️  Email NOT sent (development mode)")
	return nil
}
