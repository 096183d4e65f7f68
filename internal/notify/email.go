package notify

import (
	"fmt"

	"github.com/courtside/courtside-backend/internal/config"
	"gopkg.in/gomail.v2"
)

// EmailSender delivers messages over SMTP
type EmailSender struct {
	cfg config.SMTPConfig
}

// NewEmailSender creates a new EmailSender
func NewEmailSender(cfg config.SMTPConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

// Send delivers an email with an HTML body
func (s *EmailSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.From, "Courtside"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", renderEmailHTML(subject, body))

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}

// renderEmailHTML wraps the body in a minimal inline-styled shell for
// email client compatibility
func renderEmailHTML(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
	<title>%s</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, Helvetica, sans-serif; background-color: #f7f9fc;">
	<table align="center" border="0" cellpadding="0" cellspacing="0" width="600" style="border-collapse: collapse; background-color: #ffffff; margin-top: 40px;">
		<tr>
			<td align="center" style="padding: 24px 0; background-color: #e8590c; color: #ffffff;">
				<h1 style="margin: 0; font-size: 22px;">Courtside</h1>
			</td>
		</tr>
		<tr>
			<td style="padding: 32px 30px; color: #333333; font-size: 15px; line-height: 1.6; white-space: pre-line;">%s</td>
		</tr>
		<tr>
			<td align="center" style="padding: 16px; background-color: #f0f2fa; color: #666666; font-size: 12px;">
				<p style="margin: 0;">This email was sent by your program's admin team.</p>
			</td>
		</tr>
	</table>
</body>
</html>`, title, body)
}
