package mailer

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"freight-app/config"
)

// Mailer sends operational notices over SMTP. When no SMTP host is
// configured every send is a logged no-op.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	sender   string
}

func New() *Mailer {
	return &Mailer{
		host:     config.SMTPHost,
		port:     config.SMTPPort,
		user:     config.SMTPUser,
		password: config.SMTPPassword,
		sender:   config.SMTPSender,
	}
}

func (m *Mailer) Enabled() bool {
	return m.host != ""
}

// SendPasswordChangedNotice tells the account owner their password was reset.
func (m *Mailer) SendPasswordChangedNotice(toEmail, username string) error {
	if !m.Enabled() {
		log.Println("SMTP not configured, skipping password notice for:", username)
		return nil
	}

	subject := "Your password has been changed"
	body := fmt.Sprintf(`
		<html>
			<body>
				<h3>Password changed</h3>
				<p>The password for account <strong>%s</strong> was just reset.</p>
				<p>If this was not you, contact your administrator immediately.</p>
				<p>This is an auto-generated email. Please do not reply.</p>
			</body>
		</html>
	`, username)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(m.host, m.port, m.user, m.password)
	if err := dialer.DialAndSend(msg); err != nil {
		log.Println("Failed to send password notice:", err)
		return err
	}
	return nil
}
