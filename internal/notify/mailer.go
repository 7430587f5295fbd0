package notify

import (
	"io"
	"log"

	gomail "gopkg.in/gomail.v2"
)

// SMTPMailer delivers mail over SMTP. Callers treat delivery as
// fire-and-forget; errors are returned for logging only and never fail the
// request that triggered the mail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, from, username, password string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}

func (m *SMTPMailer) SendWithAttachment(to, subject, body, filename, mimeType string, data []byte) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	msg.Attach(filename,
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}),
		gomail.SetHeader(map[string][]string{"Content-Type": {mimeType}}),
	)
	return m.dialer.DialAndSend(msg)
}

// LogMailer stands in when SMTP is not configured; it logs instead of
// sending.
type LogMailer struct{}

func (LogMailer) Send(to, subject, _ string) error {
	log.Printf("mail (not configured): to=%s subject=%q", to, subject)
	return nil
}

func (LogMailer) SendWithAttachment(to, subject, _, filename, _ string, _ []byte) error {
	log.Printf("mail (not configured): to=%s subject=%q attachment=%s", to, subject, filename)
	return nil
}
