package mailer

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
)

// Settings holds the SMTP transport configuration for one send. It is
// filled either from a stored sender configuration row or from explicit
// credentials in the request.
type Settings struct {
	Host     string
	Port     int
	Login    string
	Password string
	UseSSL   bool
}

// Addr returns the host:port dial address
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Send delivers a plain-text message through the configured SMTP server.
// With UseSSL the connection is TLS from the first byte (typically port
// 465); otherwise a plain connection is opened and STARTTLS is used when
// the server offers it. The connection is closed on every exit path.
func Send(settings *Settings, sender, recipient, subject, body string) error {
	msg := "From: " + sender + "\r\n" +
		"To: " + recipient + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		body

	client, err := dial(settings)
	if err != nil {
		return fmt.Errorf("smtp connect: %w", err)
	}
	defer client.Close()

	if settings.Login != "" {
		auth := smtp.PlainAuth("", settings.Login, settings.Password, settings.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(sender); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := client.Rcpt(recipient); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		w.Close()
		return fmt.Errorf("smtp send: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return client.Quit()
}

func dial(settings *Settings) (*smtp.Client, error) {
	if settings.UseSSL {
		conn, err := tls.Dial("tcp", settings.Addr(), &tls.Config{ServerName: settings.Host})
		if err != nil {
			return nil, err
		}
		client, err := smtp.NewClient(conn, settings.Host)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return client, nil
	}

	client, err := smtp.Dial(settings.Addr())
	if err != nil {
		return nil, err
	}
	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: settings.Host}); err != nil {
			client.Close()
			return nil, err
		}
	}
	return client, nil
}
