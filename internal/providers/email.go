package providers

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
)

// Attachment is an optional file carried with an email.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EmailSender sends multipart mail over SMTP with PLAIN auth.
type EmailSender struct {
	server   string
	port     int
	username string
	password string
}

func NewEmailSender(server string, port int, username, password string) *EmailSender {
	return &EmailSender{server: server, port: port, username: username, password: password}
}

// Send delivers one email with a plain-text part, an HTML part, and an
// optional attachment.
func (e *EmailSender) Send(to, subject, textBody, htmlBody string, attachment *Attachment) error {
	if !strings.Contains(to, "@") {
		return fmt.Errorf("invalid email address: %s", to)
	}

	msg, err := buildMessage(e.username, to, subject, textBody, htmlBody, attachment)
	if err != nil {
		return fmt.Errorf("failed to build email for %s: %w", to, err)
	}

	auth := smtp.PlainAuth("", e.username, e.password, e.server)
	addr := fmt.Sprintf("%s:%d", e.server, e.port)
	if err := smtp.SendMail(addr, auth, e.username, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, textBody, htmlBody string, attachment *Attachment) ([]byte, error) {
	var buf bytes.Buffer
	outer := multipart.NewWriter(&buf)

	contentType := "multipart/alternative"
	if attachment != nil {
		contentType = "multipart/mixed"
	}

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: %s; boundary=%q\r\n\r\n", contentType, outer.Boundary())

	writeBody := func(w *multipart.Writer) error {
		text, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/plain; charset=utf-8"}})
		if err != nil {
			return err
		}
		if _, err := text.Write([]byte(textBody)); err != nil {
			return err
		}
		html, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/html; charset=utf-8"}})
		if err != nil {
			return err
		}
		_, err = html.Write([]byte(htmlBody))
		return err
	}

	if attachment == nil {
		if err := writeBody(outer); err != nil {
			return nil, err
		}
		if err := outer.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	// multipart/mixed wrapping an alternative body plus the attachment
	var altBuf bytes.Buffer
	alt := multipart.NewWriter(&altBuf)
	if err := writeBody(alt); err != nil {
		return nil, err
	}
	if err := alt.Close(); err != nil {
		return nil, err
	}

	altPart, err := outer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", alt.Boundary())},
	})
	if err != nil {
		return nil, err
	}
	if _, err := altPart.Write(altBuf.Bytes()); err != nil {
		return nil, err
	}

	attPart, err := outer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {attachment.ContentType},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", attachment.Filename)},
	})
	if err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(attachment.Data)
	// RFC 2045 line-length limit
	for len(encoded) > 76 {
		if _, err := fmt.Fprintf(attPart, "%s\r\n", encoded[:76]); err != nil {
			return nil, err
		}
		encoded = encoded[76:]
	}
	if _, err := fmt.Fprintf(attPart, "%s\r\n", encoded); err != nil {
		return nil, err
	}

	if err := outer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
