// Package email envía las facturas al cliente por SMTP con el PDF adjunto.
package email

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	appbilling "github.com/facturio/billing-api/internal/application/billing"
	"github.com/facturio/billing-api/internal/domain/entity"
	"github.com/facturio/billing-api/pkg/config"
)

var _ appbilling.InvoiceEmailSender = (*SMTPSender)(nil)

// SMTPSender implementa billing.InvoiceEmailSender sobre SMTP plano con
// STARTTLS, o TLS implícito cuando el puerto es 465.
type SMTPSender struct {
	cfg config.SMTPConfig
}

// NewSMTPSender construye el sender.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// SendInvoice envía la factura con el PDF adjunto. Con Host vacío el envío
// está deshabilitado y se reporta como error para que el caller lo traduzca a
// error de servicio externo.
func (s *SMTPSender) SendInvoice(_ context.Context, toEmail, toName string, invoice *entity.Invoice, pdf []byte) error {
	if s.cfg.Host == "" {
		return fmt.Errorf("smtp: envío deshabilitado (SMTP_HOST vacío)")
	}

	subject := fmt.Sprintf("Factura N° %06d", invoice.Number)
	body := fmt.Sprintf(
		"Hola %s,\r\n\r\nAdjuntamos la factura N° %06d (%s %s).\r\n\r\nGracias por tu confianza.",
		toName, invoice.Number, invoice.Currency, invoice.Total.StringFixed(2),
	)
	filename := fmt.Sprintf("factura_%06d.pdf", invoice.Number)
	message := buildMessage(s.cfg.From, toEmail, subject, body, filename, pdf)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	fromAddr := parseAddress(s.cfg.From)

	client, err := smtpClient(addr, s.cfg.Host, s.cfg.Port)
	if err != nil {
		return err
	}
	defer client.Close()

	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(fromAddr); err != nil {
		return err
	}
	if err := client.Rcpt(toEmail); err != nil {
		return err
	}
	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write([]byte(message)); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

func smtpClient(addr string, host string, port int) (*smtp.Client, error) {
	if port == 465 {
		conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
		if err != nil {
			return nil, err
		}
		return smtp.NewClient(conn, host)
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return nil, err
	}
	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	return client, nil
}

// buildMessage arma el mensaje MIME multipart: cuerpo en texto plano + PDF
// adjunto en base64.
func buildMessage(from, to, subject, body, filename string, pdf []byte) string {
	const boundary = "facturio-boundary-0a1b2c3d"

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/mixed; boundary=" + boundary + "\r\n")
	b.WriteString("\r\n")

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body + "\r\n")

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: application/pdf; name=\"" + filename + "\"\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	b.WriteString("Content-Disposition: attachment; filename=\"" + filename + "\"\r\n")
	b.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString(pdf)
	for len(encoded) > 76 {
		b.WriteString(encoded[:76] + "\r\n")
		encoded = encoded[76:]
	}
	if encoded != "" {
		b.WriteString(encoded + "\r\n")
	}
	b.WriteString("--" + boundary + "--\r\n")
	return b.String()
}

func parseAddress(from string) string {
	start := strings.Index(from, "<")
	end := strings.Index(from, ">")
	if start >= 0 && end > start {
		return strings.TrimSpace(from[start+1 : end])
	}
	return strings.TrimSpace(from)
}
