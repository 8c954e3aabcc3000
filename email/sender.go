package email

import (
	"bytes"
	"fmt"
	"net/smtp"
	"text/template"

	"github.com/pkg/errors"

	"github.com/penlight/auth-server/internal/config"
	apperrors "github.com/penlight/auth-server/internal/errors"
)

// DefaultTemplate is the body of the verification code email.
const DefaultTemplate = `Hi {{.Email}},

This is your verification code for {{.AppName}}:

{{.Code}}

If you did not request a verification code, you can ignore this email.
`

// TemplateParams is passed as data when executing the email template.
type TemplateParams struct {
	Email   string
	AppName string
	Code    string
}

// SMTPSender delivers verification codes over SMTP with plain auth.
type SMTPSender struct {
	host    string
	port    string
	account string
	auth    smtp.Auth
	appName string
	tmpl    *template.Template
}

func NewSMTPSender(cfg config.Config) (*SMTPSender, error) {
	tmpl, err := template.New("verification").Parse(DefaultTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "NewSMTPSender template")
	}

	return &SMTPSender{
		host:    cfg.GetSmtpHost(),
		port:    cfg.GetSmtpPort(),
		account: cfg.GetSmtpAccount(),
		auth:    smtp.PlainAuth("", cfg.GetSmtpAccount(), cfg.GetSmtpPassword(), cfg.GetSmtpHost()),
		appName: cfg.GetAppName(),
		tmpl:    tmpl,
	}, nil
}

func (s *SMTPSender) SendVerificationCode(email, code string) error {
	var body bytes.Buffer
	err := s.tmpl.Execute(&body, TemplateParams{
		Email:   email,
		AppName: s.appName,
		Code:    code,
	})
	if err != nil {
		return errors.Wrap(err, "SMTPSender template execute")
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s verification code\r\n\r\n%s",
		s.account, email, s.appName, body.String())

	addr := s.host + ":" + s.port
	if err := smtp.SendMail(addr, s.auth, s.account, []string{email}, []byte(msg)); err != nil {
		return errors.Wrapf(apperrors.ErrMailSend, "SMTPSender send: %v", err)
	}
	return nil
}
