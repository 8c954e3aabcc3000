package config

type MailConfig interface {
	GetSmtpHost() string
	GetSmtpPort() string
	GetSmtpAccount() string
	GetSmtpPassword() string
}

type Mail struct{}

var _ MailConfig = Mail{}

func (Mail) GetSmtpHost() string {
	return GetEnv("SMTP_HOST", "smtp.gmail.com")
}

func (Mail) GetSmtpPort() string {
	return GetEnv("SMTP_PORT", "587")
}

func (Mail) GetSmtpAccount() string {
	return GetEnv("SMTP_ACCOUNT", "")
}

func (Mail) GetSmtpPassword() string {
	return GetEnv("SMTP_PASSWORD", "")
}
