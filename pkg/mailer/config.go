package mailer

// Config holds mailer configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	From            string `env:"MAIL_FROM,required"`
	ReplyTo         string `env:"MAIL_REPLY_TO"`
	FallbackSubject string `env:"MAIL_FALLBACK_SUBJECT" envDefault:"Notification"`
}
