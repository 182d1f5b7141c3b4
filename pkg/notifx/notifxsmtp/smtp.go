// Package notifxsmtp delivers email over SMTP with implicit TLS (port 465)
// or mandatory STARTTLS on other ports.
package notifxsmtp

import (
	"context"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/notifx"
	"github.com/wneessen/go-mail"
)

const implicitTLSPort = 465

// Config configures the SMTP relay
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
}

// Dialer is the subset of the go-mail client used here.
type Dialer interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

// SMTPProvider implements notifx.EmailSender over an SMTP relay.
type SMTPProvider struct {
	dialer Dialer
	cfg    Config
}

// NewSMTPProvider builds a go-mail client for cfg.
func NewSMTPProvider(cfg Config) (*SMTPProvider, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Port == implicitTLSPort {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, errx.Wrap(err, "failed to configure SMTP client", errx.TypeInternal).
			WithDetail("host", cfg.Host)
	}
	return NewSMTPProviderWithDialer(client, cfg), nil
}

// NewSMTPProviderWithDialer uses an already configured dialer.
func NewSMTPProviderWithDialer(dialer Dialer, cfg Config) *SMTPProvider {
	return &SMTPProvider{dialer: dialer, cfg: cfg}
}

// SendEmail opens one connection per message. The context deadline bounds
// the whole exchange.
func (p *SMTPProvider) SendEmail(ctx context.Context, msg notifx.EmailMessage, opts ...notifx.Option) error {
	from := msg.From
	if from == "" {
		from = p.cfg.Username
	}

	m, err := p.buildMessage(from, msg, notifx.ApplyOptions(opts))
	if err != nil {
		return notifx.SendFailed("smtp", err)
	}

	if err := p.dialer.DialAndSendWithContext(ctx, m); err != nil {
		return notifx.SendFailed("smtp", err).
			WithDetail("to", msg.To).
			WithDetail("subject", msg.Subject)
	}
	return nil
}

// buildMessage renders a text body with an optional HTML alternative.
func (p *SMTPProvider) buildMessage(from string, msg notifx.EmailMessage, opts notifx.SendOptions) (*mail.Msg, error) {
	m := mail.NewMsg()

	if p.cfg.FromName != "" {
		if err := m.FromFormat(p.cfg.FromName, from); err != nil {
			return nil, err
		}
	} else if err := m.From(from); err != nil {
		return nil, err
	}
	if err := m.To(msg.To...); err != nil {
		return nil, err
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, err
		}
	}
	if opts.Tag != "" {
		m.SetGenHeader(mail.Header("X-Tag"), opts.Tag)
	}

	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()

	m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	if msg.HTMLBody != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	}
	return m, nil
}
