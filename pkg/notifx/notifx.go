// Package notifx sends transactional email through a pluggable provider.
package notifx

import (
	"context"
)

// EmailSender sends a single email.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage, opts ...Option) error
}

// Client is the main entry point for sending notifications.
type Client struct {
	provider    EmailSender
	templates   *TemplateRegistry
	defaultFrom string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDefaultFrom sets the sender used when a message has none.
func WithDefaultFrom(from string) ClientOption {
	return func(c *Client) {
		c.defaultFrom = from
	}
}

// NewClient creates a new notification client.
func NewClient(provider EmailSender, opts ...ClientOption) *Client {
	c := &Client{
		provider:  provider,
		templates: NewTemplateRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendEmail validates msg and sends it through the configured provider.
func (c *Client) SendEmail(ctx context.Context, msg EmailMessage, opts ...Option) error {
	if msg.From == "" {
		msg.From = c.defaultFrom
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return c.provider.SendEmail(ctx, msg, opts...)
}

// RegisterTemplate parses and stores a named template for later use.
func (c *Client) RegisterTemplate(name string, tmpl EmailTemplate) error {
	return c.templates.Register(name, tmpl)
}

// SendTemplatedEmail renders a template into msg and sends it.
func (c *Client) SendTemplatedEmail(ctx context.Context, templateName string, data any, msg EmailMessage, opts ...Option) error {
	rendered, err := c.templates.Render(templateName, data)
	if err != nil {
		return err
	}

	msg.Subject = rendered.Subject
	msg.TextBody = rendered.TextBody
	msg.HTMLBody = rendered.HTMLBody
	return c.SendEmail(ctx, msg, opts...)
}
