package notifx

import "strings"

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	From     string   `json:"from"`
	To       []string `json:"to"`
	ReplyTo  string   `json:"reply_to,omitempty"`
	Subject  string   `json:"subject"`
	TextBody string   `json:"text_body,omitempty"`
	HTMLBody string   `json:"html_body,omitempty"`
}

// Validate checks the fields every provider needs.
func (m EmailMessage) Validate() error {
	if len(m.To) == 0 {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "no recipients")
	}
	for _, to := range m.To {
		if !strings.Contains(to, "@") {
			return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "invalid recipient")
		}
	}
	if m.Subject == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty subject")
	}
	if m.TextBody == "" && m.HTMLBody == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty body")
	}
	return nil
}
