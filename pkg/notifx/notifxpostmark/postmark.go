package notifxpostmark

import (
	"context"
	"fmt"
	"strings"

	"github.com/Abraxas-365/authcore/pkg/notifx"
	"github.com/mrz1836/postmark"
)

// API is the subset of the Postmark client used here.
type API interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// PostmarkProvider implements notifx.EmailSender via the Postmark
// transactional API.
type PostmarkProvider struct {
	client      API
	fromAddress string
}

// NewPostmarkProvider builds a provider from Postmark tokens.
func NewPostmarkProvider(serverToken, accountToken, fromAddress string) *PostmarkProvider {
	return NewPostmarkProviderWithClient(postmark.NewClient(serverToken, accountToken), fromAddress)
}

func NewPostmarkProviderWithClient(client API, fromAddress string) *PostmarkProvider {
	return &PostmarkProvider{client: client, fromAddress: fromAddress}
}

// SendEmail sends a single email. Opens are tracked; links only in HTML.
func (p *PostmarkProvider) SendEmail(ctx context.Context, msg notifx.EmailMessage, opts ...notifx.Option) error {
	so := notifx.ApplyOptions(opts)

	from := msg.From
	if from == "" {
		from = p.fromAddress
	}

	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:       from,
		To:         strings.Join(msg.To, ","),
		ReplyTo:    msg.ReplyTo,
		Subject:    msg.Subject,
		Tag:        so.Tag,
		TextBody:   msg.TextBody,
		HTMLBody:   msg.HTMLBody,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return notifx.SendFailed("postmark", err).WithDetail("to", msg.To)
	}
	if resp.ErrorCode > 0 {
		return notifx.SendFailed("postmark", fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message)).
			WithDetail("to", msg.To)
	}
	return nil
}
