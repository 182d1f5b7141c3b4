package auth

import "github.com/Abraxas-365/authcore/pkg/notifx"

// MagicLinkTemplate is the notifx template name for login links
const MagicLinkTemplate = "magic_link"

// MagicLinkEmailData feeds the magic link template
type MagicLinkEmailData struct {
	AppName          string
	Username         string
	Link             string
	ExpiresInMinutes int
}

var magicLinkEmail = notifx.EmailTemplate{
	Subject: "Your Magic Link - {{.AppName}}",
	Text: `Hello {{if .Username}}{{.Username}}{{else}}User{{end}},

You requested a magic link to sign in to your account.

Click this link to continue: {{.Link}}

Important: This link will expire in {{.ExpiresInMinutes}} minutes for security reasons.

If you didn't request this link, please ignore this email.
`,
	HTML: `<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #f4f4f4; padding: 20px; text-align: center; }
    .content { padding: 20px; }
    .footer { font-size: 12px; color: #666; margin-top: 30px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header"><h2>{{.AppName}}</h2></div>
    <div class="content">
      <p>Hello {{if .Username}}{{.Username}}{{else}}User{{end}},</p>
      <p>You requested a magic link to sign in to your account. Click the link below to continue:</p>
      <p><a href="{{.Link}}">{{.Link}}</a></p>
      <p><strong>Important:</strong> This link will expire in {{.ExpiresInMinutes}} minutes for security reasons.</p>
      <p>If you didn't request this link, please ignore this email.</p>
    </div>
    <div class="footer"><p>This is an automated message. Please do not reply to this email.</p></div>
  </div>
</body>
</html>
`,
}

// RegisterEmailTemplates adds the auth email templates to client.
func RegisterEmailTemplates(client *notifx.Client) error {
	return client.RegisterTemplate(MagicLinkTemplate, magicLinkEmail)
}
