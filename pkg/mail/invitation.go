package mail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// InvitationEmail carries the fields rendered into a company invitation email.
type InvitationEmail struct {
	To          string
	CompanyName string
	InviterName string
	RoleName    string
	Link        string
	Token       string
	ExpiresAt   time.Time
	Resent      bool
}

var invitationTemplate = template.Must(template.New("invitation").Parse(`Hello,

{{if .InviterName}}{{.InviterName}} has invited you{{else}}You have been invited{{end}} to join {{.CompanyName}} on LynkSkill as {{.RoleName}}.

Accept the invitation here:
{{.Link}}

If the link does not open, paste this invitation code on the accept page:
{{.Token}}

This invitation expires on {{.ExpiresAt.UTC.Format "2 January 2006 15:04 MST"}}.

If you did not expect this email, you can ignore it.
`))

// Message renders the invitation into a plain-text email message.
func (e InvitationEmail) Message() (Message, error) {
	to := strings.TrimSpace(e.To)
	if to == "" {
		return Message{}, fmt.Errorf("mail: invitation recipient is required")
	}

	var body bytes.Buffer
	if err := invitationTemplate.Execute(&body, e); err != nil {
		return Message{}, fmt.Errorf("mail: render invitation: %w", err)
	}

	subject := fmt.Sprintf("You're invited to join %s on LynkSkill", e.CompanyName)
	if e.Resent {
		subject = "Reminder: " + subject
	}

	return Message{
		To:      to,
		Subject: subject,
		Body:    body.String(),
	}, nil
}
