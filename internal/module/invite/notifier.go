package invite

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/flowspace/server/internal/module/access"
	"github.com/flowspace/server/internal/shared/email"
)

const invitationSubject = "You've been invited to collaborate on FlowSpace"

// invitationEmail is the data rendered into the invitation template.
type invitationEmail struct {
	BoardTitle  string
	InviterName string
	Role        string
	CanEdit     bool
	Link        string
	ExpiresIn   string
}

var invitationTemplate = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #6366f1;">You've been invited to FlowSpace!</h1>
    <p>{{if .InviterName}}{{.InviterName}} invited you{{else}}You've been invited{{end}} to collaborate on <strong>{{.BoardTitle}}</strong>.</p>
    <p>As {{if .CanEdit}}an <strong>editor</strong>, you'll be able to view and edit cards{{else}}a <strong>{{.Role}}</strong>, you'll be able to view cards{{end}}.</p>
    <p><a href="{{.Link}}" style="display: inline-block; padding: 12px 24px; background: #6366f1; color: white; text-decoration: none; border-radius: 8px;">Accept Invitation</a></p>
    <p>Or copy this link: <a href="{{.Link}}">{{.Link}}</a></p>
    <p style="color: #888; font-size: 12px;">This invitation will expire in {{.ExpiresIn}}.</p>
    <p style="color: #888; font-size: 12px; margin-top: 40px;">FlowSpace - Collaborate visually, write freely.</p>
  </div>
</body>
</html>
`))

func renderInvitation(data invitationEmail) (string, error) {
	var buf bytes.Buffer
	if err := invitationTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render invitation: %w", err)
	}
	return buf.String(), nil
}

// notify renders the invitation and hands it to sender.
func notify(ctx context.Context, sender email.Sender, to string, role access.Role, boardTitle, inviterName, link string, validFor time.Duration) error {
	html, err := renderInvitation(invitationEmail{
		BoardTitle:  boardTitle,
		InviterName: inviterName,
		Role:        role.String(),
		CanEdit:     role.AtLeast(access.RoleEditor),
		Link:        link,
		ExpiresIn:   humanDuration(validFor),
	})
	if err != nil {
		return err
	}
	return sender.Send(ctx, email.Message{To: to, Subject: invitationSubject, HTML: html})
}

func humanDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	switch {
	case days == 1:
		return "1 day"
	case days > 1:
		return fmt.Sprintf("%d days", days)
	case d >= time.Hour:
		return fmt.Sprintf("%d hours", int(d.Hours()))
	default:
		return d.String()
	}
}
