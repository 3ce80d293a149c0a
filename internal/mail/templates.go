package mail

import (
	"bytes"
	"html/template"
)

var (
	confirmTmpl = template.Must(template.New("confirm").Parse(`<p>Hello {{.Name}},</p>
<p>please confirm your eLCA account by opening the following link:</p>
<p><a href="{{.URL}}">{{.URL}}</a></p>`))

	resetTmpl = template.Must(template.New("reset").Parse(`<p>Hello {{.Name}},</p>
<p>a new password was requested for your eLCA account. Set it here:</p>
<p><a href="{{.URL}}">{{.URL}}</a></p>
<p>If you did not request this, ignore this message.</p>`))

	inviteTmpl = template.Must(template.New("invite").Parse(`<p>Hello,</p>
<p>{{.Name}} shared the eLCA project <strong>{{.Project}}</strong> with you.</p>
<p><a href="{{.URL}}">{{.URL}}</a></p>`))
)

func execute(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

func Confirmation(to, name, url string) Message {
	return Message{
		To:      []string{to},
		Subject: "Confirm your eLCA account",
		HTML:    execute(confirmTmpl, map[string]string{"Name": name, "URL": url}),
	}
}

func PasswordReset(to, name, url string) Message {
	return Message{
		To:      []string{to},
		Subject: "Reset your eLCA password",
		HTML:    execute(resetTmpl, map[string]string{"Name": name, "URL": url}),
	}
}

func ProjectInvitation(to, inviter, project, url string) Message {
	return Message{
		To:      []string{to},
		Subject: "eLCA project shared with you: " + project,
		HTML:    execute(inviteTmpl, map[string]string{"Name": inviter, "Project": project, "URL": url}),
	}
}
