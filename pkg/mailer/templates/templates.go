package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

// TemplateWelcome greets a freshly registered user.
const TemplateWelcome = "welcome"

var welcomeHTML = template.Must(template.New(TemplateWelcome).Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #222;">
    <h2>Welcome to {{.AppName}}, {{.Name}}!</h2>
    <p>Your account <strong>{{.Email}}</strong> is ready.</p>
    <p>You are on the <strong>{{.Role}}</strong> tier. Premium members can read
    premium analysis and publish their own posts in the community blog.</p>
    <p>Good trading,<br/>The {{.AppName}} team</p>
  </body>
</html>`))

// Render renders the named template and returns subject, text and HTML bodies.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case TemplateWelcome:
		var buf bytes.Buffer
		if err = welcomeHTML.Execute(&buf, data); err != nil {
			return "", "", "", err
		}
		subject = fmt.Sprintf("Welcome to %v", data["AppName"])
		text = fmt.Sprintf("Welcome to %v, %v! Your account %v is ready.",
			data["AppName"], data["Name"], data["Email"])
		return subject, text, buf.String(), nil
	default:
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
}
