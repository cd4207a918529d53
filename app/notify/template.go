package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	TemplateConfirmation = "confirmation"
	TemplateRecovery     = "recovery"
)

// TemplateData is passed as data when executing a message template.
type TemplateData struct {
	Link        string
	Subject     string
	Title       string
	CompanyName string
	CompanyLogo string
	FirstName   string
	LastName    string
	Email       string
}

const confirmationTemplate = `<html>
<body>
{{if .CompanyLogo}}<img src="{{.CompanyLogo}}" alt="{{.CompanyName}}"/>{{end}}
<h2>{{.Title}}</h2>
<p>Hi{{if .FirstName}} {{.FirstName}}{{end}},</p>
<p>Please click on the link below to activate your account:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>Regards,<br/>{{.CompanyName}}</p>
</body>
</html>
`

const recoveryTemplate = `<html>
<body>
{{if .CompanyLogo}}<img src="{{.CompanyLogo}}" alt="{{.CompanyName}}"/>{{end}}
<h2>{{.Title}}</h2>
<p>Hi{{if .FirstName}} {{.FirstName}}{{end}},</p>
<p>Please click on the link below to enter a new password:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If you did not request a password reset, you can ignore this email.</p>
<p>Regards,<br/>{{.CompanyName}}</p>
</body>
</html>
`

var templates = map[string]*template.Template{
	TemplateConfirmation: template.Must(template.New(TemplateConfirmation).Parse(confirmationTemplate)),
	TemplateRecovery:     template.Must(template.New(TemplateRecovery).Parse(recoveryTemplate)),
}

// Render executes the named template and returns the HTML body.
func Render(ref string, data TemplateData) (string, error) {
	tpl, ok := templates[ref]
	if !ok {
		return "", fmt.Errorf("unknown template %q", ref)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
