package tasks

import (
	"fmt"
	"strings"
	"text/template"
)

type notification struct {
	subject *template.Template
	body    *template.Template
}

var funcs = template.FuncMap{
	"money": func(v float64) string { return formatMoney(v) },
	"join":  strings.Join,
}

func mustParse(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text))
}

var leadTemplate = notification{
	subject: mustParse("lead_subject", `New {{.Source}} lead: {{.Name}}`),
	body: mustParse("lead_body", `A new lead came in from the {{.Source}} page.

Name:  {{.Name}}
Phone: {{.Phone}}
{{- if .Email}}
Email: {{.Email}}
{{- end}}
`),
}

var appointmentTemplate = notification{
	subject: mustParse("appointment_subject", `Viewing request: {{.PropertyAddress}}`),
	body: mustParse("appointment_body", `{{.ClientName}} ({{.ClientPhone}}) asked to view {{.PropertyAddress}}
on {{.PreferredDate}} at {{.PreferredTime}}.
{{- if .Notes}}

Notes: {{.Notes}}
{{- end}}
`),
}

var offerTemplate = notification{
	subject: mustParse("offer_subject", `Offer submitted: {{.PropertyAddress}} at {{money .OfferPrice}}`),
	body: mustParse("offer_body", `An offer was submitted and is ready to present.

Property:   {{.PropertyAddress}}
Price:      {{money .OfferPrice}}
Deposit:    {{money .Deposit}}
Subjects:   {{if .Subjects}}{{join .Subjects ", "}}{{else}}none{{end}}
Expires:    {{.ExpiryDate}}
Possession: {{.PossessionDate}}
`),
}

var appointmentClientSMS = mustParse("appointment_client_sms",
	`Thanks {{.ClientName}}, we received your request to view {{.PropertyAddress}} on {{.PreferredDate}} at {{.PreferredTime}}. An agent will confirm shortly.`)

var otpSMS = mustParse("otp_sms", `Your {{.AppName}} code is {{.Code}}. It expires in {{.Minutes}} minutes.`)

func render(t *template.Template, data interface{}) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", t.Name(), err)
	}
	return b.String(), nil
}

// formatMoney renders whole dollars with thousands separators.
func formatMoney(v float64) string {
	n := int64(v + 0.5)
	s := fmt.Sprintf("%d", n)
	var out strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(r)
	}
	return "$" + out.String()
}
