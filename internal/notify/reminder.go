package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"
	"time"

	"avgverzoek/internal/accessrequest/models"
	companymodels "avgverzoek/internal/company/models"
)

// Reminder is one company's digest of open requests close to or past their
// deadline.
type Reminder struct {
	CompanyName   string
	To            string
	ContactPerson string
	Items         []ReminderItem
}

type ReminderItem struct {
	Number        string
	SubjectName   string
	Deadline      time.Time
	DaysRemaining int
	Countdown     string
	Urgency       string
}

// NewReminder builds the digest for company from its urgent open requests.
func NewReminder(company *companymodels.Company, urgent []*models.AccessRequest, now time.Time) Reminder {
	r := Reminder{
		CompanyName:   company.Name,
		To:            company.Email,
		ContactPerson: company.ContactPerson,
		Items:         make([]ReminderItem, 0, len(urgent)),
	}
	for _, ar := range urgent {
		days := ar.DaysRemaining(now)
		r.Items = append(r.Items, ReminderItem{
			Number:        ar.Number.String(),
			SubjectName:   ar.SubjectName,
			Deadline:      ar.Deadline,
			DaysRemaining: days,
			Countdown:     models.CountdownLabel(days),
			Urgency:       string(models.UrgencyFor(days)),
		})
	}
	return r
}

func (r Reminder) Subject() string {
	if len(r.Items) == 1 {
		return "1 inzageverzoek vraagt om aandacht"
	}
	return fmt.Sprintf("%d inzageverzoeken vragen om aandacht", len(r.Items))
}

func (r Reminder) greeting() string {
	if r.ContactPerson != "" {
		return r.ContactPerson
	}
	return r.CompanyName
}

var reminderText = template.Must(template.New("reminder_text").Parse(`Beste {{.Greeting}},

De volgende inzageverzoeken naderen of passeren de wettelijke termijn van 30 dagen:
{{range .Items}}
- {{.Number}} ({{.SubjectName}}): deadline {{.Deadline.Format "02-01-2006"}}, {{.Countdown}}
{{- end}}

Met vriendelijke groet,
AVG Verzoek
`))

var reminderHTML = htmltemplate.Must(htmltemplate.New("reminder_html").Parse(`<p>Beste {{.Greeting}},</p>
<p>De volgende inzageverzoeken naderen of passeren de wettelijke termijn van 30 dagen:</p>
<ul>
{{- range .Items}}
<li><strong>{{.Number}}</strong> ({{.SubjectName}}): deadline {{.Deadline.Format "02-01-2006"}}, {{.Countdown}}</li>
{{- end}}
</ul>
<p>Met vriendelijke groet,<br>AVG Verzoek</p>
`))

type reminderView struct {
	Greeting string
	Items    []ReminderItem
}

// Render returns the plain-text and HTML bodies.
func (r Reminder) Render() (string, string, error) {
	view := reminderView{Greeting: r.greeting(), Items: r.Items}

	var text, html bytes.Buffer
	if err := reminderText.Execute(&text, view); err != nil {
		return "", "", fmt.Errorf("render reminder text: %w", err)
	}
	if err := reminderHTML.Execute(&html, view); err != nil {
		return "", "", fmt.Errorf("render reminder html: %w", err)
	}
	return text.String(), html.String(), nil
}
