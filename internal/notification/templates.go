package notification

import (
	"bytes"
	"html/template"
	"time"
)

// EscalationEmail is the data rendered into the escalation notice.
type EscalationEmail struct {
	TicketNumber  string
	Priority      string
	Complaint     string
	Channel       string
	Description   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	DivisionName  string
	DueAt         time.Time
	RecipientName string
}

// DoneByUICEmail is the data rendered into the hand-back notice for the responsible agent.
type DoneByUICEmail struct {
	TicketNumber  string
	DivisionName  string
	Solution      string
	RecipientName string
	DueAt         time.Time
}

var (
	escalationTemplate = template.Must(template.New("escalation").Parse(`<!DOCTYPE html>
<html><body>
<p>Dear {{.RecipientName}},</p>
<p>Ticket <strong>{{.TicketNumber}}</strong> has been escalated to {{.DivisionName}}.</p>
<table>
<tr><td>Priority</td><td>{{.Priority}}</td></tr>
<tr><td>Complaint</td><td>{{.Complaint}}</td></tr>
<tr><td>Channel</td><td>{{.Channel}}</td></tr>
<tr><td>Customer</td><td>{{.CustomerName}}</td></tr>
<tr><td>Email</td><td>{{.CustomerEmail}}</td></tr>
<tr><td>Phone</td><td>{{.CustomerPhone}}</td></tr>
<tr><td>Due</td><td>{{.DueAt.Format "02 Jan 2006 15:04 MST"}}</td></tr>
</table>
<p>{{.Description}}</p>
</body></html>`))

	doneByUICTemplate = template.Must(template.New("done_by_uic").Parse(`<!DOCTYPE html>
<html><body>
<p>Dear {{.RecipientName}},</p>
<p>{{.DivisionName}} has finished handling ticket <strong>{{.TicketNumber}}</strong> and returned it for closure.</p>
{{if .Solution}}<p>Solution: {{.Solution}}</p>{{end}}
<p>Due: {{.DueAt.Format "02 Jan 2006 15:04 MST"}}</p>
</body></html>`))
)

// RenderEscalation renders the escalation email body.
func RenderEscalation(data EscalationEmail) (string, error) {
	var buf bytes.Buffer
	if err := escalationTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderDoneByUIC renders the hand-back email body.
func RenderDoneByUIC(data DoneByUICEmail) (string, error) {
	var buf bytes.Buffer
	if err := doneByUICTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
