// Package templates renders the HTML emails and LINE cards sent by the API.
package templates

import (
	"bytes"
	"html/template"
	"time"

	"anoa.com/eventhub/pkg/dispatch"
)

var emails = template.Must(template.New("emails").Parse(`
{{define "invitation"}}<div style="font-family:sans-serif">
<h2>You're invited to {{.EventTitle}}</h2>
<p>{{.InviterName}} invited you to join <strong>{{.EventTitle}}</strong>.</p>
<p>Registration closes {{.Deadline}}.</p>
<p><a href="{{.Link}}">View the event</a></p>
</div>{{end}}
{{define "reset"}}<div style="font-family:sans-serif">
<h2>Reset your password</h2>
<p>Use the link below within 30 minutes to choose a new password.</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>If you did not request this, ignore this email.</p>
</div>{{end}}
{{define "review"}}<div style="font-family:sans-serif">
<h2>Your registration for {{.EventTitle}}</h2>
<p>Status: <strong>{{.Status}}</strong></p>
{{if .Note}}<p>{{.Note}}</p>{{end}}
<p><a href="{{.Link}}">Open event</a></p>
</div>{{end}}
`))

const deadlineLayout = "2006-01-02 15:04 MST"

type InvitationData struct {
	EventTitle  string
	InviterName string
	Deadline    time.Time
	Link        string
}

func InvitationEmail(to string, data InvitationData) (dispatch.Email, error) {
	html, err := render("invitation", map[string]string{
		"EventTitle":  data.EventTitle,
		"InviterName": data.InviterName,
		"Deadline":    data.Deadline.Format(deadlineLayout),
		"Link":        data.Link,
	})
	if err != nil {
		return dispatch.Email{}, err
	}
	return dispatch.Email{To: to, Subject: "Invitation: " + data.EventTitle, HTML: html}, nil
}

func ResetPasswordEmail(to, link string) (dispatch.Email, error) {
	html, err := render("reset", map[string]string{"Link": link})
	if err != nil {
		return dispatch.Email{}, err
	}
	return dispatch.Email{To: to, Subject: "Reset your Event Hub password", HTML: html}, nil
}

func ReviewEmail(to, eventTitle, status, note, link string) (dispatch.Email, error) {
	html, err := render("review", map[string]string{
		"EventTitle": eventTitle,
		"Status":     status,
		"Note":       note,
		"Link":       link,
	})
	if err != nil {
		return dispatch.Email{}, err
	}
	return dispatch.Email{To: to, Subject: "Registration update: " + eventTitle, HTML: html}, nil
}

// EventCard builds the LINE push shown for invitations and reminders.
func EventCard(to, title string, coverURL *string, location string, startAt, deadline time.Time, link string) dispatch.LineMessage {
	msg := dispatch.LineMessage{
		To:    to,
		Title: title,
		Fields: []dispatch.LineField{
			{Label: "Date", Value: startAt.Format("2006-01-02 15:04")},
			{Label: "Deadline", Value: deadline.Format("2006-01-02 15:04")},
		},
		Link: link,
	}
	if location != "" {
		msg.Fields = append(msg.Fields, dispatch.LineField{Label: "Location", Value: location})
	}
	if coverURL != nil {
		msg.CoverURL = *coverURL
	}
	return msg
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emails.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
