// Package view renders appointment records as HTML fragments for the
// admin dashboard. Rendering is pure: record in, markup out.
package view

import (
	"html/template"
	"log"
	"strings"

	"garage/models"
	"garage/utils"
)

var cardTmpl = template.Must(template.New("card").Parse(`<div class="admin-appt-card" id="appt-{{.ID}}">
  <div class="appt-details">
    <div class="appt-customer">{{.Name}}</div>
    {{- if .Email}}
    <div class="appt-date">{{.Email}}</div>
    {{- end}}
    {{- if .Phone}}
    <div class="appt-date">{{.Phone}}</div>
    {{- end}}
    {{- if .Vehicle}}
    <div class="appt-vehicle">{{.Vehicle}}</div>
    {{- end}}
    <div class="appt-date">Preferred Date: {{.PreferredDate}}</div>
    {{- if .Dropoff}}
    <div class="appt-dropoff">{{.Dropoff}}</div>
    {{- end}}
    {{- if .Message}}
    <div class="appt-message">{{.Message}}</div>
    {{- end}}
    <div class="appt-date">Submitted: {{.Submitted}}</div>
    <div><span class="appointment-status status-{{.Status}}">{{.Status}}</span></div>
  </div>
</div>
`))

type cardData struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	Vehicle       string
	PreferredDate string
	Dropoff       string
	Message       string
	Submitted     string
	Status        models.Status
}

// CardRenderer is the default markup renderer.
type CardRenderer struct{}

func NewCardRenderer() *CardRenderer {
	return &CardRenderer{}
}

func (cr *CardRenderer) Render(appt models.Appointment) string {
	status := appt.Status.Normalize()

	name := appt.UserName
	if name == "" {
		name = "Unknown"
	}
	preferred := appt.PreferredDate
	if preferred == "" {
		preferred = "N/A"
	}

	dropoff := ""
	if status == models.StatusApproved && (appt.DropoffDate != "" || appt.DropoffTime != "") {
		date := "N/A"
		if appt.DropoffDate != "" {
			date = utils.FormatDisplayDate(appt.DropoffDate)
		}
		dropoff = "Drop-off: " + date
		if appt.DropoffTime != "" {
			dropoff += " at " + appt.DropoffTime
		}
	}

	var b strings.Builder
	err := cardTmpl.Execute(&b, cardData{
		ID:            appt.ID,
		Name:          name,
		Email:         appt.UserEmail,
		Phone:         appt.UserPhone,
		Vehicle:       appt.Vehicle(),
		PreferredDate: preferred,
		Dropoff:       dropoff,
		Message:       appt.Message,
		Submitted:     utils.FormatTimestamp(appt.CreatedAt),
		Status:        status,
	})
	if err != nil {
		log.Println("card render failed:", err)
		return ""
	}
	return b.String()
}
