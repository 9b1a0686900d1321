package notify

import (
	"fmt"
	"html"

	"garage/models"
)

// Config carries the shop identity used in customer-facing copy and the
// single capability flag gating SMS enqueue.
type Config struct {
	ShopName    string
	ShopPhone   string
	ShopAddress string
	SMSEnabled  bool
}

// Intents builds the human-readable notification bodies for both channels.
type Intents struct {
	cfg Config
}

func NewIntents(cfg Config) *Intents {
	return &Intents{cfg: cfg}
}

// ApprovalEmail builds the mail queue message for an approved appointment.
func (n *Intents) ApprovalEmail(appt models.Appointment) models.MailMessage {
	dropoff := ""
	if appt.DropoffDate != "" {
		dropoff = fmt.Sprintf("<p><strong>Drop-off Date:</strong> %s", html.EscapeString(appt.DropoffDate))
		if appt.DropoffTime != "" {
			dropoff += fmt.Sprintf(" at <strong>%s</strong>", html.EscapeString(appt.DropoffTime))
		}
		dropoff += "</p>"
	} else {
		dropoff = fmt.Sprintf("<p><strong>Date:</strong> %s</p>", html.EscapeString(preferredOrASAP(appt)))
	}

	body := fmt.Sprintf(
		"<h2>%s</h2>"+
			"<p>Hi %s,</p>"+
			"<p>Great news! Your appointment for your <strong>%s %s %s</strong> has been <strong>approved</strong>.</p>"+
			"%s"+
			"<p>If you need to reschedule or have questions, give us a call at <strong>%s</strong>.</p>"+
			"<hr>"+
			"<p>%s<br>%s<br>%s</p>",
		html.EscapeString(n.cfg.ShopName),
		html.EscapeString(appt.UserName),
		html.EscapeString(appt.VehicleYear), html.EscapeString(appt.VehicleMake), html.EscapeString(appt.VehicleModel),
		dropoff,
		html.EscapeString(n.cfg.ShopPhone),
		html.EscapeString(n.cfg.ShopName), html.EscapeString(n.cfg.ShopAddress), html.EscapeString(n.cfg.ShopPhone),
	)

	return models.MailMessage{
		Subject: "Appointment Approved — " + n.cfg.ShopName,
		HTML:    body,
	}
}

// DenialEmail builds the mail queue message for a denied appointment.
func (n *Intents) DenialEmail(appt models.Appointment) models.MailMessage {
	body := fmt.Sprintf(
		"<h2>%s</h2>"+
			"<p>Hi %s,</p>"+
			"<p>Unfortunately, we are unable to accommodate your requested appointment for your <strong>%s %s %s</strong> at this time.</p>"+
			"<p>Please give us a call at <strong>%s</strong> and we will find a time that works.</p>"+
			"<hr>"+
			"<p>%s<br>%s<br>%s</p>",
		html.EscapeString(n.cfg.ShopName),
		html.EscapeString(appt.UserName),
		html.EscapeString(appt.VehicleYear), html.EscapeString(appt.VehicleMake), html.EscapeString(appt.VehicleModel),
		html.EscapeString(n.cfg.ShopPhone),
		html.EscapeString(n.cfg.ShopName), html.EscapeString(n.cfg.ShopAddress), html.EscapeString(n.cfg.ShopPhone),
	)

	return models.MailMessage{
		Subject: "Appointment Update — " + n.cfg.ShopName,
		HTML:    body,
	}
}

// ApprovalSMS builds the text-message body for an approval. The body is
// always computed so the operator can copy it even while SMS dispatch is
// switched off.
func (n *Intents) ApprovalSMS(appt models.Appointment) string {
	vehicle := vehicleLine(appt)
	dropoff := ""
	if appt.DropoffDate != "" {
		dropoff = " Please drop off your vehicle on " + appt.DropoffDate
		if appt.DropoffTime != "" {
			dropoff += " at " + appt.DropoffTime
		}
		dropoff += "."
	} else {
		dropoff = " Date: " + preferredOrASAP(appt) + "."
	}
	return fmt.Sprintf("%s: Great news! Your appointment for your %s has been approved.%s Questions? Call us at %s.",
		n.cfg.ShopName, vehicle, dropoff, n.cfg.ShopPhone)
}

// DenialSMS builds the text-message body for a denial.
func (n *Intents) DenialSMS(appt models.Appointment) string {
	return fmt.Sprintf("%s: We were unable to accommodate your requested appointment for your %s. Please call us at %s to reschedule.",
		n.cfg.ShopName, vehicleLine(appt), n.cfg.ShopPhone)
}

func preferredOrASAP(appt models.Appointment) string {
	if appt.PreferredDate == "" {
		return models.PreferredDateASAP
	}
	return appt.PreferredDate
}

func vehicleLine(appt models.Appointment) string {
	s := ""
	for _, part := range []string{appt.VehicleYear, appt.VehicleMake, appt.VehicleModel} {
		if part == "" {
			continue
		}
		if s != "" {
			s += " "
		}
		s += part
	}
	return s
}
