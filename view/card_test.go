package view

import (
	"strings"
	"testing"
	"time"

	"garage/models"
)

func TestRenderApprovedCard(t *testing.T) {
	r := NewCardRenderer()
	html := r.Render(models.Appointment{
		ID:            "42",
		UserName:      "Ann Axle",
		UserEmail:     "ann@example.com",
		VehicleYear:   "2003",
		VehicleMake:   "Dodge",
		VehicleModel:  "Ram 1500",
		LicensePlate:  "ABC1234",
		PreferredDate: "ASAP",
		Status:        models.StatusApproved,
		DropoffDate:   "2026-02-21",
		DropoffTime:   "9:00 AM",
		CreatedAt:     time.Date(2026, 2, 19, 14, 30, 0, 0, time.UTC),
	})

	for _, want := range []string{
		`id="appt-42"`,
		"Ann Axle",
		"2003 Dodge Ram 1500 (ABC1234)",
		"Drop-off: Feb 21, 2026 at 9:00 AM",
		"status-approved",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered card missing %q:\n%s", want, html)
		}
	}
}

func TestRenderDefaultsAndEscaping(t *testing.T) {
	r := NewCardRenderer()
	html := r.Render(models.Appointment{
		ID:       "7",
		Message:  `<script>alert("x")</script>`,
		Status:   "",
		UserName: "",
	})

	if !strings.Contains(html, "Unknown") {
		t.Error("missing name fallback")
	}
	if !strings.Contains(html, "status-pending") {
		t.Error("absent status must render as pending")
	}
	if strings.Contains(html, "<script>") {
		t.Error("message was not escaped")
	}
}
