package routes

import (
	"garage/admin"
	"garage/appointments"
	"garage/auth"
	"garage/live"
	"garage/middleware"
	"garage/profile"
	"garage/ratelim"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router, h *auth.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(h.Register))
	router.POST("/api/auth/login", rl.Limit(h.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(h.Logout))
	// No Authenticate wrapper: callers arrive with an expired access token
	// and prove themselves with the refresh token instead.
	router.POST("/api/auth/token/refresh", rl.Limit(h.RefreshToken))
	router.POST("/api/auth/password/forgot", rl.Limit(h.RequestPasswordReset))
	router.POST("/api/auth/password/reset", rl.Limit(h.ConfirmPasswordReset))
}

func AddAppointmentRoutes(router *httprouter.Router, h *appointments.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/appointments", rl.Limit(middleware.Authenticate(h.Submit)))
	// Guest submissions accept anonymous traffic but attribute the record
	// when a valid token happens to be present.
	router.POST("/api/appointments/guest", rl.Limit(middleware.OptionalAuth(h.SubmitGuest)))
}

func AddProfileRoutes(router *httprouter.Router) {
	router.GET("/api/profile", middleware.Authenticate(profile.GetProfile))
	router.PUT("/api/profile", middleware.Authenticate(profile.UpdateProfile))
	router.GET("/api/profile/prefill", middleware.Authenticate(profile.GetPrefill))
	router.GET("/api/profile/vehicles", middleware.Authenticate(profile.GetVehicles))
	router.POST("/api/profile/vehicles", middleware.Authenticate(profile.AddVehicle))
	router.DELETE("/api/profile/vehicles/:vehicleid", middleware.Authenticate(profile.DeleteVehicle))
	router.GET("/api/profile/appointments", middleware.Authenticate(profile.GetMyAppointments))
}

func AddAdminRoutes(router *httprouter.Router, h *appointments.Handler, gate *admin.Gate, hub *live.Hub) {
	guard := func(next httprouter.Handle) httprouter.Handle {
		return middleware.Authenticate(admin.Require(gate, next))
	}

	router.GET("/api/admin/appointments", guard(h.List))
	router.GET("/api/admin/stats", guard(h.GetStats))
	router.POST("/api/admin/appointments", guard(h.Create))
	router.PUT("/api/admin/appointments/:id/approve", guard(h.Approve))
	router.PUT("/api/admin/appointments/:id/deny", guard(h.Deny))
	router.PUT("/api/admin/appointments/:id", guard(h.Edit))
	router.DELETE("/api/admin/appointments/:id", guard(h.Delete))
	router.GET("/api/admin/appointments/:id/card", guard(h.Card))

	router.GET("/api/admin/customers", guard(admin.GetCustomers))
	router.DELETE("/api/admin/customers/:id", guard(admin.DeleteCustomer))

	// Token rides the query string; the handler does its own auth checks.
	router.GET("/api/admin/live", live.ServeWS(hub, gate))
}
