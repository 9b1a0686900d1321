package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"garage/admin"
	"garage/appointments"
	"garage/auth"
	"garage/db"
	"garage/live"
	"garage/notify"
	"garage/ratelim"
	"garage/routes"
	"garage/smsworker"
	"garage/view"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// XSS, content sniffing, framing
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		// HSTS (must be on HTTPS)
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		// Referrer and permissions
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		// Prevent caching
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		duration := time.Since(start)
		log.Printf("%s %s from %s – %v", r.Method, r.RequestURI, r.RemoteAddr, duration)
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func main() {
	// load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	// read port
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	} else if port[0] != ':' {
		port = ":" + port
	}

	smsEnabled := envBool("SMS_ENABLED")

	// outbound notifications
	dispatcher := notify.NewDispatcher(notify.Config{
		ShopName:    envOr("SHOP_NAME", "Main Street Auto"),
		ShopPhone:   envOr("SHOP_PHONE", ""),
		ShopAddress: envOr("SHOP_ADDRESS", ""),
		SMSEnabled:  smsEnabled,
	}, &notify.MongoQueue{
		Mail: db.MailCollection,
		Sms:  db.SmsCollection,
	})

	// appointment state
	manager := appointments.NewManager(
		appointments.NewMongoStore(db.AppointmentsCollection),
		dispatcher,
	)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := manager.Load(ctx); err != nil {
			log.Printf("initial appointment load failed, will retry on first request: %v", err)
		}
		cancel()
	}

	renderer := view.NewCardRenderer()
	apptHandler := appointments.NewHandler(manager, dispatcher.Intents(), renderer)
	gate := admin.NewGate(db.AdminsCollection)
	authHandler := &auth.Handler{
		Dispatcher:   dispatcher,
		ResetBaseURL: envOr("SITE_URL", "http://localhost:8080"),
	}

	// initialize rate limiter
	rateLimiter := ratelim.NewRateLimiter()

	// live admin dashboard updates
	hub := live.NewHub()
	go hub.Run()
	forwardCtx, stopForward := context.WithCancel(context.Background())
	go live.ForwardEvents(forwardCtx, hub, manager.Subscribe(), renderer)

	// sms queue worker
	worker := smsworker.NewWorker(
		smsworker.Config{Enabled: smsEnabled},
		smsworker.NewMongoStore(db.SmsCollection),
		smsworker.NewHTTPGateway(
			envOr("SMS_GATEWAY_URL", "https://api.twilio.com/2010-04-01"),
			os.Getenv("TWILIO_ACCOUNT_SID"),
			os.Getenv("TWILIO_AUTH_TOKEN"),
			os.Getenv("TWILIO_PHONE_NUMBER"),
		),
	)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	go worker.Run(workerCtx)

	// log notification outcomes
	go func() {
		for ev := range dispatcher.Events() {
			if ev.Err != nil {
				log.Printf("notify: %s %s to %s failed: %v", ev.Channel, ev.Action, ev.To, ev.Err)
			}
		}
	}()

	router := httprouter.New()
	router.GET("/health", Index)
	routes.AddAuthRoutes(router, authHandler, rateLimiter)
	routes.AddAppointmentRoutes(router, apptHandler, rateLimiter)
	routes.AddProfileRoutes(router)
	routes.AddAdminRoutes(router, apptHandler, gate, hub)

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	// create HTTP server
	server := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Println("🛑 Shutting down live hub and sms worker...")
		stopForward()
		hub.Stop()
		stopWorker()
	})

	// start server
	go func() {
		log.Printf("🚀 Server listening on %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	// wait for interrupt or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	// initiate graceful shutdown
	log.Println("🛑 Shutdown signal received; shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Graceful shutdown failed: %v", err)
	}

	log.Println("✅ Server stopped cleanly")
}
