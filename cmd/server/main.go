package main

import (
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"clinic_flow_app_go/config"
	"clinic_flow_app_go/db"
	"clinic_flow_app_go/handlers"
	"clinic_flow_app_go/models"
	"clinic_flow_app_go/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.TursoDatabaseURL, cfg.TursoAuthToken, cfg.Environment); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&models.Patient{},
		&models.Therapist{},
		&models.Appointment{},
		&models.AppointmentStatusChange{},
		&models.Invoice{},
		&models.TherapistPayment{},
		&models.Expense{},
		&models.Signature{},
	); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Wire up billing, storage and email
	services.SetSessionPrice(cfg.SessionPrice)
	services.InitializeStorage(cfg)
	services.InitializeMailer(cfg)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))

	// Static files: local-mode receipt URLs point under the upload dir
	e.Static("/static", "static")

	api := e.Group("/api")
	{
		// Patients
		api.GET("/patients", handlers.GetPatientsHandler)
		api.GET("/patients/:id", handlers.GetPatientHandler)
		api.POST("/patients", handlers.CreatePatientHandler)

		// Therapists
		api.GET("/therapists", handlers.GetTherapistsHandler)
		api.GET("/therapists/:id", handlers.GetTherapistHandler)
		api.POST("/therapists", handlers.CreateTherapistHandler)

		// Appointments
		api.GET("/appointments", handlers.GetAppointmentsHandler)
		api.GET("/appointments/availability", handlers.CheckAvailabilityHandler)
		api.GET("/appointments/:id", handlers.GetAppointmentHandler)
		api.POST("/appointments", handlers.CreateAppointmentHandler)
		api.PUT("/appointments/:id", handlers.UpdateAppointmentHandler)
		api.DELETE("/appointments/:id", handlers.DeleteAppointmentHandler)

		// Invoices
		api.GET("/invoices", handlers.GetInvoicesHandler)
		api.GET("/invoices/:id", handlers.GetInvoiceHandler)
		api.POST("/invoices", handlers.CreateInvoiceHandler)
		api.PUT("/invoices/:id", handlers.UpdateInvoiceHandler)
		api.DELETE("/invoices/:id", handlers.DeleteInvoiceHandler)
		api.POST("/invoices/:id/payment", handlers.DerivePaymentHandler)

		// Therapist payments
		api.GET("/payments", handlers.GetPaymentsHandler)
		api.GET("/payments/:id", handlers.GetPaymentHandler)
		api.POST("/payments", handlers.CreatePaymentHandler)
		api.PUT("/payments/:id", handlers.UpdatePaymentHandler)
		api.DELETE("/payments/:id", handlers.DeletePaymentHandler)

		// Expenses
		api.GET("/expenses", handlers.GetExpensesHandler)
		api.GET("/expenses/:id", handlers.GetExpenseHandler)
		api.POST("/expenses", handlers.CreateExpenseHandler)
		api.PUT("/expenses/:id", handlers.UpdateExpenseHandler)
		api.DELETE("/expenses/:id", handlers.DeleteExpenseHandler)
		api.POST("/expenses/:id/receipt", handlers.AttachReceiptHandler)
		api.GET("/expenses/:id/receipt", handlers.GetReceiptURLHandler)
		api.GET("/expenses/:id/receipt/file", handlers.DownloadReceiptHandler)

		// Signatures
		api.GET("/signatures", handlers.GetSignaturesHandler)
		api.GET("/signatures/current", handlers.GetCurrentSignatureHandler)
		api.GET("/signatures/:id", handlers.GetSignatureHandler)
		api.POST("/signatures", handlers.CreateSignatureHandler)
		api.PUT("/signatures/:id", handlers.UpdateSignatureHandler)
		api.DELETE("/signatures/:id", handlers.DeleteSignatureHandler)

		// Exports
		api.GET("/exports/expenses", handlers.ExportExpensesHandler)
		api.GET("/exports/invoices", handlers.ExportInvoicesHandler)
	}

	// Start server
	log.Info().Str("port", cfg.ServerPort).Msg("Server starting")
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
