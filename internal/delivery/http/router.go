package http

import (
	"net/http"

	"clinic-scheduling/internal/delivery/http/handler"
	"clinic-scheduling/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router                    *mux.Router
	healthHandler             *handler.HealthHandler
	authHandler               *handler.AuthHandler
	patientHandler            *handler.PatientHandler
	doctorHandler             *handler.DoctorHandler
	appointmentRequestHandler *handler.AppointmentRequestHandler
	appointmentHandler        *handler.AppointmentHandler
	auditLogHandler           *handler.AuditLogHandler
	authMiddleware            *middleware.AuthMiddleware
	corsMiddleware            *middleware.CORSMiddleware
	loggingMiddleware         *middleware.LoggingMiddleware
}

func NewRouter(
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	patientHandler *handler.PatientHandler,
	doctorHandler *handler.DoctorHandler,
	appointmentRequestHandler *handler.AppointmentRequestHandler,
	appointmentHandler *handler.AppointmentHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	loggingMiddleware *middleware.LoggingMiddleware,
) *Router {
	return &Router{
		router:                    mux.NewRouter(),
		healthHandler:             healthHandler,
		authHandler:               authHandler,
		patientHandler:            patientHandler,
		doctorHandler:             doctorHandler,
		appointmentRequestHandler: appointmentRequestHandler,
		appointmentHandler:        appointmentHandler,
		auditLogHandler:           auditLogHandler,
		authMiddleware:            authMiddleware,
		corsMiddleware:            corsMiddleware,
		loggingMiddleware:         loggingMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthHandler.Live).Methods(http.MethodGet)
	api.HandleFunc("/health/ready", r.healthHandler.Ready).Methods(http.MethodGet)

	// Auth routes (public)
	api.HandleFunc("/patients/register", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	api.HandleFunc("/patients/login", r.authHandler.PatientLogin).Methods(http.MethodPost)
	api.HandleFunc("/admin/login", r.authHandler.AdminLogin).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)

	// Patient routes (protected - patient only)
	patient := api.NewRoute().Subrouter()
	patient.Use(r.authMiddleware.Authenticate)
	patient.Use(middleware.RequirePatient)
	patient.HandleFunc("/patients/me", r.patientHandler.GetMe).Methods(http.MethodGet)
	patient.HandleFunc("/patients/me", r.patientHandler.UpdateMe).Methods(http.MethodPatch)
	patient.HandleFunc("/appointment-requests", r.appointmentRequestHandler.SubmitRequest).Methods(http.MethodPost)
	patient.HandleFunc("/appointment-requests/mine", r.appointmentRequestHandler.GetMyRequests).Methods(http.MethodGet)
	patient.HandleFunc("/appointments/mine", r.appointmentHandler.GetMyAppointments).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	// Scheduling (admin)
	admin.HandleFunc("/appointment-requests/pending", r.appointmentRequestHandler.GetPendingRequests).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/fix", r.appointmentHandler.FixAppointment).Methods(http.MethodPost)
	admin.HandleFunc("/appointments", r.appointmentHandler.GetAllAppointments).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/{id:[0-9]+}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)

	// Doctor management (admin)
	admin.HandleFunc("/doctors", r.doctorHandler.CreateDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors", r.doctorHandler.GetAllDoctors).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id:[0-9]+}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id:[0-9]+}/availability", r.doctorHandler.UpdateAvailability).Methods(http.MethodPatch)

	// Patients and audit trail (admin)
	admin.HandleFunc("/patients", r.patientHandler.GetAllPatients).Methods(http.MethodGet)
	admin.HandleFunc("/patients/{id:[0-9]+}", r.patientHandler.GetPatient).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAuditLogs).Methods(http.MethodGet)

	// Add CORS and access log middleware
	r.router.Use(r.loggingMiddleware.Handle)
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}
