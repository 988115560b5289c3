package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/campuscore/campuscore/internal/assignments"
	"github.com/campuscore/campuscore/internal/attendance"
	"github.com/campuscore/campuscore/internal/audit"
	"github.com/campuscore/campuscore/internal/auth"
	"github.com/campuscore/campuscore/internal/employees"
	"github.com/campuscore/campuscore/internal/menus"
	"github.com/campuscore/campuscore/internal/notifications"
	"github.com/campuscore/campuscore/internal/observability"
	"github.com/campuscore/campuscore/internal/payroll"
	"github.com/campuscore/campuscore/internal/rbac"
	"github.com/campuscore/campuscore/internal/roles"
	"github.com/campuscore/campuscore/internal/students"
	"github.com/campuscore/campuscore/internal/users"
	"github.com/campuscore/campuscore/jobs"
	"github.com/campuscore/campuscore/report"
	"github.com/campuscore/campuscore/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AuthMiddleware auth.Middleware
	Guard          rbac.Middleware

	AuthHandler          *auth.Handler
	MenusHandler         *menus.Handler
	RolesHandler         *roles.Handler
	PermissionsHandler   *rbac.PermissionsHandler
	AssignmentsHandler   *assignments.Handler
	UsersHandler         *users.Handler
	StudentsHandler      *students.Handler
	EmployeesHandler     *employees.Handler
	AttendanceHandler    *attendance.Handler
	NotificationsHandler *notifications.Handler
	PayrollHandler       *payroll.Handler
	AuditHandler         *audit.Handler
	ReportHandler        *report.Handler
	JobHandler           *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with CampusCore defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Bearer parsing is non-enforcing here; each group below decides
		// what an anonymous caller may do.
		r.Use(params.AuthMiddleware.Authenticate)

		r.Route("/auth", params.AuthHandler.MountRoutes)

		mount := func(pattern, menu string, h interface{ MountRoutes(chi.Router) }) {
			r.Route(pattern, func(r chi.Router) {
				r.Use(params.Guard.RequireForMethod(menu))
				h.MountRoutes(r)
			})
		}

		mount("/students", "students", params.StudentsHandler)
		mount("/employees", "employees", params.EmployeesHandler)
		mount("/attendance", "attendance", params.AttendanceHandler)
		mount("/notifications", "notifications", params.NotificationsHandler)
		mount("/payroll", "payroll", params.PayrollHandler)
		mount("/menus", "menus", params.MenusHandler)
		mount("/roles", "roles", params.RolesHandler)
		mount("/permissions", "roles", params.PermissionsHandler)
		mount("/assignments", "roles", params.AssignmentsHandler)
		mount("/users", "users", params.UsersHandler)
		mount("/audit", "audit", params.AuditHandler)

		if params.ReportHandler != nil {
			r.Route("/report", func(r chi.Router) {
				r.Use(auth.RequireAuthenticated)
				params.ReportHandler.MountRoutes(r)
			})
		}
		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(auth.RequireAuthenticated)
				params.JobHandler.MountRoutes(r)
			})
		}
	})

	// Everything else is the embedded admin SPA.
	r.NotFound(web.Handler().ServeHTTP)

	return r
}
