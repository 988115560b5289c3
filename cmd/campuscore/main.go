package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/campuscore/campuscore/internal/app"
	"github.com/campuscore/campuscore/internal/assignments"
	"github.com/campuscore/campuscore/internal/attendance"
	"github.com/campuscore/campuscore/internal/audit"
	"github.com/campuscore/campuscore/internal/auth"
	"github.com/campuscore/campuscore/internal/employees"
	"github.com/campuscore/campuscore/internal/menus"
	"github.com/campuscore/campuscore/internal/notifications"
	"github.com/campuscore/campuscore/internal/observability"
	"github.com/campuscore/campuscore/internal/payroll"
	"github.com/campuscore/campuscore/internal/platform/db"
	"github.com/campuscore/campuscore/internal/rbac"
	"github.com/campuscore/campuscore/internal/roles"
	"github.com/campuscore/campuscore/internal/students"
	"github.com/campuscore/campuscore/internal/users"
	"github.com/campuscore/campuscore/jobs"
	"github.com/campuscore/campuscore/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	refreshStore := auth.NewRefreshStore(redisClient)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, tokens, refreshStore)
	authHandler := auth.NewHandler(logger, authService)
	authMiddleware := auth.Middleware{Tokens: tokens, Logger: logger}

	auditRepo := audit.NewRepository(dbpool)
	auditService := audit.NewService(auditRepo, logger)
	auditHandler := audit.NewHandler(logger, auditService)

	menusRepo := menus.NewRepository(dbpool)
	menusService := menus.NewService(menusRepo).WithAudit(auditService)
	menusHandler := menus.NewHandler(logger, menusService)

	rolesRepo := roles.NewRepository(dbpool)
	rolesService := roles.NewService(rolesRepo).WithAudit(auditService)
	rolesHandler := roles.NewHandler(logger, rolesService)

	assignmentsRepo := assignments.NewRepository(dbpool)
	assignmentsService := assignments.NewService(assignmentsRepo, rolesService).WithAudit(auditService)
	assignmentsHandler := assignments.NewHandler(logger, assignmentsService)

	rbacRepo := rbac.NewRepository(dbpool)
	rbacService := rbac.NewService(rbacRepo, assignmentsService).WithAudit(auditService)
	permissionsHandler := rbac.NewPermissionsHandler(logger, rbacService)
	guard := rbac.Middleware{Service: rbacService, Menus: menusService, Logger: logger}

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	studentsRepo := students.NewRepository(dbpool)
	studentsService := students.NewService(studentsRepo)
	studentsHandler := students.NewHandler(logger, studentsService)

	employeesRepo := employees.NewRepository(dbpool)
	employeesService := employees.NewService(employeesRepo)
	employeesHandler := employees.NewHandler(logger, employeesService)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, logger)

	attendanceRepo := attendance.NewRepository(dbpool)
	attendanceService := attendance.NewService(attendanceRepo)
	attendanceHandler := attendance.NewHandler(logger, attendanceService, reportClient)

	registry := notifications.NewRegistry()
	registry.Register(notifications.ChannelSMS, notifications.LogSMSDispatcher{Logger: logger})
	registry.Register(notifications.ChannelEmail, notifications.LogEmailDispatcher{Logger: logger})

	notificationsRepo := notifications.NewRepository(dbpool)
	notificationsService := notifications.NewService(notificationsRepo, registry, logger, nil)
	notificationsHandler := notifications.NewHandler(logger, notificationsService)

	payrollRepo := payroll.NewRepository(dbpool)
	payrollService := payroll.NewService(payrollRepo, employeesService, notificationsService, logger)
	payrollHandler := payroll.NewHandler(logger, payrollService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		AuthMiddleware:       authMiddleware,
		Guard:                guard,
		AuthHandler:          authHandler,
		MenusHandler:         menusHandler,
		RolesHandler:         rolesHandler,
		PermissionsHandler:   permissionsHandler,
		AssignmentsHandler:   assignmentsHandler,
		UsersHandler:         usersHandler,
		StudentsHandler:      studentsHandler,
		EmployeesHandler:     employeesHandler,
		AttendanceHandler:    attendanceHandler,
		NotificationsHandler: notificationsHandler,
		PayrollHandler:       payrollHandler,
		AuditHandler:         auditHandler,
		ReportHandler:        reportHandler,
		JobHandler:           jobHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
