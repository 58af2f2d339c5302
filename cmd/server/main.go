package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	accessrequesthandler "avgverzoek/internal/accessrequest/handler"
	accessrequestmetrics "avgverzoek/internal/accessrequest/metrics"
	accessrequestservice "avgverzoek/internal/accessrequest/service"
	authhandler "avgverzoek/internal/auth/handler"
	"avgverzoek/internal/auth/lockout"
	authservice "avgverzoek/internal/auth/service"
	companyhandler "avgverzoek/internal/company/handler"
	companyservice "avgverzoek/internal/company/service"
	"avgverzoek/internal/jobs"
	jwttoken "avgverzoek/internal/jwt_token"
	"avgverzoek/internal/platform/config"
	"avgverzoek/internal/platform/httpserver"
	"avgverzoek/internal/platform/logger"
	"avgverzoek/internal/platform/metrics"
	"avgverzoek/pkg/platform/audit/publishers/compliance"
	"avgverzoek/pkg/platform/audit/publishers/security"
	"avgverzoek/pkg/platform/httputil"
	adminmw "avgverzoek/pkg/platform/middleware/admin"
	authmw "avgverzoek/pkg/platform/middleware/auth"
	"avgverzoek/pkg/platform/middleware/metadata"
	"avgverzoek/pkg/platform/middleware/request"
	"avgverzoek/pkg/platform/middleware/requesttime"
)

// startupTimeout bounds connecting to the database, Redis and Kafka.
const startupTimeout = 30 * time.Second

// main wires dependencies, serves HTTP and runs the background jobs until
// SIGINT or SIGTERM.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	if cfg.UsesDevSigningKey() {
		log.Warn("using the development JWT signing key, set AVG_JWT_SIGNING_KEY in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	in, err := newInfra(startCtx, cfg, reg, log)
	cancel()
	if err != nil {
		return err
	}
	defer in.Close()

	complianceAudit := compliance.New(in.audit,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics(reg)),
	)
	securityAudit := security.New(in.audit, security.WithLogger(log))

	requestMetrics := accessrequestmetrics.New(reg)
	requestService, err := accessrequestservice.New(in.requests,
		accessrequestservice.WithLogger(log),
		accessrequestservice.WithTx(in.requestTx),
		accessrequestservice.WithAuditPublisher(complianceAudit),
		accessrequestservice.WithAuditReader(in.audit),
		accessrequestservice.WithNotifier(in.notifier),
		accessrequestservice.WithMetrics(requestMetrics),
	)
	if err != nil {
		return err
	}

	companyService, err := companyservice.New(in.companies)
	if err != nil {
		return err
	}

	lockoutService, err := lockout.New(in.lockouts,
		lockout.WithLogger(log),
		lockout.WithConfig(cfg.Lockout),
	)
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.TTL)
	authService, err := authservice.New(
		in.users,
		in.companies,
		in.authTx,
		jwtService,
		in.revocations,
		jwtService.TTL(),
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(complianceAudit),
		authservice.WithSecurityPublisher(securityAudit),
		authservice.WithLockout(lockoutService),
	)
	if err != nil {
		return err
	}

	jobOpts := []jobs.Option{jobs.WithUrgencyGauge(requestMetrics)}
	if in.purger != nil {
		jobOpts = append(jobOpts, jobs.WithRevocationPurger(in.purger))
	}
	jobRunner := jobs.NewJobRunner(companyService, in.requests, in.mailer, log, jobOpts...)

	router := chi.NewRouter()
	router.Use(request.RequestID)
	router.Use(metadata.ClientMetadata)
	router.Use(requesttime.Middleware)
	router.Use(request.Recovery(log))
	router.Use(request.Logger(log))
	router.Use(metrics.New(reg).Middleware)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := in.Health(r.Context()); err != nil {
			log.WarnContext(r.Context(), "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		status := "ok"
		if in.Degraded() {
			status = "degraded"
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": status})
	})
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	auth := authhandler.New(authService, log)
	router.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		auth.RegisterPublic(r)
	})
	router.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(jwtService, authService, log))
		r.Use(request.ContentTypeJSON)
		auth.RegisterProtected(r)
		companyhandler.New(companyService, log).Register(r)
		accessrequesthandler.New(requestService, log).Register(r)
	})
	if cfg.Server.AdminToken != "" {
		router.Group(func(r chi.Router) {
			r.Use(adminmw.RequireAdminToken(cfg.Server.AdminToken, log))
			jobs.NewAdminHandler(jobRunner, log).Register(r)
		})
	}

	var scheduler *jobs.Scheduler
	if cfg.Scheduler.Enabled {
		if scheduler, err = jobs.NewScheduler(jobRunner, cfg.Scheduler, log); err != nil {
			return err
		}
	}

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting avgverzoek", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return securityAudit.Run(gctx) })
	if scheduler != nil {
		g.Go(func() error { return scheduler.Run(gctx) })
	}

	return g.Wait()
}
