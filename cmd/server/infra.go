package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"

	accessrequestservice "avgverzoek/internal/accessrequest/service"
	accessrequeststore "avgverzoek/internal/accessrequest/store"
	"avgverzoek/internal/auth/lockout"
	authservice "avgverzoek/internal/auth/service"
	lockoutstore "avgverzoek/internal/auth/store/lockout"
	"avgverzoek/internal/auth/store/revocation"
	userstore "avgverzoek/internal/auth/store/user"
	companyservice "avgverzoek/internal/company/service"
	companystore "avgverzoek/internal/company/store"
	"avgverzoek/internal/jobs"
	"avgverzoek/internal/notify"
	"avgverzoek/internal/platform/config"
	"avgverzoek/internal/platform/kafka"
	"avgverzoek/internal/platform/postgres"
	"avgverzoek/internal/platform/redis"
	audit "avgverzoek/pkg/platform/audit"
	auditmemory "avgverzoek/pkg/platform/audit/store/memory"
	auditpostgres "avgverzoek/pkg/platform/audit/store/postgres"
	"avgverzoek/pkg/platform/circuit"
	txcontext "avgverzoek/pkg/platform/tx"
)

type companyStore interface {
	companyservice.Store
	authservice.CompanyStore
}

// infra holds the backing services for one process. Without a DSN every
// store lives in memory and transactions are process-local locks.
type infra struct {
	db    *sql.DB
	redis *redis.Client
	kafka *kgo.Client

	requests  accessrequestservice.Store
	companies companyStore
	users     authservice.UserStore
	audit     audit.Store

	requestTx accessrequestservice.AccessRequestTx
	authTx    authservice.TxRunner

	revocations authservice.RevocationList
	lockouts    lockout.Store
	// purger is set only for the PostgreSQL revocation list; Redis expires
	// entries itself.
	purger jobs.RevocationPurger

	notifier accessrequestservice.Notifier
	// publisher is nil when no brokers are configured.
	publisher *notify.BreakerNotifier
	mailer    jobs.Mailer
}

func newInfra(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) (*infra, error) {
	in := &infra{}
	if err := in.openStores(ctx, cfg.Database, logger); err != nil {
		return nil, err
	}
	if err := in.openRevocations(ctx, cfg.Redis, reg, logger); err != nil {
		in.Close()
		return nil, err
	}
	if err := in.openNotifier(ctx, cfg.Kafka, logger); err != nil {
		in.Close()
		return nil, err
	}

	if cfg.SendGrid.APIKey != "" {
		in.mailer = notify.NewSendGridMailer(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
		logger.Info("reminder e-mail via SendGrid", "from", cfg.SendGrid.FromEmail)
	} else {
		in.mailer = notify.NewLogMailer(logger)
		logger.Warn("no SendGrid API key configured, reminders are only logged")
	}
	return in, nil
}

func (in *infra) openStores(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) error {
	if cfg.DSN == "" {
		requests := accessrequeststore.NewInMemoryStore()
		in.requests = requests
		in.requestTx = accessrequestservice.NewShardedTx(requests, cfg.TxTimeout)
		in.companies = companystore.NewInMemory()
		in.users = userstore.New()
		in.audit = auditmemory.NewInMemoryStore()
		in.authTx = &txcontext.LockRunner{}
		logger.Warn("no database configured, using in-memory stores")
		return nil
	}

	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return err
	}
	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return err
		}
		logger.Info("database migrations applied")
	}

	runner := txcontext.NewRunner(db, cfg.TxTimeout)
	requests := accessrequeststore.NewPostgres(db)
	in.db = db
	in.requests = requests
	in.requestTx = accessrequestservice.NewPostgresTx(runner, requests)
	in.companies = companystore.NewPostgres(db)
	in.users = userstore.NewPostgres(db)
	in.audit = auditpostgres.New(db)
	in.authTx = runner
	logger.Info("using PostgreSQL stores", "max_open_conns", cfg.MaxOpenConns)
	return nil
}

func (in *infra) openRevocations(ctx context.Context, cfg config.RedisConfig, reg prometheus.Registerer, logger *slog.Logger) error {
	client, err := redis.New(ctx, cfg)
	if err != nil {
		return err
	}
	switch {
	case client != nil:
		in.redis = client
		in.revocations = revocation.NewRedisTRL(client.Client, revocation.WithRegisterer(reg))
		in.lockouts = lockoutstore.NewRedis(client.Client)
		logger.Info("token revocation list and login lockouts backed by Redis")
		return nil
	case in.db != nil:
		trl := revocation.NewPostgresTRL(in.db)
		in.revocations = trl
		in.purger = trl
		logger.Info("token revocation list backed by PostgreSQL")
	default:
		in.revocations = revocation.NewInMemoryTRL()
	}
	in.lockouts = lockoutstore.NewInMemory()
	return nil
}

func (in *infra) openNotifier(ctx context.Context, cfg config.KafkaConfig, logger *slog.Logger) error {
	if len(cfg.Brokers) == 0 {
		in.notifier = notify.NewLogNotifier(logger)
		return nil
	}
	cl, err := kafka.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	if err := kafka.EnsureTopic(ctx, cl, cfg); err != nil {
		cl.Close()
		return err
	}
	in.kafka = cl
	in.publisher = notify.NewBreakerNotifier(
		notify.NewKafkaNotifier(cl, cfg.Topic, logger),
		notify.NewLogNotifier(logger),
		logger,
		notify.WithBreaker(circuit.New("kafka")),
	)
	in.notifier = in.publisher
	logger.Info("publishing status changes to kafka", "topic", cfg.Topic, "brokers", cfg.Brokers)
	return nil
}

// Degraded reports whether status changes are currently only logged because
// Kafka keeps failing.
func (in *infra) Degraded() bool {
	return in.publisher != nil && in.publisher.Degraded()
}

// Health pings every configured backend.
func (in *infra) Health(ctx context.Context) error {
	if in.db != nil {
		if err := in.db.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if in.redis != nil {
		if err := in.redis.Health(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (in *infra) Close() {
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}
