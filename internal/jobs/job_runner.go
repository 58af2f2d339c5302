// Package jobs runs the scheduled background work: the nightly deadline
// reminder sweep and revocation list housekeeping.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"avgverzoek/internal/accessrequest/models"
	companymodels "avgverzoek/internal/company/models"
	"avgverzoek/internal/notify"
	id "avgverzoek/pkg/domain"
	"avgverzoek/pkg/requestcontext"
)

type CompanyLister interface {
	ListAll(ctx context.Context) ([]*companymodels.Company, error)
}

type RequestLister interface {
	ListByCompany(ctx context.Context, companyID id.CompanyID) ([]*models.AccessRequest, error)
}

type Mailer interface {
	SendReminder(ctx context.Context, r notify.Reminder) error
}

type UrgencyGauge interface {
	SetOpenByUrgency(tiers []string, counts map[string]int)
}

// RevocationPurger drops revocation entries whose tokens have expired.
type RevocationPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// ReminderReport summarizes one reminder sweep.
type ReminderReport struct {
	Companies int `json:"companies"`
	Reminded  int `json:"reminded"`
	Urgent    int `json:"urgent"`
	Failed    int `json:"failed"`
}

const jobTimeout = 5 * time.Minute

type JobRunner struct {
	companies CompanyLister
	requests  RequestLister
	mailer    Mailer
	gauge     UrgencyGauge
	purger    RevocationPurger
	logger    *slog.Logger
}

type Option func(*JobRunner)

func WithUrgencyGauge(g UrgencyGauge) Option {
	return func(jr *JobRunner) { jr.gauge = g }
}

func WithRevocationPurger(p RevocationPurger) Option {
	return func(jr *JobRunner) { jr.purger = p }
}

func NewJobRunner(companies CompanyLister, requests RequestLister, mailer Mailer, logger *slog.Logger, opts ...Option) *JobRunner {
	jr := &JobRunner{
		companies: companies,
		requests:  requests,
		mailer:    mailer,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(jr)
	}
	return jr
}

// SendDeadlineReminders is the cron entry point.
func (jr *JobRunner) SendDeadlineReminders() {
	jr.runWithRecovery("SendDeadlineReminders", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if _, err := jr.RunDeadlineReminders(ctx); err != nil {
			jr.logger.Error("deadline reminder sweep failed", "error", err)
		}
	})
}

// RunDeadlineReminders mails every company one digest of its urgent open
// requests and refreshes the urgency gauge. A failure for one company does
// not stop the sweep.
func (jr *JobRunner) RunDeadlineReminders(ctx context.Context) (ReminderReport, error) {
	var report ReminderReport
	now := requestcontext.Now(ctx)

	companies, err := jr.companies.ListAll(ctx)
	if err != nil {
		return report, err
	}
	report.Companies = len(companies)

	openByUrgency := make(map[string]int)
	for _, company := range companies {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		records, err := jr.requests.ListByCompany(ctx, company.ID)
		if err != nil {
			report.Failed++
			jr.logger.ErrorContext(ctx, "failed to list access requests",
				"company_id", company.ID.String(),
				"error", err,
			)
			continue
		}
		for _, r := range models.Open(records) {
			openByUrgency[string(r.Urgency(now))]++
		}

		urgent := models.UrgentOpen(records, now)
		if len(urgent) == 0 {
			continue
		}
		report.Urgent += len(urgent)

		if err := jr.remind(ctx, company, urgent, now); err != nil {
			report.Failed++
			jr.logger.ErrorContext(ctx, "failed to send deadline reminder",
				"company_id", company.ID.String(),
				"urgent", len(urgent),
				"error", err,
			)
			continue
		}
		report.Reminded++
	}

	if jr.gauge != nil {
		tiers := make([]string, 0, len(models.Urgencies()))
		for _, u := range models.Urgencies() {
			tiers = append(tiers, string(u))
		}
		jr.gauge.SetOpenByUrgency(tiers, openByUrgency)
	}

	jr.logger.InfoContext(ctx, "deadline reminder sweep finished",
		"companies", report.Companies,
		"reminded", report.Reminded,
		"urgent", report.Urgent,
		"failed", report.Failed,
	)
	return report, nil
}

func (jr *JobRunner) remind(ctx context.Context, company *companymodels.Company, urgent []*models.AccessRequest, now time.Time) error {
	if company.Email == "" {
		return errors.New("company has no contact e-mail")
	}
	return jr.mailer.SendReminder(ctx, notify.NewReminder(company, urgent, now))
}

// PurgeRevokedTokens is the cron entry point for revocation housekeeping.
func (jr *JobRunner) PurgeRevokedTokens() {
	if jr.purger == nil {
		return
	}
	jr.runWithRecovery("PurgeRevokedTokens", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		n, err := jr.purger.PurgeExpired(ctx)
		if err != nil {
			jr.logger.Error("failed to purge token revocations", "error", err)
			return
		}
		jr.logger.Info("purged token revocations", "removed", n)
	})
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			jr.logger.Error("job panicked", "job", jobName, "panic", r)
		}
	}()

	jr.logger.Info("starting job", "job", jobName)
	jobFunc()
	jr.logger.Info("job completed", "job", jobName)
}
