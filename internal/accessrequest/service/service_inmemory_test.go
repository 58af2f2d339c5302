package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avgverzoek/internal/accessrequest/models"
	"avgverzoek/internal/accessrequest/service"
	"avgverzoek/internal/accessrequest/store"
	id "avgverzoek/pkg/domain"
	audit "avgverzoek/pkg/platform/audit"
	"avgverzoek/pkg/platform/audit/publishers/compliance"
	auditmemory "avgverzoek/pkg/platform/audit/store/memory"
	"avgverzoek/pkg/requestcontext"
	"avgverzoek/pkg/testutil"
)

func newInMemoryService(t *testing.T) *service.Service {
	t.Helper()
	auditStore := auditmemory.NewInMemoryStore()
	svc, err := service.New(store.NewInMemoryStore(),
		service.WithAuditPublisher(compliance.New(auditStore)),
		service.WithAuditReader(auditStore),
	)
	require.NoError(t, err)
	return svc
}

func TestLifecycleAgainstInMemoryStore(t *testing.T) {
	svc := newInMemoryService(t)
	company := id.NewCompanyID()
	received := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), received.Add(2*time.Hour))

	created, err := svc.Create(ctx, company, models.CreateInput{SubjectName: "Jan de Vries", ReceivedAt: received})
	require.NoError(t, err)

	testutil.Given(t, "a request received on 1 January", func(t *testing.T) {
		testutil.When(t, "two systems are checked and the request is completed", func(t *testing.T) {
			_, err := svc.ToggleSystem(ctx, company, created.ID, models.SystemHR)
			require.NoError(t, err)
			_, err = svc.ToggleSystem(ctx, company, created.ID, models.SystemEmail)
			require.NoError(t, err)
			done, err := svc.SetStatus(ctx, company, created.ID, models.StatusCompleted)
			require.NoError(t, err)

			testutil.Then(t, "the checklist is in catalog order and the deadline is 31 January", func(t *testing.T) {
				assert.Equal(t, []models.System{models.SystemEmail, models.SystemHR}, done.CheckedSystems)
				assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), done.Deadline)
				assert.NotNil(t, done.CompletedAt)
			})

			testutil.Then(t, "the audit trail records every mutation in order", func(t *testing.T) {
				events, err := svc.AuditTrail(ctx, company, created.ID)
				require.NoError(t, err)
				actions := make([]string, 0, len(events))
				for _, e := range events {
					actions = append(actions, e.Action)
				}
				assert.Equal(t, []string{
					string(audit.EventAccessRequestCreated),
					string(audit.EventSystemChecked),
					string(audit.EventSystemChecked),
					string(audit.EventStatusChanged),
				}, actions)
			})
		})

		testutil.When(t, "the request is reopened", func(t *testing.T) {
			reopened, err := svc.SetStatus(ctx, company, created.ID, models.StatusInProgress)
			require.NoError(t, err)

			testutil.Then(t, "completedAt is cleared", func(t *testing.T) {
				assert.Nil(t, reopened.CompletedAt)
			})
		})

		testutil.When(t, "another company asks for it", func(t *testing.T) {
			_, err := svc.Get(ctx, id.NewCompanyID(), created.ID)

			testutil.Then(t, "it is not found", func(t *testing.T) {
				assert.Error(t, err)
			})
		})
	})
}

// TestConcurrentTogglesAreSerialized toggles each catalog system from its own
// goroutine; no toggle may be lost.
func TestConcurrentTogglesAreSerialized(t *testing.T) {
	svc := newInMemoryService(t)
	company := id.NewCompanyID()
	ctx := requestcontext.WithTime(context.Background(), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	created, err := svc.Create(ctx, company, models.CreateInput{SubjectName: "Piet", ReceivedAt: requestcontext.Now(ctx)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, models.CatalogSize())
	for _, system := range models.Catalog() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ToggleSystem(ctx, company, created.ID, system)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	final, err := svc.Get(ctx, company, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Catalog(), final.CheckedSystems)
	checked, total := final.Completeness()
	assert.Equal(t, total, checked)
}
