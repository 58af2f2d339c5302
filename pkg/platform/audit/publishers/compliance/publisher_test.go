package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "avgverzoek/pkg/domain"
	audit "avgverzoek/pkg/platform/audit"
	"avgverzoek/pkg/platform/audit/store/memory"
	"avgverzoek/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error {
	return errors.New("disk full")
}

func (failingStore) ListByAccessRequest(context.Context, id.CompanyID, id.AccessRequestID) ([]audit.Event, error) {
	return nil, nil
}

func TestPublisher_Emit(t *testing.T) {
	store := memory.NewInMemoryStore()
	metrics := NewMetrics(prometheus.NewRegistry())
	pub := New(store, WithMetrics(metrics))

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-42")

	companyID := id.NewCompanyID()
	accessRequestID := id.NewAccessRequestID()
	err := pub.Emit(ctx, audit.Event{
		CompanyID:       companyID,
		AccessRequestID: accessRequestID,
		Action:          string(audit.EventAccessRequestCreated),
	})
	require.NoError(t, err)

	events, err := store.ListByAccessRequest(ctx, companyID, accessRequestID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.Equal(t, now, events[0].Timestamp)
	assert.Equal(t, "req-42", events[0].RequestID)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.EventsEmitted))
}

func TestPublisher_RejectsIncompleteEvents(t *testing.T) {
	pub := New(memory.NewInMemoryStore())

	t.Run("missing company", func(t *testing.T) {
		err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventNotesUpdated)})
		assert.Error(t, err)
	})

	t.Run("missing action", func(t *testing.T) {
		err := pub.Emit(context.Background(), audit.Event{CompanyID: id.NewCompanyID()})
		assert.Error(t, err)
	})

	t.Run("security action", func(t *testing.T) {
		err := pub.Emit(context.Background(), audit.Event{
			CompanyID: id.NewCompanyID(),
			Action:    string(audit.EventLoginFailed),
		})
		assert.Error(t, err)
	})
}

func TestPublisher_FailsClosed(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	pub := New(failingStore{}, WithMetrics(metrics))

	err := pub.Emit(context.Background(), audit.Event{
		CompanyID: id.NewCompanyID(),
		Action:    string(audit.EventStatusChanged),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PersistFailures))
}
