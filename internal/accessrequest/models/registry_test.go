package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avgverzoek/internal/accessrequest/models"
	id "avgverzoek/pkg/domain"
	"avgverzoek/pkg/testutil"
)

func record(t *testing.T, name string, receivedAt time.Time, status models.Status) *models.AccessRequest {
	t.Helper()
	r, err := models.NewAccessRequest(id.NewAccessRequestID(), id.NewCompanyID(), models.GenerateRequestNumber(receivedAt),
		models.CreateInput{SubjectName: name, ReceivedAt: receivedAt}, receivedAt)
	require.NoError(t, err)
	_, err = r.ApplyStatus(status, receivedAt)
	require.NoError(t, err)
	return r
}

func names(records []*models.AccessRequest) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.SubjectName)
	}
	return out
}

func TestRegistryFilters(t *testing.T) {
	now := time.Date(2025, 1, 26, 0, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }

	// receivedAt descending, as storage supplies it
	records := []*models.AccessRequest{
		record(t, "fresh", day(20), models.StatusNew),             // 24 days left
		record(t, "warning", day(10), models.StatusInProgress),    // 14 days left
		record(t, "done", day(3), models.StatusCompleted),         // 7 days left, completed
		record(t, "critical", day(1), models.StatusNew),           // 5 days left
		record(t, "marked expired", day(1), models.StatusExpired), // 5 days left, expired
		record(t, "overdue", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), models.StatusInProgress),
	}

	testutil.Given(t, "a mixed collection ordered newest first", func(t *testing.T) {
		testutil.When(t, "filtering urgent open requests", func(t *testing.T) {
			testutil.Then(t, "only open requests within seven days are returned in input order", func(t *testing.T) {
				assert.Equal(t, []string{"critical", "overdue"}, names(models.UrgentOpen(records, now)))
			})
		})

		testutil.When(t, "filtering open requests", func(t *testing.T) {
			testutil.Then(t, "new and in_progress are returned", func(t *testing.T) {
				assert.Equal(t, []string{"fresh", "warning", "critical", "overdue"}, names(models.Open(records)))
			})
		})

		testutil.When(t, "filtering completed requests", func(t *testing.T) {
			testutil.Then(t, "only completed ones are returned", func(t *testing.T) {
				assert.Equal(t, []string{"done"}, names(models.Completed(records)))
			})
		})

		testutil.When(t, "summarizing", func(t *testing.T) {
			testutil.Then(t, "counts match the filters", func(t *testing.T) {
				assert.Equal(t, models.Summary{Total: 6, Open: 4, Urgent: 2, Completed: 1}, models.Summarize(records, now))
			})
		})
	})

	t.Run("empty input yields empty non-nil output", func(t *testing.T) {
		assert.NotNil(t, models.Open(nil))
		assert.Empty(t, models.UrgentOpen(nil, now))
	})

	t.Run("scenario: five days before deadline appears in urgent list", func(t *testing.T) {
		r := record(t, "Jan de Vries", day(1), models.StatusNew)
		assert.Equal(t, []*models.AccessRequest{r}, models.UrgentOpen([]*models.AccessRequest{r}, now))
	})
}

func TestSortByReceivedDesc(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }
	records := []*models.AccessRequest{
		record(t, "b", day(2), models.StatusNew),
		record(t, "c", day(3), models.StatusNew),
		record(t, "a", day(1), models.StatusNew),
	}
	models.SortByReceivedDesc(records)
	assert.Equal(t, []string{"c", "b", "a"}, names(records))
}

func TestViews(t *testing.T) {
	v, ok := models.ParseView("")
	assert.True(t, ok)
	assert.Equal(t, models.ViewAll, v)

	v, ok = models.ParseView("urgent")
	assert.True(t, ok)
	assert.Equal(t, models.ViewUrgent, v)

	_, ok = models.ParseView("archived")
	assert.False(t, ok)
}

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2025, 1, 26, 0, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }
	records := []*models.AccessRequest{
		record(t, "a", day(20), models.StatusNew),
		record(t, "b", day(10), models.StatusInProgress),
		record(t, "c", day(2), models.StatusNew),
	}

	dashboard := models.BuildDashboard(records, now, 2)

	assert.Equal(t, models.Summary{Total: 3, Open: 3, Urgent: 1, Completed: 0}, dashboard.Summary)
	assert.Equal(t, []string{"c"}, names(dashboard.Urgent))
	assert.Equal(t, []string{"a", "b"}, names(dashboard.Recent))

	empty := models.BuildDashboard(nil, now, 5)
	assert.NotNil(t, empty.Urgent)
	assert.NotNil(t, empty.Recent)
	assert.Zero(t, empty.Summary.Total)
}
