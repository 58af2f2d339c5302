package models_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"avgverzoek/internal/accessrequest/models"
)

func TestComputeDeadlineIsExactlyThirtyDays(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	for range 500 {
		receivedAt := base.Add(time.Duration(rng.Int64N(int64(10 * 365 * 24 * time.Hour))))
		deadline := models.ComputeDeadline(receivedAt)
		assert.Equal(t, 30*24*time.Hour, deadline.Sub(receivedAt))
	}
}

func TestComputeDeadlineIgnoresDaylightSaving(t *testing.T) {
	ams, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 2025-03-30 switches to CEST; the deadline is still 720 absolute hours out.
	receivedAt := time.Date(2025, 3, 15, 0, 0, 0, 0, ams)
	deadline := models.ComputeDeadline(receivedAt)
	assert.Equal(t, 720*time.Hour, deadline.Sub(receivedAt))
	assert.Equal(t, 1, deadline.Hour())
}

func TestDaysRemaining(t *testing.T) {
	deadline := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{name: "at receipt", now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), want: 30},
		{name: "five days before", now: time.Date(2025, 1, 26, 0, 0, 0, 0, time.UTC), want: 5},
		{name: "partial day rounds up", now: time.Date(2025, 1, 30, 23, 0, 0, 0, time.UTC), want: 1},
		{name: "at deadline", now: deadline, want: 0},
		{name: "one hour late", now: deadline.Add(time.Hour), want: 0},
		{name: "a day and a half late", now: deadline.Add(36 * time.Hour), want: -1},
		{name: "two days late", now: deadline.Add(48 * time.Hour), want: -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.DaysRemaining(deadline, tt.now))
		})
	}
}

func TestUrgencyFor(t *testing.T) {
	tests := []struct {
		days int
		want models.Urgency
	}{
		{-10, models.UrgencyExpired},
		{0, models.UrgencyExpired},
		{1, models.UrgencyCritical},
		{7, models.UrgencyCritical},
		{8, models.UrgencyWarning},
		{14, models.UrgencyWarning},
		{15, models.UrgencyOK},
		{30, models.UrgencyOK},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, models.UrgencyFor(tt.days), "days=%d", tt.days)
	}
}

func TestUrgencyIsMonotonic(t *testing.T) {
	prev := models.UrgencyFor(-40).Severity()
	for days := -39; days <= 40; days++ {
		sev := models.UrgencyFor(days).Severity()
		assert.LessOrEqual(t, sev, prev, "more days left must never be more urgent (days=%d)", days)
		prev = sev
	}
}

func TestScenarioUrgentFiveDaysBeforeDeadline(t *testing.T) {
	receivedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 1, 26, 0, 0, 0, 0, time.UTC)
	deadline := models.ComputeDeadline(receivedAt)

	assert.Equal(t, models.UrgencyCritical, models.UrgencyFor(models.DaysRemaining(deadline, now)))
}

func TestPresentation(t *testing.T) {
	assert.Equal(t, "Verlopen!", models.CountdownLabel(0))
	assert.Equal(t, "Verlopen!", models.CountdownLabel(-3))
	assert.Equal(t, "1 dag", models.CountdownLabel(1))
	assert.Equal(t, "12 dagen", models.CountdownLabel(12))

	assert.Equal(t, "#EF4444", models.UrgencyExpired.Color())
	assert.Equal(t, "#EF4444", models.UrgencyCritical.Color())
	assert.Equal(t, "#F97316", models.UrgencyWarning.Color())
	assert.Equal(t, "#22C55E", models.UrgencyOK.Color())

	assert.Equal(t, "Nieuw", models.StatusNew.Label())
	assert.Equal(t, "In behandeling", models.StatusInProgress.Label())
	assert.Equal(t, "Afgerond", models.StatusCompleted.Label())
	assert.Equal(t, "Verlopen", models.StatusExpired.Label())
	assert.Equal(t, "#3B82F6", models.StatusNew.Color())
	assert.Equal(t, "#F97316", models.StatusInProgress.Color())
	assert.Equal(t, "#22C55E", models.StatusCompleted.Color())
	assert.Equal(t, "#EF4444", models.StatusExpired.Color())
}

func TestParseStatusAndSystem(t *testing.T) {
	status, err := models.ParseStatus("in_progress")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, status)

	_, err = models.ParseStatus("afgerond")
	assert.ErrorIs(t, err, models.ErrUnknownStatus)

	sys, err := models.ParseSystem("CRM / Klantbestand")
	assert.NoError(t, err)
	assert.Equal(t, models.SystemCRM, sys)

	_, err = models.ParseSystem("crm / klantbestand")
	assert.ErrorIs(t, err, models.ErrUnknownSystem)

	assert.Len(t, models.Catalog(), 8)
	assert.Equal(t, 8, models.CatalogSize())
	assert.Equal(t, models.SystemOther, models.Catalog()[7])
}

func TestNormalizeSystems(t *testing.T) {
	got, err := models.NormalizeSystems([]string{"Overig", "Email", "Overig"})
	assert.NoError(t, err)
	assert.Equal(t, []models.System{models.SystemEmail, models.SystemOther}, got)

	_, err = models.NormalizeSystems([]string{"Email", "Fax"})
	assert.ErrorIs(t, err, models.ErrUnknownSystem)
}
