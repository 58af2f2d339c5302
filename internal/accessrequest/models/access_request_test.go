package models_test

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"avgverzoek/internal/accessrequest/models"
	id "avgverzoek/pkg/domain"
)

type AccessRequestSuite struct {
	suite.Suite
	companyID  id.CompanyID
	receivedAt time.Time
	now        time.Time
}

func TestAccessRequestSuite(t *testing.T) {
	suite.Run(t, new(AccessRequestSuite))
}

func (s *AccessRequestSuite) SetupTest() {
	s.companyID = id.NewCompanyID()
	s.receivedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
}

func (s *AccessRequestSuite) newRequest(name string) *models.AccessRequest {
	r, err := models.NewAccessRequest(id.NewAccessRequestID(), s.companyID, "AVG-2025-1234",
		models.CreateInput{SubjectName: name, ReceivedAt: s.receivedAt}, s.now)
	s.Require().NoError(err)
	return r
}

func (s *AccessRequestSuite) TestConstruction() {
	s.Run("new request starts in status new with deadline 30 days out", func() {
		r := s.newRequest("Jan de Vries")

		s.Equal(models.StatusNew, r.Status)
		s.Equal(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), r.Deadline)
		s.Empty(r.CheckedSystems)
		s.NotNil(r.CheckedSystems)
		s.Nil(r.CompletedAt)
		s.Equal(s.now, r.CreatedAt)
		s.Equal(1, r.Version)
	})

	s.Run("days remaining at receipt is exactly 30", func() {
		r := s.newRequest("Jan de Vries")
		s.Equal(30, models.DaysRemaining(r.Deadline, r.ReceivedAt))
	})

	s.Run("subject name is trimmed", func() {
		r := s.newRequest("  Jan de Vries \t")
		s.Equal("Jan de Vries", r.SubjectName)
	})

	s.Run("default draft is the acknowledgement letter for the subject", func() {
		r := s.newRequest("Jan de Vries")
		s.Contains(r.DraftResponse, "Geachte Jan de Vries,")
		s.Contains(r.DraftResponse, "artikel 15")
		s.Contains(r.DraftResponse, "[Bedrijfsnaam]")
	})

	s.Run("supplied draft and notes are kept", func() {
		r, err := models.NewAccessRequest(id.NewAccessRequestID(), s.companyID, "AVG-2025-1234", models.CreateInput{
			SubjectName:   "Jan",
			ReceivedAt:    s.receivedAt,
			InternalNotes: "via post",
			DraftResponse: "Beste Jan",
		}, s.now)
		s.Require().NoError(err)
		s.Equal("Beste Jan", r.DraftResponse)
		s.Equal("via post", r.InternalNotes)
	})

	s.Run("optional subject fields are stored opaquely", func() {
		r, err := models.NewAccessRequest(id.NewAccessRequestID(), s.companyID, "AVG-2025-1234", models.CreateInput{
			SubjectName:      "Jan",
			SubjectEmail:     "not-an-email",
			SubjectIDPartial: "***456",
			ReceivedAt:       s.receivedAt,
		}, s.now)
		s.Require().NoError(err)
		s.Equal("not-an-email", r.SubjectEmail)
		s.Equal("***456", r.SubjectIDPartial)
	})
}

func (s *AccessRequestSuite) TestConstructionRejectsInvalidInput() {
	s.Run("empty subject name", func() {
		r, err := models.NewAccessRequest(id.NewAccessRequestID(), s.companyID, "AVG-2025-1234",
			models.CreateInput{SubjectName: "", ReceivedAt: s.receivedAt}, s.now)
		s.Nil(r)
		s.ErrorIs(err, models.ErrMissingSubjectName)
	})

	s.Run("whitespace-only subject name", func() {
		_, err := models.NewAccessRequest(id.NewAccessRequestID(), s.companyID, "AVG-2025-1234",
			models.CreateInput{SubjectName: "   ", ReceivedAt: s.receivedAt}, s.now)
		s.ErrorIs(err, models.ErrMissingSubjectName)
	})

	s.Run("missing received date", func() {
		_, err := models.NewAccessRequest(id.NewAccessRequestID(), s.companyID, "AVG-2025-1234",
			models.CreateInput{SubjectName: "Jan"}, s.now)
		s.ErrorIs(err, models.ErrMissingReceivedDate)

		var verr *models.ValidationError
		s.Require().True(errors.As(err, &verr))
		s.Equal(models.KindMissingReceivedDate, verr.Kind)
	})
}

func (s *AccessRequestSuite) TestStatusTransitions() {
	s.Run("completing stamps CompletedAt and reopening clears it", func() {
		r := s.newRequest("Jan de Vries")
		completedAt := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

		event, err := r.ApplyStatus(models.StatusCompleted, completedAt)
		s.Require().NoError(err)
		s.Require().NotNil(r.CompletedAt)
		s.Equal(completedAt, *r.CompletedAt)
		s.Equal(models.StatusNew, event.Previous)
		s.Equal(models.StatusCompleted, event.Status)
		s.Equal(r.ID, event.AccessRequestID)

		_, err = r.ApplyStatus(models.StatusInProgress, completedAt.Add(time.Hour))
		s.Require().NoError(err)
		s.Nil(r.CompletedAt)
		s.Equal(models.StatusInProgress, r.Status)
	})

	s.Run("any status can follow any other", func() {
		for _, from := range models.AllStatuses() {
			for _, to := range models.AllStatuses() {
				r := s.newRequest("Jan")
				_, err := r.ApplyStatus(from, s.now)
				s.Require().NoError(err)
				_, err = r.ApplyStatus(to, s.now)
				s.Require().NoError(err, "%s -> %s", from, to)
				s.Equal(to, r.Status)
			}
		}
	})

	s.Run("CompletedAt is set iff status is completed across sequences", func() {
		r := s.newRequest("Jan")
		sequence := []models.Status{
			models.StatusInProgress, models.StatusCompleted, models.StatusCompleted,
			models.StatusExpired, models.StatusCompleted, models.StatusNew, models.StatusExpired,
		}
		for i, next := range sequence {
			_, err := r.ApplyStatus(next, s.now.Add(time.Duration(i)*time.Hour))
			s.Require().NoError(err)
			s.Equal(r.Status == models.StatusCompleted, r.CompletedAt != nil, "after %s", next)
		}
	})

	s.Run("status change leaves other fields untouched", func() {
		r := s.newRequest("Jan")
		_, err := r.ToggleSystem(models.SystemEmail)
		s.Require().NoError(err)
		before := r.Clone()

		_, err = r.ApplyStatus(models.StatusExpired, s.now)
		s.Require().NoError(err)
		s.Equal(before.Deadline, r.Deadline)
		s.Equal(before.CheckedSystems, r.CheckedSystems)
		s.Equal(before.DraftResponse, r.DraftResponse)
		s.Equal(before.Number, r.Number)
	})

	s.Run("unknown status is rejected without mutation", func() {
		r := s.newRequest("Jan")
		_, err := r.ApplyStatus(models.Status("archived"), s.now)
		s.ErrorIs(err, models.ErrUnknownStatus)
		s.Equal(models.StatusNew, r.Status)
	})
}

func (s *AccessRequestSuite) TestChecklist() {
	s.Run("two systems give completeness 2 of 8", func() {
		r := s.newRequest("Jan")
		_, err := r.ToggleSystem(models.SystemEmail)
		s.Require().NoError(err)
		_, err = r.ToggleSystem(models.SystemCRM)
		s.Require().NoError(err)

		checked, total := r.Completeness()
		s.Equal(2, checked)
		s.Equal(8, total)
	})

	s.Run("toggling twice restores the original set", func() {
		r := s.newRequest("Jan")
		_, err := r.ToggleSystem(models.SystemHR)
		s.Require().NoError(err)
		before := append([]models.System(nil), r.CheckedSystems...)

		nowChecked, err := r.ToggleSystem(models.SystemCloud)
		s.Require().NoError(err)
		s.True(nowChecked)
		nowChecked, err = r.ToggleSystem(models.SystemCloud)
		s.Require().NoError(err)
		s.False(nowChecked)

		s.Equal(before, r.CheckedSystems)
	})

	s.Run("toggle order does not change final membership", func() {
		a := s.newRequest("Jan")
		b := s.newRequest("Jan")
		for _, sys := range []models.System{models.SystemOther, models.SystemEmail, models.SystemWebsite} {
			_, _ = a.ToggleSystem(sys)
		}
		for _, sys := range []models.System{models.SystemWebsite, models.SystemOther, models.SystemEmail} {
			_, _ = b.ToggleSystem(sys)
		}
		s.Equal(a.CheckedSystems, b.CheckedSystems)
		s.Equal([]models.System{models.SystemEmail, models.SystemWebsite, models.SystemOther}, a.CheckedSystems)
	})

	s.Run("unknown system is rejected and checklist unchanged", func() {
		r := s.newRequest("Jan")
		_, err := r.ToggleSystem(models.SystemEmail)
		s.Require().NoError(err)

		_, err = r.ToggleSystem(models.System("Unknown System"))
		s.ErrorIs(err, models.ErrUnknownSystem)
		s.Equal([]models.System{models.SystemEmail}, r.CheckedSystems)
	})

	s.Run("completing with an incomplete checklist is allowed", func() {
		r := s.newRequest("Jan")
		_, err := r.ApplyStatus(models.StatusCompleted, s.now)
		s.NoError(err)
	})
}

func (s *AccessRequestSuite) TestCloneIsDeep() {
	r := s.newRequest("Jan")
	_, _ = r.ToggleSystem(models.SystemEmail)
	_, _ = r.ApplyStatus(models.StatusCompleted, s.now)

	c := r.Clone()
	_, _ = c.ToggleSystem(models.SystemCRM)
	*c.CompletedAt = s.now.Add(time.Hour)

	s.Equal([]models.System{models.SystemEmail}, r.CheckedSystems)
	s.Equal(s.now, *r.CompletedAt)
}

func (s *AccessRequestSuite) TestUpdateText() {
	r := s.newRequest("Jan")
	original := r.DraftResponse
	notes := "gebeld op maandag"

	r.UpdateText(&notes, nil)
	s.Equal(notes, r.InternalNotes)
	s.Equal(original, r.DraftResponse)
}

func TestRequestNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^AVG-2025-\d{4}$`)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for range 200 {
		n := models.GenerateRequestNumber(now)
		if !pattern.MatchString(string(n)) {
			t.Fatalf("unexpected request number %q", n)
		}
		if _, err := models.ParseRequestNumber(string(n)); err != nil {
			t.Fatalf("generated number does not parse: %v", err)
		}
	}

	for _, bad := range []string{"", "AVG-25-1234", "AVG-2025-12345", "avg-2025-1234", "AVG-2025-12a4"} {
		if _, err := models.ParseRequestNumber(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
