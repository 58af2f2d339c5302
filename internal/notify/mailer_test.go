package notify

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avgverzoek/internal/accessrequest/models"
	companymodels "avgverzoek/internal/company/models"
	id "avgverzoek/pkg/domain"
)

type fakeSendClient struct {
	sent     []*mail.SGMailV3
	response *rest.Response
	err      error
}

func (f *fakeSendClient) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func newReminder(t *testing.T) Reminder {
	t.Helper()
	now := time.Date(2026, 1, 26, 7, 0, 0, 0, time.UTC)
	company, err := companymodels.NewCompany(id.NewCompanyID(), "Bakkerij Jansen", companymodels.Profile{
		ContactPerson: "Jan Jansen",
		Email:         "info@bakkerij.nl",
	}, now)
	require.NoError(t, err)

	ar, err := models.NewAccessRequest(id.NewAccessRequestID(), company.ID, models.RequestNumber("AVG-2026-0007"), models.CreateInput{
		SubjectName: "Marie <b>de</b> Boer",
		ReceivedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}, now)
	require.NoError(t, err)
	return NewReminder(company, []*models.AccessRequest{ar}, now)
}

func TestReminderRender(t *testing.T) {
	r := newReminder(t)
	require.Len(t, r.Items, 1)
	assert.Equal(t, 5, r.Items[0].DaysRemaining)
	assert.Equal(t, "critical", r.Items[0].Urgency)
	assert.Equal(t, "1 inzageverzoek vraagt om aandacht", r.Subject())

	plain, html, err := r.Render()
	require.NoError(t, err)
	assert.Contains(t, plain, "Beste Jan Jansen,")
	assert.Contains(t, plain, "AVG-2026-0007 (Marie <b>de</b> Boer): deadline 31-01-2026, 5 dagen")
	assert.Contains(t, html, "Marie &lt;b&gt;de&lt;/b&gt; Boer")
}

func TestSendGridMailer(t *testing.T) {
	t.Run("sends a single e-mail", func(t *testing.T) {
		client := &fakeSendClient{response: &rest.Response{StatusCode: http.StatusAccepted}}
		m := NewSendGridMailerWithClient(client, "noreply@avgverzoek.nl", "AVG Verzoek")

		require.NoError(t, m.SendReminder(context.Background(), newReminder(t)))
		require.Len(t, client.sent, 1)
		msg := client.sent[0]
		assert.Equal(t, "noreply@avgverzoek.nl", msg.From.Address)
		assert.Equal(t, "1 inzageverzoek vraagt om aandacht", msg.Subject)
		require.Len(t, msg.Personalizations, 1)
		assert.Equal(t, "info@bakkerij.nl", msg.Personalizations[0].To[0].Address)
		assert.Len(t, msg.Content, 2)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		client := &fakeSendClient{response: &rest.Response{StatusCode: http.StatusUnauthorized, Body: "bad key"}}
		m := NewSendGridMailerWithClient(client, "noreply@avgverzoek.nl", "AVG Verzoek")
		assert.ErrorContains(t, m.SendReminder(context.Background(), newReminder(t)), "status 401")
	})

	t.Run("transport error", func(t *testing.T) {
		client := &fakeSendClient{err: errors.New("dial tcp: timeout")}
		m := NewSendGridMailerWithClient(client, "noreply@avgverzoek.nl", "AVG Verzoek")
		assert.Error(t, m.SendReminder(context.Background(), newReminder(t)))
	})

	t.Run("missing recipient", func(t *testing.T) {
		r := newReminder(t)
		r.To = ""
		m := NewSendGridMailerWithClient(&fakeSendClient{}, "a@b.nl", "x")
		assert.Error(t, m.SendReminder(context.Background(), r))
	})
}
