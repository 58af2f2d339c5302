package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "avgverzoek/pkg/domain"
	audit "avgverzoek/pkg/platform/audit"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	companyA, companyB := id.NewCompanyID(), id.NewCompanyID()
	requestA := id.NewAccessRequestID()

	require.NoError(t, s.Append(ctx, audit.Event{CompanyID: companyA, AccessRequestID: requestA, Action: "access_request_created"}))
	require.NoError(t, s.Append(ctx, audit.Event{CompanyID: companyA, AccessRequestID: id.NewAccessRequestID(), Action: "access_request_created"}))
	require.NoError(t, s.Append(ctx, audit.Event{CompanyID: companyA, AccessRequestID: requestA, Action: "access_request_status_changed"}))
	require.NoError(t, s.Append(ctx, audit.Event{CompanyID: companyB, AccessRequestID: requestA, Action: "access_request_created"}))

	events, err := s.ListByAccessRequest(ctx, companyA, requestA)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "access_request_created", events[0].Action)
	assert.Equal(t, "access_request_status_changed", events[1].Action)
	assert.False(t, events[0].ID.IsNil(), "missing IDs are assigned")

	all, err := s.ListByCompany(ctx, companyA)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	s.Clear()
	events, err = s.ListByAccessRequest(ctx, companyA, requestA)
	require.NoError(t, err)
	assert.Empty(t, events)
}
