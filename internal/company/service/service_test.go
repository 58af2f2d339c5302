package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avgverzoek/internal/company/models"
	"avgverzoek/internal/company/store"
	id "avgverzoek/pkg/domain"
	dErrors "avgverzoek/pkg/domain-errors"
)

type failingStore struct{}

func (failingStore) FindByID(context.Context, id.CompanyID) (*models.Company, error) {
	return nil, errors.New("db down")
}

func (failingStore) ListAll(context.Context) ([]*models.Company, error) {
	return nil, errors.New("db down")
}

func TestService(t *testing.T) {
	ctx := context.Background()
	companies := store.NewInMemory()
	c, err := models.NewCompany(id.NewCompanyID(), "Bakkerij Jansen", models.Profile{}, time.Now())
	require.NoError(t, err)
	require.NoError(t, companies.Create(ctx, c))

	svc, err := New(companies)
	require.NoError(t, err)

	t.Run("get returns the company", func(t *testing.T) {
		found, err := svc.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.Name, found.Name)
	})

	t.Run("unknown company is not found", func(t *testing.T) {
		_, err := svc.Get(ctx, id.NewCompanyID())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("store failures are internal", func(t *testing.T) {
		broken, err := New(failingStore{})
		require.NoError(t, err)
		_, err = broken.Get(ctx, c.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
		_, err = broken.ListAll(ctx)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("nil store is rejected", func(t *testing.T) {
		_, err := New(nil)
		assert.Error(t, err)
	})
}
