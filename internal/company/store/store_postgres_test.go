package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avgverzoek/internal/company/models"
	id "avgverzoek/pkg/domain"
	"avgverzoek/pkg/platform/sentinel"
)

var companyColumns = []string{"id", "name", "kvk", "contact_person", "email", "plan", "created_at"}

func TestPostgresStore_CreateAndFind(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgres(db)

	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	c, err := models.NewCompany(id.NewCompanyID(), "Bakkerij Jansen", models.Profile{KvK: "12345678"}, now)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO companies").
		WithArgs(sqlmock.AnyArg(), "Bakkerij Jansen", "12345678", "", "", "gratis", now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, store.Create(context.Background(), c))

	mock.ExpectQuery("SELECT (.+) FROM companies").
		WillReturnRows(sqlmock.NewRows(companyColumns).
			AddRow(c.ID.String(), c.Name, c.KvK, "", "", "mkb", now))
	found, err := store.FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, found.ID)
	assert.Equal(t, models.PlanMKB, found.Plan)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM companies").WillReturnRows(sqlmock.NewRows(companyColumns))

	_, err = NewPostgres(db).FindByID(context.Background(), id.NewCompanyID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresStore_ListAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM companies").
		WillReturnRows(sqlmock.NewRows(companyColumns).
			AddRow(id.NewCompanyID().String(), "A", "", "", "a@example.nl", "gratis", now).
			AddRow(id.NewCompanyID().String(), "B", "", "", "", "bureau", now))

	all, err := NewPostgres(db).ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a@example.nl", all[0].Email)
	assert.Equal(t, models.PlanBureau, all[1].Plan)
}
