package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "avgverzoek/pkg/domain"
	dErrors "avgverzoek/pkg/domain-errors"
)

func TestNewUser(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	companyID := id.NewCompanyID()

	t.Run("normalizes the address", func(t *testing.T) {
		u, err := NewUser(id.NewUserID(), companyID, "  Info@Bakkerij-Jansen.NL ", "hash", now)
		require.NoError(t, err)
		assert.Equal(t, "info@bakkerij-jansen.nl", u.Email)
		assert.Equal(t, companyID, u.CompanyID)
		assert.Equal(t, now, u.CreatedAt)
	})

	t.Run("rejects display-name addresses", func(t *testing.T) {
		_, err := NewUser(id.NewUserID(), companyID, "Jan <jan@example.nl>", "hash", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("requires a hash", func(t *testing.T) {
		_, err := NewUser(id.NewUserID(), companyID, "jan@example.nl", "", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("requires a company", func(t *testing.T) {
		_, err := NewUser(id.NewUserID(), id.CompanyID{}, "jan@example.nl", "hash", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("kort"))
	assert.NoError(t, ValidatePassword("lang genoeg"))
	assert.Error(t, ValidatePassword(strings.Repeat("x", MaxPasswordLength+1)))
}

func TestRegistrationNormalize(t *testing.T) {
	r := Registration{CompanyName: " Bakkerij Jansen ", Email: " INFO@jansen.nl", Password: " geheim123 "}
	r.Normalize()
	assert.Equal(t, "Bakkerij Jansen", r.CompanyName)
	assert.Equal(t, "info@jansen.nl", r.Email)
	assert.Equal(t, " geheim123 ", r.Password)
}
