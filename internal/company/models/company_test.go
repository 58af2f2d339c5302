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

func TestNewCompany(t *testing.T) {
	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	t.Run("trims input and starts on the gratis plan", func(t *testing.T) {
		c, err := NewCompany(id.NewCompanyID(), "  Bakkerij Jansen ", Profile{Email: " Info@Jansen.NL "}, now)
		require.NoError(t, err)
		assert.Equal(t, "Bakkerij Jansen", c.Name)
		assert.Equal(t, "info@jansen.nl", c.Email)
		assert.Equal(t, PlanGratis, c.Plan)
		assert.Equal(t, now, c.CreatedAt)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		_, err := NewCompany(id.NewCompanyID(), "   ", Profile{}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects a name over 128 characters", func(t *testing.T) {
		_, err := NewCompany(id.NewCompanyID(), strings.Repeat("a", 129), Profile{}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects an invalid email", func(t *testing.T) {
		_, err := NewCompany(id.NewCompanyID(), "Jansen", Profile{Email: "not-an-address"}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestPlanIsValid(t *testing.T) {
	assert.True(t, PlanGratis.IsValid())
	assert.True(t, PlanMKB.IsValid())
	assert.True(t, PlanBureau.IsValid())
	assert.False(t, Plan("enterprise").IsValid())
}
