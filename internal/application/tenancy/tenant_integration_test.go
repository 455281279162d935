//go:build integration

package tenancy_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	tenancyapp "github.com/propcore/backend/internal/application/tenancy"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/testutil/enginetest"
	"github.com/propcore/backend/internal/testutil/pgtest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantService_ConcurrentPlacementOnPostgres(t *testing.T) {
	e := enginetest.NewWithDB(t, pgtest.NewTestDB(t))
	svc := tenancyapp.NewTenantService(e.Runner, e.Tenants, e.History, e.Logger)

	p, units := e.SeedProperty(t, "Quay Lofts", 1, decimal.NewFromInt(1100))

	const attempts = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		codes     []string
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), e.OrgID, e.UserID, tenancyapp.CreateTenantRequest{
				PropertyID: p.ID,
				UnitID:     units[0].ID,
				Name:       fmt.Sprintf("Applicant %d", i),
				Email:      fmt.Sprintf("applicant%d@example.com", i),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			var de *shared.DomainError
			if errors.As(err, &de) {
				codes = append(codes, de.Code)
			} else {
				codes = append(codes, err.Error())
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded, "one tenant per unit")
	for _, code := range codes {
		assert.Contains(t, []string{shared.CodeUnitUnavailable, shared.CodeConcurrencyConflict}, code)
	}

	stored := e.Property(t, p.ID)
	assert.Equal(t, 1, stored.OccupiedUnits)
	unit := e.Unit(t, units[0].ID)
	require.NotNil(t, unit.TenantID)
}
