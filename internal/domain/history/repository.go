package history

import (
	"context"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
)

// Repository appends and reads history records. There are no update or delete operations.
type Repository interface {
	// AppendUnitHistory inserts unit history records
	AppendUnitHistory(ctx context.Context, records ...*UnitHistory) error
	// AppendMovements inserts tenant movement records
	AppendMovements(ctx context.Context, records ...*TenantMovement) error
	// ListUnitHistory returns a unit's history, newest first
	ListUnitHistory(ctx context.Context, orgID, unitID uuid.UUID, filter shared.Filter) ([]UnitHistory, int64, error)
	// ListMovements returns a tenant's movements, newest first
	ListMovements(ctx context.Context, orgID, tenantID uuid.UUID, filter shared.Filter) ([]TenantMovement, int64, error)
}
