package ports

import (
	"context"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
)

// OperatorRepository defines the interface for operator account persistence.
type OperatorRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Operator, error)
	Create(ctx context.Context, op *domain.Operator) (*domain.Operator, error)
}
