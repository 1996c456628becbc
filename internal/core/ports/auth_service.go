package ports

import (
	"context"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, email, password, role string) (*domain.Operator, error)
	Login(ctx context.Context, email, password string) (string, *domain.Operator, error)
}
