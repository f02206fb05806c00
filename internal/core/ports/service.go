package ports

import (
	"context"

	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (domain.Session, error)
	Logout(ctx context.Context) error
}
