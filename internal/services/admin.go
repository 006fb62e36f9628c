package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/staffdir/apiserver/internal/store"
	"github.com/staffdir/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// AdminRepository defines persistence operations for admin accounts.
type AdminRepository interface {
	GetByID(ctx context.Context, id int) (types.Admin, error)
	GetByUsername(ctx context.Context, username string) (types.Admin, error)
	First(ctx context.Context) (types.Admin, error)
	Create(ctx context.Context, admin types.Admin) (types.Admin, error)
}

// AdminService encapsulates admin account use-cases.
type AdminService struct {
	repo   AdminRepository
	logger *slog.Logger
}

func NewAdminService(repo AdminRepository, logger *slog.Logger) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{repo: repo, logger: logger}
}

func (s *AdminService) GetByID(ctx context.Context, id int) (types.Admin, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AdminService) GetByUsername(ctx context.Context, username string) (types.Admin, error) {
	return s.repo.GetByUsername(ctx, username)
}

// EnsureDefaultAdmin seeds the initial admin account when none exists
// yet. Idempotent across restarts: a second run finds the first admin
// and does nothing.
func (s *AdminService) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	_, err := s.repo.First(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin, err := s.repo.Create(ctx, types.Admin{
		Username:     username,
		PasswordHash: string(hashed),
	})
	if err != nil {
		return err
	}

	s.logger.Info("created initial admin account", "username", admin.Username)
	return nil
}
