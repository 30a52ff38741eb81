package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joao-fontenele/plantnet-market/internal/domain"
)

type Repository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (bool, error)
	ListExcept(ctx context.Context, email string) ([]domain.User, error)
	MarkRequested(ctx context.Context, email string) (bool, error)
	SetRole(ctx context.Context, email string, role domain.Role) (bool, error)
}

// Service implements user registration and the customer to seller
// promotion workflow.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a customer for email. Existing users are left untouched
// and reported with created=false.
func (s *Service) Register(ctx context.Context, email, name, image string) (*domain.User, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, false, fmt.Errorf("%w: missing email", domain.ErrValidation)
	}

	user := &domain.User{
		Email:     email,
		Name:      name,
		Image:     image,
		Role:      domain.RoleCustomer,
		Status:    domain.UserStatusNone,
		CreatedAt: s.now(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	if !created {
		return nil, false, nil
	}

	s.logger.Info("user registered", "email", email)
	return user, true, nil
}

func (s *Service) Role(ctx context.Context, email string) (domain.Role, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return "", fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	return user.Role, nil
}

func (s *Service) ListExcept(ctx context.Context, email string) ([]domain.User, error) {
	users, err := s.repo.ListExcept(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// RequestPromotion records a pending seller request. A second request while
// one is outstanding fails with ErrPromotionPending.
func (s *Service) RequestPromotion(ctx context.Context, email string) error {
	changed, err := s.repo.MarkRequested(ctx, email)
	if err != nil {
		return fmt.Errorf("mark requested: %w", err)
	}
	if changed {
		s.logger.Info("promotion requested", "email", email)
		return nil
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	return domain.ErrPromotionPending
}

// ApprovePromotion sets the role and marks the user Verified regardless of
// whether a request was pending. Admin grants go through here as well.
func (s *Service) ApprovePromotion(ctx context.Context, email string, role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	found, err := s.repo.SetRole(ctx, email, role)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	if !found {
		return fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}

	s.logger.Info("role assigned", "email", email, "role", role)
	return nil
}
