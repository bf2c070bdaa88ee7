package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/domain/repository"
	"wanderlust-service/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// UserService manages users and their home airports
type UserService struct {
	uow      repository.UnitOfWork
	validate *validator.Validate
	radiusKm float64
	logger   logger.Logger
}

// NewUserService creates a new user service
func NewUserService(uow repository.UnitOfWork, radiusKm float64, logger logger.Logger) *UserService {
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	return &UserService{
		uow:      uow,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		radiusKm: radiusKm,
		logger:   logger,
	}
}

func (s *UserService) check(user *entity.User) error {
	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.TrimSpace(user.Email)
	user.City = strings.ToUpper(strings.TrimSpace(user.City))
	user.Country = strings.ToUpper(strings.TrimSpace(user.Country))
	if user.Role == "" {
		user.Role = entity.RoleStandard
	}

	if err := s.validate.Struct(user); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}
	if user.Role == entity.RoleStandard && user.Email == "" {
		return fmt.Errorf("%w: email is required for %s users", errs.ErrInvalidInput, entity.RoleStandard)
	}
	return nil
}

// Create validates and stores a new user. Usernames are unique.
func (s *UserService) Create(ctx context.Context, user *entity.User) error {
	if err := s.check(user); err != nil {
		return err
	}
	return s.uow.Transaction(ctx, func(tx repository.Store) error {
		if err := ensureNameFree(ctx, tx.Users(), user.Username, 0); err != nil {
			return err
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		s.logger.Info("User created", "id", user.ID, "username", user.Username)
		return nil
	})
}

// Get returns a user by id
func (s *UserService) Get(ctx context.Context, id uint) (*entity.User, error) {
	return s.uow.Users().GetByID(ctx, id)
}

// GetByName returns a user by username
func (s *UserService) GetByName(ctx context.Context, username string) (*entity.User, error) {
	return s.uow.Users().GetByName(ctx, strings.TrimSpace(username))
}

// Update validates and overwrites an existing user
func (s *UserService) Update(ctx context.Context, user *entity.User) error {
	if user.ID == 0 {
		return fmt.Errorf("%w: user id is required", errs.ErrInvalidInput)
	}
	if err := s.check(user); err != nil {
		return err
	}
	return s.uow.Transaction(ctx, func(tx repository.Store) error {
		if err := ensureNameFree(ctx, tx.Users(), user.Username, user.ID); err != nil {
			return err
		}
		return tx.Users().Update(ctx, user)
	})
}

// Delete removes a user and everything the user owns
func (s *UserService) Delete(ctx context.Context, id uint) error {
	if err := s.uow.Users().Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("User deleted", "id", id)
	return nil
}

// HomeAirports returns the stored airports near the user's home city
func (s *UserService) HomeAirports(ctx context.Context, id uint) ([]entity.Airport, error) {
	user, err := s.uow.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.City == "" {
		return nil, fmt.Errorf("%w: user %d has no home city", errs.ErrInvalidInput, id)
	}
	city, err := s.uow.Locations().GetCity(ctx, user.City)
	if err != nil {
		return nil, err
	}
	return storedAirportsNear(ctx, s.uow.Locations(), city.Coordinates, s.radiusKm)
}

func ensureNameFree(ctx context.Context, users repository.UserRepository, username string, self uint) error {
	existing, err := users.GetByName(ctx, username)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return fmt.Errorf("%w: username %q is taken", errs.ErrConflict, username)
	}
	return nil
}
