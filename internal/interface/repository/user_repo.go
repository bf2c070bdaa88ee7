package repository

import (
	"context"
	"fmt"
	"time"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormUserRepository implements the UserRepository interface
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM user repository
func NewGormUserRepository(db *gorm.DB) repository.UserRepository {
	return &GormUserRepository{
		db: db,
	}
}

// Users GORM model for database mapping
type Users struct {
	ID            uint      `gorm:"column:id;primaryKey"`
	Username      string    `gorm:"column:username;size:64;uniqueIndex;not null"`
	Email         string    `gorm:"column:email;size:256"`
	Role          string    `gorm:"column:role;size:32;not null"`
	City          string    `gorm:"column:city;size:3"`
	Country       string    `gorm:"column:country;size:2"`
	DarkMode      bool      `gorm:"column:dark_mode"`
	MapMode       bool      `gorm:"column:map_mode"`
	DateTolerance int       `gorm:"column:date_tolerance"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name
func (Users) TableName() string {
	return "users"
}

func (u Users) toEntity() *entity.User {
	return &entity.User{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		City:          u.City,
		Country:       u.Country,
		DarkMode:      u.DarkMode,
		MapMode:       u.MapMode,
		DateTolerance: u.DateTolerance,
		CreatedAt:     u.CreatedAt,
	}
}

// Create inserts a new user and sets its id and creation time
func (r *GormUserRepository) Create(ctx context.Context, user *entity.User) error {
	model := Users{
		Username:      user.Username,
		Email:         user.Email,
		Role:          user.Role,
		City:          user.City,
		Country:       user.Country,
		DarkMode:      user.DarkMode,
		MapMode:       user.MapMode,
		DateTolerance: user.DateTolerance,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return dbError("create user", err)
	}

	user.ID = model.ID
	user.CreatedAt = model.CreatedAt
	return nil
}

// GetByID finds a user by id
func (r *GormUserRepository) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	var user Users
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, dbError("get user", err)
	}
	return user.toEntity(), nil
}

// GetByName finds a user by username
func (r *GormUserRepository) GetByName(ctx context.Context, username string) (*entity.User, error) {
	var user Users
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, dbError("get user by name", err)
	}
	return user.toEntity(), nil
}

// Update overwrites the mutable fields of a user
func (r *GormUserRepository) Update(ctx context.Context, user *entity.User) error {
	result := r.db.WithContext(ctx).Model(&Users{}).Where("id = ?", user.ID).
		Select("username", "email", "role", "city", "country", "dark_mode", "map_mode", "date_tolerance").
		Updates(Users{
			Username:      user.Username,
			Email:         user.Email,
			Role:          user.Role,
			City:          user.City,
			Country:       user.Country,
			DarkMode:      user.DarkMode,
			MapMode:       user.MapMode,
			DateTolerance: user.DateTolerance,
		})
	if result.Error != nil {
		return dbError("update user", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update user %d: %w", user.ID, errs.ErrNotFound)
	}
	return nil
}

// Delete removes the user with its trips, legs and leg flights
func (r *GormUserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trips []uint
		if err := tx.Model(&Trips{}).Where("user_id = ?", id).Pluck("trip_id", &trips).Error; err != nil {
			return dbError("list user trips", err)
		}
		if err := tx.Where("trip_id IN ?", trips).Delete(&LegFlight{}).Error; err != nil {
			return dbError("delete user leg flights", err)
		}
		if err := tx.Where("trip_id IN ?", trips).Delete(&TripLegs{}).Error; err != nil {
			return dbError("delete user legs", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&Trips{}).Error; err != nil {
			return dbError("delete user trips", err)
		}
		result := tx.Where("id = ?", id).Delete(&Users{})
		if result.Error != nil {
			return dbError("delete user", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("delete user %d: %w", id, errs.ErrNotFound)
		}
		return nil
	})
}
