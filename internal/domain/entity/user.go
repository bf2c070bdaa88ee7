package entity

import "time"

const RoleStandard = "standard"

// User owns zero or more trips
type User struct {
	ID            uint      `json:"id"`
	Username      string    `json:"username" validate:"required,max=64"`
	Email         string    `json:"email,omitempty" validate:"omitempty,email,max=256"`
	Role          string    `json:"role" validate:"required,max=32"`
	City          string    `json:"city,omitempty" validate:"omitempty,len=3"`
	Country       string    `json:"country,omitempty" validate:"omitempty,len=2"`
	DarkMode      bool      `json:"dark_mode"`
	MapMode       bool      `json:"map_mode"`
	DateTolerance int       `json:"date_tolerance" validate:"gte=0"`
	CreatedAt     time.Time `json:"created_at"`
}
