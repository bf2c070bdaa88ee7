package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"

	"github.com/labstack/echo/v4"
)

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errs.ErrInvalidInput, name)
	}
	return uint(id), nil
}

// CreateUser handles POST /api/v1/users
func (s *Server) CreateUser(c echo.Context) error {
	var user entity.User
	if err := c.Bind(&user); err != nil {
		return err
	}
	user.ID = 0
	if err := s.Users.Create(c.Request().Context(), &user); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// UpdateUser handles PUT /api/v1/users
func (s *Server) UpdateUser(c echo.Context) error {
	var user entity.User
	if err := c.Bind(&user); err != nil {
		return err
	}
	if err := s.Users.Update(c.Request().Context(), &user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// GetUser handles GET /api/v1/users/:user where :user is a username or id
func (s *Server) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	key := strings.TrimSpace(c.Param("user"))

	var (
		user *entity.User
		err  error
	)
	if id, convErr := strconv.ParseUint(key, 10, 64); convErr == nil && id > 0 {
		user, err = s.Users.Get(ctx, uint(id))
	} else {
		user, err = s.Users.GetByName(ctx, key)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// HomeAirports handles GET /api/v1/users/:user/home
func (s *Server) HomeAirports(c echo.Context) error {
	id, err := pathID(c, "user")
	if err != nil {
		return err
	}
	airports, err := s.Users.HomeAirports(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"airports": airports})
}

// DeleteUser handles DELETE /api/v1/users/:user
func (s *Server) DeleteUser(c echo.Context) error {
	id, err := pathID(c, "user")
	if err != nil {
		return err
	}
	if err := s.Users.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
