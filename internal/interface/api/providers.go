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

const (
	defaultFetchLimit = 20
	maxFetchLimit     = 200
)

// ProviderFetches handles GET /api/v1/providers/:name/fetches?limit=,
// the latest recorded attempts against one provider
func (s *Server) ProviderFetches(c echo.Context) error {
	if s.FetchLog == nil {
		return fmt.Errorf("fetch history: %w", errs.ErrUnsupported)
	}

	limit := int64(defaultFetchLimit)
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > maxFetchLimit {
			return fmt.Errorf("%w: limit must be between 1 and %d", errs.ErrInvalidInput, maxFetchLimit)
		}
		limit = n
	}

	name := strings.ToLower(strings.TrimSpace(c.Param("name")))
	fetches, err := s.FetchLog.Recent(c.Request().Context(), name, limit)
	if err != nil {
		return err
	}
	if fetches == nil {
		fetches = []entity.FetchLog{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"provider": name, "fetches": fetches})
}
