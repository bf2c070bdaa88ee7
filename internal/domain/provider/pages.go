package provider

import (
	"context"

	"wanderlust-service/internal/domain/entity"
)

// FetchFunc returns the page identified by cursor. The first call gets "".
type FetchFunc func(ctx context.Context, cursor string) (Page, error)

// Collect exhausts a paginated listing, stopping when no continuation is
// returned or after maxPages calls (maxPages <= 0 means one page). Records
// read before a failing page are returned together with the error.
func Collect(ctx context.Context, maxPages int, fetch FetchFunc) ([]entity.Schedule, int, error) {
	if maxPages <= 0 {
		maxPages = 1
	}

	var (
		all    []entity.Schedule
		cursor string
		pages  int
	)
	for pages < maxPages {
		if err := ctx.Err(); err != nil {
			return all, pages, err
		}
		page, err := fetch(ctx, cursor)
		if err != nil {
			return all, pages, err
		}
		pages++
		all = append(all, page.Schedules...)
		if page.Next == "" || page.Next == cursor {
			break
		}
		cursor = page.Next
	}
	return all, pages, nil
}
