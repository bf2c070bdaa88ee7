package repository

import (
	"context"

	"wanderlust-service/internal/domain/entity"
)

// FetchLogRepository stores the audit trail of provider attempts
type FetchLogRepository interface {
	Record(ctx context.Context, log *entity.FetchLog) error
	Recent(ctx context.Context, provider string, limit int64) ([]entity.FetchLog, error)
}

// EventPublisher announces persisted provider data to downstream consumers
type EventPublisher interface {
	PublishSchedulesIngested(ctx context.Context, event entity.SchedulesIngested) error
}
