package repository

import (
	"context"
	"time"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormScheduleRepository implements the ScheduleRepository interface
type GormScheduleRepository struct {
	db *gorm.DB
}

// NewGormScheduleRepository creates a new GORM schedule repository
func NewGormScheduleRepository(db *gorm.DB) repository.ScheduleRepository {
	return &GormScheduleRepository{
		db: db,
	}
}

// Schedules GORM model for database mapping
type Schedules struct {
	FlightID     string     `gorm:"column:flight_id;primaryKey;size:10"`
	Orig         string     `gorm:"column:orig;size:3;index"`
	Dest         string     `gorm:"column:dest;size:3;index"`
	Status       string     `gorm:"column:status;size:32"`
	DepTime      string     `gorm:"column:dep_time;size:5"`
	ArrTime      string     `gorm:"column:arr_time;size:5"`
	ArrDayOffset int        `gorm:"column:arr_day_offset;not null;default:0"`
	Airline      string     `gorm:"column:airline;size:3"`
	PlaneType    string     `gorm:"column:planetype;size:64"`
	Operates     string     `gorm:"column:operates;size:7"`
	ValidFrom    *time.Time `gorm:"column:valid_from"`
	ValidTo      *time.Time `gorm:"column:valid_to"`
	Source       string     `gorm:"column:source;size:32"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

// TableName overrides the default table name
func (Schedules) TableName() string {
	return "schedules"
}

func (s Schedules) toEntity() entity.Schedule {
	return entity.Schedule{
		FlightID:     s.FlightID,
		Origin:       s.Orig,
		Destination:  s.Dest,
		Status:       s.Status,
		DepTime:      s.DepTime,
		ArrTime:      s.ArrTime,
		ArrDayOffset: s.ArrDayOffset,
		Airline:      s.Airline,
		AircraftType: s.PlaneType,
		Operates:     s.Operates,
		ValidFrom:    s.ValidFrom,
		ValidTo:      s.ValidTo,
		Source:       s.Source,
	}
}

// Find returns the schedules matching the filter ordered by departure time
func (r *GormScheduleRepository) Find(ctx context.Context, filter repository.ScheduleFilter) ([]entity.Schedule, error) {
	query := r.db.WithContext(ctx).Model(&Schedules{})
	if len(filter.Origins) > 0 {
		query = query.Where("orig IN ?", filter.Origins)
	}
	if len(filter.Destinations) > 0 {
		query = query.Where("dest IN ?", filter.Destinations)
	}
	if filter.MinDepTime != "" {
		query = query.Where("dep_time >= ?", filter.MinDepTime)
	}
	if filter.MaxArrTime != "" {
		query = query.Where("arr_time <= ?", filter.MaxArrTime)
	}

	var rows []Schedules
	if err := query.Order("dep_time").Order("flight_id").Find(&rows).Error; err != nil {
		return nil, dbError("find schedules", err)
	}

	schedules := make([]entity.Schedule, 0, len(rows))
	for _, row := range rows {
		schedules = append(schedules, row.toEntity())
	}
	return schedules, nil
}

// Upsert writes schedules keyed by flight id. Existing rows are replaced
// and duplicates within one call resolve to the last occurrence.
func (r *GormScheduleRepository) Upsert(ctx context.Context, schedules []entity.Schedule) error {
	if len(schedules) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]Schedules, 0, len(schedules))
	for _, s := range schedules {
		rows = append(rows, Schedules{
			FlightID:     s.FlightID,
			Orig:         s.Origin,
			Dest:         s.Destination,
			Status:       s.Status,
			DepTime:      s.DepTime,
			ArrTime:      s.ArrTime,
			ArrDayOffset: s.ArrDayOffset,
			Airline:      s.Airline,
			PlaneType:    s.AircraftType,
			Operates:     s.Operates,
			ValidFrom:    s.ValidFrom,
			ValidTo:      s.ValidTo,
			Source:       s.Source,
			UpdatedAt:    now,
		})
	}
	rows = dedupe(rows, func(s Schedules) string { return s.FlightID })

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(rows, upsertBatchSize).Error
	return dbError("upsert schedules", err)
}

// Exists reports whether a schedule with the flight id is stored
func (r *GormScheduleRepository) Exists(ctx context.Context, flightID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Schedules{}).Where("flight_id = ?", flightID).Count(&count).Error
	if err != nil {
		return false, dbError("schedule exists", err)
	}
	return count > 0, nil
}
