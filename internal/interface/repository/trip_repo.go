package repository

import (
	"context"
	"fmt"
	"time"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTripRepository implements the TripRepository interface
type GormTripRepository struct {
	db *gorm.DB
}

// NewGormTripRepository creates a new GORM trip repository
func NewGormTripRepository(db *gorm.DB) repository.TripRepository {
	return &GormTripRepository{
		db: db,
	}
}

// Trips GORM model for database mapping
type Trips struct {
	TripID    uint      `gorm:"column:trip_id;primaryKey"`
	UserID    uint      `gorm:"column:user_id;index;not null"`
	Name      string    `gorm:"column:name;size:128"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name
func (Trips) TableName() string {
	return "trips"
}

// TripLegs GORM model for database mapping
type TripLegs struct {
	TripID          uint       `gorm:"column:trip_id;primaryKey;autoIncrement:false"`
	LegNo           int        `gorm:"column:leg_no;primaryKey;autoIncrement:false"`
	Mode            string     `gorm:"column:mode;size:16;default:flight"`
	OriginCity      string     `gorm:"column:origin_city;size:3"`
	DestinationCity string     `gorm:"column:destination_city;size:3"`
	LegStart        *time.Time `gorm:"column:leg_start"`
	LegStop         *time.Time `gorm:"column:leg_stop"`
	SavedAt         time.Time  `gorm:"column:saved_at"`
}

// TableName overrides the default table name
func (TripLegs) TableName() string {
	return "trip_legs"
}

// LegFlight GORM model for database mapping
type LegFlight struct {
	TripID   uint   `gorm:"column:trip_id;primaryKey;autoIncrement:false"`
	LegNo    int    `gorm:"column:leg_no;primaryKey;autoIncrement:false"`
	FlightID string `gorm:"column:flight_id;size:10;index;not null"`
}

// TableName overrides the default table name
func (LegFlight) TableName() string {
	return "leg_flight"
}

func legModel(leg *entity.TripLeg) TripLegs {
	mode := leg.Mode
	if mode == "" {
		mode = entity.DefaultTravelMode
	}
	return TripLegs{
		TripID:          leg.TripID,
		LegNo:           leg.LegNo,
		Mode:            mode,
		OriginCity:      leg.OriginCity,
		DestinationCity: leg.DestinationCity,
		LegStart:        leg.LegStart,
		LegStop:         leg.LegStop,
		SavedAt:         leg.SavedAt,
	}
}

// Create inserts a trip with its legs and flights and sets the trip id
func (r *GormTripRepository) Create(ctx context.Context, trip *entity.Trip) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := Trips{UserID: trip.UserID, Name: trip.Name}
		if err := tx.Create(&model).Error; err != nil {
			return dbError("create trip", err)
		}
		trip.ID = model.TripID
		trip.CreatedAt = model.CreatedAt

		repo := &GormTripRepository{db: tx}
		for i := range trip.Legs {
			leg := &trip.Legs[i]
			leg.TripID = trip.ID
			if err := repo.InsertLeg(ctx, leg); err != nil {
				return err
			}
			if leg.Flight != nil {
				leg.Flight.TripID, leg.Flight.LegNo = trip.ID, leg.LegNo
				if err := repo.SetFlight(ctx, leg.Flight); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// GetByID finds a trip by id with legs ordered by leg number
func (r *GormTripRepository) GetByID(ctx context.Context, id uint) (*entity.Trip, error) {
	var model Trips
	if err := r.db.WithContext(ctx).Where("trip_id = ?", id).First(&model).Error; err != nil {
		return nil, dbError("get trip", err)
	}
	trips, err := r.withLegs(ctx, []Trips{model})
	if err != nil {
		return nil, err
	}
	return &trips[0], nil
}

// ListByUser returns the user's trips, newest first
func (r *GormTripRepository) ListByUser(ctx context.Context, userID uint) ([]entity.Trip, error) {
	var models []Trips
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Order("trip_id DESC").Find(&models).Error
	if err != nil {
		return nil, dbError("list trips", err)
	}
	return r.withLegs(ctx, models)
}

func (r *GormTripRepository) withLegs(ctx context.Context, models []Trips) ([]entity.Trip, error) {
	if len(models) == 0 {
		return []entity.Trip{}, nil
	}
	ids := make([]uint, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.TripID)
	}

	db := r.db.WithContext(ctx)
	var legs []TripLegs
	if err := db.Where("trip_id IN ?", ids).Order("trip_id").Order("leg_no").Find(&legs).Error; err != nil {
		return nil, dbError("get trip legs", err)
	}
	var flights []LegFlight
	if err := db.Where("trip_id IN ?", ids).Find(&flights).Error; err != nil {
		return nil, dbError("get leg flights", err)
	}

	type legKey struct {
		trip uint
		leg  int
	}
	flightByLeg := make(map[legKey]LegFlight, len(flights))
	for _, f := range flights {
		flightByLeg[legKey{f.TripID, f.LegNo}] = f
	}
	legsByTrip := make(map[uint][]entity.TripLeg, len(models))
	for _, l := range legs {
		leg := entity.TripLeg{
			TripID:          l.TripID,
			LegNo:           l.LegNo,
			Mode:            l.Mode,
			OriginCity:      l.OriginCity,
			DestinationCity: l.DestinationCity,
			LegStart:        l.LegStart,
			LegStop:         l.LegStop,
			SavedAt:         l.SavedAt,
		}
		if f, ok := flightByLeg[legKey{l.TripID, l.LegNo}]; ok {
			leg.Flight = &entity.LegFlight{TripID: f.TripID, LegNo: f.LegNo, FlightID: f.FlightID}
		}
		legsByTrip[l.TripID] = append(legsByTrip[l.TripID], leg)
	}

	trips := make([]entity.Trip, 0, len(models))
	for _, m := range models {
		trips = append(trips, entity.Trip{
			ID:        m.TripID,
			UserID:    m.UserID,
			Name:      m.Name,
			CreatedAt: m.CreatedAt,
			Legs:      legsByTrip[m.TripID],
		})
	}
	return trips, nil
}

// UpdateHeader renames a trip
func (r *GormTripRepository) UpdateHeader(ctx context.Context, trip *entity.Trip) error {
	result := r.db.WithContext(ctx).Model(&Trips{}).Where("trip_id = ?", trip.ID).Update("name", trip.Name)
	if result.Error != nil {
		return dbError("update trip", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update trip %d: %w", trip.ID, errs.ErrNotFound)
	}
	return nil
}

// Delete removes a trip with its legs and flights
func (r *GormTripRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trip_id = ?", id).Delete(&LegFlight{}).Error; err != nil {
			return dbError("delete trip flights", err)
		}
		if err := tx.Where("trip_id = ?", id).Delete(&TripLegs{}).Error; err != nil {
			return dbError("delete trip legs", err)
		}
		result := tx.Where("trip_id = ?", id).Delete(&Trips{})
		if result.Error != nil {
			return dbError("delete trip", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("delete trip %d: %w", id, errs.ErrNotFound)
		}
		return nil
	})
}

// MaxLegNo returns the highest leg number of a trip, 0 without legs
func (r *GormTripRepository) MaxLegNo(ctx context.Context, tripID uint) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&TripLegs{}).Where("trip_id = ?", tripID).
		Select("COALESCE(MAX(leg_no), 0)").Scan(&max).Error
	if err != nil {
		return 0, dbError("max leg number", err)
	}
	return max, nil
}

// InsertLeg adds a leg. The leg key must be free.
func (r *GormTripRepository) InsertLeg(ctx context.Context, leg *entity.TripLeg) error {
	if leg.SavedAt.IsZero() {
		leg.SavedAt = time.Now().UTC()
	}
	if leg.Mode == "" {
		leg.Mode = entity.DefaultTravelMode
	}
	model := legModel(leg)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return dbError("insert leg", err)
	}
	return nil
}

// UpdateLeg overwrites an existing leg
func (r *GormTripRepository) UpdateLeg(ctx context.Context, leg *entity.TripLeg) error {
	leg.SavedAt = time.Now().UTC()
	if leg.Mode == "" {
		leg.Mode = entity.DefaultTravelMode
	}
	result := r.db.WithContext(ctx).Model(&TripLegs{}).
		Where("trip_id = ? AND leg_no = ?", leg.TripID, leg.LegNo).
		Select("mode", "origin_city", "destination_city", "leg_start", "leg_stop", "saved_at").
		Updates(legModel(leg))
	if result.Error != nil {
		return dbError("update leg", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update leg %d/%d: %w", leg.TripID, leg.LegNo, errs.ErrNotFound)
	}
	return nil
}

// DeleteLeg removes a leg and its flight
func (r *GormTripRepository) DeleteLeg(ctx context.Context, tripID uint, legNo int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trip_id = ? AND leg_no = ?", tripID, legNo).Delete(&LegFlight{}).Error; err != nil {
			return dbError("delete leg flight", err)
		}
		result := tx.Where("trip_id = ? AND leg_no = ?", tripID, legNo).Delete(&TripLegs{})
		if result.Error != nil {
			return dbError("delete leg", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("delete leg %d/%d: %w", tripID, legNo, errs.ErrNotFound)
		}
		return nil
	})
}

// SetFlight attaches or replaces the flight of a leg
func (r *GormTripRepository) SetFlight(ctx context.Context, flight *entity.LegFlight) error {
	model := LegFlight{TripID: flight.TripID, LegNo: flight.LegNo, FlightID: flight.FlightID}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error
	return dbError("set leg flight", err)
}

// DeleteFlight detaches the flight of a leg
func (r *GormTripRepository) DeleteFlight(ctx context.Context, tripID uint, legNo int) error {
	result := r.db.WithContext(ctx).Where("trip_id = ? AND leg_no = ?", tripID, legNo).Delete(&LegFlight{})
	if result.Error != nil {
		return dbError("delete leg flight", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete leg flight %d/%d: %w", tripID, legNo, errs.ErrNotFound)
	}
	return nil
}
