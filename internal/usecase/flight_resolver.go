package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/domain/provider"
	"wanderlust-service/internal/domain/repository"
	"wanderlust-service/pkg/logger"
	"wanderlust-service/pkg/metrics"
)

const (
	SourceStore = "store"
	SourceNone  = "none"

	// DefaultScheduleWindow is the widest window a schedule lookup may span
	DefaultScheduleWindow = 720
)

// ProviderChain hands out the providers able to answer a capability, in
// priority order
type ProviderChain interface {
	Chain(c provider.Capability) []provider.Provider
}

// FlightQuery asks which flights connect the given airports and cities.
// Timestamp is a local time: a minimum departure for Departure queries,
// a maximum arrival for Arrival queries.
type FlightQuery struct {
	Direction    entity.Direction
	FromAirports []string
	FromCities   []string
	ToAirports   []string
	ToCities     []string
	Timestamp    *time.Time
}

// FlightResolution is the answer to a FlightQuery. Source is SourceStore,
// SourceNone or the name of the provider that supplied the data.
type FlightResolution struct {
	Schedules []entity.Schedule `json:"schedules"`
	Source    string            `json:"source"`
}

// ResolverConfig tunes provider fallback
type ResolverConfig struct {
	// MaxPages caps the pages read per airport and provider
	MaxPages int
	// WindowMinutes is the schedule lookup window, at most 720
	WindowMinutes int
}

// FlightResolver answers route queries from the schedule store and falls
// back to external providers when the store has nothing.
type FlightResolver struct {
	uow      repository.UnitOfWork
	chain    ProviderChain
	fetchLog repository.FetchLogRepository
	events   repository.EventPublisher
	metrics  *metrics.Metrics
	logger   logger.Logger
	cfg      ResolverConfig
	now      func() time.Time
}

// NewFlightResolver creates a new flight resolver. fetchLog and events may be nil.
func NewFlightResolver(
	uow repository.UnitOfWork,
	chain ProviderChain,
	fetchLog repository.FetchLogRepository,
	events repository.EventPublisher,
	m *metrics.Metrics,
	logger logger.Logger,
	cfg ResolverConfig,
) *FlightResolver {
	if cfg.MaxPages < 1 {
		cfg.MaxPages = 1
	}
	if cfg.WindowMinutes <= 0 || cfg.WindowMinutes > DefaultScheduleWindow {
		cfg.WindowMinutes = DefaultScheduleWindow
	}
	return &FlightResolver{
		uow:      uow,
		chain:    chain,
		fetchLog: fetchLog,
		events:   events,
		metrics:  m,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// ResolveFlights answers q from the store when it has matching schedules.
// Otherwise the schedule providers are tried in priority order, the first
// one returning data is persisted and the store query is re-run inside the
// same transaction. No data from any provider is an empty result, not an error.
func (r *FlightResolver) ResolveFlights(ctx context.Context, q FlightQuery) (*FlightResolution, error) {
	if q.Direction != entity.Departure && q.Direction != entity.Arrival {
		return nil, fmt.Errorf("%w: direction %q", errs.ErrInvalidInput, q.Direction)
	}
	if len(q.FromAirports)+len(q.FromCities)+len(q.ToAirports)+len(q.ToCities) == 0 {
		return nil, errs.ErrMissingEndpoint
	}

	locations := r.uow.Locations()
	fromSet, err := expandEndpoints(ctx, locations, q.FromAirports, q.FromCities)
	if err != nil {
		return nil, err
	}
	toSet, err := expandEndpoints(ctx, locations, q.ToAirports, q.ToCities)
	if err != nil {
		return nil, err
	}
	if len(fromSet) == 0 && len(toSet) == 0 {
		r.logger.Info("No known airports for query", "from", q.FromCities, "to", q.ToCities)
		r.metrics.ObserveResolution(SourceNone)
		return &FlightResolution{Schedules: []entity.Schedule{}, Source: SourceNone}, nil
	}

	filter := repository.ScheduleFilter{Origins: fromSet, Destinations: toSet}
	if q.Timestamp != nil {
		if q.Direction == entity.Departure {
			filter.MinDepTime = q.Timestamp.Format("15:04")
		} else {
			filter.MaxArrTime = q.Timestamp.Format("15:04")
		}
	}

	stored, err := r.uow.Schedules().Find(ctx, filter)
	if err != nil {
		r.metrics.IncError("find_schedules")
		return nil, err
	}
	if len(stored) > 0 {
		r.logger.Debug("Resolved flights from store", "count", len(stored))
		r.metrics.ObserveResolution(SourceStore)
		return &FlightResolution{Schedules: stored, Source: SourceStore}, nil
	}

	// Anchor provider lookups on the origins when known, else on the destinations
	airports, lookup := fromSet, entity.Departure
	if len(fromSet) == 0 {
		airports, lookup = toSet, entity.Arrival
	}
	windowStart := r.windowStart(q)

	for _, p := range r.chain.Chain(provider.AirportSchedules) {
		fetched, err := r.fetchSchedules(ctx, p, airports, lookup, windowStart)
		if err != nil {
			return nil, err
		}
		if len(fetched) == 0 {
			r.logger.Info("Provider returned no schedules, trying next", "provider", p.Name())
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var result []entity.Schedule
		err = r.uow.Transaction(ctx, func(tx repository.Store) error {
			if err := tx.Schedules().Upsert(ctx, fetched); err != nil {
				return err
			}
			var err error
			result, err = tx.Schedules().Find(ctx, filter)
			return err
		})
		if err != nil {
			r.metrics.IncError("persist_schedules")
			r.logger.Error("Failed to persist provider schedules", "provider", p.Name(), "error", err)
			return nil, err
		}

		r.metrics.AddPersisted(len(fetched))
		r.metrics.ObserveResolution(p.Name())
		r.publishIngested(ctx, p.Name(), lookup, airports, fetched)

		if result == nil {
			result = []entity.Schedule{}
		}
		return &FlightResolution{Schedules: result, Source: p.Name()}, nil
	}

	r.metrics.ObserveResolution(SourceNone)
	return &FlightResolution{Schedules: []entity.Schedule{}, Source: SourceNone}, nil
}

func (r *FlightResolver) windowStart(q FlightQuery) time.Time {
	if q.Timestamp == nil {
		return r.now()
	}
	if q.Direction == entity.Arrival {
		return q.Timestamp.Add(-time.Duration(r.cfg.WindowMinutes) * time.Minute)
	}
	return *q.Timestamp
}

// fetchSchedules runs the per-airport loop against one provider. Recoverable
// failures are logged and skipped; records read before a failure are kept.
func (r *FlightResolver) fetchSchedules(ctx context.Context, p provider.Provider, airports []string, direction entity.Direction, from time.Time) ([]entity.Schedule, error) {
	var all []entity.Schedule
	for _, airport := range airports {
		start := time.Now()
		records, pages, err := provider.Collect(ctx, r.cfg.MaxPages, func(ctx context.Context, cursor string) (provider.Page, error) {
			return p.GetAirportSchedules(ctx, provider.ScheduleQuery{
				Airport:         airport,
				Direction:       direction,
				From:            &from,
				DurationMinutes: r.cfg.WindowMinutes,
				Cursor:          cursor,
			})
		})
		r.recordFetch(ctx, p.Name(), airport, len(records), pages, time.Since(start), err)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			if !errs.IsRecoverable(err) {
				return nil, err
			}
			r.logger.Warn("Provider schedule lookup failed", "provider", p.Name(), "airport", airport, "error", err)
		}
		all = append(all, records...)
	}
	return all, nil
}

func (r *FlightResolver) recordFetch(ctx context.Context, name, airport string, records, pages int, elapsed time.Duration, err error) {
	if r.fetchLog == nil {
		return
	}
	entry := &entity.FetchLog{
		Provider:   name,
		Capability: string(provider.AirportSchedules),
		Airport:    airport,
		Outcome:    fetchOutcome(records, err),
		Records:    records,
		Pages:      pages,
		DurationMs: elapsed.Milliseconds(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if logErr := r.fetchLog.Record(context.WithoutCancel(ctx), entry); logErr != nil {
		r.logger.Warn("Failed to record provider fetch", "provider", name, "error", logErr)
	}
}

func fetchOutcome(records int, err error) string {
	switch {
	case err != nil && records > 0:
		return "partial"
	case err != nil && errors.Is(err, errs.ErrUnsupported):
		return "unsupported"
	case err != nil:
		return "error"
	case records == 0:
		return "empty"
	}
	return "ok"
}

func (r *FlightResolver) publishIngested(ctx context.Context, name string, direction entity.Direction, airports []string, schedules []entity.Schedule) {
	if r.events == nil {
		return
	}
	ids := make([]string, 0, len(schedules))
	for _, s := range schedules {
		ids = append(ids, s.FlightID)
	}
	event := entity.SchedulesIngested{
		Provider:   name,
		Direction:  string(direction),
		Airports:   airports,
		FlightIDs:  ids,
		IngestedAt: time.Now().UTC(),
	}
	if err := r.events.PublishSchedulesIngested(ctx, event); err != nil {
		r.logger.Warn("Failed to publish ingestion event", "provider", name, "error", err)
	}
}

// expandEndpoints unions explicit airport codes with the airports of the
// given cities. Codes are upper-cased and de-duplicated in first-seen
// order. Unknown cities contribute nothing.
func expandEndpoints(ctx context.Context, locations repository.LocationRepository, airports, cities []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(code string) {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" || seen[code] {
			return
		}
		seen[code] = true
		out = append(out, code)
	}

	for _, a := range airports {
		add(a)
	}
	for _, c := range cities {
		city, err := locations.GetCity(ctx, c)
		if errors.Is(err, errs.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, code := range city.AirportCodes() {
			add(code)
		}
	}
	return out, nil
}
