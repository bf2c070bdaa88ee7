package usecase

import (
	"context"
	"fmt"
	"strings"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/domain/provider"
	"wanderlust-service/internal/domain/repository"
	"wanderlust-service/pkg/logger"
)

// ImportKind names one master-data feed
type ImportKind string

const (
	ImportCountries ImportKind = "countries"
	ImportCities    ImportKind = "cities"
	ImportAirports  ImportKind = "airports"
	ImportAirlines  ImportKind = "airlines"
	ImportRoutes    ImportKind = "routes"
)

// ImportKinds lists every feed in load order
var ImportKinds = []ImportKind{ImportCountries, ImportCities, ImportAirports, ImportAirlines, ImportRoutes}

// MasterDataImporter loads the location catalogue and provider routes
// into the store
type MasterDataImporter struct {
	uow       repository.UnitOfWork
	countries provider.CountrySource
	catalogue provider.CatalogueSource
	chain     ProviderChain
	maxPages  int
	logger    logger.Logger
}

// NewMasterDataImporter creates a new importer. maxPages bounds every
// paginated listing.
func NewMasterDataImporter(
	uow repository.UnitOfWork,
	countries provider.CountrySource,
	catalogue provider.CatalogueSource,
	chain ProviderChain,
	maxPages int,
	logger logger.Logger,
) *MasterDataImporter {
	if maxPages < 1 {
		maxPages = 1
	}
	return &MasterDataImporter{
		uow:       uow,
		countries: countries,
		catalogue: catalogue,
		chain:     chain,
		maxPages:  maxPages,
		logger:    logger,
	}
}

// Import loads one feed and returns the number of records written.
// airport is only used by ImportRoutes.
func (m *MasterDataImporter) Import(ctx context.Context, kind ImportKind, airport string) (int, error) {
	switch kind {
	case ImportCountries:
		return m.ImportCountries(ctx)
	case ImportCities:
		return m.ImportCities(ctx)
	case ImportAirports:
		return m.ImportAirports(ctx)
	case ImportAirlines:
		return m.ImportAirlines(ctx)
	case ImportRoutes:
		return m.ImportRoutes(ctx, airport)
	}
	return 0, fmt.Errorf("%w: import kind %q", errs.ErrInvalidInput, kind)
}

// ImportCountries loads the country list
func (m *MasterDataImporter) ImportCountries(ctx context.Context) (int, error) {
	if m.countries == nil {
		return 0, fmt.Errorf("countries: %w", errs.ErrUnsupported)
	}
	countries, err := m.countries.ListCountries(ctx)
	if err != nil {
		return 0, err
	}
	if err := m.uow.Locations().UpsertCountries(ctx, countries); err != nil {
		return 0, err
	}
	m.logger.Info("Imported countries", "count", len(countries))
	return len(countries), nil
}

// ImportCities loads the city catalogue page by page
func (m *MasterDataImporter) ImportCities(ctx context.Context) (int, error) {
	if m.catalogue == nil {
		return 0, fmt.Errorf("cities: %w", errs.ErrUnsupported)
	}
	return m.paged(ctx, "cities", func(ctx context.Context, cursor string) (int, string, error) {
		page, err := m.catalogue.ListCities(ctx, cursor)
		if err != nil {
			return 0, "", err
		}
		return len(page.Cities), page.Next, m.uow.Locations().UpsertCities(ctx, page.Cities)
	})
}

// ImportAirports loads the airport catalogue page by page
func (m *MasterDataImporter) ImportAirports(ctx context.Context) (int, error) {
	if m.catalogue == nil {
		return 0, fmt.Errorf("airports: %w", errs.ErrUnsupported)
	}
	return m.paged(ctx, "airports", func(ctx context.Context, cursor string) (int, string, error) {
		page, err := m.catalogue.ListAirports(ctx, cursor)
		if err != nil {
			return 0, "", err
		}
		return len(page.Airports), page.Next, m.uow.Locations().UpsertAirports(ctx, page.Airports)
	})
}

// ImportAirlines loads the airline catalogue page by page. The source
// already drops inactive and non-passenger carriers.
func (m *MasterDataImporter) ImportAirlines(ctx context.Context) (int, error) {
	if m.catalogue == nil {
		return 0, fmt.Errorf("airlines: %w", errs.ErrUnsupported)
	}
	return m.paged(ctx, "airlines", func(ctx context.Context, cursor string) (int, string, error) {
		page, err := m.catalogue.ListAirlines(ctx, cursor)
		if err != nil {
			return 0, "", err
		}
		return len(page.Airlines), page.Next, m.uow.Locations().UpsertAirlines(ctx, page.Airlines)
	})
}

func (m *MasterDataImporter) paged(ctx context.Context, kind string, step func(ctx context.Context, cursor string) (int, string, error)) (int, error) {
	total, cursor := 0, ""
	for page := 0; page < m.maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, next, err := step(ctx, cursor)
		if err != nil {
			return total, fmt.Errorf("import %s page %d: %w", kind, page+1, err)
		}
		total += n
		m.logger.Debug("Imported page", "kind", kind, "page", page+1, "records", n)
		if next == "" || next == cursor {
			break
		}
		cursor = next
	}
	m.logger.Info("Import finished", "kind", kind, "count", total)
	return total, nil
}

// ImportRoutes stores the routes flown from airport using the first
// routes provider that answers
func (m *MasterDataImporter) ImportRoutes(ctx context.Context, airport string) (int, error) {
	airport = strings.ToUpper(strings.TrimSpace(airport))
	if len(airport) != 3 {
		return 0, fmt.Errorf("%w: airport code %q", errs.ErrInvalidInput, airport)
	}

	var lastErr error
	for _, p := range m.chain.Chain(provider.RoutesFromAirport) {
		routes, _, err := provider.Collect(ctx, m.maxPages, func(ctx context.Context, cursor string) (provider.Page, error) {
			return p.GetRoutesFromAirport(ctx, airport, "", cursor)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return 0, ctxErr
			}
			if !errs.IsRecoverable(err) {
				return 0, err
			}
			m.logger.Warn("Routes provider failed", "provider", p.Name(), "airport", airport, "error", err)
			lastErr = err
		}
		if len(routes) == 0 {
			continue
		}
		if err := m.persistRoutes(ctx, routes); err != nil {
			return 0, err
		}
		m.logger.Info("Imported routes", "provider", p.Name(), "airport", airport, "count", len(routes))
		return len(routes), nil
	}
	if lastErr != nil {
		return 0, lastErr
	}
	return 0, nil
}

func (m *MasterDataImporter) persistRoutes(ctx context.Context, routes []entity.Schedule) error {
	return m.uow.Transaction(ctx, func(tx repository.Store) error {
		return tx.Schedules().Upsert(ctx, routes)
	})
}
