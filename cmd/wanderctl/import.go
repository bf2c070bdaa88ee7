package main

import (
	"fmt"
	"strings"

	"wanderlust-service/internal/domain/provider"
	"wanderlust-service/internal/infrastructure/persistence"
	"wanderlust-service/internal/infrastructure/router"
	gormRepo "wanderlust-service/internal/interface/repository"
	"wanderlust-service/internal/usecase"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func parseImportKind(raw string) (usecase.ImportKind, error) {
	for _, k := range usecase.ImportKinds {
		if strings.EqualFold(raw, string(k)) {
			return k, nil
		}
	}
	names := make([]string, len(usecase.ImportKinds))
	for i, k := range usecase.ImportKinds {
		names[i] = string(k)
	}
	return "", fmt.Errorf("unknown import kind %q, expected one of %s", raw, strings.Join(names, ", "))
}

func getImportCmd(e *env) *cobra.Command {
	var airport string
	cmd := &cobra.Command{
		Use:   "import <kind>",
		Short: "Import master data from the providers",
		Long: `Import loads one master data feed into the database.

Kinds:
  countries  country list from AirLabs
  cities     city catalogue from AviationStack
  airports   airport catalogue from AviationStack
  airlines   active passenger airlines from AviationStack
  routes     scheduled routes from one airport, needs --airport

Examples:
  wanderctl import cities
  wanderctl import routes --airport BLR`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseImportKind(args[0])
			if err != nil {
				return err
			}
			if kind == usecase.ImportRoutes && airport == "" {
				return fmt.Errorf("routes import needs --airport")
			}

			ctx := cmd.Context()
			db, err := persistence.NewPostgres(e.cfg.PostgresURI, e.cfg.LogLevel == "debug")
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			built, err := router.BuildProviders(ctx, e.cfg, nil, e.log)
			if err != nil {
				return err
			}
			var countries provider.CountrySource
			if built.AirLabs != nil {
				countries = built.AirLabs
			}
			var catalogue provider.CatalogueSource
			if built.AviationStack != nil {
				catalogue = built.AviationStack
			}

			importer := usecase.NewMasterDataImporter(gormRepo.NewGormUnitOfWork(db), countries, catalogue, built.Router, e.cfg.MaxPages, e.log)
			n, err := importer.Import(ctx, kind, airport)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s %s\n", humanize.Comma(int64(n)), kind)
			return nil
		},
	}
	cmd.Flags().StringVar(&airport, "airport", "", "IATA code of the airport for a routes import")
	return cmd
}
