// Command checkdb verifies the configured store accepts a write and can list it back.
// The test record is kept so it shows up in clients.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	mongoadapter "github.com/samirrijal/mapnav/internal/adapters/mongo"
	"github.com/samirrijal/mapnav/internal/adapters/postgres"
	"github.com/samirrijal/mapnav/internal/core/domain"
	"github.com/samirrijal/mapnav/internal/core/ports"
	"github.com/samirrijal/mapnav/internal/core/usecases"
	"github.com/samirrijal/mapnav/internal/pkg/config"
	"github.com/samirrijal/mapnav/internal/pkg/logging"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred closes always execute.
func run() int {
	cfg, err := config.Load("mapnav-checkdb")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	logging.Setup(cfg.Log.Level, "text")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.Info("connecting", "driver", cfg.Database.Driver)
	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		slog.Error("check failed", "error", err)
		return 1
	}
	defer closeRepo()
	slog.Info("connected")

	if err := check(ctx, repo); err != nil {
		slog.Error("check failed", "error", err)
		return 1
	}
	return 0
}

func openRepository(ctx context.Context, cfg *config.Config) (ports.LocationRepository, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		client, err := mongoadapter.New(ctx, cfg.Database.MongoURI, cfg.Database.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		return mongoadapter.NewLocationRepo(client), client.Close, nil
	default:
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewLocationRepo(db), db.Close, nil
	}
}

// check saves the Times Square test record and lists the collection back.
func check(ctx context.Context, repo ports.LocationRepository) error {
	svc := usecases.NewLocationService(repo, nil, nil)

	lat, lng := 40.7589, -73.9851
	loc, err := svc.CreateLocation(ctx, domain.LocationInput{
		Name:        "Test Location - Times Square",
		Latitude:    &lat,
		Longitude:   &lng,
		Type:        domain.TypeLandmark,
		Description: "Test location for database connection",
	})
	if err != nil {
		return err
	}
	slog.Info("test location saved", "id", loc.ID, "created_at", loc.CreatedAt)

	all, err := svc.ListLocations(ctx)
	if err != nil {
		return err
	}
	found := false
	for _, l := range all {
		found = found || l.ID == loc.ID
		slog.Info("location", "id", l.ID, "name", l.Name, "type", l.Type, "lat", l.Latitude, "lng", l.Longitude)
	}
	if !found {
		return fmt.Errorf("saved location %s missing from list", loc.ID)
	}
	slog.Info("check passed", "count", len(all))
	return nil
}
