//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/samirrijal/mapnav/internal/adapters/postgres"
	"github.com/samirrijal/mapnav/internal/core/domain"
	"github.com/samirrijal/mapnav/internal/pkg/config"
)

// setupTestDB connects to the configured database and empties the locations table.
// The schema must already be applied with `migrate up`.
func setupTestDB(t *testing.T) *postgres.DB {
	t.Helper()
	cfg, err := config.Load("mapnav-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	if _, err := db.Pool.Exec(ctx, `TRUNCATE locations RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

func TestLocationRepo_InsertAndList(t *testing.T) {
	repo := postgres.NewLocationRepo(setupTestDB(t))
	ctx := context.Background()

	first := &domain.Location{Name: "Times Square", Latitude: 40.7589, Longitude: -73.9851, Type: domain.TypeLandmark, Description: "test"}
	second := &domain.Location{Name: "Edge", Latitude: -90, Longitude: 180, Type: domain.TypeOther}
	for _, l := range []*domain.Location{first, second} {
		if err := repo.Insert(ctx, l); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if l.ID == "" || l.CreatedAt.IsZero() {
			t.Fatalf("expected id and created_at, got %+v", l)
		}
	}

	locs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(locs) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(locs))
	}
	if locs[0].ID != first.ID || locs[1].ID != second.ID {
		t.Errorf("expected insertion order, got %s, %s", locs[0].ID, locs[1].ID)
	}
	got := locs[0]
	if got.Name != first.Name || got.Latitude != first.Latitude || got.Longitude != first.Longitude ||
		got.Type != first.Type || got.Description != first.Description {
		t.Errorf("round trip mismatch: %+v vs %+v", got, *first)
	}
	if locs[1].Description != "" {
		t.Errorf("expected empty description, got %q", locs[1].Description)
	}
}

func TestLocationRepo_EmptyList(t *testing.T) {
	repo := postgres.NewLocationRepo(setupTestDB(t))

	locs, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if locs == nil || len(locs) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", locs)
	}
}

func TestLocationRepo_CheckConstraintRejectsOutOfRange(t *testing.T) {
	repo := postgres.NewLocationRepo(setupTestDB(t))

	err := repo.Insert(context.Background(), &domain.Location{Name: "Bad", Latitude: 91, Type: domain.TypeOther})
	if err == nil {
		t.Fatal("expected check constraint violation")
	}
}

func TestLocationRepo_ConcurrentInserts(t *testing.T) {
	repo := postgres.NewLocationRepo(setupTestDB(t))
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.Insert(ctx, &domain.Location{Name: fmt.Sprintf("p%d", i), Type: domain.TypeOther})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	locs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	seen := map[string]bool{}
	for _, l := range locs {
		seen[l.ID] = true
	}
	if len(locs) != n || len(seen) != n {
		t.Errorf("expected %d distinct locations, got %d (%d ids)", n, len(locs), len(seen))
	}
}
