package postgres

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"booking-service/internal/app/service"
	"booking-service/internal/domain"
	"booking-service/internal/infra/postgres/migrations"
)

// setupTestDB creates a PostgreSQL testcontainer, runs the migrations and
// returns a connected GORM DB.
//
// Prerequisites:
//   - Docker must be running
//
// OR
//   - Skip tests with: go test -short
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgresContainer.Run(ctx,
		"postgres:16-alpine",
		postgresContainer.WithDatabase("testdb"),
		postgresContainer.WithUsername("testuser"),
		postgresContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf(`Failed to start PostgreSQL container: %v

Docker Prerequisites:
1. Ensure Docker is running
2. OR skip integration tests: go test -short

`, err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	db, err := Open(postgresDriver.Open(connStr), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(20)

	require.NoError(t, migrations.Run(db), "Failed to run migrations")

	cleanup := func() {
		_ = Close(db)
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

func newTestReservationService(db *gorm.DB) *service.ReservationService {
	return service.NewReservationService(
		NewTxManager(db),
		NewResourceRepository(db),
		NewReservationRepository(db),
		zap.NewNop(),
	)
}

func TestMigrations_SeedResource(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	var model ResourceModel
	require.NoError(t, db.Where("name = ?", "R1").First(&model).Error)
	assert.True(t, model.Available)
	assert.Equal(t, int64(0), model.Version)

	// Re-running is a no-op.
	require.NoError(t, migrations.Run(db))
}

func TestResourceRepository_Reads(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewResourceRepository(db)

	created, err := repo.Create(ctx, "Room 101")
	require.NoError(t, err)
	assert.True(t, created.Available)

	_, err = repo.Create(ctx, "Room 101")
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Room 101", got.Name)

	missing, err := repo.GetByID(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.MarkUnavailable(ctx, created.ID))

	available, err := repo.FindAvailableByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, available, "unavailable resources are filtered out")

	got, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Equal(t, int64(1), got.Version)
}

func TestResourceRepository_ConditionalMarkUnavailable(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewResourceRepository(db)
	r, err := repo.Create(ctx, "Room 202")
	require.NoError(t, err)

	affected, err := repo.ConditionalMarkUnavailable(ctx, r.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected, "stale version must not match")

	affected, err = repo.ConditionalMarkUnavailable(ctx, r.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.ConditionalMarkUnavailable(ctx, r.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected, "already unavailable")

	got, _ := repo.GetByID(ctx, r.ID)
	assert.Equal(t, int64(1), got.Version)
}

func TestResourceRepository_ForUpdateRequiresTx(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewResourceRepository(db)

	_, err := repo.FindAvailableByIDForUpdate(context.Background(), 1)
	assert.Error(t, err)
}

func TestTxManager_RollbackOnError(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	tm := NewTxManager(db)
	resources := NewResourceRepository(db)
	reservations := NewReservationRepository(db)
	r, err := resources.Create(ctx, "Room 303")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = tm.WithTx(ctx, func(ctx context.Context) error {
		res := domain.NewReservation(1, r.ID, domain.StrategyOptimistic)
		if err := reservations.Create(ctx, res); err != nil {
			return err
		}
		if err := resources.MarkUnavailable(ctx, r.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	count, err := reservations.CountByResource(ctx, r.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	got, _ := resources.GetByID(ctx, r.ID)
	assert.True(t, got.Available)
	assert.Equal(t, int64(0), got.Version)
}

func TestReserveOptimistic_ConcurrentAgainstPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	resources := NewResourceRepository(db)
	r, err := resources.Create(ctx, "Room 404")
	require.NoError(t, err)

	svc := newTestReservationService(db)
	successes, losers, unexpected := runConcurrently(100, func(userID int64) error {
		_, err := svc.ReserveOptimistic(ctx, userID, r.ID)
		return err
	}, domain.ErrConcurrentConflict, domain.ErrResourceUnavailable)

	assert.Equal(t, int64(1), successes)
	assert.Equal(t, int64(99), losers)
	assert.Zero(t, unexpected)

	got, _ := resources.GetByID(ctx, r.ID)
	assert.False(t, got.Available)
	assert.Equal(t, int64(1), got.Version)

	count, err := NewReservationRepository(db).CountByResource(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "losing reservations must be rolled back")
}

func TestReservePessimistic_ConcurrentAgainstPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	resources := NewResourceRepository(db)
	r, err := resources.Create(ctx, "Room 505")
	require.NoError(t, err)

	svc := newTestReservationService(db)
	successes, losers, unexpected := runConcurrently(100, func(userID int64) error {
		_, err := svc.ReservePessimistic(ctx, userID, r.ID)
		return err
	}, domain.ErrResourceUnavailable)

	assert.Equal(t, int64(1), successes)
	assert.Equal(t, int64(99), losers)
	assert.Zero(t, unexpected)

	list, err := NewReservationRepository(db).ListByResource(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.StrategyPessimistic, list[0].Strategy)
}

func TestCatalogRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewCatalogRepository(db)

	tech := &domain.Category{Name: "Tech"}
	require.NoError(t, repo.CreateCategory(ctx, tech))
	assert.ErrorIs(t, repo.CreateCategory(ctx, &domain.Category{Name: "Tech"}), domain.ErrDuplicate)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.CreateArticle(ctx, &domain.Article{
		CategoryID: tech.ID, Title: "older", Tags: []string{"go", "db"}, PublishedAt: now.Add(-time.Hour),
	}))
	require.NoError(t, repo.CreateArticle(ctx, &domain.Article{
		CategoryID: tech.ID, Title: "newer", PublishedAt: now,
	}))

	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)

	articles, err := repo.ListArticlesByCategory(ctx, tech.ID)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "newer", articles[0].Title)
	assert.Equal(t, []string{"go", "db"}, articles[1].Tags)

	missing, err := repo.GetCategory(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestClientRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewClientRepository(db)

	require.NoError(t, repo.Create(ctx, &domain.APIClient{Name: "partner", APIKey: "k1", Active: true}))
	require.NoError(t, repo.Create(ctx, &domain.APIClient{Name: "old", APIKey: "k2", Active: false}))
	assert.ErrorIs(t, repo.Create(ctx, &domain.APIClient{Name: "dup", APIKey: "k1"}), domain.ErrDuplicate)

	client, err := repo.GetByAPIKey(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "partner", client.Name)

	inactive, err := repo.GetByAPIKey(ctx, "k2")
	require.NoError(t, err)
	assert.Nil(t, inactive)
}

// runConcurrently starts n callers at once and classifies their errors.
func runConcurrently(n int, call func(userID int64) error, expected ...error) (successes, losers, unexpected int64) {
	var (
		wg          sync.WaitGroup
		start       = make(chan struct{})
		ok, lost, x atomic.Int64
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			<-start

			err := call(userID)
			if err == nil {
				ok.Add(1)
				return
			}
			for _, e := range expected {
				if errors.Is(err, e) {
					lost.Add(1)
					return
				}
			}
			x.Add(1)
		}(int64(i + 1))
	}

	close(start)
	wg.Wait()

	return ok.Load(), lost.Load(), x.Load()
}
