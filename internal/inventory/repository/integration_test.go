package repository_test

import (
	"context"
	"flag"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock-backend/internal/inventory/repository"
	"github.com/medistock/medistock-backend/pkg/database"
	"github.com/medistock/medistock-backend/pkg/errors"
	"github.com/medistock/medistock-backend/pkg/logger"
	"github.com/medistock/medistock-backend/pkg/testutil"
)

var (
	testContainer *testutil.PostgresContainer
	testDB        *database.DB
)

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	var err error
	testContainer, err = testutil.NewPostgresContainer(ctx, testutil.DefaultPostgresConfig())
	if err != nil {
		panic("failed to start postgres container: " + err.Error())
	}

	db, err := testContainer.Connect(ctx)
	if err != nil {
		testContainer.Terminate(ctx)
		panic("failed to connect to test database: " + err.Error())
	}

	if err := testContainer.CreateSchema(ctx, db); err != nil {
		db.Close()
		testContainer.Terminate(ctx)
		panic("failed to create schema: " + err.Error())
	}

	testDB = database.FromSqlx(db, logger.New("repository-integration", "test"))

	code := m.Run()

	db.Close()
	testContainer.Terminate(ctx)
	os.Exit(code)
}

func cleanupMedicines(ctx context.Context, t *testing.T) {
	t.Helper()
	_, err := testDB.ExecContext(ctx, "DELETE FROM stock_movements")
	require.NoError(t, err)
	_, err = testDB.ExecContext(ctx, "DELETE FROM medicines")
	require.NoError(t, err)
}

func newMedicine(name, category string) *repository.Medicine {
	return &repository.Medicine{
		Name:          name,
		Category:      category,
		BatchNumber:   "BATCH-001",
		Quantity:      100,
		MinStockLevel: 20,
		UnitPrice:     decimal.NewFromFloat(2.50),
		ExpiryDate:    time.Now().AddDate(1, 0, 0),
		Status:        repository.StatusInStock,
	}
}

func TestMedicineLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	cleanupMedicines(ctx, t)

	medicines := repository.NewMedicineRepository(testDB)
	movements := repository.NewMovementRepository(testDB)

	m := newMedicine("Paracetamol 500mg", "Analgesic")
	require.NoError(t, medicines.Create(ctx, m))
	require.NotEmpty(t, m.ID)
	require.False(t, m.CreatedAt.IsZero())

	got, err := medicines.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Name, got.Name)
	assert.Equal(t, 100, got.Quantity)
	assert.True(t, got.UnitPrice.Equal(decimal.NewFromFloat(2.50)))

	// Stock mutation and ledger row commit together
	err = testDB.Transaction(ctx, func(tx *sqlx.Tx) error {
		locked, err := medicines.GetByIDForUpdate(ctx, tx, m.ID)
		if err != nil {
			return err
		}

		batch := "BATCH-002"
		if err := medicines.UpdateStock(ctx, tx, locked.ID, locked.Quantity+25, repository.StatusInStock, &batch); err != nil {
			return err
		}

		return movements.Create(ctx, tx, &repository.StockMovement{
			MedicineID:  locked.ID,
			Type:        repository.MovementStockIn,
			Quantity:    25,
			BatchNumber: &batch,
		})
	})
	require.NoError(t, err)

	got, err = medicines.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 125, got.Quantity)
	assert.Equal(t, "BATCH-002", got.BatchNumber)

	ledger, err := movements.ListByMedicine(ctx, m.ID, 10)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, repository.MovementStockIn, ledger[0].Type)
	assert.Equal(t, 25, ledger[0].Quantity)
}

func TestMedicineList_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	cleanupMedicines(ctx, t)

	medicines := repository.NewMedicineRepository(testDB)
	require.NoError(t, medicines.Create(ctx, newMedicine("Paracetamol 500mg", "Analgesic")))
	require.NoError(t, medicines.Create(ctx, newMedicine("Ibuprofen 400mg", "Analgesic")))
	require.NoError(t, medicines.Create(ctx, newMedicine("Amoxicillin 250mg", "Antibiotic")))

	list, total, err := medicines.List(ctx, repository.ListParams{
		Category: "Analgesic",
		Page:     1,
		PerPage:  10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 2)

	list, total, err = medicines.List(ctx, repository.ListParams{
		Search:  "amox",
		Page:    1,
		PerPage: 10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Amoxicillin 250mg", list[0].Name)

	list, total, err = medicines.List(ctx, repository.ListParams{
		Category: repository.FilterAll,
		Status:   repository.FilterAll,
		Page:     1,
		PerPage:  2,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 2)
}

func TestQuantityConstraint_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	cleanupMedicines(ctx, t)

	medicines := repository.NewMedicineRepository(testDB)
	m := newMedicine("Paracetamol 500mg", "Analgesic")
	require.NoError(t, medicines.Create(ctx, m))

	// The check constraint backstops the service-level guard
	err := testDB.Transaction(ctx, func(tx *sqlx.Tx) error {
		return medicines.UpdateStock(ctx, tx, m.ID, -1, repository.StatusOutOfStock, nil)
	})
	require.Error(t, err)

	got, err := medicines.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Quantity)
}

func TestAlertDedup_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	cleanupMedicines(ctx, t)

	medicines := repository.NewMedicineRepository(testDB)
	alerts := repository.NewAlertRepository(testDB)
	_, err := testDB.ExecContext(ctx, "DELETE FROM alerts")
	require.NoError(t, err)

	m := newMedicine("Paracetamol 500mg", "Analgesic")
	require.NoError(t, medicines.Create(ctx, m))

	open, err := alerts.HasOpenAlert(ctx, m.ID, repository.AlertLowStock)
	require.NoError(t, err)
	assert.False(t, open)

	alert := &repository.Alert{
		Type:         repository.AlertLowStock,
		Severity:     repository.SeverityWarning,
		Title:        m.Name,
		Message:      "Paracetamol 500mg is low on stock (5/20)",
		MedicineID:   &m.ID,
		MedicineName: &m.Name,
	}
	require.NoError(t, alerts.Create(ctx, alert))

	open, err = alerts.HasOpenAlert(ctx, m.ID, repository.AlertLowStock)
	require.NoError(t, err)
	assert.True(t, open)

	// Reading the alert reopens the slot for the next scan
	require.NoError(t, alerts.MarkRead(ctx, alert.ID))

	open, err = alerts.HasOpenAlert(ctx, m.ID, repository.AlertLowStock)
	require.NoError(t, err)
	assert.False(t, open)

	err = alerts.MarkRead(ctx, "00000000-0000-0000-0000-000000000000")
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.StatusCode)
}
