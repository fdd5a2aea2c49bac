package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock-backend/internal/inventory/events"
	"github.com/medistock/medistock-backend/internal/inventory/repository"
	"github.com/medistock/medistock-backend/pkg/database"
	"github.com/medistock/medistock-backend/pkg/logger"
	"github.com/medistock/medistock-backend/pkg/messaging"
	"github.com/medistock/medistock-backend/pkg/testutil"
)

func newAlertScanner(t *testing.T) (*AlertScanner, *testutil.MockDB, *testutil.MockPublisher) {
	mockDB := testutil.NewMockDB(t)
	log := logger.New("scanner-test", "test")
	db := database.FromSqlx(mockDB.DB, log)

	publisher := testutil.NewMockPublisher()
	scanner := NewAlertScanner(
		repository.NewMedicineRepository(db),
		repository.NewAlertRepository(db),
		events.NewInventoryEventPublisher(publisher, log),
		30,
		log,
	)
	return scanner, mockDB, publisher
}

func expectCatalog(mockDB *testutil.MockDB, fixtures ...testutil.MedicineFixture) {
	rows := testutil.MockRows(testutil.MedicineColumns...)
	for _, f := range fixtures {
		rows.AddRow(f.Row()...)
	}
	mockDB.ExpectQuery("FROM medicines ORDER BY name").WillReturnRows(rows)
}

func TestScanAll_GeneratesAndDedupsAlerts(t *testing.T) {
	scanner, mockDB, publisher := newAlertScanner(t)
	defer mockDB.Close()

	outOfStock := testutil.NewMedicineFixture()
	outOfStock.Quantity = 0
	outOfStock.MinStockLevel = 10
	outOfStock.Status = repository.StatusOutOfStock

	expiring := testutil.NewMedicineFixture()
	expiring.Name = "Amoxicillin 250mg"
	expiring.Quantity = 50
	expiring.MinStockLevel = 20
	expiring.ExpiryDate = time.Now().AddDate(0, 0, 10)
	expiring.Status = repository.StatusExpiringSoon

	mockDB.ExpectQuery("SELECT COUNT(*) FROM notification_preferences").
		WillReturnRows(testutil.MockRows("count").AddRow(0))
	expectCatalog(mockDB, outOfStock, expiring)

	// Out-of-stock alert already open, so the scan must not insert another
	mockDB.ExpectQuery("SELECT EXISTS").
		WithArgs(outOfStock.ID, repository.AlertOutOfStock).
		WillReturnRows(testutil.MockRows("exists").AddRow(true))

	mockDB.ExpectQuery("SELECT EXISTS").
		WithArgs(expiring.ID, repository.AlertExpiry).
		WillReturnRows(testutil.MockRows("exists").AddRow(false))
	mockDB.ExpectQuery("INSERT INTO alerts").
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))

	err := scanner.ScanAll(context.Background())
	require.NoError(t, err)

	require.Len(t, publisher.PublishedEvents, 1)
	publisher.AssertEventPublished(t, messaging.EventAlertGenerated)

	event, ok := publisher.PublishedEvents[0].Payload.(*messaging.AlertGeneratedEvent)
	require.True(t, ok)
	assert.Equal(t, repository.AlertExpiry, event.AlertType)
	assert.Equal(t, repository.SeverityWarning, event.Severity)
	assert.Equal(t, expiring.ID, event.MedicineID)

	mockDB.ExpectationsWereMet(t)
}

func TestScanAll_HonorsNotificationPreferences(t *testing.T) {
	scanner, mockDB, publisher := newAlertScanner(t)
	defer mockDB.Close()

	outOfStock := testutil.NewMedicineFixture()
	outOfStock.Quantity = 0
	outOfStock.Status = repository.StatusOutOfStock

	expiring := testutil.NewMedicineFixture()
	expiring.Name = "Ibuprofen 400mg"
	expiring.Quantity = 40
	expiring.MinStockLevel = 10
	expiring.ExpiryDate = time.Now().AddDate(0, 0, 20)
	expiring.Status = repository.StatusExpiringSoon

	// Low-stock alerts disabled, expiry window narrowed to 15 days: the
	// 20-day medicine is outside it and nothing should be generated.
	mockDB.ExpectQuery("SELECT COUNT(*) FROM notification_preferences").
		WillReturnRows(testutil.MockRows("count").AddRow(1))
	mockDB.ExpectQuery("BOOL_OR(low_stock_alerts)").
		WillReturnRows(testutil.MockRows("low_stock_alerts", "expiry_alerts", "expiry_warning_days").
			AddRow(false, true, 15))
	expectCatalog(mockDB, outOfStock, expiring)

	err := scanner.ScanAll(context.Background())
	require.NoError(t, err)

	publisher.AssertNoEventsPublished(t)
	mockDB.ExpectationsWereMet(t)
}

func TestScanAll_RefreshesStaleStatus(t *testing.T) {
	scanner, mockDB, publisher := newAlertScanner(t)
	defer mockDB.Close()

	// Stored as in-stock but the quantity is gone: the scan must
	// re-derive the status before alerting.
	stale := testutil.NewMedicineFixture()
	stale.Quantity = 0
	stale.Status = repository.StatusInStock

	mockDB.ExpectQuery("SELECT COUNT(*) FROM notification_preferences").
		WillReturnRows(testutil.MockRows("count").AddRow(0))
	expectCatalog(mockDB, stale)

	mockDB.ExpectExec("UPDATE medicines SET status = $2").
		WithArgs(stale.ID, repository.StatusOutOfStock).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mockDB.ExpectQuery("SELECT EXISTS").
		WithArgs(stale.ID, repository.AlertOutOfStock).
		WillReturnRows(testutil.MockRows("exists").AddRow(false))
	mockDB.ExpectQuery("INSERT INTO alerts").
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))

	err := scanner.ScanAll(context.Background())
	require.NoError(t, err)

	require.Len(t, publisher.PublishedEvents, 1)
	event, ok := publisher.PublishedEvents[0].Payload.(*messaging.AlertGeneratedEvent)
	require.True(t, ok)
	assert.Equal(t, repository.AlertOutOfStock, event.AlertType)
	assert.Equal(t, repository.SeverityCritical, event.Severity)

	mockDB.ExpectationsWereMet(t)
}
