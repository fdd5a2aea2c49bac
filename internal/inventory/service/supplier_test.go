package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock-backend/internal/inventory/repository"
	"github.com/medistock/medistock-backend/pkg/database"
	"github.com/medistock/medistock-backend/pkg/errors"
	"github.com/medistock/medistock-backend/pkg/logger"
	"github.com/medistock/medistock-backend/pkg/testutil"
)

var orderColumns = []string{
	"id", "order_number", "supplier_id", "status", "total_amount",
	"expected_date", "delivered_date", "notes", "created_by", "created_at", "updated_at",
}

var orderItemColumns = []string{
	"id", "order_id", "medicine_id", "medicine_name", "quantity", "unit_price", "subtotal", "created_at",
}

func newSupplierService(t *testing.T) (*SupplierService, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	log := logger.New("supplier-test", "test")
	db := database.FromSqlx(mockDB.DB, log)

	return NewSupplierService(repository.NewSupplierRepository(db), log), mockDB
}

func expectOrder(mockDB *testutil.MockDB, orderID, status string) {
	now := time.Now()
	mockDB.ExpectQuery("FROM purchase_orders WHERE id = $1").
		WithArgs(orderID).
		WillReturnRows(testutil.MockRows(orderColumns...).
			AddRow(orderID, "PO-20260831-ABCD1234", nil, status, "150", nil, nil, nil, nil, now, now))
	mockDB.ExpectQuery("FROM purchase_order_items WHERE order_id = $1").
		WithArgs(orderID).
		WillReturnRows(testutil.MockRows(orderItemColumns...))
}

func TestUpdateOrderStatus_ValidTransition(t *testing.T) {
	svc, mockDB := newSupplierService(t)
	defer mockDB.Close()

	orderID := uuid.New().String()
	expectOrder(mockDB, orderID, repository.OrderPending)
	mockDB.ExpectExec("UPDATE purchase_orders SET status = $2").
		WithArgs(orderID, repository.OrderApproved, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	order, err := svc.UpdateOrderStatus(context.Background(), orderID, repository.OrderApproved)
	require.NoError(t, err)
	assert.Equal(t, repository.OrderApproved, order.Status)
	assert.Nil(t, order.DeliveredDate)

	mockDB.ExpectationsWereMet(t)
}

func TestUpdateOrderStatus_DeliveredStampsDate(t *testing.T) {
	svc, mockDB := newSupplierService(t)
	defer mockDB.Close()

	orderID := uuid.New().String()
	expectOrder(mockDB, orderID, repository.OrderShipped)
	mockDB.ExpectExec("UPDATE purchase_orders SET status = $2").
		WithArgs(orderID, repository.OrderDelivered, testutil.AnyTime{}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	order, err := svc.UpdateOrderStatus(context.Background(), orderID, repository.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, repository.OrderDelivered, order.Status)
	require.NotNil(t, order.DeliveredDate)
	assert.WithinDuration(t, time.Now(), *order.DeliveredDate, time.Minute)

	mockDB.ExpectationsWereMet(t)
}

func TestUpdateOrderStatus_InvalidTransition(t *testing.T) {
	svc, mockDB := newSupplierService(t)
	defer mockDB.Close()

	orderID := uuid.New().String()
	expectOrder(mockDB, orderID, repository.OrderDelivered)

	_, err := svc.UpdateOrderStatus(context.Background(), orderID, repository.OrderApproved)
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "BAD_REQUEST", appErr.Code)

	mockDB.ExpectationsWereMet(t)
}

func TestCreateOrder_ComputesTotals(t *testing.T) {
	svc, mockDB := newSupplierService(t)
	defer mockDB.Close()

	supplierID := uuid.New().String()
	now := time.Now()
	mockDB.ExpectQuery("FROM suppliers WHERE id = $1").
		WithArgs(supplierID).
		WillReturnRows(testutil.MockRows(
			"id", "name", "contact_person", "email", "phone", "address", "payment_terms", "status", "created_at", "updated_at",
		).AddRow(supplierID, "PharmaDirect", nil, nil, nil, nil, nil, "active", now, now))

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("INSERT INTO purchase_orders").
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(now, now))
	mockDB.ExpectQuery("INSERT INTO purchase_order_items").
		WillReturnRows(testutil.MockRows("created_at").AddRow(now))
	mockDB.ExpectQuery("INSERT INTO purchase_order_items").
		WillReturnRows(testutil.MockRows("created_at").AddRow(now))
	mockDB.ExpectCommit()

	order, items, err := svc.CreateOrder(context.Background(), &OrderRequest{
		SupplierID: supplierID,
		Items: []OrderItemRequest{
			{MedicineName: "Paracetamol 500mg", Quantity: 10, UnitPrice: decimal.NewFromFloat(2.50)},
			{MedicineName: "Amoxicillin 250mg", Quantity: 3, UnitPrice: decimal.NewFromInt(50)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "175", order.TotalAmount.String())
	assert.Equal(t, repository.OrderPending, order.Status)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "PO-"))

	require.Len(t, items, 2)
	assert.Equal(t, "25", items[0].Subtotal.String())
	assert.Equal(t, "150", items[1].Subtotal.String())

	mockDB.ExpectationsWereMet(t)
}

func TestCreateOrder_RejectsNegativeUnitPrice(t *testing.T) {
	svc, mockDB := newSupplierService(t)
	defer mockDB.Close()

	supplierID := uuid.New().String()
	now := time.Now()
	mockDB.ExpectQuery("FROM suppliers WHERE id = $1").
		WithArgs(supplierID).
		WillReturnRows(testutil.MockRows(
			"id", "name", "contact_person", "email", "phone", "address", "payment_terms", "status", "created_at", "updated_at",
		).AddRow(supplierID, "PharmaDirect", nil, nil, nil, nil, nil, "active", now, now))

	_, _, err := svc.CreateOrder(context.Background(), &OrderRequest{
		SupplierID: supplierID,
		Items: []OrderItemRequest{
			{MedicineName: "Paracetamol 500mg", Quantity: 1, UnitPrice: decimal.NewFromInt(-5)},
		},
	})
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "BAD_REQUEST", appErr.Code)

	mockDB.ExpectationsWereMet(t)
}
