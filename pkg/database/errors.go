package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/medistock/medistock-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Errors that are not a pq.Error, or carry a code with no mapping, are
// returned unchanged so connection drops and deadlocks keep their cause.
func MapPQError(err error) error {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return err
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return err
	}
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "quantity_non_negative"):
		return errors.Validation(map[string]string{
			"quantity": "must not be negative",
		})

	case strings.Contains(constraint, "movement_quantity_positive"):
		return errors.Validation(map[string]string{
			"quantity": "must be a positive integer",
		})

	case strings.Contains(constraint, "unit_price_non_negative"):
		return errors.Validation(map[string]string{
			"unit_price": "must not be negative",
		})

	case strings.Contains(constraint, "movement_type_valid"):
		return errors.Validation(map[string]string{
			"type": "must be one of: stock-in, stock-out",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "barcode"):
		return "a medicine with this barcode already exists"
	case strings.Contains(constraint, "email"):
		return "a user with this email already exists"
	case strings.Contains(constraint, "order_number"):
		return "a purchase order with this order number already exists"
	default:
		return "a record with these values already exists"
	}
}
