// Package service implements the pharmacy inventory business logic.
package service

import (
	"time"

	"github.com/medistock/medistock-backend/internal/inventory/repository"
)

// expiringSoonWindowDays is the window in which a medicine with stock on
// hand is flagged as expiring soon.
const expiringSoonWindowDays = 30

// DaysUntilExpiry returns the number of calendar days from today until the
// expiry date. Both dates are normalized to midnight, so a medicine expiring
// later today counts as 0 days and one that expired yesterday as -1.
func DaysUntilExpiry(expiryDate, today time.Time) int {
	expiry := time.Date(expiryDate.Year(), expiryDate.Month(), expiryDate.Day(), 0, 0, 0, 0, time.UTC)
	now := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(expiry.Sub(now).Hours() / 24)
}

// DeriveStatus computes a medicine's stock status. The checks are ordered:
// expiry dominates stock level, and a fully depleted medicine outranks a
// low one.
func DeriveStatus(quantity, minStockLevel int, expiryDate, today time.Time) string {
	days := DaysUntilExpiry(expiryDate, today)

	switch {
	case days < 0:
		return repository.StatusExpired
	case days <= expiringSoonWindowDays:
		return repository.StatusExpiringSoon
	case quantity == 0:
		return repository.StatusOutOfStock
	case quantity <= minStockLevel:
		return repository.StatusLowStock
	default:
		return repository.StatusInStock
	}
}

// DeriveStatusNow is DeriveStatus evaluated against the current date
func DeriveStatusNow(quantity, minStockLevel int, expiryDate time.Time) string {
	return DeriveStatus(quantity, minStockLevel, expiryDate, time.Now())
}
