package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/medistock/medistock-backend/internal/inventory/repository"
)

func TestDeriveStatus(t *testing.T) {
	today := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name          string
		quantity      int
		minStockLevel int
		expiryDays    int // days from today
		want          string
	}{
		{"expired yesterday", 50, 10, -1, repository.StatusExpired},
		{"expired long ago", 50, 10, -200, repository.StatusExpired},
		{"expires today counts as expiring soon", 50, 10, 0, repository.StatusExpiringSoon},
		{"expiring within window", 50, 10, 20, repository.StatusExpiringSoon},
		{"expiring at window boundary", 50, 10, 30, repository.StatusExpiringSoon},
		{"just outside window", 50, 10, 31, repository.StatusInStock},

		// Expiry dominates stock level
		{"out of stock but expiring soon", 0, 10, 20, repository.StatusExpiringSoon},
		{"out of stock but expired", 0, 10, -5, repository.StatusExpired},

		{"out of stock", 0, 10, 200, repository.StatusOutOfStock},
		{"low stock below minimum", 5, 10, 200, repository.StatusLowStock},
		{"low stock at minimum", 10, 10, 200, repository.StatusLowStock},
		{"in stock", 11, 10, 200, repository.StatusInStock},
		{"in stock with zero minimum", 1, 0, 200, repository.StatusInStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expiry := today.AddDate(0, 0, tt.expiryDays)
			got := DeriveStatus(tt.quantity, tt.minStockLevel, expiry, today)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDaysUntilExpiry_NormalizesToMidnight(t *testing.T) {
	// Late evening today vs early morning tomorrow is still one day apart
	today := time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)
	expiry := time.Date(2026, 3, 16, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, 1, DaysUntilExpiry(expiry, today))
	assert.Equal(t, 0, DaysUntilExpiry(today, today))
	assert.Equal(t, -1, DaysUntilExpiry(today.AddDate(0, 0, -1), today))
}

func TestDeriveStatus_Totality(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	valid := map[string]bool{
		repository.StatusInStock:      true,
		repository.StatusLowStock:     true,
		repository.StatusOutOfStock:   true,
		repository.StatusExpired:      true,
		repository.StatusExpiringSoon: true,
	}

	for qty := 0; qty <= 20; qty++ {
		for min := 0; min <= 20; min += 5 {
			for days := -40; days <= 40; days += 7 {
				got := DeriveStatus(qty, min, today.AddDate(0, 0, days), today)
				assert.True(t, valid[got], "quantity=%d min=%d days=%d produced %q", qty, min, days, got)
			}
		}
	}
}
