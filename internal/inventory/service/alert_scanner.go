package service

import (
	"context"
	"fmt"
	"time"

	"github.com/medistock/medistock-backend/internal/inventory/events"
	"github.com/medistock/medistock-backend/internal/inventory/repository"
	"github.com/medistock/medistock-backend/pkg/logger"
	"github.com/medistock/medistock-backend/pkg/messaging"
)

// AlertScanner scans the catalog and generates stock and expiry alerts.
// Alerts are deduplicated against unread alerts of the same type.
type AlertScanner struct {
	medicines          *repository.MedicineRepository
	alerts             *repository.AlertRepository
	publisher          *events.InventoryEventPublisher
	defaultWarningDays int
	logger             *logger.Logger
}

// NewAlertScanner creates a new alert scanner
func NewAlertScanner(
	medicines *repository.MedicineRepository,
	alerts *repository.AlertRepository,
	publisher *events.InventoryEventPublisher,
	defaultWarningDays int,
	log *logger.Logger,
) *AlertScanner {
	if defaultWarningDays <= 0 {
		defaultWarningDays = 30
	}
	return &AlertScanner{
		medicines:          medicines,
		alerts:             alerts,
		publisher:          publisher,
		defaultWarningDays: defaultWarningDays,
		logger:             log,
	}
}

// ScanAll runs all alert scans. Errors are logged and scanning continues.
func (s *AlertScanner) ScanAll(ctx context.Context) error {
	prefs, err := s.alerts.GetScannerPreferences(ctx, s.defaultWarningDays)
	if err != nil {
		return fmt.Errorf("failed to load notification preferences: %w", err)
	}

	medicines, err := s.medicines.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	// Re-derive statuses so a medicine that crossed its expiry window since
	// the last write does not keep a stale status until the next mutation.
	s.refreshStatuses(ctx, medicines)

	var lastErr error
	if prefs.LowStockAlerts {
		if err := s.scanStockLevels(ctx, medicines); err != nil {
			s.logger.Error().Err(err).Msg("stock level scan failed")
			lastErr = err
		}
	}
	if prefs.ExpiryAlerts {
		if err := s.scanExpiry(ctx, medicines, prefs.ExpiryWarningDays); err != nil {
			s.logger.Error().Err(err).Msg("expiry scan failed")
			lastErr = err
		}
	}

	return lastErr
}

func (s *AlertScanner) refreshStatuses(ctx context.Context, medicines []*repository.Medicine) {
	now := time.Now()
	for _, m := range medicines {
		derived := DeriveStatus(m.Quantity, m.MinStockLevel, m.ExpiryDate, now)
		if derived == m.Status {
			continue
		}

		if err := s.medicines.UpdateStatus(ctx, m.ID, derived); err != nil {
			s.logger.Error().Err(err).Str("medicine_id", m.ID).Msg("failed to refresh status")
			continue
		}
		m.Status = derived
	}
}

func (s *AlertScanner) scanStockLevels(ctx context.Context, medicines []*repository.Medicine) error {
	for _, m := range medicines {
		var alertType, severity, message string

		switch {
		case m.Quantity == 0:
			alertType = repository.AlertOutOfStock
			severity = repository.SeverityCritical
			message = fmt.Sprintf("%s is out of stock", m.Name)
		case m.Quantity <= m.MinStockLevel:
			alertType = repository.AlertLowStock
			severity = repository.SeverityWarning
			message = fmt.Sprintf("%s is low on stock (%d/%d)", m.Name, m.Quantity, m.MinStockLevel)
		default:
			continue
		}

		s.createAlert(ctx, m, alertType, severity, message)
	}

	return nil
}

func (s *AlertScanner) scanExpiry(ctx context.Context, medicines []*repository.Medicine, warningDays int) error {
	now := time.Now()

	for _, m := range medicines {
		if m.Quantity == 0 {
			continue
		}

		days := DaysUntilExpiry(m.ExpiryDate, now)
		if days > warningDays {
			continue
		}

		severity := repository.SeverityWarning
		message := fmt.Sprintf("%s (batch %s) expires in %d days", m.Name, m.BatchNumber, days)
		if days < 0 {
			severity = repository.SeverityCritical
			message = fmt.Sprintf("%s (batch %s) expired %d days ago", m.Name, m.BatchNumber, -days)
		}

		s.createAlert(ctx, m, repository.AlertExpiry, severity, message)
	}

	return nil
}

func (s *AlertScanner) createAlert(ctx context.Context, m *repository.Medicine, alertType, severity, message string) {
	exists, err := s.alerts.HasOpenAlert(ctx, m.ID, alertType)
	if err != nil {
		s.logger.Error().Err(err).Str("medicine_id", m.ID).Msg("failed to check existing alert")
		return
	}
	if exists {
		return
	}

	alert := &repository.Alert{
		Type:         alertType,
		Severity:     severity,
		Title:        m.Name,
		Message:      message,
		MedicineID:   &m.ID,
		MedicineName: &m.Name,
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		s.logger.Error().Err(err).Str("medicine_id", m.ID).Msg("failed to create alert")
		return
	}

	s.logger.Info().
		Str("alert_id", alert.ID).
		Str("type", alertType).
		Str("severity", severity).
		Str("medicine_id", m.ID).
		Msg("alert generated")

	s.publisher.PublishAlertGenerated(ctx, &messaging.AlertGeneratedEvent{
		AlertID:      alert.ID,
		AlertType:    alertType,
		Severity:     severity,
		MedicineID:   m.ID,
		MedicineName: m.Name,
		Message:      message,
	})
}
