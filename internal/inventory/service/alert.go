package service

import (
	"context"

	"github.com/medistock/medistock-backend/internal/inventory/repository"
	"github.com/medistock/medistock-backend/pkg/logger"
)

// AlertService exposes persisted alerts and notification preferences
type AlertService struct {
	alerts *repository.AlertRepository
	logger *logger.Logger
}

// NewAlertService creates a new alert service
func NewAlertService(alerts *repository.AlertRepository, log *logger.Logger) *AlertService {
	return &AlertService{alerts: alerts, logger: log}
}

// List returns alerts, newest first
func (s *AlertService) List(ctx context.Context, unreadOnly bool, limit int) ([]*repository.Alert, error) {
	return s.alerts.List(ctx, unreadOnly, limit)
}

// MarkRead marks an alert as read
func (s *AlertService) MarkRead(ctx context.Context, id string) error {
	return s.alerts.MarkRead(ctx, id)
}

// Preferences returns a user's notification preferences
func (s *AlertService) Preferences(ctx context.Context, userID string) (*repository.NotificationPreferences, error) {
	return s.alerts.GetPreferences(ctx, userID)
}

// PreferencesRequest is the update payload for notification preferences
type PreferencesRequest struct {
	EmailNotifications bool `json:"email_notifications"`
	LowStockAlerts     bool `json:"low_stock_alerts"`
	ExpiryAlerts       bool `json:"expiry_alerts"`
	ExpiryWarningDays  int  `json:"expiry_warning_days" validate:"gte=1,lte=365"`
}

// UpdatePreferences stores a user's notification preferences
func (s *AlertService) UpdatePreferences(ctx context.Context, userID string, req *PreferencesRequest) (*repository.NotificationPreferences, error) {
	prefs := &repository.NotificationPreferences{
		UserID:             userID,
		EmailNotifications: req.EmailNotifications,
		LowStockAlerts:     req.LowStockAlerts,
		ExpiryAlerts:       req.ExpiryAlerts,
		ExpiryWarningDays:  req.ExpiryWarningDays,
	}

	if err := s.alerts.UpsertPreferences(ctx, prefs); err != nil {
		return nil, err
	}

	return prefs, nil
}
