package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/medistock/medistock-backend/pkg/database"
	"github.com/medistock/medistock-backend/pkg/errors"
)

// Alert types and severities
const (
	AlertLowStock   = "low-stock"
	AlertOutOfStock = "out-of-stock"
	AlertExpiry     = "expiry"

	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Alert is a persisted inventory warning
type Alert struct {
	ID           string    `db:"id" json:"id"`
	Type         string    `db:"type" json:"type"`
	Severity     string    `db:"severity" json:"severity"`
	Title        string    `db:"title" json:"title"`
	Message      string    `db:"message" json:"message"`
	MedicineID   *string   `db:"medicine_id" json:"medicine_id,omitempty"`
	MedicineName *string   `db:"medicine_name" json:"medicine_name,omitempty"`
	IsRead       bool      `db:"is_read" json:"is_read"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// NotificationPreferences controls which alerts get generated
type NotificationPreferences struct {
	ID                 string    `db:"id" json:"id"`
	UserID             string    `db:"user_id" json:"user_id"`
	EmailNotifications bool      `db:"email_notifications" json:"email_notifications"`
	LowStockAlerts     bool      `db:"low_stock_alerts" json:"low_stock_alerts"`
	ExpiryAlerts       bool      `db:"expiry_alerts" json:"expiry_alerts"`
	ExpiryWarningDays  int       `db:"expiry_warning_days" json:"expiry_warning_days"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// AlertRepository handles alert persistence
type AlertRepository struct {
	db *database.DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *database.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts an alert
func (r *AlertRepository) Create(ctx context.Context, a *Alert) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	query := `
		INSERT INTO alerts (id, type, severity, title, message, medicine_id, medicine_name, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		a.ID, a.Type, a.Severity, a.Title, a.Message, a.MedicineID, a.MedicineName, a.IsRead,
	).Scan(&a.CreatedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// List lists alerts, newest first. Unread-only filtering is optional.
func (r *AlertRepository) List(ctx context.Context, unreadOnly bool, limit int) ([]*Alert, error) {
	if limit < 1 {
		limit = 100
	}

	query := `
		SELECT id, type, severity, title, message, medicine_id, medicine_name, is_read, created_at
		FROM alerts
	`
	args := []interface{}{}

	if unreadOnly {
		query += ` WHERE is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $1`
	args = append(args, limit)

	var alerts []*Alert
	if err := r.db.SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, err
	}

	return alerts, nil
}

// MarkRead marks an alert as read
func (r *AlertRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE alerts SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("alert")
	}

	return nil
}

// HasOpenAlert reports whether an unread alert of the given type already
// exists for a medicine. Used to avoid duplicate alerts on every scan.
func (r *AlertRepository) HasOpenAlert(ctx context.Context, medicineID, alertType string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM alerts
			WHERE medicine_id = $1 AND type = $2 AND is_read = FALSE
		)
	`

	if err := r.db.GetContext(ctx, &exists, query, medicineID, alertType); err != nil {
		return false, err
	}

	return exists, nil
}

// CountUnread counts unread alerts
func (r *AlertRepository) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM alerts WHERE is_read = FALSE`); err != nil {
		return 0, err
	}
	return count, nil
}

// GetPreferences returns the notification preferences for a user,
// falling back to defaults when none are stored.
func (r *AlertRepository) GetPreferences(ctx context.Context, userID string) (*NotificationPreferences, error) {
	var prefs NotificationPreferences
	query := `
		SELECT id, user_id, email_notifications, low_stock_alerts, expiry_alerts, expiry_warning_days, created_at
		FROM notification_preferences WHERE user_id = $1
	`

	err := r.db.GetContext(ctx, &prefs, query, userID)
	if err == sql.ErrNoRows {
		return &NotificationPreferences{
			UserID:             userID,
			EmailNotifications: true,
			LowStockAlerts:     true,
			ExpiryAlerts:       true,
			ExpiryWarningDays:  30,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return &prefs, nil
}

// UpsertPreferences stores a user's notification preferences
func (r *AlertRepository) UpsertPreferences(ctx context.Context, prefs *NotificationPreferences) error {
	if prefs.ID == "" {
		prefs.ID = uuid.New().String()
	}

	query := `
		INSERT INTO notification_preferences (id, user_id, email_notifications, low_stock_alerts, expiry_alerts, expiry_warning_days)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			email_notifications = EXCLUDED.email_notifications,
			low_stock_alerts = EXCLUDED.low_stock_alerts,
			expiry_alerts = EXCLUDED.expiry_alerts,
			expiry_warning_days = EXCLUDED.expiry_warning_days
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		prefs.ID, prefs.UserID, prefs.EmailNotifications, prefs.LowStockAlerts,
		prefs.ExpiryAlerts, prefs.ExpiryWarningDays,
	).Scan(&prefs.ID, &prefs.CreatedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// ScannerPreferences aggregates all users' preferences into the ones the
// scheduled scanner honors. Alerts of a kind are generated when any user
// still wants them; the expiry window is the widest configured.
type ScannerPreferences struct {
	LowStockAlerts    bool
	ExpiryAlerts      bool
	ExpiryWarningDays int
}

// GetScannerPreferences derives the effective scanner preferences
func (r *AlertRepository) GetScannerPreferences(ctx context.Context, defaultWarningDays int) (*ScannerPreferences, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notification_preferences`); err != nil {
		return nil, err
	}

	// No stored preferences: everything on, default window
	if count == 0 {
		return &ScannerPreferences{
			LowStockAlerts:    true,
			ExpiryAlerts:      true,
			ExpiryWarningDays: defaultWarningDays,
		}, nil
	}

	var prefs ScannerPreferences
	query := `
		SELECT BOOL_OR(low_stock_alerts) AS low_stock_alerts,
		       BOOL_OR(expiry_alerts) AS expiry_alerts,
		       MAX(expiry_warning_days) AS expiry_warning_days
		FROM notification_preferences
	`

	row := r.db.QueryRowxContext(ctx, query)
	if err := row.Scan(&prefs.LowStockAlerts, &prefs.ExpiryAlerts, &prefs.ExpiryWarningDays); err != nil {
		return nil, err
	}

	return &prefs, nil
}
