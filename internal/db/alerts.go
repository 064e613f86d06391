package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"safety-service/internal/models"
)

// CreateAlert inserts a new alert record. The write is atomic; a failure
// here must abort the whole trigger operation.
func (d *DB) CreateAlert(ctx context.Context, alert models.Alert) error {
	info := []byte("{}")
	if alert.AdditionalInfo != nil {
		var err error
		info, err = json.Marshal(alert.AdditionalInfo)
		if err != nil {
			return fmt.Errorf("failed to encode additional info: %w", err)
		}
	}

	query := `
    INSERT INTO sos_alert (
        id, user_id, alert_type, message, latitude, longitude, accuracy,
        address, status, additional_info, created_at
    ) VALUES (
        $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
    )`

	_, err := d.Pool.Exec(ctx, query,
		alert.ID,
		alert.UserID,
		alert.AlertType,
		alert.Message,
		alert.Latitude,
		alert.Longitude,
		alert.Accuracy,
		alert.Address,
		alert.Status,
		string(info),
		alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// RecentAlerts fetches a user's alerts newer than since, most recent first.
func (d *DB) RecentAlerts(ctx context.Context, userID int, since time.Time, limit int) ([]models.Alert, error) {
	query := `
        SELECT id, user_id, alert_type, message, latitude, longitude, accuracy,
               address, status, additional_info, created_at, resolved_at, resolution_notes
        FROM sos_alert
        WHERE user_id = $1 AND created_at >= $2
        ORDER BY created_at DESC
        LIMIT $3`
	rows, err := d.Pool.Query(ctx, query, userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get alerts: %w", err)
	}
	defer rows.Close()

	var list []models.Alert
	for rows.Next() {
		var a models.Alert
		var info *string
		err := rows.Scan(
			&a.ID, &a.UserID, &a.AlertType, &a.Message, &a.Latitude, &a.Longitude, &a.Accuracy,
			&a.Address, &a.Status, &info, &a.CreatedAt, &a.ResolvedAt, &a.ResolutionNotes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		if info != nil && *info != "" {
			if err := json.Unmarshal([]byte(*info), &a.AdditionalInfo); err != nil {
				return nil, fmt.Errorf("failed to decode additional info for alert %s: %w", a.ID, err)
			}
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// ResolveAlert marks an alert resolved with a timestamp and notes.
// Resolution bookkeeping is the only mutation an alert ever sees.
func (d *DB) ResolveAlert(ctx context.Context, alertID uuid.UUID, notes string) error {
	query := `
        UPDATE sos_alert
        SET status = $1, resolved_at = $2, resolution_notes = $3
        WHERE id = $4 AND status = $5`
	result, err := d.Pool.Exec(ctx, query, models.AlertStatusResolved, time.Now().UTC(), notes, alertID, models.AlertStatusActive)
	if err != nil {
		return fmt.Errorf("failed to resolve alert %s: %w", alertID, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
