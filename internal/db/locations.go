package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"safety-service/internal/models"
)

// InsertLocation stores a location log row and returns its id.
func (d *DB) InsertLocation(ctx context.Context, loc models.LocationLog) (int, error) {
	query := `
        INSERT INTO location_log (
            user_id, latitude, longitude, accuracy, altitude, heading, speed,
            address, location_source, is_high_accuracy, timestamp
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id`
	var id int
	err := d.Pool.QueryRow(ctx, query,
		loc.UserID, loc.Latitude, loc.Longitude, loc.Accuracy, loc.Altitude,
		loc.Heading, loc.Speed, loc.Address, loc.Source, loc.IsHighAccuracy, loc.Timestamp,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert location: %w", err)
	}
	return id, nil
}

// LatestLocation fetches a user's most recent location record.
// Returns ErrNotFound when the user has no location on file.
func (d *DB) LatestLocation(ctx context.Context, userID int) (models.LocationLog, error) {
	var loc models.LocationLog
	query := `
        SELECT id, user_id, latitude, longitude, accuracy, altitude, heading, speed,
               address, COALESCE(location_source, ''), COALESCE(is_high_accuracy, false), timestamp
        FROM location_log
        WHERE user_id = $1
        ORDER BY timestamp DESC
        LIMIT 1`
	err := d.Pool.QueryRow(ctx, query, userID).Scan(
		&loc.ID, &loc.UserID, &loc.Latitude, &loc.Longitude, &loc.Accuracy, &loc.Altitude,
		&loc.Heading, &loc.Speed, &loc.Address, &loc.Source, &loc.IsHighAccuracy, &loc.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.LocationLog{}, ErrNotFound
		}
		return models.LocationLog{}, fmt.Errorf("failed to get latest location for user %d: %w", userID, err)
	}
	return loc, nil
}

// LocationHistory fetches a user's location rows newer than since, most recent first.
func (d *DB) LocationHistory(ctx context.Context, userID int, since time.Time, limit int, highAccuracyOnly bool) ([]models.LocationLog, error) {
	query := `
        SELECT id, user_id, latitude, longitude, accuracy, altitude, heading, speed,
               address, COALESCE(location_source, ''), COALESCE(is_high_accuracy, false), timestamp
        FROM location_log
        WHERE user_id = $1 AND timestamp >= $2`
	args := []interface{}{userID, since}
	if highAccuracyOnly {
		query += " AND is_high_accuracy = true"
	}
	query += " ORDER BY timestamp DESC LIMIT $3"
	args = append(args, limit)

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get location history: %w", err)
	}
	defer rows.Close()

	var list []models.LocationLog
	for rows.Next() {
		var loc models.LocationLog
		err := rows.Scan(
			&loc.ID, &loc.UserID, &loc.Latitude, &loc.Longitude, &loc.Accuracy, &loc.Altitude,
			&loc.Heading, &loc.Speed, &loc.Address, &loc.Source, &loc.IsHighAccuracy, &loc.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		list = append(list, loc)
	}
	return list, rows.Err()
}
