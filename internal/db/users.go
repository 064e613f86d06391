package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"safety-service/internal/models"
)

// GetUser fetches a user by id. Returns ErrNotFound when no such user exists.
func (d *DB) GetUser(ctx context.Context, id int) (models.User, error) {
	var u models.User
	query := `
        SELECT id, name, email, phone, age, blood_group, medical_conditions, created_at
        FROM users
        WHERE id = $1`
	err := d.Pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.Age, &u.BloodGroup, &u.MedicalConditions, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return u, nil
}

// ListEmergencyContacts fetches all emergency contacts registered for a user.
func (d *DB) ListEmergencyContacts(ctx context.Context, userID int) ([]models.EmergencyContact, error) {
	query := `
        SELECT id, user_id, name, COALESCE(relationship, ''), phone, COALESCE(email, ''), is_primary
        FROM emergency_contact
        WHERE user_id = $1
        ORDER BY is_primary DESC, id`
	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list emergency contacts for user %d: %w", userID, err)
	}
	defer rows.Close()

	var contacts []models.EmergencyContact
	for rows.Next() {
		var c models.EmergencyContact
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Relationship, &c.Phone, &c.Email, &c.IsPrimary); err != nil {
			return nil, fmt.Errorf("failed to scan emergency contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// ListGuardians fetches all guardians registered for a user.
func (d *DB) ListGuardians(ctx context.Context, userID int) ([]models.Guardian, error) {
	query := `
        SELECT id, user_id, name, COALESCE(relationship, ''), phone, COALESCE(email, ''), COALESCE(address, '')
        FROM guardian
        WHERE user_id = $1
        ORDER BY id`
	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guardians for user %d: %w", userID, err)
	}
	defer rows.Close()

	var guardians []models.Guardian
	for rows.Next() {
		var g models.Guardian
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.Relationship, &g.Phone, &g.Email, &g.Address); err != nil {
			return nil, fmt.Errorf("failed to scan guardian: %w", err)
		}
		guardians = append(guardians, g)
	}
	return guardians, rows.Err()
}
