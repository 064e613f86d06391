package models

import "time"

// User is the subject of an alert. Owned by the user directory; read-only here.
type User struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	Age               *int      `json:"age,omitempty"`
	BloodGroup        *string   `json:"blood_group,omitempty"`
	MedicalConditions *string   `json:"medical_conditions,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Recipient is anyone eligible to be notified about an alert: an emergency
// contact or a guardian. The dispatcher only needs the capability set
// {name, phone?, email?}.
type Recipient interface {
	RecipientName() string
	RecipientPhone() string
	RecipientEmail() string
	RecipientKind() string
}

// EmergencyContact is a per-user notification target.
type EmergencyContact struct {
	ID           int    `json:"id"`
	UserID       int    `json:"user_id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
	IsPrimary    bool   `json:"is_primary"`
}

func (c EmergencyContact) RecipientName() string  { return c.Name }
func (c EmergencyContact) RecipientPhone() string { return c.Phone }
func (c EmergencyContact) RecipientEmail() string { return c.Email }
func (c EmergencyContact) RecipientKind() string  { return "emergencycontact" }

// Guardian is a per-user notification target with an address on file.
type Guardian struct {
	ID           int    `json:"id"`
	UserID       int    `json:"user_id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
	Address      string `json:"address,omitempty"`
}

func (g Guardian) RecipientName() string  { return g.Name }
func (g Guardian) RecipientPhone() string { return g.Phone }
func (g Guardian) RecipientEmail() string { return g.Email }
func (g Guardian) RecipientKind() string  { return "guardian" }
