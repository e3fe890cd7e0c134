package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User описывает сущность пользователя платформы.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	DeletedAt    *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// TechnicianProfile описывает публичный профиль техника.
type TechnicianProfile struct {
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	DisplayName string     `db:"display_name" json:"display_name"`
	Bio         *string    `db:"bio" json:"bio,omitempty"`
	HourlyRate  *float64   `db:"hourly_rate" json:"hourly_rate,omitempty"`
	Tier        string     `db:"tier" json:"tier"`
	Skills      []string   `db:"skills" json:"skills"`
	Location    *string    `db:"location" json:"location,omitempty"`
	PhotoID     *uuid.UUID `db:"photo_id" json:"photo_id,omitempty"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// CompanyProfile описывает профиль компании-заказчика.
type CompanyProfile struct {
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	CompanyName string     `db:"company_name" json:"company_name"`
	Description *string    `db:"description" json:"description,omitempty"`
	Website     *string    `db:"website" json:"website,omitempty"`
	Location    *string    `db:"location" json:"location,omitempty"`
	PhotoID     *uuid.UUID `db:"photo_id" json:"photo_id,omitempty"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Notification описывает событие, отправленное пользователю.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Type      string          `db:"type" json:"type"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	ReadAt    *time.Time      `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// TechnicianSearchResult результат поиска техника с агрегированным рейтингом.
type TechnicianSearchResult struct {
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	Username    string     `db:"username" json:"username"`
	DisplayName string     `db:"display_name" json:"display_name"`
	Bio         *string    `db:"bio" json:"bio,omitempty"`
	HourlyRate  *float64   `db:"hourly_rate" json:"hourly_rate,omitempty"`
	Tier        string     `db:"tier" json:"tier"`
	Location    *string    `db:"location" json:"location,omitempty"`
	PhotoID     *uuid.UUID `db:"photo_id" json:"photo_id,omitempty"`
	AvgRating   float64    `db:"avg_rating" json:"avg_rating"`
	ReviewCount int        `db:"review_count" json:"review_count"`
}
