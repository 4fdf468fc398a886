// Package model holds the GORM-specific structs for the structured store.
package model

import (
	"time"

	"github.com/google/uuid"
)

// PlaceModel is the GORM-specific struct for the 'places' table.
// The case-insensitive name uniqueness of the visited set is enforced by
// application logic, not a storage constraint.
type PlaceModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	Name       string    `gorm:"type:varchar(255);not null;index"`
	Latitude   float64   `gorm:"type:decimal(10,8);not null"`
	Longitude  float64   `gorm:"type:decimal(11,8);not null"`
	LastUsedAt time.Time `gorm:"not null;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	POIs []POIModel `gorm:"foreignKey:PlaceID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (PlaceModel) TableName() string {
	return "places"
}

// POIModel is the GORM-specific struct for the 'points_of_interest' table.
// PlaceID is the non-owning back-reference that drives the cascade delete.
type POIModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	PlaceID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Latitude  float64   `gorm:"type:decimal(10,8);not null"`
	Longitude float64   `gorm:"type:decimal(11,8);not null"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (POIModel) TableName() string {
	return "points_of_interest"
}
