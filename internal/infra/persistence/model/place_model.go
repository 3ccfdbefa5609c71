package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlaceModel is the GORM-specific struct for the 'Places' table.
type PlaceModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(120);not null"`
	Description string    `gorm:"type:text;not null"`
	Category    string    `gorm:"type:varchar(32);not null;index:idx_places_on_category"`
	Lat         float64   `gorm:"not null"`
	Lng         float64   `gorm:"not null"`
	CreatorID   uuid.UUID `gorm:"type:uuid;not null;index:idx_places_on_creator"`
	CreatedAt   time.Time `gorm:"not null;index:idx_places_on_created_at"`
}

// TableName explicitly sets the table name for GORM.
func (PlaceModel) TableName() string {
	return "Places"
}

// BeforeCreate assigns the primary key so that the row id never comes from the client.
func (m *PlaceModel) BeforeCreate(*gorm.DB) error {
	m.ID = uuid.New()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	return nil
}
