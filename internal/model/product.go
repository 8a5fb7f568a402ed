package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is a flat catalog record that nodes may carry.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"type:varchar(100);not null"`
	Model       string    `gorm:"type:varchar(100);not null"`
	ReleaseDate time.Time `gorm:"type:date;not null"`
	CreatedAt   time.Time `gorm:"type:date"`
}

func (Product) TableName() string { return "products" }
