package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the account a bid is prepared for.
type Customer struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Phone     *string   `gorm:"column:phone"`
	Email     *string   `gorm:"column:email"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
