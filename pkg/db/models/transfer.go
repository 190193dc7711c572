package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// Transfer represents a movement of products between two locations.
type Transfer struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransferNumber      string              `gorm:"column:transfer_number;not null;uniqueIndex"`
	OriginLocation      string              `gorm:"column:origin_location;not null"`
	DestinationLocation string              `gorm:"column:destination_location;not null"`
	State               enums.TransferState `gorm:"column:state;type:text;not null;default:'draft'"`
	ExpectedDate        *time.Time          `gorm:"column:expected_date"`
	CompletedDate       *time.Time          `gorm:"column:completed_date"`
	Notes               *string             `gorm:"column:notes"`
	StoreID             *uuid.UUID          `gorm:"column:store_id;type:uuid"`
	CreatorID           uuid.UUID           `gorm:"column:creator_id;type:uuid;not null"`
	ActingUserID        *uuid.UUID          `gorm:"column:acting_user_id;type:uuid"`
	Items               []TransferItem      `gorm:"foreignKey:TransferID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
