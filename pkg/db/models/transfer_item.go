package models

import (
	"time"

	"github.com/google/uuid"
)

// TransferItem is a single product line within a transfer.
type TransferItem struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransferID   uuid.UUID `gorm:"column:transfer_id;type:uuid;not null"`
	ProductID    string    `gorm:"column:product_id;not null"`
	RequestedQty int       `gorm:"column:requested_qty;not null"`
	ShippedQty   int       `gorm:"column:shipped_qty;not null;default:0"`
	ReceivedQty  int       `gorm:"column:received_qty;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
