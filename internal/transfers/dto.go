package transfers

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

// TransferDTO is the API-facing projection of a transfer aggregate.
type TransferDTO struct {
	ID                       uuid.UUID           `json:"id"`
	TransferNumber           string              `json:"transfer_number"`
	OriginLocation           string              `json:"origin_location"`
	DestinationLocation      string              `json:"destination_location"`
	State                    enums.TransferState `json:"state"`
	ExpectedDate             *time.Time          `json:"expected_date,omitempty"`
	CompletedDate            *time.Time          `json:"completed_date,omitempty"`
	Notes                    *string             `json:"notes,omitempty"`
	StoreID                  *uuid.UUID          `json:"store_id,omitempty"`
	CreatorID                uuid.UUID           `json:"creator_id"`
	ActingUserID             *uuid.UUID          `json:"acting_user_id,omitempty"`
	Items                    []ItemDTO           `json:"items"`
	OverallShipPercentage    string              `json:"overall_ship_percentage"`
	OverallReceivePercentage string              `json:"overall_receive_percentage"`
	CreatedAt                time.Time           `json:"created_at"`
	UpdatedAt                time.Time           `json:"updated_at"`
}

// ItemDTO is the API-facing projection of a transfer item.
type ItemDTO struct {
	ID                uuid.UUID `json:"id"`
	ProductID         string    `json:"product_id"`
	RequestedQty      int       `json:"requested_qty"`
	ShippedQty        int       `json:"shipped_qty"`
	ReceivedQty       int       `json:"received_qty"`
	ShipPercentage    string    `json:"ship_percentage"`
	ReceivePercentage string    `json:"receive_percentage"`
}

// CreateTransferInput holds the validated payload to create a draft transfer.
type CreateTransferInput struct {
	OriginLocation      string
	DestinationLocation string
	ExpectedDate        *time.Time
	Notes               *string
	StoreID             *uuid.UUID
	CreatorID           uuid.UUID
	ActingUserID        *uuid.UUID
	Items               []CreateItemInput
}

// CreateItemInput is one product line in a creation payload.
type CreateItemInput struct {
	ProductID    string
	RequestedQty int
}

// Filters narrows list and count queries over transfers.
type Filters struct {
	StoreID        *uuid.UUID
	Origin         string
	Destination    string
	State          *enums.TransferState
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	NumberContains string
	CreatorID      *uuid.UUID
	ActingUserID   *uuid.UUID
}

// ListInput bundles filters with pagination for list queries.
type ListInput struct {
	Filters    Filters
	Pagination pagination.Params
}

// TransferListResult is a page of transfers plus the unpaged total.
type TransferListResult struct {
	Transfers []TransferDTO `json:"transfers"`
	Total     int64         `json:"total"`
	Limit     int           `json:"limit"`
	Offset    int           `json:"offset"`
}
