package transfers

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// Transfer is the aggregate root for an inventory movement between two
// locations. It owns its items and is the only authority for lifecycle
// transitions, including the ones derived from quantity updates.
type Transfer struct {
	ID                  uuid.UUID
	TransferNumber      string
	OriginLocation      string
	DestinationLocation string
	State               enums.TransferState
	ExpectedDate        *time.Time
	CompletedDate       *time.Time
	Notes               *string
	StoreID             *uuid.UUID
	CreatorID           uuid.UUID
	ActingUserID        *uuid.UUID
	Items               []*Item
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewTransferInput carries the creation payload for a draft transfer.
type NewTransferInput struct {
	OriginLocation      string
	DestinationLocation string
	ExpectedDate        *time.Time
	Notes               *string
	StoreID             *uuid.UUID
	CreatorID           uuid.UUID
	ActingUserID        *uuid.UUID
}

// NewTransfer builds an in-memory draft transfer with no items and no id.
func NewTransfer(input NewTransferInput) (*Transfer, error) {
	origin := strings.TrimSpace(input.OriginLocation)
	destination := strings.TrimSpace(input.DestinationLocation)
	if origin == "" {
		return nil, errInvalidArgument("origin location required")
	}
	if destination == "" {
		return nil, errInvalidArgument("destination location required")
	}
	if origin == destination {
		return nil, errInvalidArgument("origin and destination locations must differ")
	}
	if input.CreatorID == uuid.Nil {
		return nil, errInvalidArgument("creator id required")
	}
	return &Transfer{
		OriginLocation:      origin,
		DestinationLocation: destination,
		State:               enums.TransferStateDraft,
		ExpectedDate:        input.ExpectedDate,
		Notes:               input.Notes,
		StoreID:             input.StoreID,
		CreatorID:           input.CreatorID,
		ActingUserID:        input.ActingUserID,
	}, nil
}

// AddItem appends an item to a draft transfer, rejecting product id collisions.
func (t *Transfer) AddItem(item *Item) error {
	if t.State != enums.TransferStateDraft {
		return errInvalidState("add item", t.State.String())
	}
	if item == nil {
		return errInvalidArgument("item required")
	}
	for _, existing := range t.Items {
		if existing.ProductID == item.ProductID {
			return errDuplicateProduct(item.ProductID)
		}
	}
	t.Items = append(t.Items, item)
	return nil
}

// RemoveItem drops an item by id while the transfer is still a draft.
func (t *Transfer) RemoveItem(itemID uuid.UUID) error {
	if t.State != enums.TransferStateDraft {
		return errInvalidState("remove item", t.State.String())
	}
	for idx, item := range t.Items {
		if item.ID == itemID {
			t.Items = append(t.Items[:idx], t.Items[idx+1:]...)
			return nil
		}
	}
	return errItemNotFound(itemID.String())
}

// Send moves a draft with at least one valid item into SENT.
func (t *Transfer) Send() error {
	if t.State != enums.TransferStateDraft {
		return errInvalidState("send", t.State.String())
	}
	if len(t.Items) == 0 {
		return errEmptyTransfer()
	}
	for _, item := range t.Items {
		if item.RequestedQty <= 0 {
			return errInvalidQuantity("every item needs a requested quantity greater than zero")
		}
	}
	t.State = enums.TransferStateSent
	return nil
}

// UpdateShippedQty sets an item's shipped counter and re-derives the
// lifecycle state from the shipped vs requested totals.
//
// The shipped totals alone can drive the transfer into COMPLETED before a
// single unit has been received; a later received-quantity update then pulls
// it back to PARTIALLY_RECEIVED. That is the behavior of the system this
// service replaces and downstream consumers rely on it, so it is kept even
// though Complete() checks received quantities instead.
func (t *Transfer) UpdateShippedQty(itemID uuid.UUID, qty int) error {
	if err := t.ensureQuantitiesMutable("update shipped quantity"); err != nil {
		return err
	}
	item := t.findItem(itemID)
	if item == nil {
		return errItemNotFound(itemID.String())
	}
	if err := item.SetShippedQty(qty); err != nil {
		return err
	}
	t.applyDerivedState(deriveState(t.totalShipped(), t.totalRequested()))
	return nil
}

// UpdateReceivedQty sets an item's received counter and re-derives the
// lifecycle state from the received vs shipped totals.
func (t *Transfer) UpdateReceivedQty(itemID uuid.UUID, qty int) error {
	if err := t.ensureQuantitiesMutable("update received quantity"); err != nil {
		return err
	}
	item := t.findItem(itemID)
	if item == nil {
		return errItemNotFound(itemID.String())
	}
	if err := item.SetReceivedQty(qty); err != nil {
		return err
	}
	t.applyDerivedState(deriveState(t.totalReceived(), t.totalShipped()))
	return nil
}

// Complete closes the transfer once every item is fully received.
func (t *Transfer) Complete() error {
	if t.State != enums.TransferStateSent && t.State != enums.TransferStatePartiallyReceived {
		return errInvalidState("complete", t.State.String())
	}
	for _, item := range t.Items {
		if item.ReceivedQty != item.ShippedQty {
			return errIncompleteReceipt()
		}
	}
	t.State = enums.TransferStateCompleted
	now := time.Now().UTC()
	t.CompletedDate = &now
	return nil
}

// Cancel aborts the transfer from any non-terminal state, overwriting the
// notes with the cancellation reason.
func (t *Transfer) Cancel(reason string) error {
	if t.State.IsTerminal() {
		return errInvalidState("cancel", t.State.String())
	}
	t.State = enums.TransferStateCancelled
	t.Notes = &reason
	return nil
}

// OverallShipPercentage is total shipped over total requested.
func (t *Transfer) OverallShipPercentage() decimal.Decimal {
	return percentage(t.totalShipped(), t.totalRequested())
}

// OverallReceivePercentage is total received over total shipped.
func (t *Transfer) OverallReceivePercentage() decimal.Decimal {
	return percentage(t.totalReceived(), t.totalShipped())
}

// ensureQuantitiesMutable guards the quantity-update operations. COMPLETED is
// deliberately allowed: a shipment-derived completion stays revertible until
// receipts confirm it (see UpdateShippedQty).
func (t *Transfer) ensureQuantitiesMutable(op string) error {
	switch t.State {
	case enums.TransferStateSent, enums.TransferStatePartiallyReceived, enums.TransferStateCompleted:
		return nil
	default:
		return errInvalidState(op, t.State.String())
	}
}

// deriveState maps an aggregated done/total pair onto a lifecycle state.
// Both quantity-update paths share this single derivation so the ship and
// receive rules cannot drift apart.
func deriveState(done, total int) enums.TransferState {
	switch {
	case done <= 0:
		return enums.TransferStateSent
	case done < total:
		return enums.TransferStatePartiallyReceived
	default:
		return enums.TransferStateCompleted
	}
}

func (t *Transfer) applyDerivedState(next enums.TransferState) {
	t.State = next
	if next == enums.TransferStateCompleted {
		now := time.Now().UTC()
		t.CompletedDate = &now
		return
	}
	t.CompletedDate = nil
}

func (t *Transfer) findItem(itemID uuid.UUID) *Item {
	for _, item := range t.Items {
		if item.ID == itemID {
			return item
		}
	}
	return nil
}

func (t *Transfer) totalRequested() int {
	total := 0
	for _, item := range t.Items {
		total += item.RequestedQty
	}
	return total
}

func (t *Transfer) totalShipped() int {
	total := 0
	for _, item := range t.Items {
		total += item.ShippedQty
	}
	return total
}

func (t *Transfer) totalReceived() int {
	total := 0
	for _, item := range t.Items {
		total += item.ReceivedQty
	}
	return total
}
