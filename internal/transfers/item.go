package transfers

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a single product line within a transfer. It tracks the three
// quantity counters and enforces received <= shipped <= requested after
// every mutation. Items never outlive their parent transfer.
type Item struct {
	ID           uuid.UUID
	ProductID    string
	RequestedQty int
	ShippedQty   int
	ReceivedQty  int
}

// NewItem builds an item with shipped and received starting at zero.
func NewItem(productID string, requestedQty int) (*Item, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, errInvalidArgument("product id required")
	}
	if requestedQty <= 0 {
		return nil, errInvalidArgument("requested quantity must be greater than zero")
	}
	return &Item{
		ProductID:    productID,
		RequestedQty: requestedQty,
	}, nil
}

// SetShippedQty updates the shipped counter within [0, requested].
func (i *Item) SetShippedQty(qty int) error {
	if qty < 0 {
		return errInvalidQuantity("shipped quantity cannot be negative")
	}
	if qty > i.RequestedQty {
		return errInvalidQuantity("shipped quantity cannot exceed requested quantity")
	}
	if qty < i.ReceivedQty {
		return errInvalidQuantity("shipped quantity cannot drop below received quantity")
	}
	i.ShippedQty = qty
	return nil
}

// SetReceivedQty updates the received counter within [0, shipped].
func (i *Item) SetReceivedQty(qty int) error {
	if qty < 0 {
		return errInvalidQuantity("received quantity cannot be negative")
	}
	if qty > i.ShippedQty {
		return errInvalidQuantity("received quantity cannot exceed shipped quantity")
	}
	i.ReceivedQty = qty
	return nil
}

// ShipPercentage returns shipped/requested as a percentage. Zero when the
// requested quantity is zero, so a malformed row cannot divide by zero.
func (i *Item) ShipPercentage() decimal.Decimal {
	return percentage(i.ShippedQty, i.RequestedQty)
}

// ReceivePercentage returns received/shipped as a percentage, zero when
// nothing has shipped yet.
func (i *Item) ReceivePercentage() decimal.Decimal {
	return percentage(i.ReceivedQty, i.ShippedQty)
}

func percentage(part, whole int) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Div(decimal.NewFromInt(int64(whole))).
		Mul(decimal.NewFromInt(100))
}
