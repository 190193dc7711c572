package transfers

import (
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

// Failure kinds carried in error details so API consumers can branch on the
// business rule that rejected an operation, independent of the HTTP status.
const (
	KindInvalidArgument   = "INVALID_ARGUMENT"
	KindInvalidState      = "INVALID_STATE"
	KindInvalidQuantity   = "INVALID_QUANTITY"
	KindNotFound          = "NOT_FOUND"
	KindDuplicate         = "DUPLICATE"
	KindEmptyTransfer     = "EMPTY_TRANSFER"
	KindIncompleteReceipt = "INCOMPLETE_RECEIPT"
)

func errInvalidArgument(msg string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).
		WithDetails(map[string]string{"kind": KindInvalidArgument})
}

func errInvalidQuantity(msg string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).
		WithDetails(map[string]string{"kind": KindInvalidQuantity})
}

func errInvalidState(op string, state string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, op+" not allowed in state "+state).
		WithDetails(map[string]string{"kind": KindInvalidState, "state": state})
}

func errItemNotFound(itemID string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "transfer item not found").
		WithDetails(map[string]string{"kind": KindNotFound, "item_id": itemID})
}

func errDuplicateProduct(productID string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeConflict, "duplicate product id "+productID).
		WithDetails(map[string]string{"kind": KindDuplicate, "product_id": productID})
}

func errEmptyTransfer() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "transfer has no items").
		WithDetails(map[string]string{"kind": KindEmptyTransfer})
}

func errIncompleteReceipt() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "every item must be fully received before completion").
		WithDetails(map[string]string{"kind": KindIncompleteReceipt})
}

// FailureKind extracts the business failure kind from an error, empty when
// the error carries none.
func FailureKind(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return ""
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		return ""
	}
	return details["kind"]
}
