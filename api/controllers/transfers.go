package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/api/middleware"
	"github.com/angelmondragon/stockroom-backend/api/responses"
	"github.com/angelmondragon/stockroom-backend/api/validators"
	"github.com/angelmondragon/stockroom-backend/internal/transfers"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

type transferItemRequest struct {
	ProductID    string `json:"product_id" validate:"required"`
	RequestedQty int    `json:"requested_qty" validate:"required,min=1"`
}

type transferCreateRequest struct {
	OriginLocation      string                `json:"origin_location" validate:"required"`
	DestinationLocation string                `json:"destination_location" validate:"required"`
	ExpectedDate        *time.Time            `json:"expected_date"`
	Notes               *string               `json:"notes"`
	Items               []transferItemRequest `json:"items" validate:"dive"`
}

type quantityUpdateRequest struct {
	Qty int `json:"qty" validate:"min=0"`
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func actingUser(r *http.Request) *uuid.UUID {
	id := middleware.UserUUIDFromContext(r.Context())
	if id == uuid.Nil {
		return nil
	}
	return &id
}

// TransferCreate handles creating a draft transfer with optional items.
func TransferCreate(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transferCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		creatorID := middleware.UserUUIDFromContext(r.Context())
		if creatorID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "user context missing"))
			return
		}

		input := transfers.CreateTransferInput{
			OriginLocation:      req.OriginLocation,
			DestinationLocation: req.DestinationLocation,
			ExpectedDate:        req.ExpectedDate,
			Notes:               req.Notes,
			StoreID:             middleware.StoreUUIDFromContext(r.Context()),
			CreatorID:           creatorID,
			ActingUserID:        actingUser(r),
		}
		for _, item := range req.Items {
			input.Items = append(input.Items, transfers.CreateItemInput{
				ProductID:    item.ProductID,
				RequestedQty: item.RequestedQty,
			})
		}

		dto, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// TransferGet fetches one transfer, by id or by transfer number.
func TransferGet(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "transferID")
		if strings.HasPrefix(raw, transfers.TransferNumberPrefix) {
			dto, err := svc.GetByNumber(r.Context(), raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, dto)
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid transfer id"))
			return
		}
		dto, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// TransferGetByNumber fetches one transfer by its display number.
func TransferGetByNumber(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number := strings.TrimSpace(chi.URLParam(r, "transferNumber"))
		if number == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "transfer number required"))
			return
		}
		dto, err := svc.GetByNumber(r.Context(), number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// TransferList handles filtered, paginated listing.
func TransferList(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := listInputFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func listInputFromQuery(r *http.Request) (*transfers.ListInput, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return nil, err
	}
	offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
	if err != nil {
		return nil, err
	}

	filters := transfers.Filters{
		Origin:         validators.SanitizeString(r.URL.Query().Get("origin"), 255),
		Destination:    validators.SanitizeString(r.URL.Query().Get("destination"), 255),
		NumberContains: validators.SanitizeString(r.URL.Query().Get("number"), 32),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("state")); raw != "" {
		state, err := enums.ParseTransferState(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid state filter").WithDetails(map[string]any{"state": raw})
		}
		filters.State = &state
	}
	if filters.StoreID, err = validators.ParseQueryUUID(r, "store_id"); err != nil {
		return nil, err
	}
	if filters.CreatorID, err = validators.ParseQueryUUID(r, "creator_id"); err != nil {
		return nil, err
	}
	if filters.CreatedFrom, err = validators.ParseQueryDate(r, "created_from"); err != nil {
		return nil, err
	}
	if filters.CreatedTo, err = validators.ParseQueryDate(r, "created_to"); err != nil {
		return nil, err
	}

	return &transfers.ListInput{
		Filters:    filters,
		Pagination: pagination.Params{Limit: limit, Offset: offset},
	}, nil
}

// TransferAddItem appends a product line to a draft transfer.
func TransferAddItem(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transferID, err := pathUUID(r, "transferID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req transferItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.AddItem(r.Context(), transferID, transfers.CreateItemInput{
			ProductID:    req.ProductID,
			RequestedQty: req.RequestedQty,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// TransferRemoveItem drops a product line from a draft transfer.
func TransferRemoveItem(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transferID, err := pathUUID(r, "transferID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.RemoveItem(r.Context(), transferID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// TransferSend dispatches a draft.
func TransferSend(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transferID, err := pathUUID(r, "transferID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Send(r.Context(), transferID, actingUser(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// TransferUpdateShipped records how many units of an item left the origin.
func TransferUpdateShipped(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return quantityUpdateHandler(svc.UpdateShippedQty, logg)
}

// TransferUpdateReceived records how many units of an item arrived.
func TransferUpdateReceived(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return quantityUpdateHandler(svc.UpdateReceivedQty, logg)
}

func quantityUpdateHandler(
	update func(ctx context.Context, transferID, itemID uuid.UUID, qty int, actingUserID *uuid.UUID) (*transfers.TransferDTO, error),
	logg *logger.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transferID, err := pathUUID(r, "transferID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req quantityUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := update(r.Context(), transferID, itemID, req.Qty, actingUser(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// TransferComplete closes a fully received transfer.
func TransferComplete(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transferID, err := pathUUID(r, "transferID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Complete(r.Context(), transferID, actingUser(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// TransferCancel aborts a transfer with a reason.
func TransferCancel(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transferID, err := pathUUID(r, "transferID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cancelRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Cancel(r.Context(), transferID, req.Reason, actingUser(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	value, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+key)
	}
	return value, nil
}
