package transfers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes transfer lifecycle operations over the persistence port.
type Service interface {
	Create(ctx context.Context, input CreateTransferInput) (*TransferDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*TransferDTO, error)
	GetByNumber(ctx context.Context, number string) (*TransferDTO, error)
	List(ctx context.Context, input ListInput) (*TransferListResult, error)
	AddItem(ctx context.Context, transferID uuid.UUID, input CreateItemInput) (*TransferDTO, error)
	RemoveItem(ctx context.Context, transferID, itemID uuid.UUID) (*TransferDTO, error)
	Send(ctx context.Context, transferID uuid.UUID, actingUserID *uuid.UUID) (*TransferDTO, error)
	UpdateShippedQty(ctx context.Context, transferID, itemID uuid.UUID, qty int, actingUserID *uuid.UUID) (*TransferDTO, error)
	UpdateReceivedQty(ctx context.Context, transferID, itemID uuid.UUID, qty int, actingUserID *uuid.UUID) (*TransferDTO, error)
	Complete(ctx context.Context, transferID uuid.UUID, actingUserID *uuid.UUID) (*TransferDTO, error)
	Cancel(ctx context.Context, transferID uuid.UUID, reason string, actingUserID *uuid.UUID) (*TransferDTO, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a transfer service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transfers repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input CreateTransferInput) (*TransferDTO, error) {
	transfer, err := NewTransfer(NewTransferInput{
		OriginLocation:      input.OriginLocation,
		DestinationLocation: input.DestinationLocation,
		ExpectedDate:        input.ExpectedDate,
		Notes:               input.Notes,
		StoreID:             input.StoreID,
		CreatorID:           input.CreatorID,
		ActingUserID:        input.ActingUserID,
	})
	if err != nil {
		return nil, err
	}
	for _, row := range input.Items {
		item, err := NewItem(row.ProductID, row.RequestedQty)
		if err != nil {
			return nil, err
		}
		if err := transfer.AddItem(item); err != nil {
			return nil, err
		}
	}

	var dto *TransferDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		number, err := repo.NextTransferNumber(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate transfer number")
		}
		transfer.TransferNumber = number

		saved, err := repo.Save(ctx, ToModel(transfer))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save transfer")
		}
		dto = toDTO(FromModel(saved))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*TransferDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer id required")
	}
	model, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return toDTO(FromModel(model)), nil
}

func (s *service) GetByNumber(ctx context.Context, number string) (*TransferDTO, error) {
	if number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer number required")
	}
	model, err := s.repo.FindByTransferNumber(ctx, number)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return toDTO(FromModel(model)), nil
}

func (s *service) List(ctx context.Context, input ListInput) (*TransferListResult, error) {
	params := input.Pagination.Normalize()

	rows, err := s.repo.List(ctx, input.Filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transfers")
	}
	total, err := s.repo.Count(ctx, input.Filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count transfers")
	}

	dtos := make([]TransferDTO, 0, len(rows))
	for idx := range rows {
		dtos = append(dtos, *toDTO(FromModel(&rows[idx])))
	}
	return &TransferListResult{
		Transfers: dtos,
		Total:     total,
		Limit:     params.Limit,
		Offset:    params.Offset,
	}, nil
}

func (s *service) AddItem(ctx context.Context, transferID uuid.UUID, input CreateItemInput) (*TransferDTO, error) {
	item, err := NewItem(input.ProductID, input.RequestedQty)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, transferID, nil, func(t *Transfer) error {
		return t.AddItem(item)
	})
}

func (s *service) RemoveItem(ctx context.Context, transferID, itemID uuid.UUID) (*TransferDTO, error) {
	return s.mutate(ctx, transferID, nil, func(t *Transfer) error {
		return t.RemoveItem(itemID)
	})
}

func (s *service) Send(ctx context.Context, transferID uuid.UUID, actingUserID *uuid.UUID) (*TransferDTO, error) {
	return s.mutate(ctx, transferID, actingUserID, func(t *Transfer) error {
		return t.Send()
	})
}

func (s *service) UpdateShippedQty(ctx context.Context, transferID, itemID uuid.UUID, qty int, actingUserID *uuid.UUID) (*TransferDTO, error) {
	return s.mutate(ctx, transferID, actingUserID, func(t *Transfer) error {
		return t.UpdateShippedQty(itemID, qty)
	})
}

func (s *service) UpdateReceivedQty(ctx context.Context, transferID, itemID uuid.UUID, qty int, actingUserID *uuid.UUID) (*TransferDTO, error) {
	return s.mutate(ctx, transferID, actingUserID, func(t *Transfer) error {
		return t.UpdateReceivedQty(itemID, qty)
	})
}

func (s *service) Complete(ctx context.Context, transferID uuid.UUID, actingUserID *uuid.UUID) (*TransferDTO, error) {
	return s.mutate(ctx, transferID, actingUserID, func(t *Transfer) error {
		return t.Complete()
	})
}

func (s *service) Cancel(ctx context.Context, transferID uuid.UUID, reason string, actingUserID *uuid.UUID) (*TransferDTO, error) {
	return s.mutate(ctx, transferID, actingUserID, func(t *Transfer) error {
		return t.Cancel(reason)
	})
}

// mutate loads the aggregate, applies op, and writes it back in one
// transaction. The aggregate is left untouched in storage when op fails.
func (s *service) mutate(ctx context.Context, transferID uuid.UUID, actingUserID *uuid.UUID, op func(t *Transfer) error) (*TransferDTO, error) {
	if transferID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer id required")
	}

	var dto *TransferDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		model, err := repo.FindByID(ctx, transferID)
		if err != nil {
			return mapLookupError(err)
		}

		transfer := FromModel(model)
		if actingUserID != nil {
			transfer.ActingUserID = actingUserID
		}
		if err := op(transfer); err != nil {
			return err
		}

		updated, err := repo.Update(ctx, ToModel(transfer))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transfer")
		}
		dto = toDTO(FromModel(updated))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "transfer not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transfer")
}
