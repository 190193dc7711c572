package transfers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubTransfersRepo struct {
	transfer       *models.Transfer
	saved          *models.Transfer
	updated        *models.Transfer
	sequence       int64
	nextNumber     func(ctx context.Context) (string, error)
	save           func(ctx context.Context, transfer *models.Transfer) (*models.Transfer, error)
	listRows       []models.Transfer
	total          int64
	listedFilters  Filters
	countedFilters Filters
}

func (s *stubTransfersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubTransfersRepo) Save(ctx context.Context, transfer *models.Transfer) (*models.Transfer, error) {
	if s.save != nil {
		return s.save(ctx, transfer)
	}
	if transfer.ID == uuid.Nil {
		transfer.ID = uuid.New()
	}
	for idx := range transfer.Items {
		if transfer.Items[idx].ID == uuid.Nil {
			transfer.Items[idx].ID = uuid.New()
		}
	}
	s.saved = transfer
	return transfer, nil
}

func (s *stubTransfersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	if s.transfer == nil || s.transfer.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.transfer, nil
}

func (s *stubTransfersRepo) FindByTransferNumber(ctx context.Context, number string) (*models.Transfer, error) {
	if s.transfer == nil || s.transfer.TransferNumber != number {
		return nil, gorm.ErrRecordNotFound
	}
	return s.transfer, nil
}

func (s *stubTransfersRepo) List(ctx context.Context, filters Filters, params pagination.Params) ([]models.Transfer, error) {
	s.listedFilters = filters
	return s.listRows, nil
}

func (s *stubTransfersRepo) Count(ctx context.Context, filters Filters) (int64, error) {
	s.countedFilters = filters
	return s.total, nil
}

func (s *stubTransfersRepo) Update(ctx context.Context, transfer *models.Transfer) (*models.Transfer, error) {
	for idx := range transfer.Items {
		if transfer.Items[idx].ID == uuid.Nil {
			transfer.Items[idx].ID = uuid.New()
		}
	}
	s.updated = transfer
	return transfer, nil
}

func (s *stubTransfersRepo) NextTransferNumber(ctx context.Context) (string, error) {
	if s.nextNumber != nil {
		return s.nextNumber(ctx)
	}
	s.sequence++
	return FormatTransferNumber(s.sequence), nil
}

func sentModel(itemID uuid.UUID) *models.Transfer {
	return &models.Transfer{
		ID:                  uuid.New(),
		TransferNumber:      "TRF-000042",
		OriginLocation:      "Almacén Central",
		DestinationLocation: "Tienda Norte",
		State:               enums.TransferStateSent,
		CreatorID:           uuid.New(),
		Items: []models.TransferItem{
			{ID: itemID, ProductID: "SKU-1", RequestedQty: 10},
		},
	}
}

func TestCreateAllocatesTransferNumber(t *testing.T) {
	repo := &stubTransfersRepo{}
	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	dto, err := svc.Create(context.Background(), CreateTransferInput{
		OriginLocation:      "Almacén Central",
		DestinationLocation: "Tienda Norte",
		CreatorID:           uuid.New(),
		Items: []CreateItemInput{
			{ProductID: "SKU-1", RequestedQty: 10},
			{ProductID: "SKU-2", RequestedQty: 4},
		},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if dto.TransferNumber != "TRF-000001" {
		t.Fatalf("unexpected transfer number %s", dto.TransferNumber)
	}
	if dto.State != enums.TransferStateDraft {
		t.Fatalf("expected draft got %s", dto.State)
	}
	if len(dto.Items) != 2 {
		t.Fatalf("expected two items got %d", len(dto.Items))
	}
	if repo.saved == nil {
		t.Fatal("expected repo save")
	}
}

func TestCreateRejectsDuplicateProducts(t *testing.T) {
	svc, _ := NewService(&stubTransfersRepo{}, stubTxRunner{})
	_, err := svc.Create(context.Background(), CreateTransferInput{
		OriginLocation:      "A",
		DestinationLocation: "B",
		CreatorID:           uuid.New(),
		Items: []CreateItemInput{
			{ProductID: "SKU-1", RequestedQty: 10},
			{ProductID: "SKU-1", RequestedQty: 1},
		},
	})
	if FailureKind(err) != KindDuplicate {
		t.Fatalf("expected duplicate kind got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	svc, _ := NewService(&stubTransfersRepo{}, stubTxRunner{})
	_, err := svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestSendTransitionsAndPersists(t *testing.T) {
	itemID := uuid.New()
	repo := &stubTransfersRepo{transfer: sentModel(itemID)}
	repo.transfer.State = enums.TransferStateDraft
	svc, _ := NewService(repo, stubTxRunner{})

	actor := uuid.New()
	dto, err := svc.Send(context.Background(), repo.transfer.ID, &actor)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if dto.State != enums.TransferStateSent {
		t.Fatalf("expected sent got %s", dto.State)
	}
	if repo.updated == nil {
		t.Fatal("expected repo update")
	}
	if repo.updated.ActingUserID == nil || *repo.updated.ActingUserID != actor {
		t.Fatal("expected acting user recorded on update")
	}
}

func TestUpdateShippedQtyDerivesState(t *testing.T) {
	itemID := uuid.New()
	repo := &stubTransfersRepo{transfer: sentModel(itemID)}
	svc, _ := NewService(repo, stubTxRunner{})

	dto, err := svc.UpdateShippedQty(context.Background(), repo.transfer.ID, itemID, 4, nil)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if dto.State != enums.TransferStatePartiallyReceived {
		t.Fatalf("expected partially received got %s", dto.State)
	}
	if dto.Items[0].ShipPercentage != "40.00" {
		t.Fatalf("unexpected ship percentage %s", dto.Items[0].ShipPercentage)
	}
}

func TestUpdateReceivedQtyInvalidQuantityDoesNotPersist(t *testing.T) {
	itemID := uuid.New()
	repo := &stubTransfersRepo{transfer: sentModel(itemID)}
	svc, _ := NewService(repo, stubTxRunner{})

	_, err := svc.UpdateReceivedQty(context.Background(), repo.transfer.ID, itemID, 5, nil)
	if FailureKind(err) != KindInvalidQuantity {
		t.Fatalf("expected invalid quantity got %v", err)
	}
	if repo.updated != nil {
		t.Fatal("expected no persistence on rejected update")
	}
}

func TestCancelOverwritesNotes(t *testing.T) {
	itemID := uuid.New()
	repo := &stubTransfersRepo{transfer: sentModel(itemID)}
	svc, _ := NewService(repo, stubTxRunner{})

	dto, err := svc.Cancel(context.Background(), repo.transfer.ID, "wrong destination", nil)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if dto.State != enums.TransferStateCancelled {
		t.Fatalf("expected cancelled got %s", dto.State)
	}
	if dto.Notes == nil || *dto.Notes != "wrong destination" {
		t.Fatal("expected cancellation reason in notes")
	}
}

func TestListNormalizesPagination(t *testing.T) {
	repo := &stubTransfersRepo{total: 3}
	svc, _ := NewService(repo, stubTxRunner{})

	result, err := svc.List(context.Background(), ListInput{
		Pagination: pagination.Params{Limit: 1000, Offset: -5},
		Filters:    Filters{Origin: "Almacén"},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if result.Limit != pagination.MaxLimit {
		t.Fatalf("expected capped limit got %d", result.Limit)
	}
	if result.Offset != 0 {
		t.Fatalf("expected zeroed offset got %d", result.Offset)
	}
	if result.Total != 3 {
		t.Fatalf("expected total 3 got %d", result.Total)
	}
	if repo.listedFilters.Origin != "Almacén" {
		t.Fatal("expected filters forwarded to repo")
	}
}
