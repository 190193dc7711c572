package transfers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

// TransferNumberPrefix is the fixed prefix of every allocated number.
const TransferNumberPrefix = "TRF"

// Repository is the persistence port for transfer aggregates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Save(ctx context.Context, transfer *models.Transfer) (*models.Transfer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Transfer, error)
	FindByTransferNumber(ctx context.Context, number string) (*models.Transfer, error)
	List(ctx context.Context, filters Filters, params pagination.Params) ([]models.Transfer, error)
	Count(ctx context.Context, filters Filters) (int64, error)
	Update(ctx context.Context, transfer *models.Transfer) (*models.Transfer, error)
	NextTransferNumber(ctx context.Context) (string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a transfers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Save(ctx context.Context, transfer *models.Transfer) (*models.Transfer, error) {
	if transfer.ID == uuid.Nil {
		transfer.ID = uuid.New()
	}
	for idx := range transfer.Items {
		if transfer.Items[idx].ID == uuid.Nil {
			transfer.Items[idx].ID = uuid.New()
		}
		transfer.Items[idx].TransferID = transfer.ID
	}
	if err := r.db.WithContext(ctx).Create(transfer).Error; err != nil {
		return nil, err
	}
	return transfer, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	var transfer models.Transfer
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&transfer).Error
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *repository) FindByTransferNumber(ctx context.Context, number string) (*models.Transfer, error) {
	var transfer models.Transfer
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("transfer_number = ?", number).
		First(&transfer).Error
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *repository) List(ctx context.Context, filters Filters, params pagination.Params) ([]models.Transfer, error) {
	params = params.Normalize()

	var transfers []models.Transfer
	err := applyFilters(r.db.WithContext(ctx).Model(&models.Transfer{}), filters).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&transfers).Error
	if err != nil {
		return nil, err
	}
	return transfers, nil
}

func (r *repository) Count(ctx context.Context, filters Filters) (int64, error) {
	var count int64
	err := applyFilters(r.db.WithContext(ctx).Model(&models.Transfer{}), filters).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Update writes the aggregate back: scalar fields, item upserts, and removal
// of items no longer present on the aggregate.
func (r *repository) Update(ctx context.Context, transfer *models.Transfer) (*models.Transfer, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"origin_location":      transfer.OriginLocation,
			"destination_location": transfer.DestinationLocation,
			"state":                transfer.State,
			"expected_date":        transfer.ExpectedDate,
			"completed_date":       transfer.CompletedDate,
			"notes":                transfer.Notes,
			"acting_user_id":       transfer.ActingUserID,
		}
		if err := tx.Model(&models.Transfer{}).
			Where("id = ?", transfer.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		keep := make([]uuid.UUID, 0, len(transfer.Items))
		for idx := range transfer.Items {
			item := &transfer.Items[idx]
			item.TransferID = transfer.ID
			if item.ID == uuid.Nil {
				item.ID = uuid.New()
				if err := tx.Create(item).Error; err != nil {
					return err
				}
			} else {
				itemUpdates := map[string]any{
					"requested_qty": item.RequestedQty,
					"shipped_qty":   item.ShippedQty,
					"received_qty":  item.ReceivedQty,
				}
				if err := tx.Model(&models.TransferItem{}).
					Where("id = ?", item.ID).
					Updates(itemUpdates).Error; err != nil {
					return err
				}
			}
			keep = append(keep, item.ID)
		}

		removal := tx.Where("transfer_id = ?", transfer.ID)
		if len(keep) > 0 {
			removal = removal.Where("id NOT IN ?", keep)
		}
		return removal.Delete(&models.TransferItem{}).Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, transfer.ID)
}

// NextTransferNumber increments the single-row counter and formats the
// result as TRF-NNNNNN. The increment and read happen in one transaction so
// the row lock serializes concurrent allocations.
func (r *repository) NextTransferNumber(ctx context.Context) (string, error) {
	var value int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec("UPDATE transfer_sequences SET last_value = last_value + 1 WHERE id = 1")
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Create(&models.TransferSequence{ID: 1, LastValue: 1}).Error; err != nil {
				return err
			}
			value = 1
			return nil
		}
		return tx.Raw("SELECT last_value FROM transfer_sequences WHERE id = 1").Scan(&value).Error
	})
	if err != nil {
		return "", err
	}
	return FormatTransferNumber(value), nil
}

// FormatTransferNumber renders a sequence value as TRF-NNNNNN.
func FormatTransferNumber(value int64) string {
	return fmt.Sprintf("%s-%06d", TransferNumberPrefix, value)
}

func applyFilters(query *gorm.DB, filters Filters) *gorm.DB {
	if filters.StoreID != nil {
		query = query.Where("store_id = ?", *filters.StoreID)
	}
	if origin := strings.TrimSpace(filters.Origin); origin != "" {
		query = query.Where("LOWER(origin_location) LIKE ?", "%"+strings.ToLower(origin)+"%")
	}
	if destination := strings.TrimSpace(filters.Destination); destination != "" {
		query = query.Where("LOWER(destination_location) LIKE ?", "%"+strings.ToLower(destination)+"%")
	}
	if filters.State != nil {
		query = query.Where("state = ?", *filters.State)
	}
	if filters.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filters.CreatedFrom)
	}
	if filters.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filters.CreatedTo)
	}
	if number := strings.TrimSpace(filters.NumberContains); number != "" {
		query = query.Where("transfer_number LIKE ?", "%"+number+"%")
	}
	if filters.CreatorID != nil {
		query = query.Where("creator_id = ?", *filters.CreatorID)
	}
	if filters.ActingUserID != nil {
		query = query.Where("acting_user_id = ?", *filters.ActingUserID)
	}
	return query
}
