package transfers

import (
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
)

func ToModel(t *Transfer) *models.Transfer {
	items := make([]models.TransferItem, 0, len(t.Items))
	for _, item := range t.Items {
		items = append(items, models.TransferItem{
			ID:           item.ID,
			TransferID:   t.ID,
			ProductID:    item.ProductID,
			RequestedQty: item.RequestedQty,
			ShippedQty:   item.ShippedQty,
			ReceivedQty:  item.ReceivedQty,
		})
	}
	return &models.Transfer{
		ID:                  t.ID,
		TransferNumber:      t.TransferNumber,
		OriginLocation:      t.OriginLocation,
		DestinationLocation: t.DestinationLocation,
		State:               t.State,
		ExpectedDate:        t.ExpectedDate,
		CompletedDate:       t.CompletedDate,
		Notes:               t.Notes,
		StoreID:             t.StoreID,
		CreatorID:           t.CreatorID,
		ActingUserID:        t.ActingUserID,
		Items:               items,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}

func FromModel(m *models.Transfer) *Transfer {
	items := make([]*Item, 0, len(m.Items))
	for idx := range m.Items {
		row := m.Items[idx]
		items = append(items, &Item{
			ID:           row.ID,
			ProductID:    row.ProductID,
			RequestedQty: row.RequestedQty,
			ShippedQty:   row.ShippedQty,
			ReceivedQty:  row.ReceivedQty,
		})
	}
	return &Transfer{
		ID:                  m.ID,
		TransferNumber:      m.TransferNumber,
		OriginLocation:      m.OriginLocation,
		DestinationLocation: m.DestinationLocation,
		State:               m.State,
		ExpectedDate:        m.ExpectedDate,
		CompletedDate:       m.CompletedDate,
		Notes:               m.Notes,
		StoreID:             m.StoreID,
		CreatorID:           m.CreatorID,
		ActingUserID:        m.ActingUserID,
		Items:               items,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func toDTO(t *Transfer) *TransferDTO {
	items := make([]ItemDTO, 0, len(t.Items))
	for _, item := range t.Items {
		items = append(items, ItemDTO{
			ID:                item.ID,
			ProductID:         item.ProductID,
			RequestedQty:      item.RequestedQty,
			ShippedQty:        item.ShippedQty,
			ReceivedQty:       item.ReceivedQty,
			ShipPercentage:    item.ShipPercentage().StringFixed(2),
			ReceivePercentage: item.ReceivePercentage().StringFixed(2),
		})
	}
	return &TransferDTO{
		ID:                       t.ID,
		TransferNumber:           t.TransferNumber,
		OriginLocation:           t.OriginLocation,
		DestinationLocation:      t.DestinationLocation,
		State:                    t.State,
		ExpectedDate:             t.ExpectedDate,
		CompletedDate:            t.CompletedDate,
		Notes:                    t.Notes,
		StoreID:                  t.StoreID,
		CreatorID:                t.CreatorID,
		ActingUserID:             t.ActingUserID,
		Items:                    items,
		OverallShipPercentage:    t.OverallShipPercentage().StringFixed(2),
		OverallReceivePercentage: t.OverallReceivePercentage().StringFixed(2),
		CreatedAt:                t.CreatedAt,
		UpdatedAt:                t.UpdatedAt,
	}
}
