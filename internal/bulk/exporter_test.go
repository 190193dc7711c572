package bulk

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/internal/transfers"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

func TestExporterPagesThroughAllRows(t *testing.T) {
	rows := []models.Transfer{}
	for i := 0; i < exportPageSize+3; i++ {
		rows = append(rows, models.Transfer{
			ID:                  uuid.New(),
			TransferNumber:      fmt.Sprintf("TRF-%06d", i+1),
			OriginLocation:      "Almacén Central",
			DestinationLocation: "Tienda Norte",
			State:               enums.TransferStateSent,
			CreatorID:           uuid.New(),
			Items: []models.TransferItem{
				{ID: uuid.New(), ProductID: "SKU-1", RequestedQty: 10, ShippedQty: 5},
			},
		})
	}
	repo := &stubBulkRepo{listRows: rows}

	exporter, err := NewExporter(repo, testLogger())
	if err != nil {
		t.Fatalf("exporter constructor failed: %v", err)
	}

	text, err := exporter.Export(context.Background(), transfers.Filters{})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) != len(rows)+1 {
		t.Fatalf("expected %d lines got %d", len(rows)+1, len(lines))
	}
	if !strings.Contains(lines[1], "TRF-000001") {
		t.Fatalf("expected first transfer in output got %q", lines[1])
	}
}

func TestExporterOmitsItemlessTransfers(t *testing.T) {
	repo := &stubBulkRepo{listRows: []models.Transfer{
		{
			ID:                  uuid.New(),
			TransferNumber:      "TRF-000001",
			OriginLocation:      "Almacén Central",
			DestinationLocation: "Tienda Norte",
			State:               enums.TransferStateDraft,
			CreatorID:           uuid.New(),
		},
		{
			ID:                  uuid.New(),
			TransferNumber:      "TRF-000002",
			OriginLocation:      "Almacén Central",
			DestinationLocation: "Tienda Sur",
			State:               enums.TransferStateDraft,
			CreatorID:           uuid.New(),
			Items: []models.TransferItem{
				{ID: uuid.New(), ProductID: "SKU-1", RequestedQty: 3},
			},
		},
	}}

	exporter, err := NewExporter(repo, testLogger())
	if err != nil {
		t.Fatalf("exporter constructor failed: %v", err)
	}

	text, err := exporter.Export(context.Background(), transfers.Filters{})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if strings.Contains(text, "TRF-000001") {
		t.Fatal("expected itemless transfer omitted")
	}
	if !strings.Contains(text, "TRF-000002") {
		t.Fatal("expected transfer with items present")
	}
}
