package bulk

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/internal/transfers"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

const importHeader = "Origen,Destino,ID Producto,Cantidad Solicitada"

func TestParseImportHappyPath(t *testing.T) {
	text := strings.Join([]string{
		importHeader,
		"Almacén Central,Tienda Norte,SKU-1,10",
		"Almacén Central,Tienda Norte,SKU-2,4",
	}, "\n")

	result, err := ParseImport(text)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected two rows got %d", len(result.Rows))
	}
	row := result.Rows[0]
	if row.Line != 2 || row.Origin != "Almacén Central" || row.ProductID != "SKU-1" || row.RequestedQty != 10 {
		t.Fatalf("unexpected first row %+v", row)
	}
}

func TestParseImportMissingColumns(t *testing.T) {
	_, err := ParseImport("Origen,Destino\nA,B")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["kind"] != KindMissingColumns {
		t.Fatalf("expected missing columns detail got %v", typed.Details())
	}
	missing, ok := details["missing"].([]string)
	if !ok || len(missing) != 2 {
		t.Fatalf("expected two missing columns got %v", details["missing"])
	}
}

func TestParseImportCollectsRowErrorsWithLineNumbers(t *testing.T) {
	text := strings.Join([]string{
		importHeader,
		"Almacén Central,Tienda Norte,SKU-1,10",
		",Tienda Norte,SKU-2,4",
		"Almacén Central,Tienda Norte,,diez",
	}, "\n")

	_, err := ParseImport(text)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error got %v", err)
	}
	details := typed.Details().(map[string]any)
	messages := details["errors"].([]string)
	if len(messages) != 3 {
		t.Fatalf("expected three row errors got %v", messages)
	}
	if !strings.HasPrefix(messages[0], "line 3:") {
		t.Fatalf("expected line 3 prefix got %q", messages[0])
	}
	if !strings.HasPrefix(messages[1], "line 4:") || !strings.HasPrefix(messages[2], "line 4:") {
		t.Fatalf("expected line 4 prefixes got %v", messages[1:])
	}
}

func TestParseImportQuotedFieldsAndBlankLines(t *testing.T) {
	text := strings.Join([]string{
		importHeader + ",Notas",
		`"Almacén, Central",Tienda Norte,SKU-1,10,"Fragile, handle with care`,
	}, "\n")
	// Close the quote and add a trailing blank line.
	text += "\"\n\n"

	result, err := ParseImport(text)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("expected one row got %d", len(result.Rows))
	}
	if result.Rows[0].Origin != "Almacén, Central" {
		t.Fatalf("expected embedded comma preserved got %q", result.Rows[0].Origin)
	}
	if result.Rows[0].Notes == nil || !strings.HasPrefix(*result.Rows[0].Notes, "Fragile") {
		t.Fatalf("expected notes captured got %v", result.Rows[0].Notes)
	}
}

func TestParseImportLenientOptionalDate(t *testing.T) {
	text := strings.Join([]string{
		importHeader + ",Fecha Esperada",
		"Almacén Central,Tienda Norte,SKU-1,10,2026-09-15",
		"Almacén Central,Tienda Norte,SKU-2,4,mañana",
	}, "\n")

	result, err := ParseImport(text)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if result.Rows[0].ExpectedDate == nil {
		t.Fatal("expected parsed date on first row")
	}
	if result.Rows[1].ExpectedDate != nil {
		t.Fatal("expected bad date to be dropped")
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "line 3") {
		t.Fatalf("expected a line 3 warning got %v", result.Warnings)
	}
}

func TestParseImportEmptyFile(t *testing.T) {
	if _, err := ParseImport(""); err == nil {
		t.Fatal("expected rejection of empty file")
	}
	if _, err := ParseImport(importHeader + "\n"); err == nil {
		t.Fatal("expected rejection of header-only file")
	}
}

func exportFixture(t *testing.T) *transfers.Transfer {
	t.Helper()
	transfer, err := transfers.NewTransfer(transfers.NewTransferInput{
		OriginLocation:      "Almacén Central",
		DestinationLocation: "Tienda Norte",
		CreatorID:           uuid.New(),
	})
	if err != nil {
		t.Fatalf("transfer constructor failed: %v", err)
	}
	transfer.TransferNumber = "TRF-000007"
	item, err := transfers.NewItem("SKU-1", 10)
	if err != nil {
		t.Fatalf("item constructor failed: %v", err)
	}
	item.ID = uuid.New()
	if err := transfer.AddItem(item); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if err := transfer.Send(); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if err := transfer.UpdateShippedQty(item.ID, 5); err != nil {
		t.Fatalf("update shipped failed: %v", err)
	}
	return transfer
}

func TestExportCSVLayout(t *testing.T) {
	transfer := exportFixture(t)
	expected := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	transfer.ExpectedDate = &expected

	text, skipped, err := ExportCSV([]*transfers.Transfer{transfer})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("expected nothing skipped got %v", skipped)
	}

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], ColTransferNumber+",") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "TRF-000007") {
		t.Fatalf("expected transfer number in row %q", lines[1])
	}
	if !strings.Contains(lines[1], "2026-09-15") {
		t.Fatalf("expected expected date in row %q", lines[1])
	}
	if !strings.Contains(lines[1], "50.00") {
		t.Fatalf("expected ship percentage in row %q", lines[1])
	}
}

func TestExportCSVSkipsEmptyTransfers(t *testing.T) {
	empty, err := transfers.NewTransfer(transfers.NewTransferInput{
		OriginLocation:      "Almacén Central",
		DestinationLocation: "Tienda Sur",
		CreatorID:           uuid.New(),
	})
	if err != nil {
		t.Fatalf("transfer constructor failed: %v", err)
	}
	empty.TransferNumber = "TRF-000008"

	text, skipped, err := ExportCSV([]*transfers.Transfer{empty, exportFixture(t)})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(skipped) != 1 || skipped[0] != "TRF-000008" {
		t.Fatalf("expected TRF-000008 skipped got %v", skipped)
	}
	if strings.Contains(text, "TRF-000008") {
		t.Fatal("expected empty transfer omitted from output")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	transfer := exportFixture(t)
	text, _, err := ExportCSV([]*transfers.Transfer{transfer})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	result, err := ParseImport(text)
	if err != nil {
		t.Fatalf("reimport failed: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("expected one row got %d", len(result.Rows))
	}
	row := result.Rows[0]
	if row.TransferNumber != "TRF-000007" || row.Origin != transfer.OriginLocation || row.RequestedQty != 10 {
		t.Fatalf("round trip mismatch %+v", row)
	}
}
