package bulk

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/stockroom-backend/internal/transfers"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

// Column headers match the legacy back-office spreadsheets, which is why they
// are Spanish. Header matching is exact and case-sensitive.
const (
	ColTransferNumber    = "Número de Transferencia"
	ColOrigin            = "Origen"
	ColDestination       = "Destino"
	ColState             = "Estado"
	ColExpectedDate      = "Fecha Esperada"
	ColCompletedDate     = "Fecha Completada"
	ColNotes             = "Notas"
	ColProductID         = "ID Producto"
	ColRequestedQty      = "Cantidad Solicitada"
	ColShippedQty        = "Cantidad Enviada"
	ColReceivedQty       = "Cantidad Recibida"
	ColShipPercentage    = "Porcentaje Enviado"
	ColReceivePercentage = "Porcentaje Recibido"
)

const dateLayout = "2006-01-02"

// KindMissingColumns marks the structural failure that short-circuits an
// import before any row is processed.
const KindMissingColumns = "MISSING_COLUMNS"

var exportColumns = []string{
	ColTransferNumber,
	ColOrigin,
	ColDestination,
	ColState,
	ColExpectedDate,
	ColCompletedDate,
	ColNotes,
	ColProductID,
	ColRequestedQty,
	ColShippedQty,
	ColReceivedQty,
	ColShipPercentage,
	ColReceivePercentage,
}

var requiredImportColumns = []string{
	ColOrigin,
	ColDestination,
	ColProductID,
	ColRequestedQty,
}

// Row is one validated data line from an import file.
type Row struct {
	// Line is the 1-based position in the file including the header, so the
	// first data row is line 2. Error messages use the same numbering.
	Line           int
	TransferNumber string
	Origin         string
	Destination    string
	ProductID      string
	RequestedQty   int
	ExpectedDate   *time.Time
	Notes          *string
}

// headerSchema maps column names to their position in the header line.
type headerSchema struct {
	index map[string]int
}

func parseHeader(record []string) (headerSchema, error) {
	schema := headerSchema{index: make(map[string]int, len(record))}
	for idx, name := range record {
		name = strings.TrimSpace(name)
		if _, exists := schema.index[name]; !exists {
			schema.index[name] = idx
		}
	}

	missing := []string{}
	for _, required := range requiredImportColumns {
		if _, ok := schema.index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return headerSchema{}, pkgerrors.New(pkgerrors.CodeValidation, "import header is missing required columns").
			WithDetails(map[string]any{"kind": KindMissingColumns, "missing": missing})
	}
	return schema, nil
}

func (s headerSchema) value(record []string, column string) (string, bool) {
	idx, ok := s.index[column]
	if !ok || idx >= len(record) {
		return "", false
	}
	return strings.TrimSpace(record[idx]), true
}

// ParseResult carries the validated rows plus non-fatal warnings.
type ParseResult struct {
	Rows     []Row
	Warnings []string
}

// ParseImport splits raw CSV text into validated rows. Row validation
// collects every problem before rejecting so the caller gets one complete
// error report; any row error fails the whole import.
func ParseImport(text string) (*ParseResult, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed csv")
	}
	if len(records) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "import file is empty")
	}

	schema, err := parseHeader(records[0])
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	var rowErrs error
	for position, record := range records[1:] {
		line := position + 2
		if isBlank(record) {
			continue
		}

		row := Row{Line: line}

		origin, _ := schema.value(record, ColOrigin)
		if origin == "" {
			rowErrs = multierr.Append(rowErrs, rowError(line, "origin location is required"))
		}
		row.Origin = origin

		destination, _ := schema.value(record, ColDestination)
		if destination == "" {
			rowErrs = multierr.Append(rowErrs, rowError(line, "destination location is required"))
		}
		row.Destination = destination

		productID, _ := schema.value(record, ColProductID)
		if productID == "" {
			rowErrs = multierr.Append(rowErrs, rowError(line, "product id is required"))
		}
		row.ProductID = productID

		rawQty, _ := schema.value(record, ColRequestedQty)
		qty, err := strconv.Atoi(rawQty)
		switch {
		case err != nil:
			rowErrs = multierr.Append(rowErrs, rowError(line, fmt.Sprintf("requested quantity %q is not an integer", rawQty)))
		case qty <= 0:
			rowErrs = multierr.Append(rowErrs, rowError(line, "requested quantity must be greater than zero"))
		default:
			row.RequestedQty = qty
		}

		if number, ok := schema.value(record, ColTransferNumber); ok && number != "" {
			row.TransferNumber = number
		}

		// Optional columns are parsed leniently: a bad value downgrades to a
		// warning instead of failing the import.
		if rawDate, ok := schema.value(record, ColExpectedDate); ok && rawDate != "" {
			parsed, err := time.Parse(dateLayout, rawDate)
			if err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: ignoring unparseable expected date %q", line, rawDate))
			} else {
				row.ExpectedDate = &parsed
			}
		}
		if notes, ok := schema.value(record, ColNotes); ok && notes != "" {
			row.Notes = &notes
		}

		result.Rows = append(result.Rows, row)
	}

	if rowErrs != nil {
		messages := []string{}
		for _, err := range multierr.Errors(rowErrs) {
			messages = append(messages, err.Error())
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "import rejected, rows contain errors").
			WithDetails(map[string]any{"errors": messages})
	}
	if len(result.Rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "import file has no data rows")
	}
	return result, nil
}

func rowError(line int, msg string) error {
	return fmt.Errorf("line %d: %s", line, msg)
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// ExportCSV flattens transfers into the 13-column layout, one line per item.
// Transfers without items produce no lines; their numbers are returned so the
// caller can surface the omission.
func ExportCSV(aggregates []*transfers.Transfer) (string, []string, error) {
	var builder strings.Builder
	writer := csv.NewWriter(&builder)

	if err := writer.Write(exportColumns); err != nil {
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}

	skipped := []string{}
	for _, transfer := range aggregates {
		if len(transfer.Items) == 0 {
			skipped = append(skipped, transfer.TransferNumber)
			continue
		}
		for _, item := range transfer.Items {
			record := []string{
				transfer.TransferNumber,
				transfer.OriginLocation,
				transfer.DestinationLocation,
				transfer.State.String(),
				formatDate(transfer.ExpectedDate),
				formatDate(transfer.CompletedDate),
				stringOrEmpty(transfer.Notes),
				item.ProductID,
				strconv.Itoa(item.RequestedQty),
				strconv.Itoa(item.ShippedQty),
				strconv.Itoa(item.ReceivedQty),
				item.ShipPercentage().StringFixed(2),
				item.ReceivePercentage().StringFixed(2),
			}
			if err := writer.Write(record); err != nil {
				return "", nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv row")
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return builder.String(), skipped, nil
}

func formatDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(dateLayout)
}

func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
