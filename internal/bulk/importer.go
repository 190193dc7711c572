package bulk

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/internal/transfers"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ImportActor identifies who is running an import so created transfers carry
// the same ownership fields as ones created through the API.
type ImportActor struct {
	CreatorID uuid.UUID
	StoreID   *uuid.UUID
}

// ImportResult summarizes a committed import.
type ImportResult struct {
	TransfersCreated int      `json:"transfers_created"`
	RowsImported     int      `json:"rows_imported"`
	TransferNumbers  []string `json:"transfer_numbers"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Importer turns CSV text into persisted draft transfers. The whole file is
// written in one transaction so a failure in any group leaves nothing behind.
type Importer struct {
	repo    transfers.Repository
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.ImportMetrics
	maxRows int
}

func NewImporter(repo transfers.Repository, tx txRunner, logg *logger.Logger, m *metrics.ImportMetrics, maxRows int) (*Importer, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "importer requires a repository")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "importer requires a transaction runner")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "importer requires a logger")
	}
	return &Importer{repo: repo, tx: tx, logg: logg, metrics: m, maxRows: maxRows}, nil
}

type rowGroup struct {
	key  string
	rows []Row
}

// Import validates, groups and persists the file. Every error path records a
// failure metric; the transaction commits only when all groups are saved.
func (imp *Importer) Import(ctx context.Context, text string, actor ImportActor) (*ImportResult, error) {
	started := time.Now()
	if actor.CreatorID == uuid.Nil {
		imp.metrics.IncFailure("missing_actor")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "import requires an acting user")
	}

	parsed, err := ParseImport(text)
	if err != nil {
		imp.metrics.IncFailure("parse")
		imp.metrics.ObserveDuration("rejected", time.Since(started))
		return nil, err
	}
	if imp.maxRows > 0 && len(parsed.Rows) > imp.maxRows {
		imp.metrics.IncFailure("too_many_rows")
		imp.metrics.ObserveDuration("rejected", time.Since(started))
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "import exceeds the row limit").
			WithDetails(map[string]any{"rows": len(parsed.Rows), "max_rows": imp.maxRows})
	}

	groups, warnings := groupRows(parsed.Rows)
	warnings = append(parsed.Warnings, warnings...)

	aggregates, err := buildGroups(groups, actor)
	if err != nil {
		imp.metrics.IncFailure("validation")
		imp.metrics.ObserveDuration("rejected", time.Since(started))
		return nil, err
	}

	result := &ImportResult{RowsImported: len(parsed.Rows), Warnings: warnings}
	err = imp.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := imp.repo.WithTx(tx)
		for _, aggregate := range aggregates {
			number, err := repo.NextTransferNumber(ctx)
			if err != nil {
				return err
			}
			aggregate.TransferNumber = number
			if _, err := repo.Save(ctx, transfers.ToModel(aggregate)); err != nil {
				return err
			}
			result.TransferNumbers = append(result.TransferNumbers, number)
		}
		return nil
	})
	if err != nil {
		imp.metrics.IncFailure("persistence")
		imp.metrics.ObserveDuration("failed", time.Since(started))
		imp.logg.Error(ctx, "import transaction rolled back", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist imported transfers")
	}

	result.TransfersCreated = len(result.TransferNumbers)
	imp.metrics.AddRows("imported", result.RowsImported)
	imp.metrics.AddTransfersCreated(result.TransfersCreated)
	imp.metrics.ObserveDuration("imported", time.Since(started))
	ctx = imp.logg.WithFields(ctx, map[string]any{
		"transfers_created": result.TransfersCreated,
		"rows_imported":     result.RowsImported,
	})
	imp.logg.Info(ctx, "csv import committed")
	return result, nil
}

// groupRows partitions rows into transfers, preserving first-seen order.
// Rows with an explicit transfer number group on it; the rest fall back to
// the origin and destination pair, which is reported as a warning because two
// intended transfers over the same lane would collapse into one.
func groupRows(rows []Row) ([]rowGroup, []string) {
	groups := []rowGroup{}
	position := map[string]int{}
	warned := map[string]bool{}
	warnings := []string{}

	for _, row := range rows {
		var key string
		if row.TransferNumber != "" {
			key = "number:" + row.TransferNumber
		} else {
			key = "lane:" + row.Origin + "|" + row.Destination
			if !warned[key] {
				warned[key] = true
				warnings = append(warnings, fmt.Sprintf(
					"rows without a %s value are grouped by origin and destination (%s, %s)",
					ColTransferNumber, row.Origin, row.Destination))
			}
		}
		idx, ok := position[key]
		if !ok {
			idx = len(groups)
			position[key] = idx
			groups = append(groups, rowGroup{key: key})
		}
		groups[idx].rows = append(groups[idx].rows, row)
	}
	return groups, warnings
}

// buildGroups materializes each group as a draft aggregate, collecting every
// group-level problem before rejecting.
func buildGroups(groups []rowGroup, actor ImportActor) ([]*transfers.Transfer, error) {
	aggregates := make([]*transfers.Transfer, 0, len(groups))
	var groupErrs error

	for _, group := range groups {
		first := group.rows[0]
		aggregate, err := transfers.NewTransfer(transfers.NewTransferInput{
			OriginLocation:      first.Origin,
			DestinationLocation: first.Destination,
			ExpectedDate:        first.ExpectedDate,
			Notes:               first.Notes,
			StoreID:             actor.StoreID,
			CreatorID:           actor.CreatorID,
		})
		if err != nil {
			groupErrs = multierr.Append(groupErrs, rowError(first.Line, err.Error()))
			continue
		}

		for _, row := range group.rows {
			if row.Origin != first.Origin || row.Destination != first.Destination {
				groupErrs = multierr.Append(groupErrs, rowError(row.Line, fmt.Sprintf(
					"locations (%s, %s) do not match the rest of transfer group (%s, %s)",
					row.Origin, row.Destination, first.Origin, first.Destination)))
				continue
			}
			item, err := transfers.NewItem(row.ProductID, row.RequestedQty)
			if err != nil {
				groupErrs = multierr.Append(groupErrs, rowError(row.Line, err.Error()))
				continue
			}
			if err := aggregate.AddItem(item); err != nil {
				groupErrs = multierr.Append(groupErrs, rowError(row.Line, err.Error()))
			}
		}
		aggregates = append(aggregates, aggregate)
	}

	if groupErrs != nil {
		messages := []string{}
		for _, err := range multierr.Errors(groupErrs) {
			messages = append(messages, err.Error())
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "import rejected, transfer groups contain errors").
			WithDetails(map[string]any{"errors": messages})
	}
	return aggregates, nil
}
