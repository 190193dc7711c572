package bulk

import (
	"context"
	"strings"

	"github.com/angelmondragon/stockroom-backend/internal/transfers"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

// exportPageSize bounds memory while paging the full result set. It must not
// exceed the list query cap or paging would terminate after one short page.
const exportPageSize = pagination.MaxLimit

// Exporter renders the current transfer list as CSV, honoring the same
// filters as the list endpoint.
type Exporter struct {
	repo transfers.Repository
	logg *logger.Logger
}

func NewExporter(repo transfers.Repository, logg *logger.Logger) (*Exporter, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "exporter requires a repository")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "exporter requires a logger")
	}
	return &Exporter{repo: repo, logg: logg}, nil
}

// Export pages through every matching transfer and flattens them into the
// spreadsheet layout. Transfers without items are omitted and logged.
func (e *Exporter) Export(ctx context.Context, filters transfers.Filters) (string, error) {
	aggregates := []*transfers.Transfer{}
	params := pagination.Params{Limit: exportPageSize}
	for {
		rows, err := e.repo.List(ctx, filters, params)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transfers for export")
		}
		for idx := range rows {
			aggregates = append(aggregates, transfers.FromModel(&rows[idx]))
		}
		if len(rows) < exportPageSize {
			break
		}
		params.Offset += exportPageSize
	}

	text, skipped, err := ExportCSV(aggregates)
	if err != nil {
		return "", err
	}
	if len(skipped) > 0 {
		ctx = e.logg.WithField(ctx, "transfer_numbers", strings.Join(skipped, ","))
		e.logg.Warn(ctx, "transfers without items omitted from export")
	}
	return text, nil
}
