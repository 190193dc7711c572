package controllers

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/api/middleware"
	"github.com/angelmondragon/stockroom-backend/api/responses"
	"github.com/angelmondragon/stockroom-backend/internal/bulk"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
)

// TransferImport ingests a CSV file and creates draft transfers from it.
// The body is the raw CSV text; multipart uploads are unwrapped by the
// gateway before they reach this service.
func TransferImport(imp *bulk.Importer, logg *logger.Logger, maxBodyBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creatorID := middleware.UserUUIDFromContext(r.Context())
		if creatorID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "user context missing"))
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "import body too large or unreadable"))
			return
		}

		result, err := imp.Import(r.Context(), string(body), bulk.ImportActor{
			CreatorID: creatorID,
			StoreID:   middleware.StoreUUIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// TransferExport streams the filtered transfer list as a CSV download.
func TransferExport(exp *bulk.Exporter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := listInputFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		text, err := exp.Export(r.Context(), input.Filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := "transfers-" + time.Now().UTC().Format("20060102-150405") + ".csv"
		responses.WriteCSV(w, filename, text)
	}
}
