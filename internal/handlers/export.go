package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mfsit/stunden/internal/httpx"
	"github.com/mfsit/stunden/internal/models"
)

// ExportHandler moves whole tables in and out as JSON files, mainly for
// backups and for migrating between database backends.
type ExportHandler struct{ DB *gorm.DB }

func NewExportHandler(db *gorm.DB) *ExportHandler { return &ExportHandler{DB: db} }

const exportFilePrefix = "stunden-export--"

// maxImportBytes caps upload size; the backups this moves are small.
const maxImportBytes = 16 << 20

// Export streams one entity table as a JSON download. The filename carries
// the entity name so Import can refuse mismatched files.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	entity := r.URL.Query().Get("entity")
	var payload any
	var err error
	switch entity {
	case "entries":
		var rows []models.TimeEntry
		err = h.DB.Order("id ASC").Find(&rows).Error
		payload = rows
	case "clients":
		var rows []models.Client
		err = h.DB.Order("id ASC").Find(&rows).Error
		payload = rows
	case "employees":
		var rows []models.Employee
		err = h.DB.Order("id ASC").Find(&rows).Error
		payload = rows
	case "numbers":
		var rows []models.InvoiceNumber
		err = h.DB.Order("id ASC").Find(&rows).Error
		payload = rows
	default:
		httpx.JSONError(w, http.StatusBadRequest, "unknown_entity", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "export_failed", nil)
		return
	}

	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "export_failed", nil)
		return
	}
	filename := fmt.Sprintf("%s%s--%s.json", exportFilePrefix, entity, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(body); err != nil {
		_ = err
	}
}

// Import reads a previously exported JSON file back in. The uploaded
// filename must start with the export prefix for the targeted entity;
// records are inserted as-is, so importing into a non-empty table can
// collide on ids.
func (h *ExportHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	entity := r.URL.Query().Get("entity")
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_upload", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "file_required", nil)
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Filename, exportFilePrefix+entity) {
		httpx.JSONError(w, http.StatusBadRequest, "filename_entity_mismatch", map[string]string{
			"expected_prefix": exportFilePrefix + entity,
		})
		return
	}

	var count int
	switch entity {
	case "entries":
		// Imported entries pass the same invariant as interactive ones.
		count, err = importRows(h.DB, file, func(e *models.TimeEntry) error {
			return e.Validate()
		})
	case "clients":
		count, err = importRows[models.Client](h.DB, file, nil)
	case "employees":
		count, err = importRows[models.Employee](h.DB, file, nil)
	case "numbers":
		count, err = importRows[models.InvoiceNumber](h.DB, file, nil)
	default:
		httpx.JSONError(w, http.StatusBadRequest, "unknown_entity", nil)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("entity", entity).Msg("import failed")
		httpx.JSONError(w, http.StatusBadRequest, "import_failed", map[string]string{"reason": err.Error()})
		return
	}

	log.Info().Str("entity", entity).Int("count", count).Msg("import complete")
	httpx.JSON(w, http.StatusOK, map[string]any{"imported": count})
}

func importRows[T any](db *gorm.DB, r io.Reader, validate func(*T) error) (int, error) {
	var rows []T
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	// All or nothing: a half-imported backup is worse than none.
	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if validate != nil {
				if err := validate(&rows[i]); err != nil {
					return fmt.Errorf("row %d: %w", i+1, err)
				}
			}
			if err := tx.Create(&rows[i]).Error; err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
