package handlers

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mfsit/stunden/internal/httpx"
	"github.com/mfsit/stunden/internal/models"
)

type SettingsHandler struct{ DB *gorm.DB }

func NewSettingsHandler(db *gorm.DB) *SettingsHandler { return &SettingsHandler{DB: db} }

// GetTax reports the effective tax rate, which is the default percentage
// until a setting record has been written.
func (h *SettingsHandler) GetTax(w http.ResponseWriter, r *http.Request) {
	rate, err := models.ResolveTaxRate(h.DB)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_read_tax_setting", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rate": rate})
}

// PutTax upserts the single settings record.
func (h *SettingsHandler) PutTax(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		w.Header().Set("Allow", "PUT,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var input struct {
		Rate *int `json:"rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if input.Rate == nil || *input.Rate < 0 || *input.Rate > 100 {
		httpx.JSONError(w, http.StatusBadRequest, "rate_must_be_0_to_100", nil)
		return
	}
	setting := models.TaxSetting{ID: models.TaxSettingID, Rate: *input.Rate}
	if err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
	}).Create(&setting).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "tax_setting_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rate": setting.Rate})
}
