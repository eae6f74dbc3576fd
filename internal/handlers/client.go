package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/mfsit/stunden/internal/httpx"
	"github.com/mfsit/stunden/internal/models"
	"github.com/mfsit/stunden/internal/validation"
)

type ClientHandler struct{ DB *gorm.DB }

func NewClientHandler(db *gorm.DB) *ClientHandler { return &ClientHandler{DB: db} }

type clientInput struct {
	Company    string `json:"company"`
	Name       string `json:"name"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
	TaxID      string `json:"tax_id"`
	HourlyRate *uint  `json:"hourly_rate"`
}

func (in clientInput) apply(c *models.Client, v validation.Violations) {
	validation.Required("company", in.Company, v)
	validation.MaxLen("company", in.Company, 200, v)
	validation.MaxLen("tax_id", in.TaxID, 20, v)
	if !v.Empty() {
		return
	}
	c.Company = strings.TrimSpace(in.Company)
	c.Name = in.Name
	c.Street = in.Street
	c.PostalCode = in.PostalCode
	c.City = in.City
	c.Country = in.Country
	c.TaxID = in.TaxID
	c.HourlyRate = in.HourlyRate
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	var clients []models.Client
	if err := h.DB.Order("company ASC").Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_clients", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": len(clients)})
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input clientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	var client models.Client
	v := validation.Violations{}
	input.apply(&client, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.DB.Create(&client).Error; err != nil {
		if isDuplicate(err) {
			httpx.JSONError(w, http.StatusConflict, "company_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "client_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var client models.Client
	if err := h.DB.First(&client, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var input clientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	input.apply(&client, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.DB.Save(&client).Error; err != nil {
		if isDuplicate(err) {
			httpx.JSONError(w, http.StatusConflict, "company_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "client_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id := idParam(r)
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var count int64
	if err := h.DB.Model(&models.TimeEntry{}).Where("client_id = ?", id).Count(&count).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
		return
	}
	if count > 0 {
		httpx.JSONError(w, http.StatusConflict, "client_has_entries", nil)
		return
	}
	res := h.DB.Delete(&models.Client{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func isDuplicate(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "unique") ||
		strings.Contains(strings.ToLower(err.Error()), "duplicate")
}
