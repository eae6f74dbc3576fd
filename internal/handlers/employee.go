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

type EmployeeHandler struct{ DB *gorm.DB }

func NewEmployeeHandler(db *gorm.DB) *EmployeeHandler { return &EmployeeHandler{DB: db} }

type employeeInput struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
	TaxID      string `json:"tax_id"`
	BankName   string `json:"bank_name"`
	BankIBAN   string `json:"bank_iban"`
	BankBIC    string `json:"bank_bic"`
}

func (in employeeInput) apply(e *models.Employee, v validation.Violations) {
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 200, v)
	validation.MaxLen("tax_id", in.TaxID, 20, v)
	if !v.Empty() {
		return
	}
	e.Name = strings.TrimSpace(in.Name)
	e.Street = in.Street
	e.PostalCode = in.PostalCode
	e.City = in.City
	e.Country = in.Country
	e.TaxID = in.TaxID
	e.BankName = in.BankName
	e.BankIBAN = in.BankIBAN
	e.BankBIC = in.BankBIC
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	var employees []models.Employee
	if err := h.DB.Order("name ASC").Find(&employees).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_employees", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": employees, "total": len(employees)})
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input employeeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	var employee models.Employee
	v := validation.Violations{}
	input.apply(&employee, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.DB.Create(&employee).Error; err != nil {
		if isDuplicate(err) {
			httpx.JSONError(w, http.StatusConflict, "name_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "employee_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, employee)
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var employee models.Employee
	if err := h.DB.First(&employee, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var input employeeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	input.apply(&employee, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.DB.Save(&employee).Error; err != nil {
		if isDuplicate(err) {
			httpx.JSONError(w, http.StatusConflict, "name_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "employee_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, employee)
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.DB.Model(&models.TimeEntry{}).Where("employee_id = ?", id).Count(&count).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
		return
	}
	if count > 0 {
		httpx.JSONError(w, http.StatusConflict, "employee_has_entries", nil)
		return
	}
	res := h.DB.Delete(&models.Employee{}, id)
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
