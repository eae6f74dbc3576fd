package models

import (
	"strings"
	"time"
)

// Employee is the biller/contractor whose address appears as the invoice
// sender and whose bank details name the payment recipient.
type Employee struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name       string `gorm:"size:200;not null;uniqueIndex" json:"name"`
	Street     string `gorm:"size:200" json:"street"`
	PostalCode string `gorm:"size:20" json:"postal_code"`
	City       string `gorm:"size:200" json:"city"`
	Country    string `gorm:"size:200" json:"country"`
	TaxID      string `gorm:"size:20" json:"tax_id"`

	BankName string `gorm:"size:200" json:"bank_name"`
	BankIBAN string `gorm:"size:200" json:"bank_iban"`
	BankBIC  string `gorm:"size:200" json:"bank_bic"`
}

// ZipCity renders the "postal code + city" line of an address block.
func (e *Employee) ZipCity() string {
	return joinZipCity(e.PostalCode, e.City)
}

func joinZipCity(zip, city string) string {
	return strings.TrimSpace(zip + " " + city)
}
