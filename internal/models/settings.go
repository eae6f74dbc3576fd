package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// DefaultTaxRate applies whenever no TaxSetting record exists.
const DefaultTaxRate = 20

// TaxSettingID is the well-known primary key of the single settings record.
const TaxSettingID = 1

// TaxSetting holds the applicable tax percentage. At most one record (id 1)
// is ever consulted.
type TaxSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UpdatedAt time.Time `json:"updated_at"`
	Rate      int       `gorm:"not null;default:20" json:"rate"`
}

// ResolveTaxRate reads the configured tax percentage, substituting the
// default when the record is absent. Lookup errors other than "not found"
// are propagated.
func ResolveTaxRate(db *gorm.DB) (int, error) {
	var s TaxSetting
	err := db.First(&s, TaxSettingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultTaxRate, nil
	}
	if err != nil {
		return 0, err
	}
	return s.Rate, nil
}

// InvoiceNumber is an append-only log entry recording an issued invoice
// number. It is written once per successfully generated invoice and only
// read back to suggest the next sequential number; duplicates across racing
// generations are tolerated, so there is no uniqueness constraint.
type InvoiceNumber struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Number   string    `gorm:"size:200" json:"number"`
	IssuedAt time.Time `gorm:"autoCreateTime;index" json:"issued_at"`
}
