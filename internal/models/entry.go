package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mfsit/stunden/internal/timecalc"
)

// ErrEndNotAfterStart is the validation failure for an entry whose computed
// duration is not strictly positive.
var ErrEndNotAfterStart = errors.New("end time must be after start time")

// TimeEntry is one billable work session. Start and End are times of day on
// the entry's Date; only their clock components are significant.
type TimeEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Date  time.Time `gorm:"not null;index" json:"date"`
	Start time.Time `gorm:"not null" json:"start"`
	End   time.Time `gorm:"not null" json:"end"`

	Description string `gorm:"type:text;not null" json:"description"`
	Paid        bool   `gorm:"not null;index" json:"paid"`

	ClientID uint    `gorm:"not null;index" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	EmployeeID uint      `gorm:"not null;index" json:"employee_id"`
	Employee   *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

// Hours computes the entry's duration in decimal hours.
func (e *TimeEntry) Hours() decimal.Decimal {
	return timecalc.Hours(e.Start, e.End)
}

// Validate rejects entries whose end time is not strictly later than the
// start time. Midnight rollover is not supported and fails the same check.
func (e *TimeEntry) Validate() error {
	if !e.Hours().IsPositive() {
		return ErrEndNotAfterStart
	}
	return nil
}
