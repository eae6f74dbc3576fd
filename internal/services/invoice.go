package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mfsit/stunden/internal/models"
	"github.com/mfsit/stunden/internal/money"
)

// Validation failures surfaced to the caller. Handlers map these to
// form-level messages; none of them leaves partial state behind.
var (
	ErrNoEntriesForClient = errors.New("no entry selected for the chosen receiver")
	ErrPositionOrder      = errors.New("fill position 2 first")
	ErrPositionPair       = errors.New("fill both halves of a position")
)

// Party is one address block on the invoice.
type Party struct {
	Company string
	Name    string
	Street  string
	ZipCity string
	Country string
	TaxID   string
}

// BankDetails name the payment recipient on the invoice footer.
type BankDetails struct {
	Receiver string
	Bank     string
	IBAN     string
	BIC      string
}

// Position is an optional supplementary line item as submitted: both halves
// present, or both absent.
type Position struct {
	Title string
	Net   *decimal.Decimal
}

func (p Position) empty() bool { return p.Title == "" && p.Net == nil }

// LineItem is one computed invoice position.
type LineItem struct {
	Position     int
	Title        string
	Net          decimal.Decimal
	NetFormatted string
	TaxRate      int
}

// EntryRow is one contributing time entry on the detail table.
type EntryRow struct {
	Date        time.Time
	Start       time.Time
	End         time.Time
	Description string
	Hours       decimal.Decimal
}

// ComputedInvoice is the fully aggregated, pre-formatted record handed to
// the document renderer. Monetary fields carry both the exact decimal and
// its display string; rounding happens only at the formatting boundary.
type ComputedInvoice struct {
	Number string
	Title  string

	Sender   Party
	Receiver Party
	Bank     BankDetails

	Items []LineItem

	// Entries, TotalHours and the rate fields are populated in hour-rate
	// mode only.
	Entries             []EntryRow
	TotalHours          decimal.Decimal
	HourlyRate          decimal.Decimal
	HourlyRateFormatted string

	TaxRate int
	Net     decimal.Decimal
	Tax     decimal.Decimal
	Gross   decimal.Decimal

	NetFormatted   string
	TaxFormatted   string
	GrossFormatted string
}

// BuildInput collects everything one invoice computation needs. Exactly one
// of (Entries + HourlyRate) or FlatNet must be supplied: the former selects
// hour-rate mode, the latter summary mode.
type BuildInput struct {
	Client   models.Client
	Employee models.Employee

	Number string
	Title  string

	Entries    []models.TimeEntry
	HourlyRate decimal.Decimal
	FlatNet    *decimal.Decimal

	Position2 Position
	Position3 Position

	// TaxRate is resolved by the caller (TaxSetting record or default).
	TaxRate int
}

// InvoiceService aggregates selected time entries and invoice parameters
// into a ComputedInvoice. It is a pure computation over its input; reading
// settings and writing the number log stay with the caller.
type InvoiceService struct {
	fmt money.Config
}

func NewInvoiceService() *InvoiceService {
	return &InvoiceService{fmt: money.InvoiceConfig()}
}

var oneHundred = decimal.NewFromInt(100)

// Build validates in and computes the invoice. Validation order: entry
// selection for the chosen client, position ordering, position pairing;
// the first failure wins and nothing is computed.
func (s *InvoiceService) Build(in BuildInput) (*ComputedInvoice, error) {
	hourMode := in.FlatNet == nil

	var rows []EntryRow
	totalHours := decimal.Zero
	if hourMode {
		for _, e := range in.Entries {
			if e.ClientID != in.Client.ID {
				continue
			}
			h := e.Hours()
			totalHours = totalHours.Add(h)
			rows = append(rows, EntryRow{
				Date:        e.Date,
				Start:       e.Start,
				End:         e.End,
				Description: e.Description,
				Hours:       h,
			})
		}
		if len(rows) == 0 {
			return nil, ErrNoEntriesForClient
		}
	}

	if in.Position2.Net == nil && in.Position3.Net != nil {
		return nil, ErrPositionOrder
	}
	if err := checkPair(in.Position2); err != nil {
		return nil, err
	}
	if err := checkPair(in.Position3); err != nil {
		return nil, err
	}

	var pos1Net decimal.Decimal
	if hourMode {
		pos1Net = totalHours.Mul(in.HourlyRate)
	} else {
		pos1Net = *in.FlatNet
	}

	net := pos1Net
	items := []LineItem{{
		Position:     1,
		Title:        in.Title,
		Net:          pos1Net,
		NetFormatted: money.Format(pos1Net, s.fmt),
		TaxRate:      in.TaxRate,
	}}
	for i, p := range []Position{in.Position2, in.Position3} {
		if p.Net == nil {
			continue
		}
		net = net.Add(*p.Net)
		items = append(items, LineItem{
			Position:     i + 2,
			Title:        p.Title,
			Net:          *p.Net,
			NetFormatted: money.Format(*p.Net, s.fmt),
			TaxRate:      in.TaxRate,
		})
	}

	tax := net.Mul(decimal.NewFromInt(int64(in.TaxRate))).Div(oneHundred)
	gross := net.Add(tax)

	inv := &ComputedInvoice{
		Number: in.Number,
		Title:  in.Title,
		Sender: Party{
			Name:    in.Employee.Name,
			Street:  in.Employee.Street,
			ZipCity: in.Employee.ZipCity(),
			Country: in.Employee.Country,
			TaxID:   in.Employee.TaxID,
		},
		Receiver: Party{
			Company: in.Client.Company,
			Name:    in.Client.Name,
			Street:  in.Client.Street,
			ZipCity: in.Client.ZipCity(),
			Country: in.Client.Country,
			TaxID:   in.Client.TaxID,
		},
		Bank: BankDetails{
			Receiver: in.Employee.Name,
			Bank:     in.Employee.BankName,
			IBAN:     in.Employee.BankIBAN,
			BIC:      in.Employee.BankBIC,
		},
		Items:          items,
		Entries:        rows,
		TotalHours:     totalHours,
		HourlyRate:     in.HourlyRate,
		TaxRate:        in.TaxRate,
		Net:            net,
		Tax:            tax,
		Gross:          gross,
		NetFormatted:   money.Format(net, s.fmt),
		TaxFormatted:   money.Format(tax, s.fmt),
		GrossFormatted: money.Format(gross, s.fmt),
	}
	if hourMode {
		inv.HourlyRateFormatted = money.Format(in.HourlyRate, s.fmt)
	}
	return inv, nil
}

func checkPair(p Position) error {
	if p.empty() {
		return nil
	}
	if p.Title == "" || p.Net == nil {
		return ErrPositionPair
	}
	return nil
}
