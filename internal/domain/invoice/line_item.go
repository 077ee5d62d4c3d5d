package invoice

import (
	"time"

	"github.com/flexprice/leasebill/internal/types"
	"github.com/shopspring/decimal"
)

// InvoiceLine is one billed item. Lines are only written while the invoice is a draft.
type InvoiceLine struct {
	ID              string                `db:"id" json:"id"`
	InvoiceID       string                `db:"invoice_id" json:"invoice_id"`
	ChargeID        string                `db:"charge_id" json:"charge_id"`
	ChargeType      types.ChargeType      `db:"charge_type" json:"charge_type"`
	Description     string                `db:"description" json:"description"`
	Quantity        decimal.Decimal       `db:"quantity" json:"quantity"`
	UnitAmount      decimal.Decimal       `db:"unit_amount" json:"unit_amount"`
	Amount          decimal.Decimal       `db:"amount" json:"amount"`
	Taxable         bool                  `db:"taxable" json:"taxable"`
	PeriodStart     time.Time             `db:"period_start" json:"period_start"`
	PeriodEnd       time.Time             `db:"period_end" json:"period_end"`
	Prorated        bool                  `db:"prorated" json:"prorated"`
	ProrationMethod types.ProrationMethod `db:"proration_method" json:"proration_method,omitempty"`
}
