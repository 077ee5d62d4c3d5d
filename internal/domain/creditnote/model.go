package creditnote

import (
	"time"

	"github.com/flexprice/leasebill/internal/types"
	"github.com/shopspring/decimal"
)

// CreditNote adjusts what is owed on an issued invoice without editing it
type CreditNote struct {
	ID               string               `db:"id" json:"id"`
	OrgID            string               `db:"org_id" json:"org_id"`
	InvoiceID        string               `db:"invoice_id" json:"invoice_id"`
	CreditNoteNumber string               `db:"credit_note_number" json:"credit_note_number"`
	CreditNoteType   types.CreditNoteType `db:"credit_note_type" json:"credit_note_type"`
	Amount           decimal.Decimal      `db:"amount" json:"amount"`
	Reason           string               `db:"reason" json:"reason"`
	IssuedAt         time.Time            `db:"issued_at" json:"issued_at"`

	types.BaseModel
}
