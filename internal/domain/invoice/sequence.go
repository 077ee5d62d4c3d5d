package invoice

import (
	"fmt"
	"time"
)

// InvoiceSequence is an org's invoice number counter for one month
type InvoiceSequence struct {
	ID        string    `db:"id"`
	OrgID     string    `db:"org_id"`
	YearMonth string    `db:"year_month"`
	LastValue int64     `db:"last_value"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SequenceYearMonth is the counter bucket for an issue time
func SequenceYearMonth(t time.Time) string {
	return t.UTC().Format("200601")
}

// FormatInvoiceNumber renders e.g. INV-202503-00042
func FormatInvoiceNumber(prefix, yearMonth string, seq int64) string {
	return fmt.Sprintf("%s-%s-%05d", prefix, yearMonth, seq)
}
