package types

// CreditNoteType tells whether a note reduces what is owed or records money owed back
type CreditNoteType string

const (
	// CreditNoteTypeAdjustment reduces the open balance of an unpaid invoice
	CreditNoteTypeAdjustment CreditNoteType = "adjustment"
	// CreditNoteTypeRefund records an amount owed back on a settled invoice
	CreditNoteTypeRefund CreditNoteType = "refund"
)

func (t CreditNoteType) String() string {
	return string(t)
}
