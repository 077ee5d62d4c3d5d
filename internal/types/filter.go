package types

import (
	"time"

	ierr "github.com/flexprice/leasebill/internal/errors"
)

const (
	FILTER_DEFAULT_LIMIT = 50
	FILTER_MAX_LIMIT     = 500

	OrderDesc = "desc"
	OrderAsc  = "asc"
)

// QueryFilter carries pagination shared by every list filter
type QueryFilter struct {
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
	Order  string `json:"order,omitempty"`
}

// NewDefaultQueryFilter returns the first page in newest-first order
func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{Limit: FILTER_DEFAULT_LIMIT, Order: OrderDesc}
}

// NewNoLimitQueryFilter is used by internal sweeps that must see every row
func NewNoLimitQueryFilter() *QueryFilter {
	return &QueryFilter{Limit: -1, Order: OrderAsc}
}

func (f *QueryFilter) GetLimit() int {
	if f == nil || f.Limit == 0 {
		return FILTER_DEFAULT_LIMIT
	}
	return f.Limit
}

func (f *QueryFilter) GetOffset() int {
	if f == nil {
		return 0
	}
	return f.Offset
}

func (f *QueryFilter) GetOrder() string {
	if f == nil || f.Order == "" {
		return OrderDesc
	}
	return f.Order
}

// IsUnlimited reports whether pagination should be skipped
func (f *QueryFilter) IsUnlimited() bool {
	return f != nil && f.Limit < 0
}

func (f *QueryFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Limit > FILTER_MAX_LIMIT {
		return ierr.NewErrorf("limit %d exceeds %d", f.Limit, FILTER_MAX_LIMIT).
			WithHint("Please request a smaller page").
			Mark(ierr.ErrValidation)
	}
	if f.Offset < 0 {
		return ierr.NewError("offset must not be negative").
			WithHint("Please provide a valid offset").
			Mark(ierr.ErrValidation)
	}
	if f.Order != "" && f.Order != OrderAsc && f.Order != OrderDesc {
		return ierr.NewError("invalid order").
			WithHint("Order must be asc or desc").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	*QueryFilter
	OrgID          string          `json:"org_id,omitempty"`
	LeaseID        string          `json:"lease_id,omitempty"`
	PeriodKey      PeriodKey       `json:"period_key,omitempty"`
	RunType        InvoiceRunType  `json:"run_type,omitempty"`
	InvoiceStatus  []InvoiceStatus `json:"invoice_status,omitempty"`
	DueBefore      *time.Time      `json:"due_before,omitempty"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *InvoiceFilter) Validate() error {
	if f == nil {
		return nil
	}
	for _, s := range f.InvoiceStatus {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return f.QueryFilter.Validate()
}

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	*QueryFilter
	OrgID         string          `json:"org_id,omitempty"`
	InvoiceID     string          `json:"invoice_id,omitempty"`
	LeaseID       string          `json:"lease_id,omitempty"`
	PaymentStatus []PaymentStatus `json:"payment_status,omitempty"`
}

func NewPaymentFilter() *PaymentFilter {
	return &PaymentFilter{QueryFilter: NewDefaultQueryFilter()}
}

// ConfirmationRequestFilter narrows cash-payment claim listings
type ConfirmationRequestFilter struct {
	*QueryFilter
	OrgID         string                      `json:"org_id,omitempty"`
	InvoiceID     string                      `json:"invoice_id,omitempty"`
	LeaseID       string                      `json:"lease_id,omitempty"`
	RequestStatus []ConfirmationRequestStatus `json:"request_status,omitempty"`
}

func NewConfirmationRequestFilter() *ConfirmationRequestFilter {
	return &ConfirmationRequestFilter{QueryFilter: NewDefaultQueryFilter()}
}
