package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicates(t *testing.T) {
	err := NewError("invoice not found").Mark(ErrNotFound)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))

	wrapped := WithError(err).WithMessage("loading invoice").Mark(ErrNotFound)
	assert.True(t, IsNotFound(wrapped))

	rule := NewError("overpayment").Mark(ErrInvalidOperation)
	assert.True(t, IsInvalidOperation(rule))
	assert.True(t, IsBusinessRuleViolation(rule))

	assert.True(t, IsPartialBatchFailure(NewError("1 lease failed").Mark(ErrPartialBatchFailure)))
	assert.True(t, IsVersionConflict(NewError("stale").Mark(ErrVersionConflict)))
}

func TestHTTPStatusFromErr(t *testing.T) {
	cases := []struct {
		sentinel error
		status   int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrVersionConflict, http.StatusConflict},
		{ErrValidation, http.StatusBadRequest},
		{ErrInvalidOperation, http.StatusUnprocessableEntity},
		{ErrPartialBatchFailure, http.StatusMultiStatus},
		{ErrDatabase, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, HTTPStatusFromErr(NewError("x").Mark(tc.sentinel)))
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromErr(NewError("plain").Error()))
}

func TestNewErrorDetail(t *testing.T) {
	err := NewError("payment exceeds outstanding balance").
		WithHint("At most 400.00 can be applied to this invoice").
		WithReportableDetails(map[string]any{"invoice_id": "inv_1"}).
		Mark(ErrInvalidOperation)

	detail := NewErrorDetail(err)
	assert.Equal(t, "At most 400.00 can be applied to this invoice", detail.Display)
	assert.Equal(t, http.StatusUnprocessableEntity, detail.Status)
	assert.Equal(t, "inv_1", detail.Details["invoice_id"])

	resp := NewErrorResponse(NewError("boom").Mark(ErrSystem))
	assert.False(t, resp.Success)
	assert.Equal(t, "An unexpected error occurred", resp.Error.Display)
	assert.Nil(t, resp.Error.Details)
}
