package errors

import (
	"strings"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
)

const safeDetailsPrefix = "__json__:"

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail contains error information safe to show outside billing
type ErrorDetail struct {
	Display string         `json:"message"`
	Status  int            `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// NewErrorResponse wraps NewErrorDetail in the response envelope
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{Success: false, Error: NewErrorDetail(err)}
}

// NewErrorDetail collects the first hint and every reportable detail of err
func NewErrorDetail(err error) ErrorDetail {
	return ErrorDetail{
		Display: displayMessage(err),
		Status:  HTTPStatusFromErr(err),
		Details: safeDetails(err),
	}
}

func displayMessage(err error) string {
	// GetAllHints is post-order, so the outermost hint comes first
	for _, hint := range errors.GetAllHints(err) {
		if hint = strings.TrimSpace(hint); hint != "" {
			return hint
		}
	}
	return "An unexpected error occurred"
}

func safeDetails(err error) map[string]any {
	details := make(map[string]any)
	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, payload := range sdp.SafeDetails {
			if !strings.HasPrefix(payload, safeDetailsPrefix) {
				continue
			}
			var parsed map[string]any
			if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal([]byte(payload[len(safeDetailsPrefix):]), &parsed); err == nil {
				for k, v := range parsed {
					details[k] = v
				}
			}
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}
