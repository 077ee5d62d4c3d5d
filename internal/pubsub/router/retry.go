package router

import (
	"net"

	"github.com/cockroachdb/errors"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/logger"
)

func shouldRetry(logger *logger.Logger, err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		logger.Debugw("retrying due to network timeout", "error", netErr)
		return true
	}

	// a malformed or stale event will not get better on redelivery
	if ierr.IsValidation(err) ||
		ierr.IsNotFound(err) ||
		ierr.IsInvalidOperation(err) ||
		ierr.IsPermissionDenied(err) {
		return false
	}

	return true
}
