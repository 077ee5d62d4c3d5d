package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Scope represents the scope of idempotency
type Scope string

const (
	// ScopeLeaseInvoice keys one generated invoice per (org, period, run type, lease)
	ScopeLeaseInvoice Scope = "lease_invoice"
	// ScopePayment keys an externally referenced payment
	ScopePayment Scope = "payment"
)

// Generator generates idempotency keys
type Generator struct{}

// NewGenerator creates a new idempotency key generator
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateKey generates an idempotency key from a scope and parameters.
// The result is stable regardless of map iteration order.
func (g *Generator) GenerateKey(scope Scope, params map[string]interface{}) string {
	keys := lo.Keys(params)
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(scope))
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(":%s=%v", k, params[k]))
	}

	hash := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%s-%s", scope, hex.EncodeToString(hash[:16]))
}

// LeaseInvoiceKey is the storage-enforced key of a run-generated invoice
func (g *Generator) LeaseInvoiceKey(orgID, periodKey, runType, leaseID string) string {
	return g.GenerateKey(ScopeLeaseInvoice, map[string]interface{}{
		"org_id":     orgID,
		"period_key": periodKey,
		"run_type":   runType,
		"lease_id":   leaseID,
	})
}

// ValidateKey validates if an idempotency key matches expected parameters
func (g *Generator) ValidateKey(scope Scope, params map[string]interface{}, key string) bool {
	return g.GenerateKey(scope, params) == key
}
