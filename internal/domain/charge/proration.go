package charge

import (
	"time"

	"github.com/shopspring/decimal"
)

// GetAmount, GetEffectiveFrom and GetEffectiveTo let a definition be prorated

func (c *ChargeDefinition) GetAmount() decimal.Decimal {
	return c.Amount
}

func (c *ChargeDefinition) GetEffectiveFrom() time.Time {
	return c.EffectiveFrom
}

func (c *ChargeDefinition) GetEffectiveTo() *time.Time {
	return c.EffectiveTo
}
