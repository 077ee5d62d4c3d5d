package config

import (
	"reflect"
	"testing"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.Billing.MaxConflictRetries)
	assert.Equal(t, "0 2 26 * *", cfg.Scheduler.RentSpec)
}

func TestValidateRejectsBadBilling(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Billing.WorkerPoolSize = 0
	assert.Error(t, cfg.Validate())

	cfg = GetDefaultConfig()
	cfg.Billing.OverpaymentPolicy = "credit"
	assert.Error(t, cfg.Validate())

	cfg = GetDefaultConfig()
	cfg.S3.Enabled = true
	cfg.S3.ProofBucket = ""
	assert.Error(t, cfg.Validate())
}

func TestDecimalHook(t *testing.T) {
	var out struct {
		Rate    decimal.Decimal
		Timeout time.Duration
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: decimalHook(),
		Result:     &out,
	})
	require.NoError(t, err)

	require.NoError(t, dec.Decode(map[string]any{"rate": "0.18", "timeout": "15m"}))
	assert.True(t, decimal.RequireFromString("0.18").Equal(out.Rate))
	assert.Equal(t, 15*time.Minute, out.Timeout)
	assert.Equal(t, reflect.TypeOf(decimal.Decimal{}), reflect.TypeOf(out.Rate))
}

func TestPostgresDSN(t *testing.T) {
	dsn := GetDefaultConfig().Postgres.GetDSN()
	assert.Contains(t, dsn, "dbname=leasebill")
	assert.Contains(t, dsn, "sslmode=disable")
}
