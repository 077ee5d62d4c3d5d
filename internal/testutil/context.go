package testutil

import (
	"context"

	"github.com/flexprice/leasebill/internal/types"
)

const (
	DefaultOrgID  = "org_test"
	DefaultUserID = "user_owner"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = types.SetOrgID(ctx, DefaultOrgID)
	ctx = types.SetUserID(ctx, DefaultUserID)
	ctx = types.SetRequestID(ctx, types.GenerateUUID())
	return ctx
}
