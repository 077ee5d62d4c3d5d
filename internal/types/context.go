package types

import (
	"context"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID     ContextKey = "ctx_request_id"
	CtxOrgID         ContextKey = "ctx_org_id"
	CtxUserID        ContextKey = "ctx_user_id"
	CtxDBTransaction ContextKey = "ctx_db_transaction"

	// DefaultUserID is recorded as the actor for scheduler driven changes
	DefaultUserID = "system"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

// GetUserIDOrDefault returns the acting user or DefaultUserID for background work
func GetUserIDOrDefault(ctx context.Context) string {
	if userID := GetUserID(ctx); userID != "" {
		return userID
	}
	return DefaultUserID
}

func GetOrgID(ctx context.Context) string {
	if orgID, ok := ctx.Value(CtxOrgID).(string); ok {
		return orgID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// SetOrgID sets the organization ID in the context
func SetOrgID(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, CtxOrgID, orgID)
}

// SetUserID sets the user ID in the context
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

// SetRequestID sets the request ID in the context
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}
