package types

import (
	"context"
	"time"
)

// Status is the soft-delete status of a persisted row. Rows are never hard
// deleted; archived rows are excluded from list queries.
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// BaseModel carries the audit columns shared by every persisted entity
type BaseModel struct {
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	UpdatedBy string    `db:"updated_by" json:"updated_by"`
}

// GetDefaultBaseModel stamps a new row with the acting user and the given time
func GetDefaultBaseModel(ctx context.Context, now time.Time) BaseModel {
	userID := GetUserIDOrDefault(ctx)
	return BaseModel{
		Status:    StatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: userID,
		UpdatedBy: userID,
	}
}

// Touch updates the modification columns
func (b *BaseModel) Touch(ctx context.Context, now time.Time) {
	b.UpdatedAt = now
	b.UpdatedBy = GetUserIDOrDefault(ctx)
}
