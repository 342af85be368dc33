package repository

import (
	"context"

	"creator-contest/domain/model"
)

// ICredential stores one platform credential per owner.
type ICredential interface {
	// GetByOwner returns (nil, nil) when the owner has no record.
	GetByOwner(ctx context.Context, ownerID string) (*model.CredentialRecord, error)
	// Upsert inserts or replaces the owner's record.
	Upsert(ctx context.Context, rec *model.CredentialRecord) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}
